package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON          = "INVALID_JSON"
	ErrCodeEmptyCart            = "EMPTY_CART"
	ErrCodeMissingField         = "MISSING_FIELD"
	ErrCodeMissingPayment       = "MISSING_PAYMENT_REFERENCE"
	ErrCodeInvalidPayment       = "INVALID_PAYMENT_METHOD"
	ErrCodeItemNotFound         = "ITEM_NOT_FOUND"
	ErrCodeProductNotFound      = "PRODUCT_NOT_FOUND"
	ErrCodeInvalidQuantity      = "INVALID_QUANTITY"
	ErrCodeAuthRequired         = "AUTH_REQUIRED"
	ErrCodeSubmissionInProgress = "SUBMISSION_IN_PROGRESS"
	ErrCodeOrderFailed          = "ORDER_FAILED"
	ErrCodeUnauthorised         = "UNAUTHORIZED"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewOrderFailedError reports a rejected order write with the store's message.
func NewOrderFailedError(err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeOrderFailed,
		Message: "Order failed: " + err.Error(),
		Err:     err,
	}
}

// Common domain errors
var (
	ErrEmptyCart            = NewDomainError(ErrCodeEmptyCart, "Cart is empty!")
	ErrMissingShipping      = NewDomainError(ErrCodeMissingField, "Please fill name, phone and address.")
	ErrMissingBKashPayment  = NewDomainError(ErrCodeMissingPayment, "bKash number & Transaction ID required (dummy).")
	ErrMissingNagadPayment  = NewDomainError(ErrCodeMissingPayment, "Nagad number & Transaction ID required (dummy).")
	ErrInvalidPaymentMethod = NewDomainError(ErrCodeInvalidPayment, "Payment method must be COD, BKASH or NAGAD")
	ErrItemNotFound         = NewDomainError(ErrCodeItemNotFound, "Item not found in cart")
	ErrProductNotFound      = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrInvalidQuantity      = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrAuthRequired         = NewDomainError(ErrCodeAuthRequired, "Please login first.")
	ErrSubmissionInProgress = NewDomainError(ErrCodeSubmissionInProgress, "Order submission already in progress")
)
