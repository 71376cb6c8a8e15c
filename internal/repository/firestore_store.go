package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"storefront/internal/model"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	firestoreCartsCol  = "carts"
	firestoreUsersCol  = "users"
	firestoreOrdersCol = "orders"
)

// NewFirestoreClient opens a Firestore client for projectID.
// An empty credentialsFile uses application default credentials.
func NewFirestoreClient(ctx context.Context, projectID, credentialsFile string) (*firestore.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return client, nil
}

// firestoreStore implements Store on Firestore documents:
// carts/{uid} for carts and users/{uid}/orders/{id} for orders.
type firestoreStore struct {
	client *firestore.Client
	now    func() time.Time
	logger zerolog.Logger
}

// NewFirestoreStore creates a new Firestore-backed cart and order store.
func NewFirestoreStore(client *firestore.Client, logger zerolog.Logger) Store {
	return &firestoreStore{
		client: client,
		now:    time.Now,
		logger: logger.With().Str("repository", "firestore").Logger(),
	}
}

// ReadCart returns the items field of carts/{uid}.
func (f *firestoreStore) ReadCart(ctx context.Context, userID string) (model.Cart, error) {
	snap, err := f.client.Collection(firestoreCartsCol).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return model.Cart{}, nil
		}
		f.logger.Error().Err(err).Str("user_id", userID).Msg("failed to get cart document")
		return nil, fmt.Errorf("failed to get cart document: %w", err)
	}
	if snap == nil || !snap.Exists() {
		return model.Cart{}, nil
	}

	return cartFromFirestore(snap.Data()["items"])
}

// WriteCart merges items and updatedAt into carts/{uid}.
func (f *firestoreStore) WriteCart(ctx context.Context, userID string, cart model.Cart) error {
	data := map[string]interface{}{
		"items":     cartToFirestore(cart),
		"updatedAt": f.now().UnixMilli(),
	}

	_, err := f.client.Collection(firestoreCartsCol).Doc(userID).Set(ctx, data,
		firestore.Merge([]string{"items"}, []string{"updatedAt"}))
	if err != nil {
		f.logger.Error().Err(err).Str("user_id", userID).Msg("failed to write cart document")
		return fmt.Errorf("failed to write cart document: %w", err)
	}
	return nil
}

// CreateOrder creates users/{uid}/orders/{id} with a server timestamp.
func (f *firestoreStore) CreateOrder(ctx context.Context, order *model.Order) error {
	payment := map[string]interface{}{"method": string(order.Payment.Method)}
	if order.Payment.Number != "" {
		payment["number"] = order.Payment.Number
	}
	if order.Payment.TrxID != "" {
		payment["trxId"] = order.Payment.TrxID
	}

	data := map[string]interface{}{
		"items":       cartToFirestore(order.Items),
		"subtotalBDT": order.Subtotal,
		"shippingBDT": order.ShippingFee,
		"totalBDT":    order.Total,
		"currency":    order.Currency,
		"status":      string(order.Status),
		"payment":     payment,
		"shipping": map[string]interface{}{
			"fullName": order.Shipping.FullName,
			"phone":    order.Shipping.Phone,
			"address":  order.Shipping.Address,
		},
		"createdAt": firestore.ServerTimestamp,
	}

	ref := f.client.Collection(firestoreUsersCol).Doc(order.UserID).Collection(firestoreOrdersCol).Doc(order.ID)
	wr, err := ref.Create(ctx, data)
	if err != nil {
		f.logger.Error().
			Err(err).
			Str("order_id", order.ID).
			Str("user_id", order.UserID).
			Msg("failed to create order document")
		return fmt.Errorf("failed to create order: %w", err)
	}

	order.CreatedAt = wr.UpdateTime
	return nil
}

// cartToFirestore converts items to the document shape the web client writes.
func cartToFirestore(c model.Cart) []interface{} {
	out := make([]interface{}, 0, len(c))
	for _, it := range c {
		doc := map[string]interface{}{
			"price":    map[string]interface{}{"newPrice": it.Price.NewPrice.InexactFloat64()},
			"img":      map[string]interface{}{"singleImage": it.Img.SingleImage},
			"quantity": int64(it.Quantity),
		}
		if it.ID != "" {
			doc["id"] = idToFirestore(it.ID)
		}
		if it.ProductID != "" {
			doc["productId"] = idToFirestore(it.ProductID)
		}
		if it.Name != "" {
			doc["name"] = it.Name
		}
		out = append(out, doc)
	}
	return out
}

func idToFirestore(id model.ItemID) interface{} {
	if n, err := strconv.ParseInt(id.String(), 10, 64); err == nil && strconv.FormatInt(n, 10) == id.String() {
		return n
	}
	return id.String()
}

// cartFromFirestore parses the items field. Missing items are an empty cart.
func cartFromFirestore(raw interface{}) (model.Cart, error) {
	if raw == nil {
		return model.Cart{}, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("cart items has unexpected type %T", raw)
	}

	out := make(model.Cart, 0, len(list))
	for i, entry := range list {
		m, ok := entry.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("cart item %d has unexpected type %T", i, entry)
		}

		item := model.CartItem{
			ID:        anyToItemID(m["id"]),
			ProductID: anyToItemID(m["productId"]),
			Quantity:  int(anyToInt64(m["quantity"])),
		}
		if name, ok := m["name"].(string); ok {
			item.Name = name
		}
		if price, ok := m["price"].(map[string]interface{}); ok {
			item.Price.NewPrice = anyToDecimal(price["newPrice"])
		}
		if img, ok := m["img"].(map[string]interface{}); ok {
			if s, ok := img["singleImage"].(string); ok {
				item.Img.SingleImage = s
			}
		}
		out = append(out, item)
	}
	return out, nil
}

func anyToItemID(v interface{}) model.ItemID {
	switch t := v.(type) {
	case string:
		return model.ItemID(t)
	case int64:
		return model.ItemID(strconv.FormatInt(t, 10))
	case float64:
		return model.ItemID(strconv.FormatFloat(t, 'f', -1, 64))
	default:
		return ""
	}
}

func anyToInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case float64:
		return int64(t)
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	default:
		return 0
	}
}

func anyToDecimal(v interface{}) decimal.Decimal {
	switch t := v.(type) {
	case int64:
		return decimal.NewFromInt(t)
	case float64:
		return decimal.NewFromFloat(t)
	case string:
		d, err := decimal.NewFromString(t)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}
