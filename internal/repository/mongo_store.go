package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongoDB opens a client and returns the named database.
func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

type mongoPrice struct {
	NewPrice primitive.Decimal128 `bson:"newPrice"`
}

type mongoImage struct {
	SingleImage string `bson:"singleImage,omitempty"`
}

type mongoItem struct {
	ID        string     `bson:"id,omitempty"`
	ProductID string     `bson:"productId,omitempty"`
	Name      string     `bson:"name,omitempty"`
	Price     mongoPrice `bson:"price"`
	Img       mongoImage `bson:"img"`
	Quantity  int        `bson:"quantity"`
}

type mongoCart struct {
	UserID    string      `bson:"_id"`
	Items     []mongoItem `bson:"items"`
	UpdatedAt int64       `bson:"updatedAt"`
}

type mongoOrder struct {
	ID          string      `bson:"_id"`
	UserID      string      `bson:"userId"`
	Items       []mongoItem `bson:"items"`
	Subtotal    int64       `bson:"subtotalBDT"`
	ShippingFee int64       `bson:"shippingBDT"`
	Total       int64       `bson:"totalBDT"`
	Currency    string      `bson:"currency"`
	Status      string      `bson:"status"`
	Payment     bson.M      `bson:"payment"`
	Shipping    bson.M      `bson:"shipping"`
	CreatedAt   time.Time   `bson:"createdAt"`
}

func toMongoItems(c model.Cart) ([]mongoItem, error) {
	out := make([]mongoItem, 0, len(c))
	for _, it := range c {
		price, err := primitive.ParseDecimal128(it.Price.NewPrice.String())
		if err != nil {
			return nil, fmt.Errorf("invalid price for item %q: %w", it.Name, err)
		}
		out = append(out, mongoItem{
			ID:        it.ID.String(),
			ProductID: it.ProductID.String(),
			Name:      it.Name,
			Price:     mongoPrice{NewPrice: price},
			Img:       mongoImage{SingleImage: it.Img.SingleImage},
			Quantity:  it.Quantity,
		})
	}
	return out, nil
}

func fromMongoItems(items []mongoItem) (model.Cart, error) {
	out := make(model.Cart, 0, len(items))
	for _, it := range items {
		price := decimal.Zero
		if s := it.Price.NewPrice.String(); s != "" && s != "NaN" {
			d, err := decimal.NewFromString(s)
			if err != nil {
				return nil, fmt.Errorf("invalid stored price %q: %w", s, err)
			}
			price = d
		}
		out = append(out, model.CartItem{
			ID:        model.ItemID(it.ID),
			ProductID: model.ItemID(it.ProductID),
			Name:      it.Name,
			Price:     model.Price{NewPrice: price},
			Img:       model.Image{SingleImage: it.Img.SingleImage},
			Quantity:  it.Quantity,
		})
	}
	return out, nil
}

func paymentDoc(p model.PaymentInfo) bson.M {
	doc := bson.M{"method": string(p.Method)}
	if p.Number != "" {
		doc["number"] = p.Number
	}
	if p.TrxID != "" {
		doc["trxId"] = p.TrxID
	}
	return doc
}

// mongoStore implements Store on MongoDB collections.
type mongoStore struct {
	carts  *mongo.Collection
	orders *mongo.Collection
	now    func() time.Time
	logger zerolog.Logger
}

// NewMongoStore creates a new MongoDB-backed cart and order store.
func NewMongoStore(db *mongo.Database, logger zerolog.Logger) Store {
	return &mongoStore{
		carts:  db.Collection("carts"),
		orders: db.Collection("orders"),
		now:    time.Now,
		logger: logger.With().Str("repository", "mongo").Logger(),
	}
}

// ReadCart returns the user's cart items.
func (m *mongoStore) ReadCart(ctx context.Context, userID string) (model.Cart, error) {
	var doc mongoCart
	err := m.carts.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Cart{}, nil
		}
		m.logger.Error().Err(err).Str("user_id", userID).Msg("failed to get cart")
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	items, err := fromMongoItems(doc.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return items, nil
}

// WriteCart sets items and updatedAt on the user's cart document, creating it if needed.
func (m *mongoStore) WriteCart(ctx context.Context, userID string, cart model.Cart) error {
	items, err := toMongoItems(cart)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": userID}
	update := bson.M{"$set": bson.M{
		"items":     items,
		"updatedAt": m.now().UnixMilli(),
	}}
	opts := options.Update().SetUpsert(true)

	if _, err := m.carts.UpdateOne(ctx, filter, update, opts); err != nil {
		m.logger.Error().Err(err).Str("user_id", userID).Msg("failed to upsert cart")
		return fmt.Errorf("failed to upsert cart: %w", err)
	}

	return nil
}

// CreateOrder inserts the order document.
func (m *mongoStore) CreateOrder(ctx context.Context, order *model.Order) error {
	items, err := toMongoItems(order.Items)
	if err != nil {
		return err
	}

	createdAt := m.now().UTC().Truncate(time.Millisecond)
	doc := mongoOrder{
		ID:          order.ID,
		UserID:      order.UserID,
		Items:       items,
		Subtotal:    order.Subtotal,
		ShippingFee: order.ShippingFee,
		Total:       order.Total,
		Currency:    order.Currency,
		Status:      string(order.Status),
		Payment:     paymentDoc(order.Payment),
		Shipping: bson.M{
			"fullName": order.Shipping.FullName,
			"phone":    order.Shipping.Phone,
			"address":  order.Shipping.Address,
		},
		CreatedAt: createdAt,
	}

	if _, err := m.orders.InsertOne(ctx, doc); err != nil {
		m.logger.Error().
			Err(err).
			Str("order_id", order.ID).
			Str("user_id", order.UserID).
			Msg("failed to insert order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	order.CreatedAt = createdAt
	return nil
}

// EnsureMongoIndexes creates the secondary indexes of the orders collection.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("orders").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
