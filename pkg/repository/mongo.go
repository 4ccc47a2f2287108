package repository

import (
	"context"
	"errors"
	"time"

	"github.com/example/keebstore/pkg/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Sentinel errors shared across repositories.
var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicate         = errors.New("already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
)

const (
	collProducts = "products"
	collReviews  = "reviews"
	collOrders   = "orders"
	collUsers    = "users"
	collAudit    = "audit_logs"
)

type MongoRepository struct {
	client   *mongo.Client
	database *mongo.Database
	config   *config.MongoDBConfig
}

func NewMongoRepository(cfg *config.MongoDBConfig) (*MongoRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}

	return &MongoRepository{
		client:   client,
		database: client.Database(cfg.Database),
		config:   cfg,
	}, nil
}

func (m *MongoRepository) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *MongoRepository) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// WithTransaction runs fn inside a multi-document transaction so multi-write
// operations (stock decrement plus order insert) are all-or-nothing.
func (m *MongoRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := m.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (m *MongoRepository) Products() *ProductRepository {
	return &ProductRepository{coll: m.database.Collection(collProducts)}
}

func (m *MongoRepository) Reviews() *ReviewRepository {
	return &ReviewRepository{coll: m.database.Collection(collReviews), products: m.Products()}
}

func (m *MongoRepository) Orders() *OrderRepository {
	return &OrderRepository{coll: m.database.Collection(collOrders), mongo: m}
}

func (m *MongoRepository) Users() *UserRepository {
	return &UserRepository{coll: m.database.Collection(collUsers)}
}

func (m *MongoRepository) Audit() *AuditRepository {
	return &AuditRepository{coll: m.database.Collection(collAudit)}
}

// EnsureIndexes creates the unique and query indexes the storefront relies on.
func (m *MongoRepository) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	if _, err := m.database.Collection(collProducts).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: unique,
	}); err != nil {
		return err
	}

	if _, err := m.database.Collection(collUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: unique,
	}); err != nil {
		return err
	}

	// One review per user per product.
	if _, err := m.database.Collection(collReviews).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "product_id", Value: 1}, {Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return err
	}

	_, err := m.database.Collection(collOrders).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
	})
	return err
}
