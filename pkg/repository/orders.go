package repository

import (
	"context"
	"errors"
	"time"

	"github.com/example/keebstore/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OrderRepository struct {
	coll  *mongo.Collection
	mongo *MongoRepository
}

// Place records the order and decrements stock for every item in a single
// transaction. Either the whole snapshot lands or nothing does.
func (r *OrderRepository) Place(ctx context.Context, order *models.Order) error {
	products := r.mongo.Products()
	return r.mongo.WithTransaction(ctx, func(ctx context.Context) error {
		for _, item := range order.Items {
			if err := products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		res, err := r.coll.InsertOne(ctx, order)
		if err != nil {
			return err
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			order.ID = id
		}
		return nil
	})
}

func (r *OrderRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return r.list(ctx, bson.M{"user_id": userID})
}

func (r *OrderRepository) ListAll(ctx context.Context) ([]models.Order, error) {
	return r.list(ctx, bson.M{})
}

func (r *OrderRepository) list(ctx context.Context, filter bson.M) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// MarkPaid sets the orthogonal paid flag and records the payment result.
func (r *OrderRepository) MarkPaid(ctx context.Context, id primitive.ObjectID, result models.PaymentResult) error {
	now := time.Now()
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"is_paid":        true,
			"paid_at":        now,
			"payment_result": result,
			"updated_at":     now,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *OrderRepository) SetTracking(ctx context.Context, id primitive.ObjectID, trackingNumber string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"tracking_number": trackingNumber, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UserHasPaidOrderWith reports whether the user has any paid order containing
// the product; used to flag verified-buyer reviews.
func (r *OrderRepository) UserHasPaidOrderWith(ctx context.Context, userID, productID primitive.ObjectID) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{
		"user_id":          userID,
		"is_paid":          true,
		"items.product_id": productID,
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Stats aggregates order count and paid revenue for the admin dashboard.
func (r *OrderRepository) Stats(ctx context.Context) (int64, float64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, 0, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"is_paid": true}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"revenue": bson.M{"$sum": "$total"},
		}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Revenue float64 `bson:"revenue"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, 0, err
	}

	var revenue float64
	if len(results) > 0 {
		revenue = results[0].Revenue
	}
	return count, revenue, nil
}
