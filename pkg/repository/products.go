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

type ProductRepository struct {
	coll *mongo.Collection
}

// ProductFilter narrows and orders a catalog listing.
type ProductFilter struct {
	Featured bool
	Category string
	Search   string
	Sort     string
	Page     int
	Limit    int
}

// List returns one page of products matching the filter plus the total count.
func (r *ProductRepository) List(ctx context.Context, f ProductFilter) ([]models.Product, int64, error) {
	query := bson.M{}

	if f.Featured {
		query["featured"] = true
	}
	if f.Category != "" {
		query["category"] = f.Category
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: f.Search, Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}

	var sort bson.D
	switch f.Sort {
	case "price-asc":
		sort = bson.D{{Key: "price", Value: 1}}
	case "price-desc":
		sort = bson.D{{Key: "price", Value: -1}}
	case "rating":
		sort = bson.D{{Key: "rating.average", Value: -1}}
	default: // newest
		sort = bson.D{{Key: "created_at", Value: -1}}
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 12
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}

	opts := options.Find().
		SetSort(sort).
		SetLimit(int64(limit)).
		SetSkip(int64((page - 1) * limit))

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, err
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.coll.FindOne(ctx, bson.M{"slug": slug}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	product.Slug = models.Slugify(product.Name)
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt

	res, err := r.coll.InsertOne(ctx, product)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		product.ID = id
	}
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	product.Slug = models.Slugify(product.Name)
	product.UpdatedAt = time.Now()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": product.ID}, product)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DecrementStock atomically reduces stock by qty, matching only when enough
// stock remains. ErrInsufficientStock covers both a missing product and a
// stock level below qty.
func (r *ProductRepository) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"stock": -qty}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *ProductRepository) UpdateRating(ctx context.Context, id primitive.ObjectID, average float64, count int) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"rating.average": average, "rating.count": count}},
	)
	return err
}

func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}
