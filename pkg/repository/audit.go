package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AuditLog records who did what to which entity. Entries are written on order
// placement, payment, status changes and admin catalog mutations.
type AuditLog struct {
	ID        string    `bson:"_id,omitempty" json:"id,omitempty"`
	Action    string    `bson:"action" json:"action"`
	EntityID  string    `bson:"entity_id" json:"entityId"`
	ActorID   string    `bson:"actor_id,omitempty" json:"actorId,omitempty"`
	Data      bson.M    `bson:"data,omitempty" json:"data,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

type AuditRepository struct {
	coll *mongo.Collection
}

func (r *AuditRepository) Record(ctx context.Context, log *AuditLog) error {
	log.CreatedAt = time.Now()
	_, err := r.coll.InsertOne(ctx, log)
	return err
}

func (r *AuditRepository) ListByEntity(ctx context.Context, entityID string, limit int64) ([]*AuditLog, error) {
	filter := bson.M{"entity_id": entityID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []*AuditLog
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}

	return logs, nil
}
