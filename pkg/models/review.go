package models

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID primitive.ObjectID `bson:"product_id" json:"product"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user"`
	Rating    int                `bson:"rating" json:"rating"`
	Title     string             `bson:"title" json:"title"`
	Comment   string             `bson:"comment" json:"comment"`
	Verified  bool               `bson:"verified" json:"verified"`
	Helpful   int                `bson:"helpful" json:"helpful"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

func (r *Review) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return errors.New("rating must be between 1 and 5")
	}
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("review title is required")
	}
	if len(r.Title) > 100 {
		return errors.New("review title must be at most 100 characters")
	}
	if strings.TrimSpace(r.Comment) == "" {
		return errors.New("review comment is required")
	}
	if len(r.Comment) > 1000 {
		return errors.New("review comment must be at most 1000 characters")
	}
	return nil
}
