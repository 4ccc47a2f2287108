package models

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	FirstName    string             `bson:"first_name" json:"firstName"`
	LastName     string             `bson:"last_name" json:"lastName"`
	Role         string             `bson:"role" json:"role"`
	Address      *ShippingAddress   `bson:"address,omitempty" json:"address,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ShippingAddress is a structured record with named fields; validation happens
// once here instead of being re-derived from map keys on each side of the wire.
type ShippingAddress struct {
	FullName     string `bson:"full_name" json:"fullName"`
	AddressLine1 string `bson:"address_line1" json:"addressLine1"`
	AddressLine2 string `bson:"address_line2,omitempty" json:"addressLine2,omitempty"`
	City         string `bson:"city" json:"city"`
	State        string `bson:"state" json:"state"`
	ZipCode      string `bson:"zip_code" json:"zipCode"`
	Country      string `bson:"country" json:"country"`
	Phone        string `bson:"phone" json:"phone"`
}

func (a ShippingAddress) Validate() error {
	if len(strings.TrimSpace(a.FullName)) < 2 {
		return errors.New("full name is required")
	}
	if len(strings.TrimSpace(a.AddressLine1)) < 5 {
		return errors.New("address is required")
	}
	if len(strings.TrimSpace(a.City)) < 2 {
		return errors.New("city is required")
	}
	if len(strings.TrimSpace(a.State)) < 2 {
		return errors.New("state is required")
	}
	if len(strings.TrimSpace(a.ZipCode)) < 5 {
		return errors.New("zip code is required")
	}
	if len(strings.TrimSpace(a.Country)) < 2 {
		return errors.New("country is required")
	}
	if len(strings.TrimSpace(a.Phone)) < 10 {
		return errors.New("phone number is required")
	}
	return nil
}
