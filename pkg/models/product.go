package models

import (
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product categories carried by the catalog.
const (
	CategorySplitKeyboard = "split-keyboard"
	CategoryAccessories   = "accessories"
	CategoryKeycaps       = "keycaps"
	CategorySwitches      = "switches"
)

type ProductImage struct {
	URL       string `bson:"url" json:"url"`
	Alt       string `bson:"alt,omitempty" json:"alt,omitempty"`
	IsPrimary bool   `bson:"is_primary" json:"isPrimary"`
}

// Variant describes one selectable axis of a product, e.g. Color -> [Black, White].
type Variant struct {
	Name    string   `bson:"name" json:"name"`
	Options []string `bson:"options" json:"options"`
}

// Specifications is a structured record rather than an open-ended map so the
// shape survives the client/server boundary intact.
type Specifications struct {
	Layout        string   `bson:"layout,omitempty" json:"layout,omitempty"`
	Connectivity  []string `bson:"connectivity,omitempty" json:"connectivity,omitempty"`
	Switches      string   `bson:"switches,omitempty" json:"switches,omitempty"`
	Backlighting  string   `bson:"backlighting,omitempty" json:"backlighting,omitempty"`
	Dimensions    string   `bson:"dimensions,omitempty" json:"dimensions,omitempty"`
	Weight        string   `bson:"weight,omitempty" json:"weight,omitempty"`
	BatteryLife   string   `bson:"battery_life,omitempty" json:"batteryLife,omitempty"`
	Compatibility []string `bson:"compatibility,omitempty" json:"compatibility,omitempty"`
}

type Rating struct {
	Average float64 `bson:"average" json:"average"`
	Count   int     `bson:"count" json:"count"`
}

type Product struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Slug           string             `bson:"slug" json:"slug"`
	Description    string             `bson:"description" json:"description"`
	Price          float64            `bson:"price" json:"price"`
	CompareAtPrice float64            `bson:"compare_at_price,omitempty" json:"compareAtPrice,omitempty"`
	Images         []ProductImage     `bson:"images" json:"images"`
	Category       string             `bson:"category" json:"category"`
	Stock          int                `bson:"stock" json:"stock"`
	Variants       []Variant          `bson:"variants,omitempty" json:"variants,omitempty"`
	Specifications Specifications     `bson:"specifications,omitempty" json:"specifications,omitempty"`
	Features       []string           `bson:"features,omitempty" json:"features,omitempty"`
	Featured       bool               `bson:"featured" json:"featured"`
	Rating         Rating             `bson:"rating" json:"rating"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updatedAt"`
}

// PrimaryImage returns the URL of the image flagged primary, falling back to
// the first image.
func (p *Product) PrimaryImage() string {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img.URL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].URL
	}
	return ""
}

func ValidCategory(c string) bool {
	switch c {
	case CategorySplitKeyboard, CategoryAccessories, CategoryKeycaps, CategorySwitches:
		return true
	default:
		return false
	}
}

var nonSlugChars = regexp.MustCompile(`[^\w\s-]`)
var whitespace = regexp.MustCompile(`\s+`)

// Slugify derives a URL slug from a product name.
func Slugify(name string) string {
	s := strings.ToLower(name)
	s = nonSlugChars.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(strings.TrimSpace(s), "-")
	return s
}
