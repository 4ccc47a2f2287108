// Package pricing derives shipping cost, tax and grand total from a cart
// subtotal and a shipping-method selection. All functions are pure.
package pricing

import (
	"math"

	"github.com/example/keebstore/pkg/config"
)

type Calculator struct {
	StandardFee      float64
	ExpressFee       float64
	OvernightFee     float64
	FreeShippingOver float64
	TaxRate          float64
}

// NewCalculator builds a calculator from configuration.
func NewCalculator(cfg *config.PricingConfig) *Calculator {
	return &Calculator{
		StandardFee:      cfg.StandardFee,
		ExpressFee:       cfg.ExpressFee,
		OvernightFee:     cfg.OvernightFee,
		FreeShippingOver: cfg.FreeShippingOver,
		TaxRate:          cfg.TaxRate,
	}
}

// Quote is the priced breakdown for one checkout. Components are kept at full
// float64 precision; Round2 is applied only at the display/persistence edge.
type Quote struct {
	Subtotal     float64 `json:"subtotal"`
	ShippingCost float64 `json:"shippingCost"`
	Tax          float64 `json:"tax"`
	Total        float64 `json:"total"`
}

// ShippingCost returns the fee for the given method. Standard shipping is free
// when the subtotal strictly exceeds the free-shipping threshold; at the
// threshold exactly the flat fee still applies. Unknown methods price as
// standard.
func (c *Calculator) ShippingCost(subtotal float64, method string) float64 {
	switch method {
	case "express":
		return c.ExpressFee
	case "overnight":
		return c.OvernightFee
	default:
		if subtotal > c.FreeShippingOver {
			return 0
		}
		return c.StandardFee
	}
}

// Tax applies the flat tax rate to the subtotal.
func (c *Calculator) Tax(subtotal float64) float64 {
	return subtotal * c.TaxRate
}

// QuoteFor prices a subtotal under the given shipping method.
func (c *Calculator) QuoteFor(subtotal float64, method string) Quote {
	shipping := c.ShippingCost(subtotal, method)
	tax := c.Tax(subtotal)
	return Quote{
		Subtotal:     subtotal,
		ShippingCost: shipping,
		Tax:          tax,
		Total:        subtotal + shipping + tax,
	}
}

// Rounded returns the quote with every component rounded to two decimals.
func (q Quote) Rounded() Quote {
	return Quote{
		Subtotal:     Round2(q.Subtotal),
		ShippingCost: Round2(q.ShippingCost),
		Tax:          Round2(q.Tax),
		Total:        Round2(q.Total),
	}
}

// Round2 rounds to two decimal places for display and persistence.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
