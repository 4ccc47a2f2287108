// Package payment defines the verification step behind the order paid
// transition, so a real payment provider can replace the stub without
// touching checkout.
package payment

import (
	"context"
	"errors"

	"github.com/example/keebstore/pkg/models"
)

var ErrPaymentNotCompleted = errors.New("payment is not completed")

// Verifier checks a client-submitted payment result before an order is
// marked paid.
type Verifier interface {
	Verify(ctx context.Context, orderID string, result models.PaymentResult) error
}

// TrustedVerifier accepts any completed payment result as-is. It reproduces
// the behavior of the stubbed payment capture; swap it for a provider-backed
// Verifier to get real verification.
type TrustedVerifier struct{}

func NewTrustedVerifier() *TrustedVerifier {
	return &TrustedVerifier{}
}

func (TrustedVerifier) Verify(ctx context.Context, orderID string, result models.PaymentResult) error {
	if result.ID == "" {
		return ErrPaymentNotCompleted
	}
	if result.Status != "completed" && result.Status != "COMPLETED" {
		return ErrPaymentNotCompleted
	}
	return nil
}
