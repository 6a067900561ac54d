package booking

import (
	"context"
	"errors"
	"fmt"
	"math"

	"bookify/models"
	"bookify/utils"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/refund"
	"go.uber.org/zap"
)

// RefundRequest describes one refund against a booking's original charge.
type RefundRequest struct {
	BookingID      string
	ChargeID       string
	Amount         float64
	IdempotencyKey string
	Reason         string
}

// PaymentHandler covers the payment-provider operations the booking lifecycle
// needs. Implementations must honor the idempotency key so that a replayed
// cancellation never refunds twice.
type PaymentHandler interface {
	Refund(ctx context.Context, req RefundRequest) (string, error)
}

// StripePaymentHandler implements PaymentHandler against Stripe.
type StripePaymentHandler struct{}

// NewStripePaymentHandler returns the Stripe-backed payment handler.
func NewStripePaymentHandler() *StripePaymentHandler {
	return &StripePaymentHandler{}
}

func (h *StripePaymentHandler) Refund(ctx context.Context, req RefundRequest) (string, error) {
	params := &stripe.RefundParams{
		Charge: stripe.String(req.ChargeID),
		Amount: stripe.Int64(int64(math.Round(req.Amount * 100))),
	}
	params.IdempotencyKey = stripe.String(req.IdempotencyKey)
	params.Context = ctx

	r, err := refund.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			if stripeErr.HTTPStatusCode == 429 || stripeErr.HTTPStatusCode >= 500 {
				return "", &models.TransientProviderError{Op: "refund", Err: err}
			}
			return "", &models.PermanentProviderError{Op: "refund", Err: err}
		}
		return "", &models.TransientProviderError{Op: "refund", Err: fmt.Errorf("transport: %w", err)}
	}

	utils.GetLogger().Info("refund created",
		zap.String("bookingID", req.BookingID),
		zap.String("refundID", r.ID),
		zap.Float64("amount", req.Amount))
	return r.ID, nil
}
