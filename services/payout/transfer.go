package payout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"bookify/models"
	"bookify/utils"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/transfer"
	"go.uber.org/zap"
)

// TransferRequest describes one outbound payout transfer.
type TransferRequest struct {
	PayoutID       string
	DestinationID  string // provider's connected account
	Amount         float64
	Currency       string
	IdempotencyKey string
}

// TransferClient moves money to a provider's account. Implementations must
// honor the idempotency key so that a retried request never double-pays, and
// classify failures as TransientProviderError or PermanentProviderError.
type TransferClient interface {
	CreateTransfer(ctx context.Context, req TransferRequest) (string, error)
}

// StripeTransferClient implements TransferClient against Stripe Connect.
type StripeTransferClient struct {
	// Timeout bounds each transfer call.
	Timeout time.Duration
}

// NewStripeTransferClient returns a transfer client with the given per-call timeout.
func NewStripeTransferClient(timeout time.Duration) *StripeTransferClient {
	return &StripeTransferClient{Timeout: timeout}
}

func (c *StripeTransferClient) CreateTransfer(ctx context.Context, req TransferRequest) (string, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	params := &stripe.TransferParams{
		Amount:      stripe.Int64(toCents(req.Amount)),
		Currency:    stripe.String(req.Currency),
		Destination: stripe.String(req.DestinationID),
	}
	params.IdempotencyKey = stripe.String(req.IdempotencyKey)
	params.Context = ctx

	t, err := transfer.New(params)
	if err != nil {
		return "", classifyTransferError(err)
	}

	utils.GetLogger().Info("transfer created",
		zap.String("payoutID", req.PayoutID),
		zap.String("transferID", t.ID),
		zap.Float64("amount", req.Amount))
	return t.ID, nil
}

// classifyTransferError splits provider failures into retryable and terminal.
// Rate limits, 5xx responses and transport errors are transient; request and
// account errors will fail the same way on every retry.
func classifyTransferError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode == 429 || stripeErr.HTTPStatusCode >= 500 {
			return &models.TransientProviderError{Op: "transfer", Err: err}
		}
		return &models.PermanentProviderError{Op: "transfer", Err: err}
	}
	// Anything without a provider response is network-shaped: timeouts,
	// connection resets, cancelled contexts.
	return &models.TransientProviderError{Op: "transfer", Err: fmt.Errorf("transport: %w", err)}
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
