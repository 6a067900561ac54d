package payout

import (
	"context"

	payoutRepo "bookify/database/repository/payout"
	providerRepo "bookify/database/repository/provider"
	"bookify/models"
	"bookify/services/notification"
	"bookify/utils"

	"golang.org/x/time/rate"
)

// Service owns the provider payout lifecycle: escrowed scheduling after
// booking completion, due processing with retry backoff, and operator
// overrides for manual reconciliation.
type Service interface {
	// Schedule creates the payout schedule for a completed booking, due after
	// the escrow window. Scheduling is idempotent per booking: a second call
	// returns the existing schedule.
	Schedule(ctx context.Context, booking *models.Booking) (*models.PayoutSchedule, error)
	// ProcessDue claims and processes due payouts one at a time until none
	// remain or the batch limit is reached. Returns counts of completed,
	// rescheduled and failed payouts.
	ProcessDue(ctx context.Context) (ProcessReport, error)
	// MarkCompletedManually records an out-of-band transfer made by an
	// operator against a payout stuck in SCHEDULED or PROCESSING.
	MarkCompletedManually(ctx context.Context, payoutID string, req models.ManualPayoutRequest) (*models.PayoutSchedule, error)
	// GetByID retrieves a payout schedule.
	GetByID(ctx context.Context, payoutID string) (*models.PayoutSchedule, error)
	// ListByProvider returns a provider's payout schedules, newest first.
	ListByProvider(ctx context.Context, providerID string) ([]models.PayoutSchedule, error)
}

// ProcessReport summarizes one ProcessDue pass.
type ProcessReport struct {
	Completed   int `json:"completed"`
	Rescheduled int `json:"rescheduled"`
	Failed      int `json:"failed"`
}

// DefaultPayoutService implements Service.
type DefaultPayoutService struct {
	Repo      payoutRepo.PayoutRepository
	Providers providerRepo.ProviderRepository
	Transfer  TransferClient
	Backoff   BackoffPolicy
	Notifier  notification.NotificationService
	Clock     utils.Clock

	// EscrowDays delays the payout after booking completion.
	EscrowDays int
	// BatchSize caps payouts handled in one ProcessDue pass.
	BatchSize int
	// MaxRetries bounds transient-failure retries before terminal failure.
	MaxRetries int
	// Limiter throttles outbound transfer calls across the batch.
	Limiter *rate.Limiter
}
