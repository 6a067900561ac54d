package payoutRepo

import (
	"context"
	"errors"
	"time"

	"bookify/models"
)

// ErrAlreadyScheduled reports that a payout schedule already exists for the
// booking; scheduling is once per booking.
var ErrAlreadyScheduled = errors.New("payout already scheduled for booking")

// ErrNoneDue reports that no schedule is currently claimable.
var ErrNoneDue = errors.New("no due payout schedules")

// PayoutRepository defines data access for payout schedules. Only the payout
// scheduler mutates payout status, through ClaimNextDue and the Mark/Reschedule
// methods below.
type PayoutRepository interface {
	// Create persists a new payout schedule. A duplicate booking_id returns
	// ErrAlreadyScheduled.
	Create(ctx context.Context, schedule *models.PayoutSchedule) error
	// ClaimNextDue atomically selects one schedule with status SCHEDULED and
	// scheduledAt <= now and flips it to PROCESSING, making the claim visible
	// to concurrent workers before any transfer call. Returns ErrNoneDue when
	// nothing is claimable.
	ClaimNextDue(ctx context.Context, now time.Time) (*models.PayoutSchedule, error)
	// MarkCompleted records the external transfer id and completes the payout.
	MarkCompleted(ctx context.Context, payoutID, transferID string, at time.Time) error
	// MarkCompletedManual completes a live or failed payout against an
	// operator's out-of-band transfer, recording who reconciled it.
	MarkCompletedManual(ctx context.Context, payoutID, transferID, operator string, at time.Time) error
	// Requeue returns a claimed PROCESSING payout to SCHEDULED without
	// touching its retry count; used when a worker stops before attempting
	// the transfer.
	Requeue(ctx context.Context, payoutID string, nextAt time.Time, reason string, at time.Time) error
	// MarkFailed terminally fails the payout with its last failure reason.
	MarkFailed(ctx context.Context, payoutID, reason string, at time.Time) error
	// Reschedule returns a PROCESSING payout to SCHEDULED at a later time,
	// incrementing its retry count and recording the failure reason.
	Reschedule(ctx context.Context, payoutID string, nextAt time.Time, reason string, at time.Time) error

	// GetByID retrieves a payout schedule by id.
	GetByID(ctx context.Context, payoutID string) (*models.PayoutSchedule, error)
	// GetByBooking retrieves the payout schedule for a booking.
	GetByBooking(ctx context.Context, bookingID string) (*models.PayoutSchedule, error)
	// ListByProvider returns a provider's payout schedules, newest first.
	ListByProvider(ctx context.Context, providerID string) ([]models.PayoutSchedule, error)

	// EnsureIndexes creates the collection indexes, including the unique
	// booking_id constraint.
	EnsureIndexes() error
}
