package bookingRepo

import (
	"context"
	"errors"
	"time"

	"bookify/models"
)

// ErrStaleStatus reports a compare-and-set status update that matched no
// document because the booking's status changed concurrently.
var ErrStaleStatus = errors.New("booking status changed concurrently")

// TransitionEffects carries the field updates applied atomically alongside a
// status change.
type TransitionEffects struct {
	CancelledAt        *time.Time
	CancelledBy        string
	CancellationReason string
	CancellationFee    *float64
	CompletedAt        *time.Time
	// ReleaseClaims drops the booking's slot claims so the window becomes
	// bookable again.
	ReleaseClaims bool
}

// BookingRepository defines data access for bookings, their slot claims and
// the append-only transition audit log. The transactional methods must be
// called inside WithTx so that the conflict check and insert serialize against
// concurrent coordinators.
type BookingRepository interface {
	// WithTx runs fn inside a single database transaction. The context passed
	// to fn carries the session and must be used for every call within it.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	// FindBlocking returns the first non-cancelled booking whose range
	// overlaps [start,end) on the provider's date, or nil.
	FindBlocking(ctx context.Context, providerID, date string, start, end int) (*models.Booking, error)
	// InsertClaims writes one slot-claim document per minute of the
	// booking's range. A duplicate key means a concurrent transaction already
	// claimed an overlapping minute; it is returned as ErrClaimTaken.
	InsertClaims(ctx context.Context, booking *models.Booking) error
	// InsertBooking persists a new booking row.
	InsertBooking(ctx context.Context, booking *models.Booking) error
	// DeleteClaims removes all slot claims held by a booking.
	DeleteClaims(ctx context.Context, bookingID string) error

	// UpdateStatusCAS sets the booking's status from an expected current value
	// and applies the transition effects, stamping updated_at with at. Returns
	// ErrStaleStatus when the expected status no longer matches.
	UpdateStatusCAS(ctx context.Context, bookingID string, from, to models.BookingStatus, fx TransitionEffects, at time.Time) error
	// InsertTransition appends one immutable state-transition audit record.
	InsertTransition(ctx context.Context, rec *models.BookingStateTransition) error
	// ListTransitions returns a booking's audit trail in chronological order.
	ListTransitions(ctx context.Context, bookingID string) ([]models.BookingStateTransition, error)

	// GetByID retrieves a booking by id.
	GetByID(ctx context.Context, bookingID string) (*models.Booking, error)
	// GetByConfirmationCode retrieves a booking by its confirmation code.
	GetByConfirmationCode(ctx context.Context, code string) (*models.Booking, error)
	// ListForDate returns all bookings for a provider on a date, any status.
	ListForDate(ctx context.Context, providerID, date string) ([]models.Booking, error)
	// ListByCustomer returns a customer's bookings, newest first.
	ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error)

	// EnsureIndexes creates the collection indexes, including the unique
	// slot-claim index that backstops conflict detection.
	EnsureIndexes() error
}

// ErrClaimTaken reports that an overlapping slot claim already exists.
var ErrClaimTaken = errors.New("slot claim already held")
