package booking

import (
	"context"

	bookingRepo "bookify/database/repository/booking"
	providerRepo "bookify/database/repository/provider"
	"bookify/models"
	"bookify/services/availability"
	"bookify/services/notification"
	"bookify/services/payout"
	"bookify/services/slotlock"
	"bookify/utils"
)

// Service is the authoritative gate for creating bookings and driving their
// lifecycle. All status changes flow through the transition table; nothing
// writes booking status directly.
type Service interface {
	// CreateBooking re-validates and creates a booking inside one database
	// transaction. It returns ConflictError when the window is taken and
	// ValidationError when it lies outside the provider's schedule.
	CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.Booking, error)
	// Transition applies a lifecycle status change with its side effects,
	// writing one immutable audit record.
	Transition(ctx context.Context, bookingID string, req models.TransitionRequest) (*models.Booking, error)
	// Cancel is shorthand for a transition to CANCELLED.
	Cancel(ctx context.Context, bookingID, cancelledBy, reason string) (*models.Booking, error)
	// GetByID retrieves a booking.
	GetByID(ctx context.Context, bookingID string) (*models.Booking, error)
	// GetByConfirmationCode retrieves a booking by its human-facing code.
	GetByConfirmationCode(ctx context.Context, code string) (*models.Booking, error)
	// GetTransitions returns a booking's audit trail.
	GetTransitions(ctx context.Context, bookingID string) ([]models.BookingStateTransition, error)
}

// DefaultBookingService implements Service.
type DefaultBookingService struct {
	Repo         bookingRepo.BookingRepository
	Providers    providerRepo.ProviderRepository
	Availability availability.Service
	Locks        slotlock.Service
	Payments     PaymentHandler
	Payouts      payout.Service
	Notifier     notification.NotificationService
	Clock        utils.Clock

	// PlatformFeeRate splits the total when the caller provides no breakdown.
	PlatformFeeRate float64
	// CancellationWindowHours is the late-cancellation boundary before start.
	CancellationWindowHours int
	// CancellationFeeRate applies to CONFIRMED bookings cancelled inside the window.
	CancellationFeeRate float64
}
