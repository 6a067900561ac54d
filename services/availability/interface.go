package availability

import (
	"context"

	"bookify/models"
)

// Service computes bookable time slots from recurring schedules, blocked-date
// overrides and existing bookings. Results are a derived projection: they are
// cached with an expiry and never treated as booking ground truth.
type Service interface {
	// GetAvailableSlots returns ordered slots for each date in the inclusive
	// range [fromDate, toDate]. A duration of 0 uses the configured default.
	GetAvailableSlots(ctx context.Context, providerID, fromDate, toDate string, duration int) ([]models.TimeSlot, error)
	// GetDaySlots returns the slots for one date, bypassing nothing: cache is
	// consulted first, then recomputed from the database.
	GetDaySlots(ctx context.Context, providerID, date string, duration int) ([]models.TimeSlot, error)
	// FindAlternativeSlots returns up to limit available slots on the date
	// that do not overlap [start,end), for offering after a conflict.
	FindAlternativeSlots(ctx context.Context, providerID, date string, start, end, duration, limit int) ([]models.TimeSlot, error)
	// Invalidate drops the cached slots for a provider/date. Called on every
	// booking mutation and lock acquisition or release.
	Invalidate(ctx context.Context, providerID, date string) error
}
