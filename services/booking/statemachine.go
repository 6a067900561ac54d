package booking

import (
	"time"

	"bookify/models"
	"bookify/utils"
)

// allowedTransitions is the exhaustive lifecycle table. A status missing a
// target here cannot reach it through any API path.
var allowedTransitions = map[models.BookingStatus][]models.BookingStatus{
	models.BookingPending: {
		models.BookingConfirmed,
		models.BookingCancelled,
		models.BookingPaymentFailed,
	},
	models.BookingConfirmed: {
		models.BookingInProgress,
		models.BookingCancelled,
		models.BookingNoShow,
	},
	models.BookingInProgress: {
		models.BookingCompleted,
		models.BookingCancelled,
	},
	models.BookingCompleted: {
		models.BookingRefunded,
	},
	models.BookingNoShow: {
		models.BookingRefunded,
	},
	models.BookingPaymentFailed: {
		models.BookingPending,
		models.BookingCancelled,
	},
	models.BookingCancelled: {
		models.BookingRefunded,
	},
	// Terminal.
	models.BookingRefunded: {},
}

// CanTransition reports whether the lifecycle table permits from -> to.
func CanTransition(from, to models.BookingStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// cancellationFee returns the fee owed for cancelling b at now. Only
// CONFIRMED bookings cancelled inside the late window incur a fee; PENDING
// bookings were never committed to and always cancel free. The booking's
// wall-clock start is resolved in the provider's timezone, since that is the
// zone its date and minutes are expressed in.
func (s *DefaultBookingService) cancellationFee(b *models.Booking, now time.Time, loc *time.Location) float64 {
	if b.Status != models.BookingConfirmed {
		return 0
	}
	start, err := utils.SlotStartTime(b.Date, b.Start, loc)
	if err != nil {
		return 0
	}
	window := time.Duration(s.CancellationWindowHours) * time.Hour
	if start.Sub(now) >= window {
		return 0
	}
	return roundMoney(b.TotalAmount * s.CancellationFeeRate)
}

func roundMoney(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
