package models

import "time"

// TimeSlot is a derived, ephemeral projection of a bookable interval. It is
// never persisted as ground truth, only cached with an expiry.
type TimeSlot struct {
	Date      string `json:"date"`
	Start     int    `json:"start"` // minutes from midnight
	End       int    `json:"end"`   // minutes from midnight
	Available bool   `json:"available"`
}

// Overlaps applies the half-open overlap test against [start,end).
func (t TimeSlot) Overlaps(start, end int) bool {
	return t.Start < end && start < t.End
}

// SlotLock is a transient, TTL-bound reservation expressing checkout intent on
// a slot. It reduces contention; it never substitutes for the transactional
// conflict check.
type SlotLock struct {
	ID          string    `json:"id"`
	ProviderID  string    `json:"provider_id"`
	Date        string    `json:"date"`
	Start       int       `json:"start"`
	End         int       `json:"end"`
	SessionID   string    `json:"session_id"`
	LockedUntil time.Time `json:"locked_until"`
}

// SlotClaim is one claimed minute of a booking's range. Claims carry the
// unique index that serializes concurrent booking attempts on the same window.
type SlotClaim struct {
	ProviderID string `bson:"provider_id"`
	Date       string `bson:"date"`
	Start      int    `bson:"start"` // claimed minute from midnight
	BookingID  string `bson:"booking_id"`
}

// ClaimMinutes enumerates every minute of the half-open range [start,end).
// Two ranges share a minute exactly when s1 < e2 && s2 < e1 holds, so the
// unique claim index rejects precisely the overlapping booking attempts and
// never an adjacent one, whatever the boundary alignment.
func ClaimMinutes(start, end int) []int {
	minutes := make([]int, 0, end-start)
	for m := start; m < end; m++ {
		minutes = append(minutes, m)
	}
	return minutes
}
