package models

import "time"

// BlockedSlot is a date-specific override blocking part or all of a provider's
// day. A nil Start or End blocks the whole day.
type BlockedSlot struct {
	BlockID    string    `bson:"block_id" json:"block_id"`
	ProviderID string    `bson:"provider_id" json:"provider_id"`
	Date       string    `bson:"date" json:"date"` // e.g. "2026-03-14"
	Start      *int      `bson:"start,omitempty" json:"start,omitempty"`
	End        *int      `bson:"end,omitempty" json:"end,omitempty"`
	Reason     string    `bson:"reason" json:"reason"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// FullDay reports whether the block covers the entire date.
func (b BlockedSlot) FullDay() bool {
	return b.Start == nil || b.End == nil
}

// Intersects reports whether the block intersects the half-open range [start,end).
func (b BlockedSlot) Intersects(start, end int) bool {
	if b.FullDay() {
		return true
	}
	return *b.Start < end && start < *b.End
}
