package models

import "time"

// BookingStateTransition is an append-only audit record of a booking status
// change. Records are written once and never mutated or deleted.
type BookingStateTransition struct {
	ID          string        `bson:"id" json:"id"`
	BookingID   string        `bson:"booking_id" json:"booking_id"`
	FromStatus  BookingStatus `bson:"from_status" json:"from_status"`
	ToStatus    BookingStatus `bson:"to_status" json:"to_status"`
	TriggeredBy string        `bson:"triggered_by" json:"triggered_by"` // customer, provider, operator or system
	Reason      string        `bson:"reason,omitempty" json:"reason,omitempty"`
	CreatedAt   time.Time     `bson:"created_at" json:"created_at"`
}
