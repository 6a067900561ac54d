package models

import "time"

// BookingStatus is a booking lifecycle state. Transitions are governed
// exclusively by the booking state machine.
type BookingStatus string

const (
	BookingPending       BookingStatus = "PENDING"
	BookingConfirmed     BookingStatus = "CONFIRMED"
	BookingInProgress    BookingStatus = "IN_PROGRESS"
	BookingCompleted     BookingStatus = "COMPLETED"
	BookingCancelled     BookingStatus = "CANCELLED"
	BookingNoShow        BookingStatus = "NO_SHOW"
	BookingRefunded      BookingStatus = "REFUNDED"
	BookingPaymentFailed BookingStatus = "PAYMENT_FAILED"
)

// BlocksSlot reports whether a booking in this status still occupies its time
// range for conflict detection.
func (s BookingStatus) BlocksSlot() bool {
	return s != BookingCancelled && s != BookingRefunded
}

// Booking represents a confirmed or pending appointment. Bookings are never
// hard-deleted; cancellation is a status.
type Booking struct {
	ID               string        `bson:"id" json:"id"`
	ProviderID       string        `bson:"provider_id" json:"provider_id"`
	CustomerID       string        `bson:"customer_id,omitempty" json:"customer_id,omitempty"`
	GuestEmail       string        `bson:"guest_email,omitempty" json:"guest_email,omitempty"` // set when no customer account exists
	Date             string        `bson:"date" json:"date"`                                   // "YYYY-MM-DD", provider-local
	Start            int           `bson:"start" json:"start"`                                 // minutes from midnight
	End              int           `bson:"end" json:"end"`                                     // minutes from midnight, same day
	Status           BookingStatus `bson:"status" json:"status"`
	TotalAmount      float64       `bson:"total_amount" json:"total_amount"`
	PlatformFee      float64       `bson:"platform_fee" json:"platform_fee"`
	ProviderPayout   float64       `bson:"provider_payout" json:"provider_payout"`
	Currency         string        `bson:"currency" json:"currency"`
	ConfirmationCode string        `bson:"confirmation_code" json:"confirmation_code"`
	ChargeID         string        `bson:"charge_id,omitempty" json:"charge_id,omitempty"` // external charge backing refunds

	CancelledAt        *time.Time `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`
	CancelledBy        string     `bson:"cancelled_by,omitempty" json:"cancelled_by,omitempty"`
	CancellationReason string     `bson:"cancellation_reason,omitempty" json:"cancellation_reason,omitempty"`
	CancellationFee    float64    `bson:"cancellation_fee,omitempty" json:"cancellation_fee,omitempty"`
	CompletedAt        *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
