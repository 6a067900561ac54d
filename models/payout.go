package models

import "time"

// PayoutStatus is a payout schedule state. Payout rows are mutated only by the
// payout scheduler's own claim-then-act sequence.
type PayoutStatus string

const (
	PayoutScheduled  PayoutStatus = "SCHEDULED"
	PayoutProcessing PayoutStatus = "PROCESSING"
	PayoutCompleted  PayoutStatus = "COMPLETED"
	PayoutFailed     PayoutStatus = "FAILED"
	PayoutCancelled  PayoutStatus = "CANCELLED"
)

// PayoutSchedule escrows a provider's net payout after booking completion
// until the escrow window elapses, then tracks the external transfer.
type PayoutSchedule struct {
	ID            string       `bson:"id" json:"id"`
	BookingID     string       `bson:"booking_id" json:"booking_id"` // unique per booking
	ProviderID    string       `bson:"provider_id" json:"provider_id"`
	Amount        float64      `bson:"amount" json:"amount"`
	Currency      string       `bson:"currency" json:"currency"`
	ScheduledAt   time.Time    `bson:"scheduled_at" json:"scheduled_at"` // completion time + escrow window
	Status        PayoutStatus `bson:"status" json:"status"`
	RetryCount    int          `bson:"retry_count" json:"retry_count"`
	TransferID    string       `bson:"transfer_id,omitempty" json:"transfer_id,omitempty"`   // external transfer id once completed
	CompletedBy   string       `bson:"completed_by,omitempty" json:"completed_by,omitempty"` // operator for manual reconciliation
	FailureReason string       `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`
	LastAttemptAt *time.Time   `bson:"last_attempt_at,omitempty" json:"last_attempt_at,omitempty"`
	CreatedAt     time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `bson:"updated_at" json:"updated_at"`
}
