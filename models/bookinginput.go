package models

// CreateBookingRequest carries everything the booking transaction coordinator
// needs to create a booking.
type CreateBookingRequest struct {
	ProviderID       string  `json:"provider_id" binding:"required"`
	CustomerID       string  `json:"customer_id"`
	GuestEmail       string  `json:"guest_email"`
	Date             string  `json:"date" binding:"required"` // "YYYY-MM-DD"
	Start            int     `json:"start"`                   // minutes from midnight
	End              int     `json:"end"`                     // minutes from midnight
	TotalAmount      float64 `json:"total_amount"`
	PlatformFee      float64 `json:"platform_fee"`
	ProviderPayout   float64 `json:"provider_payout"`
	Currency         string  `json:"currency"`
	ChargeID         string  `json:"charge_id"`
	ConfirmationCode string  `json:"confirmation_code"` // generated when absent
	LockID           string  `json:"lock_id"`           // advisory slot lock to release on success
}

// TransitionRequest asks the state machine for a status change.
type TransitionRequest struct {
	To          BookingStatus `json:"to" binding:"required"`
	TriggeredBy string        `json:"triggered_by"`
	Reason      string        `json:"reason"`
}

// AcquireLockRequest claims a short-lived advisory lock on a slot during checkout.
type AcquireLockRequest struct {
	ProviderID string `json:"provider_id" binding:"required"`
	Date       string `json:"date" binding:"required"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	SessionID  string `json:"session_id" binding:"required"`
}

// ManualPayoutRequest records an out-of-band transfer against a payout for
// operator reconciliation.
type ManualPayoutRequest struct {
	TransferID string `json:"transfer_id" binding:"required"`
	Operator   string `json:"operator" binding:"required"`
}
