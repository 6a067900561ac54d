package notification

import (
	"context"

	"bookify/models"
	"bookify/utils"

	"go.uber.org/zap"
)

// NotificationService fans out lifecycle events to customers, providers and
// operators. Delivery is best-effort: callers log failures and never roll back
// the triggering operation.
type NotificationService interface {
	BookingConfirmed(ctx context.Context, booking *models.Booking)
	BookingCancelled(ctx context.Context, booking *models.Booking)
	PayoutCompleted(ctx context.Context, schedule *models.PayoutSchedule)
	// AlertOperator flags a condition needing human attention, e.g. a payout
	// that exhausted its retries or a refund the payment provider rejected.
	AlertOperator(ctx context.Context, subject, detail string)
}

// DefaultNotificationService writes events to the structured log. Outbound
// channels (email, push) hang off this same interface.
type DefaultNotificationService struct{}

// NewNotificationService returns the log-backed notification service.
func NewNotificationService() *DefaultNotificationService {
	return &DefaultNotificationService{}
}

func (s *DefaultNotificationService) BookingConfirmed(ctx context.Context, booking *models.Booking) {
	utils.GetLogger().Info("booking confirmed",
		zap.String("bookingID", booking.ID),
		zap.String("providerID", booking.ProviderID),
		zap.String("confirmationCode", booking.ConfirmationCode))
}

func (s *DefaultNotificationService) BookingCancelled(ctx context.Context, booking *models.Booking) {
	utils.GetLogger().Info("booking cancelled",
		zap.String("bookingID", booking.ID),
		zap.String("cancelledBy", booking.CancelledBy),
		zap.Float64("cancellationFee", booking.CancellationFee))
}

func (s *DefaultNotificationService) PayoutCompleted(ctx context.Context, schedule *models.PayoutSchedule) {
	utils.GetLogger().Info("payout completed",
		zap.String("payoutID", schedule.ID),
		zap.String("providerID", schedule.ProviderID),
		zap.String("transferID", schedule.TransferID),
		zap.Float64("amount", schedule.Amount))
}

func (s *DefaultNotificationService) AlertOperator(ctx context.Context, subject, detail string) {
	utils.GetLogger().Warn("operator alert",
		zap.String("subject", subject),
		zap.String("detail", detail))
}
