package payout

import (
	"context"
	"errors"
	"fmt"
	"time"

	payoutRepo "bookify/database/repository/payout"
	"bookify/models"
	"bookify/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Schedule creates the escrowed payout for a completed booking. The due time
// is the completion instant plus the escrow window, never the booking date.
func (s *DefaultPayoutService) Schedule(ctx context.Context, booking *models.Booking) (*models.PayoutSchedule, error) {
	if booking.Status != models.BookingCompleted {
		return nil, &models.ValidationError{Reason: fmt.Sprintf("cannot schedule payout for booking in status %s", booking.Status)}
	}

	completedAt := s.Clock.Now()
	if booking.CompletedAt != nil {
		completedAt = *booking.CompletedAt
	}
	now := s.Clock.Now()

	schedule := &models.PayoutSchedule{
		ID:          uuid.NewString(),
		BookingID:   booking.ID,
		ProviderID:  booking.ProviderID,
		Amount:      booking.ProviderPayout,
		Currency:    booking.Currency,
		ScheduledAt: completedAt.Add(time.Duration(s.EscrowDays) * 24 * time.Hour),
		Status:      models.PayoutScheduled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Repo.Create(ctx, schedule); err != nil {
		if errors.Is(err, payoutRepo.ErrAlreadyScheduled) {
			return s.Repo.GetByBooking(ctx, booking.ID)
		}
		return nil, fmt.Errorf("create payout schedule: %w", err)
	}

	utils.GetLogger().Info("payout scheduled",
		zap.String("payoutID", schedule.ID),
		zap.String("bookingID", booking.ID),
		zap.Time("scheduledAt", schedule.ScheduledAt),
		zap.Float64("amount", schedule.Amount))
	return schedule, nil
}

// ProcessDue drains due payouts one claim at a time. Each claim flips the row
// to PROCESSING before the transfer call, so concurrent workers running the
// same pass never pick up the same payout.
func (s *DefaultPayoutService) ProcessDue(ctx context.Context) (ProcessReport, error) {
	var report ProcessReport
	limit := s.BatchSize
	if limit <= 0 {
		limit = 50
	}

	for i := 0; i < limit; i++ {
		schedule, err := s.Repo.ClaimNextDue(ctx, s.Clock.Now())
		if err != nil {
			if errors.Is(err, payoutRepo.ErrNoneDue) {
				return report, nil
			}
			return report, fmt.Errorf("claim due payout: %w", err)
		}

		if s.Limiter != nil {
			if err := s.Limiter.Wait(ctx); err != nil {
				// Shutdown mid-batch: put the claim back untouched.
				s.requeue(ctx, schedule, "worker stopped before transfer")
				return report, err
			}
		}

		switch s.processOne(ctx, schedule) {
		case outcomeCompleted:
			report.Completed++
		case outcomeRescheduled:
			report.Rescheduled++
		case outcomeFailed:
			report.Failed++
		}
	}
	return report, nil
}

type outcome int

const (
	outcomeCompleted outcome = iota
	outcomeRescheduled
	outcomeFailed
)

func (s *DefaultPayoutService) processOne(ctx context.Context, schedule *models.PayoutSchedule) outcome {
	logger := utils.GetLogger().With(
		zap.String("payoutID", schedule.ID),
		zap.String("providerID", schedule.ProviderID),
		zap.Int("retryCount", schedule.RetryCount))

	provider, err := s.Providers.GetByID(ctx, schedule.ProviderID)
	if err != nil || provider.PayoutAccountID == "" {
		reason := "provider has no payout account"
		if err != nil {
			reason = err.Error()
		}
		now := s.Clock.Now()
		if fErr := s.Repo.MarkFailed(ctx, schedule.ID, reason, now); fErr != nil {
			logger.Error("payout failure write failed", zap.Error(fErr))
		}
		s.Notifier.AlertOperator(ctx, "payout failed",
			fmt.Sprintf("payout %s has no usable destination: %s", schedule.ID, reason))
		return outcomeFailed
	}

	// The key includes the retry count: a retried attempt is a new request,
	// while a duplicate of the same attempt replays the original transfer.
	transferID, err := s.Transfer.CreateTransfer(ctx, TransferRequest{
		PayoutID:       schedule.ID,
		DestinationID:  provider.PayoutAccountID,
		Amount:         schedule.Amount,
		Currency:       schedule.Currency,
		IdempotencyKey: fmt.Sprintf("payout-%s-%d", schedule.ID, schedule.RetryCount),
	})
	now := s.Clock.Now()

	if err == nil {
		if mErr := s.Repo.MarkCompleted(ctx, schedule.ID, transferID, now); mErr != nil {
			logger.Error("transfer succeeded but completion write failed", zap.Error(mErr))
			s.Notifier.AlertOperator(ctx, "payout completion write failed",
				fmt.Sprintf("payout %s transferred as %s but could not be marked completed: %v", schedule.ID, transferID, mErr))
			return outcomeFailed
		}
		schedule.TransferID = transferID
		s.Notifier.PayoutCompleted(ctx, schedule)
		return outcomeCompleted
	}

	var transient *models.TransientProviderError
	if errors.As(err, &transient) && schedule.RetryCount < s.MaxRetries {
		attempt := schedule.RetryCount + 1
		nextAt := now.Add(s.Backoff.Delay(attempt))
		if rErr := s.Repo.Reschedule(ctx, schedule.ID, nextAt, err.Error(), now); rErr != nil {
			logger.Error("payout reschedule failed", zap.Error(rErr))
			return outcomeFailed
		}
		logger.Warn("payout transfer failed, rescheduled",
			zap.Time("nextAt", nextAt), zap.Error(err))
		return outcomeRescheduled
	}

	reason := err.Error()
	if fErr := s.Repo.MarkFailed(ctx, schedule.ID, reason, now); fErr != nil {
		logger.Error("payout failure write failed", zap.Error(fErr))
	}
	logger.Error("payout terminally failed", zap.Error(err))
	s.Notifier.AlertOperator(ctx, "payout failed",
		fmt.Sprintf("payout %s for provider %s failed after %d retries: %s", schedule.ID, schedule.ProviderID, schedule.RetryCount, reason))
	return outcomeFailed
}

// requeue returns a claimed payout to SCHEDULED without consuming a retry's
// backoff step; used when processing stops before the transfer was attempted.
func (s *DefaultPayoutService) requeue(ctx context.Context, schedule *models.PayoutSchedule, reason string) {
	if err := s.Repo.Requeue(ctx, schedule.ID, schedule.ScheduledAt, reason, s.Clock.Now()); err != nil {
		utils.GetLogger().Error("payout requeue failed",
			zap.String("payoutID", schedule.ID), zap.Error(err))
	}
}

// MarkCompletedManually records an operator's out-of-band transfer. The payout
// must still be live; completed or failed payouts are reconciled elsewhere.
func (s *DefaultPayoutService) MarkCompletedManually(ctx context.Context, payoutID string, req models.ManualPayoutRequest) (*models.PayoutSchedule, error) {
	schedule, err := s.Repo.GetByID(ctx, payoutID)
	if err != nil {
		return nil, err
	}
	if schedule.Status != models.PayoutScheduled && schedule.Status != models.PayoutProcessing && schedule.Status != models.PayoutFailed {
		return nil, &models.ValidationError{Reason: fmt.Sprintf("payout in status %s cannot be completed manually", schedule.Status)}
	}

	now := s.Clock.Now()
	if err := s.Repo.MarkCompletedManual(ctx, payoutID, req.TransferID, req.Operator, now); err != nil {
		return nil, err
	}

	utils.GetLogger().Info("payout completed manually",
		zap.String("payoutID", payoutID),
		zap.String("transferID", req.TransferID),
		zap.String("operator", req.Operator))
	return s.Repo.GetByID(ctx, payoutID)
}

func (s *DefaultPayoutService) GetByID(ctx context.Context, payoutID string) (*models.PayoutSchedule, error) {
	return s.Repo.GetByID(ctx, payoutID)
}

func (s *DefaultPayoutService) ListByProvider(ctx context.Context, providerID string) ([]models.PayoutSchedule, error) {
	return s.Repo.ListByProvider(ctx, providerID)
}
