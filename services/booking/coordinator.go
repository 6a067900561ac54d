package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "bookify/database/repository/booking"
	"bookify/models"
	"bookify/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateBooking runs the full booking protocol: request validation, then a
// single database transaction that re-checks conflicts, validates the window
// against the provider's schedule and inserts the booking with its slot
// claims. Advisory locks and cached availability are never trusted here; only
// what this transaction observes counts.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.Booking, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	provider, err := s.Providers.GetByID(ctx, req.ProviderID)
	if err != nil {
		return nil, err
	}
	if !provider.Active {
		return nil, &models.ValidationError{Reason: "provider is not accepting bookings"}
	}

	booking, err := s.buildBooking(req)
	if err != nil {
		return nil, err
	}

	err = s.Repo.WithTx(ctx, func(txCtx context.Context) error {
		blocking, err := s.Repo.FindBlocking(txCtx, req.ProviderID, req.Date, req.Start, req.End)
		if err != nil {
			return fmt.Errorf("conflict check: %w", err)
		}
		if blocking != nil {
			return &models.ConflictError{BookingID: blocking.ID, Reason: "requested time overlaps an existing booking"}
		}

		if err := validateWithinWindows(provider, req.Date, req.Start, req.End); err != nil {
			return err
		}

		blocks, err := s.Providers.GetBlockedSlots(txCtx, req.ProviderID, req.Date)
		if err != nil {
			return fmt.Errorf("blocked-slot check: %w", err)
		}
		for _, b := range blocks {
			if b.Intersects(req.Start, req.End) {
				return &models.ValidationError{Reason: "requested time falls in a blocked period"}
			}
		}

		if err := s.Repo.InsertClaims(txCtx, booking); err != nil {
			if errors.Is(err, bookingRepo.ErrClaimTaken) {
				// A concurrent transaction won the slot between our conflict
				// check and the claim write. The unique claim index is the
				// final arbiter.
				return &models.ConflictError{Reason: "slot was claimed by a concurrent booking"}
			}
			return fmt.Errorf("insert slot claims: %w", err)
		}

		if err := s.Repo.InsertBooking(txCtx, booking); err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Post-commit housekeeping is best-effort: the booking already exists.
	if cacheErr := s.Availability.Invalidate(ctx, booking.ProviderID, booking.Date); cacheErr != nil {
		utils.GetLogger().Warn("availability cache invalidation failed",
			zap.String("providerID", booking.ProviderID), zap.Error(cacheErr))
	}
	if req.LockID != "" {
		if lockErr := s.Locks.Release(ctx, req.LockID); lockErr != nil {
			utils.GetLogger().Warn("slot lock release failed",
				zap.String("lockID", req.LockID), zap.Error(lockErr))
		}
	}

	utils.GetLogger().Info("booking created",
		zap.String("bookingID", booking.ID),
		zap.String("providerID", booking.ProviderID),
		zap.String("date", booking.Date),
		zap.String("slot", fmt.Sprintf("%s-%s", utils.MinutesToClock(booking.Start), utils.MinutesToClock(booking.End))))
	return booking, nil
}

func validateCreateRequest(req models.CreateBookingRequest) error {
	if _, err := time.Parse(utils.DateLayout, req.Date); err != nil {
		return &models.ValidationError{Reason: "date must be formatted as YYYY-MM-DD"}
	}
	if req.Start < 0 || req.End > 24*60 || req.Start >= req.End {
		return &models.ValidationError{Reason: "start and end must form a valid same-day range"}
	}
	if req.CustomerID == "" && req.GuestEmail == "" {
		return &models.ValidationError{Reason: "either customer_id or guest_email is required"}
	}
	if req.TotalAmount < 0 || req.PlatformFee < 0 || req.ProviderPayout < 0 {
		return &models.ValidationError{Reason: "amounts cannot be negative"}
	}
	return nil
}

// validateWithinWindows requires the requested range to sit entirely inside
// one recurring window for the date's weekday. Windows never combine: a range
// straddling two adjacent windows is rejected.
func validateWithinWindows(provider *models.Provider, date string, start, end int) error {
	day, err := time.Parse(utils.DateLayout, date)
	if err != nil {
		return &models.ValidationError{Reason: "date must be formatted as YYYY-MM-DD"}
	}
	for _, w := range provider.WindowsForWeekday(day.Weekday()) {
		if w.Start <= start && end <= w.End {
			return nil
		}
	}
	return &models.ValidationError{Reason: "requested time is outside the provider's availability"}
}

func (s *DefaultBookingService) buildBooking(req models.CreateBookingRequest) (*models.Booking, error) {
	code := req.ConfirmationCode
	if code == "" {
		generated, err := GenerateConfirmationCode()
		if err != nil {
			return nil, err
		}
		code = generated
	}

	total := req.TotalAmount
	fee := req.PlatformFee
	pay := req.ProviderPayout
	if fee == 0 && pay == 0 && total > 0 {
		fee = roundMoney(total * s.PlatformFeeRate)
		pay = roundMoney(total - fee)
	}

	now := s.Clock.Now()
	return &models.Booking{
		ID:               uuid.NewString(),
		ProviderID:       req.ProviderID,
		CustomerID:       req.CustomerID,
		GuestEmail:       req.GuestEmail,
		Date:             req.Date,
		Start:            req.Start,
		End:              req.End,
		Status:           models.BookingPending,
		TotalAmount:      total,
		PlatformFee:      fee,
		ProviderPayout:   pay,
		Currency:         req.Currency,
		ConfirmationCode: code,
		ChargeID:         req.ChargeID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Transition applies one lifecycle change. The status flip, its field effects
// and the audit record commit in a single transaction guarded by a
// compare-and-set on the expected current status.
func (s *DefaultBookingService) Transition(ctx context.Context, bookingID string, req models.TransitionRequest) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	from := b.Status
	to := req.To
	if !CanTransition(from, to) {
		return nil, &models.InvalidTransitionError{From: from, To: to}
	}

	now := s.Clock.Now()
	fx := bookingRepo.TransitionEffects{}
	var fee float64
	switch to {
	case models.BookingCancelled:
		prov, provErr := s.Providers.GetByID(ctx, b.ProviderID)
		if provErr != nil {
			return nil, provErr
		}
		fee = s.cancellationFee(b, now, prov.Location())
		fx.CancelledAt = &now
		fx.CancelledBy = req.TriggeredBy
		fx.CancellationReason = req.Reason
		fx.CancellationFee = &fee
		fx.ReleaseClaims = true
	case models.BookingRefunded:
		fx.ReleaseClaims = true
	case models.BookingCompleted:
		fx.CompletedAt = &now
	}

	triggeredBy := req.TriggeredBy
	if triggeredBy == "" {
		triggeredBy = "system"
	}
	rec := &models.BookingStateTransition{
		ID:          uuid.NewString(),
		BookingID:   bookingID,
		FromStatus:  from,
		ToStatus:    to,
		TriggeredBy: triggeredBy,
		Reason:      req.Reason,
		CreatedAt:   now,
	}

	err = s.Repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.Repo.UpdateStatusCAS(txCtx, bookingID, from, to, fx, now); err != nil {
			return err
		}
		if fx.ReleaseClaims {
			if err := s.Repo.DeleteClaims(txCtx, bookingID); err != nil {
				return fmt.Errorf("release slot claims: %w", err)
			}
		}
		return s.Repo.InsertTransition(txCtx, rec)
	})
	if err != nil {
		if errors.Is(err, bookingRepo.ErrStaleStatus) {
			// Someone else moved the booking first; report against its
			// current status.
			if fresh, fErr := s.Repo.GetByID(ctx, bookingID); fErr == nil {
				return nil, &models.InvalidTransitionError{From: fresh.Status, To: to}
			}
			return nil, &models.InvalidTransitionError{From: from, To: to}
		}
		return nil, err
	}

	b.Status = to
	b.UpdatedAt = now
	switch to {
	case models.BookingCancelled:
		b.CancelledAt = &now
		b.CancelledBy = req.TriggeredBy
		b.CancellationReason = req.Reason
		b.CancellationFee = fee
	case models.BookingCompleted:
		b.CompletedAt = &now
	}

	s.applyPostCommitEffects(ctx, b, from, to, fee)

	utils.GetLogger().Info("booking transitioned",
		zap.String("bookingID", bookingID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("triggeredBy", triggeredBy))
	return b, nil
}

// applyPostCommitEffects runs the side effects that live outside the
// transaction: cache invalidation, refunds, payout scheduling and
// notifications. Failures here are logged and surfaced to operators; the
// committed transition is never rolled back.
func (s *DefaultBookingService) applyPostCommitEffects(ctx context.Context, b *models.Booking, from, to models.BookingStatus, fee float64) {
	switch to {
	case models.BookingConfirmed:
		s.Notifier.BookingConfirmed(ctx, b)

	case models.BookingCancelled:
		if err := s.Availability.Invalidate(ctx, b.ProviderID, b.Date); err != nil {
			utils.GetLogger().Warn("availability cache invalidation failed",
				zap.String("providerID", b.ProviderID), zap.Error(err))
		}
		if b.ChargeID != "" && (from == models.BookingConfirmed || from == models.BookingInProgress) {
			s.refundAfterCancel(ctx, b, fee)
		}
		s.Notifier.BookingCancelled(ctx, b)

	case models.BookingCompleted:
		if _, err := s.Payouts.Schedule(ctx, b); err != nil {
			utils.GetLogger().Error("payout scheduling failed",
				zap.String("bookingID", b.ID), zap.Error(err))
			s.Notifier.AlertOperator(ctx, "payout scheduling failed",
				fmt.Sprintf("booking %s completed but payout could not be scheduled: %v", b.ID, err))
		}

	case models.BookingRefunded:
		if err := s.Availability.Invalidate(ctx, b.ProviderID, b.Date); err != nil {
			utils.GetLogger().Warn("availability cache invalidation failed",
				zap.String("providerID", b.ProviderID), zap.Error(err))
		}
	}
}

func (s *DefaultBookingService) refundAfterCancel(ctx context.Context, b *models.Booking, fee float64) {
	amount := roundMoney(b.TotalAmount - fee)
	if amount <= 0 {
		return
	}
	refundID, err := s.Payments.Refund(ctx, RefundRequest{
		BookingID:      b.ID,
		ChargeID:       b.ChargeID,
		Amount:         amount,
		IdempotencyKey: "refund-" + b.ID,
		Reason:         "booking cancelled",
	})
	if err != nil {
		utils.GetLogger().Error("refund failed",
			zap.String("bookingID", b.ID), zap.Error(err))
		s.Notifier.AlertOperator(ctx, "refund failed",
			fmt.Sprintf("booking %s cancelled but refund of %.2f failed: %v", b.ID, amount, err))
		return
	}
	utils.GetLogger().Info("refund issued",
		zap.String("bookingID", b.ID),
		zap.String("refundID", refundID),
		zap.Float64("amount", amount))
}

// Cancel is a convenience wrapper over Transition to CANCELLED.
func (s *DefaultBookingService) Cancel(ctx context.Context, bookingID, cancelledBy, reason string) (*models.Booking, error) {
	return s.Transition(ctx, bookingID, models.TransitionRequest{
		To:          models.BookingCancelled,
		TriggeredBy: cancelledBy,
		Reason:      reason,
	})
}

func (s *DefaultBookingService) GetByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.Repo.GetByID(ctx, bookingID)
}

func (s *DefaultBookingService) GetByConfirmationCode(ctx context.Context, code string) (*models.Booking, error) {
	return s.Repo.GetByConfirmationCode(ctx, code)
}

func (s *DefaultBookingService) GetTransitions(ctx context.Context, bookingID string) ([]models.BookingStateTransition, error) {
	return s.Repo.ListTransitions(ctx, bookingID)
}
