package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookify/models"
	"bookify/utils"
)

func TestCanTransitionTable(t *testing.T) {
	allowed := []struct{ from, to models.BookingStatus }{
		{models.BookingPending, models.BookingConfirmed},
		{models.BookingPending, models.BookingCancelled},
		{models.BookingPending, models.BookingPaymentFailed},
		{models.BookingConfirmed, models.BookingInProgress},
		{models.BookingConfirmed, models.BookingCancelled},
		{models.BookingConfirmed, models.BookingNoShow},
		{models.BookingInProgress, models.BookingCompleted},
		{models.BookingInProgress, models.BookingCancelled},
		{models.BookingCompleted, models.BookingRefunded},
		{models.BookingNoShow, models.BookingRefunded},
		{models.BookingCancelled, models.BookingRefunded},
		{models.BookingPaymentFailed, models.BookingPending},
		{models.BookingPaymentFailed, models.BookingCancelled},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}

	forbidden := []struct{ from, to models.BookingStatus }{
		{models.BookingPending, models.BookingCompleted},
		{models.BookingPending, models.BookingInProgress},
		{models.BookingConfirmed, models.BookingCompleted},
		{models.BookingConfirmed, models.BookingRefunded},
		{models.BookingCompleted, models.BookingCancelled},
		{models.BookingCancelled, models.BookingConfirmed},
		{models.BookingCancelled, models.BookingPending},
		{models.BookingRefunded, models.BookingCompleted},
		{models.BookingNoShow, models.BookingConfirmed},
	}
	for _, tc := range forbidden {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be rejected", tc.from, tc.to)
		}
	}
}

func seedBooking(env *testEnv, status models.BookingStatus) *models.Booking {
	b := &models.Booking{
		ID:          "bk-1",
		ProviderID:  "prov-1",
		CustomerID:  "cust-1",
		Date:        testDate,
		Start:       600, // 10:00
		End:         660,
		Status:      status,
		TotalAmount: 100,
		PlatformFee: 15, ProviderPayout: 85,
		Currency: "usd",
	}
	_ = env.repo.InsertBooking(context.Background(), b)
	_ = env.repo.InsertClaims(context.Background(), b)
	return b
}

func TestTransitionConfirm(t *testing.T) {
	env := newTestEnv(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	seedBooking(env, models.BookingPending)

	b, err := env.svc.Transition(context.Background(), "bk-1", models.TransitionRequest{
		To: models.BookingConfirmed, TriggeredBy: "customer",
	})
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if b.Status != models.BookingConfirmed {
		t.Errorf("status = %s, want CONFIRMED", b.Status)
	}
	if len(env.notifier.confirmed) != 1 {
		t.Errorf("confirmation notification not sent")
	}
	stored, _ := env.repo.GetByID(context.Background(), "bk-1")
	if want := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC); !stored.UpdatedAt.Equal(want) {
		t.Errorf("updatedAt = %v, want the injected clock time %v", stored.UpdatedAt, want)
	}

	recs, _ := env.repo.ListTransitions(context.Background(), "bk-1")
	if len(recs) != 1 {
		t.Fatalf("expected 1 audit record, got %d", len(recs))
	}
	if recs[0].FromStatus != models.BookingPending || recs[0].ToStatus != models.BookingConfirmed {
		t.Errorf("audit record %s -> %s, want PENDING -> CONFIRMED", recs[0].FromStatus, recs[0].ToStatus)
	}
	if recs[0].TriggeredBy != "customer" {
		t.Errorf("audit triggeredBy = %q", recs[0].TriggeredBy)
	}
}

func TestTransitionIllegal(t *testing.T) {
	env := newTestEnv(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	seedBooking(env, models.BookingPending)

	_, err := env.svc.Transition(context.Background(), "bk-1", models.TransitionRequest{
		To: models.BookingCompleted,
	})
	var invalid *models.InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("got %v, want InvalidTransitionError", err)
	}
	if invalid.From != models.BookingPending || invalid.To != models.BookingCompleted {
		t.Errorf("error reports %s -> %s", invalid.From, invalid.To)
	}
	if recs, _ := env.repo.ListTransitions(context.Background(), "bk-1"); len(recs) != 0 {
		t.Errorf("illegal transition must not write audit records, got %d", len(recs))
	}
}

func TestCancelConfirmedLateIncursFee(t *testing.T) {
	// The booking starts 2026-03-14 10:00; now is 10 hours before.
	env := newTestEnv(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC))
	b := seedBooking(env, models.BookingConfirmed)
	b.ChargeID = "ch_1"
	env.repo.bookings["bk-1"].ChargeID = "ch_1"

	got, err := env.svc.Cancel(context.Background(), "bk-1", "customer", "changed plans")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if got.Status != models.BookingCancelled {
		t.Errorf("status = %s, want CANCELLED", got.Status)
	}
	if got.CancellationFee != 25 {
		t.Errorf("fee = %.2f, want 25 (25%% of 100)", got.CancellationFee)
	}
	if len(env.payments.refunds) != 1 {
		t.Fatalf("expected one refund, got %d", len(env.payments.refunds))
	}
	refund := env.payments.refunds[0]
	if refund.Amount != 75 {
		t.Errorf("refund amount = %.2f, want 75", refund.Amount)
	}
	if refund.IdempotencyKey != "refund-bk-1" {
		t.Errorf("idempotency key = %q", refund.IdempotencyKey)
	}
	if len(env.repo.claims) != 0 {
		t.Errorf("slot claims not released: %d remain", len(env.repo.claims))
	}
	if len(env.notifier.cancelled) != 1 {
		t.Errorf("cancellation notification not sent")
	}
}

func TestCancelConfirmedEarlyIsFree(t *testing.T) {
	// Now is four days before the booking starts.
	env := newTestEnv(time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC))
	seedBooking(env, models.BookingConfirmed)
	env.repo.bookings["bk-1"].ChargeID = "ch_1"

	got, err := env.svc.Cancel(context.Background(), "bk-1", "customer", "")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if got.CancellationFee != 0 {
		t.Errorf("fee = %.2f, want 0", got.CancellationFee)
	}
	if len(env.payments.refunds) != 1 || env.payments.refunds[0].Amount != 100 {
		t.Errorf("expected a full refund of 100, got %+v", env.payments.refunds)
	}
}

func TestCancelPendingNeverIncursFee(t *testing.T) {
	// Inside the late window, but the booking was never confirmed.
	env := newTestEnv(time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC))
	seedBooking(env, models.BookingPending)

	got, err := env.svc.Cancel(context.Background(), "bk-1", "customer", "")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if got.CancellationFee != 0 {
		t.Errorf("fee = %.2f, want 0 for a pending booking", got.CancellationFee)
	}
	if len(env.payments.refunds) != 0 {
		t.Errorf("pending booking without a charge must not refund")
	}
}

func TestCompleteSchedulesPayout(t *testing.T) {
	env := newTestEnv(time.Date(2026, 3, 14, 11, 30, 0, 0, time.UTC))
	seedBooking(env, models.BookingInProgress)

	got, err := env.svc.Transition(context.Background(), "bk-1", models.TransitionRequest{
		To: models.BookingCompleted, TriggeredBy: "provider",
	})
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(time.Date(2026, 3, 14, 11, 30, 0, 0, time.UTC)) {
		t.Errorf("CompletedAt = %v", got.CompletedAt)
	}
	if len(env.payouts.scheduled) != 1 || env.payouts.scheduled[0] != "bk-1" {
		t.Errorf("payout not scheduled: %v", env.payouts.scheduled)
	}
}

func TestPayoutScheduleFailureAlertsOperator(t *testing.T) {
	env := newTestEnv(time.Date(2026, 3, 14, 11, 30, 0, 0, time.UTC))
	seedBooking(env, models.BookingInProgress)
	env.payouts.err = errors.New("payout store down")

	got, err := env.svc.Transition(context.Background(), "bk-1", models.TransitionRequest{
		To: models.BookingCompleted,
	})
	if err != nil {
		t.Fatalf("completion itself must not fail: %v", err)
	}
	if got.Status != models.BookingCompleted {
		t.Errorf("status = %s, want COMPLETED", got.Status)
	}
	if len(env.notifier.alerts) != 1 {
		t.Errorf("expected operator alert, got %v", env.notifier.alerts)
	}
}

func TestRefundFailureDoesNotUndoCancellation(t *testing.T) {
	env := newTestEnv(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC))
	seedBooking(env, models.BookingConfirmed)
	env.repo.bookings["bk-1"].ChargeID = "ch_1"
	env.payments.err = errors.New("provider rejected refund")

	got, err := env.svc.Cancel(context.Background(), "bk-1", "customer", "")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if got.Status != models.BookingCancelled {
		t.Errorf("status = %s, want CANCELLED", got.Status)
	}
	if len(env.notifier.alerts) != 1 {
		t.Errorf("expected operator alert for failed refund, got %v", env.notifier.alerts)
	}
}

func TestTransitionStaleStatus(t *testing.T) {
	env := newTestEnv(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	seedBooking(env, models.BookingPending)

	// A concurrent actor cancels between our read and our CAS.
	env.repo.beforeCAS = func() {
		env.repo.bookings["bk-1"].Status = models.BookingCancelled
	}

	_, err := env.svc.Transition(context.Background(), "bk-1", models.TransitionRequest{
		To: models.BookingConfirmed,
	})
	var invalid *models.InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("got %v, want InvalidTransitionError", err)
	}
	if invalid.From != models.BookingCancelled {
		t.Errorf("error reports from=%s, want the fresh CANCELLED status", invalid.From)
	}
	if recs, _ := env.repo.ListTransitions(context.Background(), "bk-1"); len(recs) != 0 {
		t.Errorf("lost race must not write audit records, got %d", len(recs))
	}
}

func TestRefundedIsTerminal(t *testing.T) {
	env := newTestEnv(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	b := seedBooking(env, models.BookingRefunded)

	all := []models.BookingStatus{
		models.BookingPending, models.BookingConfirmed, models.BookingInProgress,
		models.BookingCompleted, models.BookingCancelled, models.BookingNoShow,
		models.BookingRefunded, models.BookingPaymentFailed,
	}
	for _, to := range all {
		_, err := env.svc.Transition(context.Background(), b.ID, models.TransitionRequest{To: to})
		var invalid *models.InvalidTransitionError
		if !errors.As(err, &invalid) {
			t.Errorf("REFUNDED -> %s: got %v, want InvalidTransitionError", to, err)
		}
	}
}

func TestCancelledCanOnlyRefund(t *testing.T) {
	env := newTestEnv(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	b := seedBooking(env, models.BookingCancelled)

	got, err := env.svc.Transition(context.Background(), b.ID, models.TransitionRequest{
		To: models.BookingRefunded, TriggeredBy: "operator",
	})
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if got.Status != models.BookingRefunded {
		t.Errorf("status = %s, want REFUNDED", got.Status)
	}

	for _, to := range []models.BookingStatus{models.BookingPending, models.BookingConfirmed, models.BookingCompleted} {
		env := newTestEnv(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
		b := seedBooking(env, models.BookingCancelled)
		_, err := env.svc.Transition(context.Background(), b.ID, models.TransitionRequest{To: to})
		var invalid *models.InvalidTransitionError
		if !errors.As(err, &invalid) {
			t.Errorf("CANCELLED -> %s: got %v, want InvalidTransitionError", to, err)
		}
	}
}

func TestCancellationFeeBoundary(t *testing.T) {
	// Exactly 24 hours before the start is outside the late window.
	env := newTestEnv(time.Date(2026, 3, 13, 10, 0, 0, 0, time.UTC))
	b := seedBooking(env, models.BookingConfirmed)

	if fee := env.svc.cancellationFee(b, env.svc.Clock.Now(), time.UTC); fee != 0 {
		t.Errorf("fee at exactly 24h = %.2f, want 0", fee)
	}

	oneMinuteLater := utils.NewFixedClock(time.Date(2026, 3, 13, 10, 1, 0, 0, time.UTC))
	if fee := env.svc.cancellationFee(b, oneMinuteLater.Now(), time.UTC); fee != 25 {
		t.Errorf("fee inside the window = %.2f, want 25", fee)
	}
}

func TestCancellationFeeUsesProviderTimezone(t *testing.T) {
	// The booking's 10:00 start on 2026-03-14 means 01:00 UTC when the
	// provider is in Tokyo. At 05:00 UTC the day before, only 20 hours
	// remain, even though a naive UTC reading would see 29.
	env := newTestEnv(time.Date(2026, 3, 13, 5, 0, 0, 0, time.UTC))
	env.providers.provider.Timezone = "Asia/Tokyo"
	seedBooking(env, models.BookingConfirmed)
	env.repo.bookings["bk-1"].ChargeID = "ch_1"

	got, err := env.svc.Cancel(context.Background(), "bk-1", "customer", "")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if got.CancellationFee != 25 {
		t.Errorf("fee = %.2f, want 25 inside the provider-local window", got.CancellationFee)
	}

	// The mirror case: at 12:00 UTC the day before, a Los Angeles provider
	// (10:00 PDT start = 17:00 UTC) still has 29 hours of notice, though a
	// naive UTC reading would see 22.
	env = newTestEnv(time.Date(2026, 3, 13, 12, 0, 0, 0, time.UTC))
	env.providers.provider.Timezone = "America/Los_Angeles"
	seedBooking(env, models.BookingConfirmed)
	env.repo.bookings["bk-1"].ChargeID = "ch_1"

	got, err = env.svc.Cancel(context.Background(), "bk-1", "customer", "")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if got.CancellationFee != 0 {
		t.Errorf("fee = %.2f, want 0 with more than 24h of provider-local notice", got.CancellationFee)
	}
}
