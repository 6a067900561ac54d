package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookify/models"
	"bookify/utils"
)

// 2026-03-14 is a Saturday.
const testDate = "2026-03-14"

func testProvider() *models.Provider {
	return &models.Provider{
		ID:     "prov-1",
		Name:   "Test Provider",
		Active: true,
		Windows: []models.AvailabilityWindow{
			{ID: "w1", Weekday: time.Saturday, Start: 540, End: 1020, Active: true},
		},
	}
}

type testEnv struct {
	svc       *DefaultBookingService
	repo      *fakeBookingRepo
	providers *fakeProviderRepo
	avail     *fakeAvailability
	locks     *fakeLocks
	payments  *fakePayments
	payouts   *fakePayouts
	notifier  *fakeNotifier
}

func newTestEnv(now time.Time) *testEnv {
	env := &testEnv{
		repo:      newFakeBookingRepo(),
		providers: &fakeProviderRepo{provider: testProvider()},
		avail:     &fakeAvailability{},
		locks:     &fakeLocks{},
		payments:  &fakePayments{},
		payouts:   &fakePayouts{},
		notifier:  &fakeNotifier{},
	}
	env.svc = &DefaultBookingService{
		Repo:                    env.repo,
		Providers:               env.providers,
		Availability:            env.avail,
		Locks:                   env.locks,
		Payments:                env.payments,
		Payouts:                 env.payouts,
		Notifier:                env.notifier,
		Clock:                   utils.NewFixedClock(now),
		PlatformFeeRate:         0.15,
		CancellationWindowHours: 24,
		CancellationFeeRate:     0.25,
	}
	return env
}

func validRequest() models.CreateBookingRequest {
	return models.CreateBookingRequest{
		ProviderID:  "prov-1",
		CustomerID:  "cust-1",
		Date:        testDate,
		Start:       840, // 14:00
		End:         900, // 15:00
		TotalAmount: 100,
		Currency:    "usd",
	}
}

func TestCreateBookingSuccess(t *testing.T) {
	env := newTestEnv(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	req := validRequest()
	req.LockID = "lock-1"
	b, err := env.svc.CreateBooking(ctx, req)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	if b.Status != models.BookingPending {
		t.Errorf("status = %s, want PENDING", b.Status)
	}
	if len(b.ConfirmationCode) != confirmationCodeLength {
		t.Errorf("confirmation code %q has wrong length", b.ConfirmationCode)
	}
	if b.PlatformFee != 15 || b.ProviderPayout != 85 {
		t.Errorf("fee split = %.2f/%.2f, want 15/85", b.PlatformFee, b.ProviderPayout)
	}
	if _, err := env.repo.GetByID(ctx, b.ID); err != nil {
		t.Errorf("booking not persisted: %v", err)
	}
	if got := len(models.ClaimMinutes(840, 900)); len(env.repo.claims) != got {
		t.Errorf("claims = %d, want %d", len(env.repo.claims), got)
	}
	if len(env.avail.invalidated) != 1 {
		t.Errorf("expected one cache invalidation, got %d", len(env.avail.invalidated))
	}
	if len(env.locks.released) != 1 || env.locks.released[0] != "lock-1" {
		t.Errorf("lock not released: %v", env.locks.released)
	}
}

func TestCreateBookingConflict(t *testing.T) {
	env := newTestEnv(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	first, err := env.svc.CreateBooking(ctx, validRequest())
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}

	// 14:30-15:30 overlaps the committed 14:00-15:00.
	req := validRequest()
	req.Start, req.End = 870, 930
	_, err = env.svc.CreateBooking(ctx, req)

	var conflict *models.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("got %v, want ConflictError", err)
	}
	if conflict.BookingID != first.ID {
		t.Errorf("conflict reports booking %q, want %q", conflict.BookingID, first.ID)
	}
}

func TestCreateBookingClaimRace(t *testing.T) {
	env := newTestEnv(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	// A racing transaction holds a claimed minute but its booking row is not
	// visible to our snapshot. The unique claim index still rejects us.
	env.repo.claims[claimKey("prov-1", testDate, 855)] = "other-booking"

	_, err := env.svc.CreateBooking(ctx, validRequest())
	var conflict *models.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("got %v, want ConflictError", err)
	}
}

func TestCreateBookingAdjacentUnalignedSucceeds(t *testing.T) {
	env := newTestEnv(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	env.providers.provider.Windows = []models.AvailabilityWindow{
		{ID: "w1", Weekday: time.Saturday, Start: 550, End: 1030, Active: true},
	}

	// Back-to-back hourly bookings whose shared boundary 610 sits inside a
	// quarter hour. The second must pass: only an overlap may be rejected.
	first := validRequest()
	first.Start, first.End = 550, 610
	if _, err := env.svc.CreateBooking(ctx, first); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	second := validRequest()
	second.Start, second.End = 610, 670
	if _, err := env.svc.CreateBooking(ctx, second); err != nil {
		t.Fatalf("adjacent non-overlapping booking rejected: %v", err)
	}

	// But an overlap across that same unaligned boundary still conflicts.
	third := validRequest()
	third.Start, third.End = 605, 665
	_, err := env.svc.CreateBooking(ctx, third)
	var conflict *models.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("got %v, want ConflictError", err)
	}
}

func TestCreateBookingOutsideWindows(t *testing.T) {
	env := newTestEnv(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	cases := []struct {
		name       string
		start, end int
	}{
		{"before opening", 480, 540},
		{"after closing", 1020, 1080},
		{"straddles closing", 990, 1050},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			req.Start, req.End = tc.start, tc.end
			_, err := env.svc.CreateBooking(context.Background(), req)
			var vErr *models.ValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("got %v, want ValidationError", err)
			}
		})
	}
}

func TestCreateBookingBlockedPeriod(t *testing.T) {
	env := newTestEnv(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	start, end := 840, 900
	env.providers.blocked = []models.BlockedSlot{
		{BlockID: "b1", ProviderID: "prov-1", Date: testDate, Start: &start, End: &end},
	}

	_, err := env.svc.CreateBooking(context.Background(), validRequest())
	var vErr *models.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
}

func TestCreateBookingRequiresPartyIdentity(t *testing.T) {
	env := newTestEnv(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	req := validRequest()
	req.CustomerID = ""
	req.GuestEmail = ""
	_, err := env.svc.CreateBooking(context.Background(), req)
	var vErr *models.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("got %v, want ValidationError", err)
	}

	req.GuestEmail = "guest@example.com"
	if _, err := env.svc.CreateBooking(context.Background(), req); err != nil {
		t.Fatalf("guest booking should succeed: %v", err)
	}
}

func TestCreateBookingInactiveProvider(t *testing.T) {
	env := newTestEnv(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	env.providers.provider.Active = false

	_, err := env.svc.CreateBooking(context.Background(), validRequest())
	var vErr *models.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
}

func TestCreateBookingUnknownProvider(t *testing.T) {
	env := newTestEnv(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	req := validRequest()
	req.ProviderID = "missing"
	_, err := env.svc.CreateBooking(context.Background(), req)
	var nfErr *models.NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("got %v, want NotFoundError", err)
	}
}

func TestCreateBookingAdjacentIsNotConflict(t *testing.T) {
	env := newTestEnv(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	if _, err := env.svc.CreateBooking(ctx, validRequest()); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	// Back to back with the first: [900,960) after [840,900).
	req := validRequest()
	req.Start, req.End = 900, 960
	if _, err := env.svc.CreateBooking(ctx, req); err != nil {
		t.Fatalf("adjacent booking should succeed: %v", err)
	}
}

func TestGenerateConfirmationCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateConfirmationCode()
		if err != nil {
			t.Fatalf("GenerateConfirmationCode: %v", err)
		}
		if len(code) != confirmationCodeLength {
			t.Fatalf("code %q has length %d", code, len(code))
		}
		for _, r := range code {
			switch r {
			case '0', 'O', '1', 'I', 'l':
				t.Fatalf("code %q contains ambiguous character %q", code, r)
			}
		}
		seen[code] = true
	}
	if len(seen) < 45 {
		t.Errorf("codes collide far too often: %d unique of 50", len(seen))
	}
}
