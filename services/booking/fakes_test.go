package booking

import (
	"context"
	"fmt"
	"sort"
	"time"

	bookingRepo "bookify/database/repository/booking"
	"bookify/models"
	"bookify/services/payout"
)

// fakeBookingRepo is an in-memory BookingRepository. Claims are keyed by
// provider/date/minute to mirror the unique database index.
type fakeBookingRepo struct {
	bookings    map[string]*models.Booking
	claims      map[string]string // provider|date|minute -> bookingID
	transitions []models.BookingStateTransition

	// beforeCAS, when set, runs once before the next UpdateStatusCAS to
	// simulate a concurrent writer.
	beforeCAS func()
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings: make(map[string]*models.Booking),
		claims:   make(map[string]string),
	}
}

func claimKey(providerID, date string, minute int) string {
	return fmt.Sprintf("%s|%s|%d", providerID, date, minute)
}

func (r *fakeBookingRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (r *fakeBookingRepo) FindBlocking(ctx context.Context, providerID, date string, start, end int) (*models.Booking, error) {
	for _, b := range r.bookings {
		if b.ProviderID == providerID && b.Date == date && b.Status.BlocksSlot() &&
			b.Start < end && start < b.End {
			return b, nil
		}
	}
	return nil, nil
}

func (r *fakeBookingRepo) InsertClaims(ctx context.Context, b *models.Booking) error {
	minutes := models.ClaimMinutes(b.Start, b.End)
	for _, m := range minutes {
		if _, taken := r.claims[claimKey(b.ProviderID, b.Date, m)]; taken {
			return bookingRepo.ErrClaimTaken
		}
	}
	for _, m := range minutes {
		r.claims[claimKey(b.ProviderID, b.Date, m)] = b.ID
	}
	return nil
}

func (r *fakeBookingRepo) InsertBooking(ctx context.Context, b *models.Booking) error {
	copied := *b
	r.bookings[b.ID] = &copied
	return nil
}

func (r *fakeBookingRepo) DeleteClaims(ctx context.Context, bookingID string) error {
	for k, owner := range r.claims {
		if owner == bookingID {
			delete(r.claims, k)
		}
	}
	return nil
}

func (r *fakeBookingRepo) UpdateStatusCAS(ctx context.Context, bookingID string, from, to models.BookingStatus, fx bookingRepo.TransitionEffects, at time.Time) error {
	if r.beforeCAS != nil {
		r.beforeCAS()
		r.beforeCAS = nil
	}
	b, ok := r.bookings[bookingID]
	if !ok {
		return &models.NotFoundError{Resource: "booking", ID: bookingID}
	}
	if b.Status != from {
		return bookingRepo.ErrStaleStatus
	}
	b.Status = to
	b.UpdatedAt = at
	if fx.CancelledAt != nil {
		b.CancelledAt = fx.CancelledAt
		b.CancelledBy = fx.CancelledBy
		b.CancellationReason = fx.CancellationReason
	}
	if fx.CancellationFee != nil {
		b.CancellationFee = *fx.CancellationFee
	}
	if fx.CompletedAt != nil {
		b.CompletedAt = fx.CompletedAt
	}
	return nil
}

func (r *fakeBookingRepo) InsertTransition(ctx context.Context, rec *models.BookingStateTransition) error {
	r.transitions = append(r.transitions, *rec)
	return nil
}

func (r *fakeBookingRepo) ListTransitions(ctx context.Context, bookingID string) ([]models.BookingStateTransition, error) {
	var out []models.BookingStateTransition
	for _, t := range r.transitions {
		if t.BookingID == bookingID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, ok := r.bookings[bookingID]
	if !ok {
		return nil, &models.NotFoundError{Resource: "booking", ID: bookingID}
	}
	copied := *b
	return &copied, nil
}

func (r *fakeBookingRepo) GetByConfirmationCode(ctx context.Context, code string) (*models.Booking, error) {
	for _, b := range r.bookings {
		if b.ConfirmationCode == code {
			copied := *b
			return &copied, nil
		}
	}
	return nil, &models.NotFoundError{Resource: "booking", ID: code}
}

func (r *fakeBookingRepo) ListForDate(ctx context.Context, providerID, date string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range r.bookings {
		if b.ProviderID == providerID && b.Date == date {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range r.bookings {
		if b.CustomerID == customerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) EnsureIndexes() error { return nil }

// fakeProviderRepo serves a single provider with its blocked slots.
type fakeProviderRepo struct {
	provider *models.Provider
	blocked  []models.BlockedSlot
}

func (r *fakeProviderRepo) GetByID(ctx context.Context, providerID string) (*models.Provider, error) {
	if r.provider == nil || r.provider.ID != providerID {
		return nil, &models.NotFoundError{Resource: "provider", ID: providerID}
	}
	copied := *r.provider
	return &copied, nil
}

func (r *fakeProviderRepo) Create(ctx context.Context, p *models.Provider) error {
	r.provider = p
	return nil
}

func (r *fakeProviderRepo) UpdateWindows(ctx context.Context, providerID string, windows []models.AvailabilityWindow) error {
	r.provider.Windows = windows
	return nil
}

func (r *fakeProviderRepo) ListActiveIDs(ctx context.Context) ([]string, error) {
	if r.provider != nil && r.provider.Active {
		return []string{r.provider.ID}, nil
	}
	return nil, nil
}

func (r *fakeProviderRepo) GetBlockedSlots(ctx context.Context, providerID, date string) ([]models.BlockedSlot, error) {
	var out []models.BlockedSlot
	for _, b := range r.blocked {
		if b.ProviderID == providerID && b.Date == date {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeProviderRepo) CreateBlockedSlot(ctx context.Context, b *models.BlockedSlot) error {
	r.blocked = append(r.blocked, *b)
	return nil
}

func (r *fakeProviderRepo) RemoveBlockedSlot(ctx context.Context, blockID string) error {
	for i, b := range r.blocked {
		if b.BlockID == blockID {
			r.blocked = append(r.blocked[:i], r.blocked[i+1:]...)
			return nil
		}
	}
	return &models.NotFoundError{Resource: "blocked slot", ID: blockID}
}

func (r *fakeProviderRepo) EnsureIndexes() error { return nil }

// fakeAvailability records invalidations; slot lookups are unused here.
type fakeAvailability struct {
	invalidated []string
}

func (f *fakeAvailability) GetAvailableSlots(ctx context.Context, providerID, fromDate, toDate string, duration int) ([]models.TimeSlot, error) {
	return nil, nil
}

func (f *fakeAvailability) GetDaySlots(ctx context.Context, providerID, date string, duration int) ([]models.TimeSlot, error) {
	return nil, nil
}

func (f *fakeAvailability) FindAlternativeSlots(ctx context.Context, providerID, date string, start, end, duration, limit int) ([]models.TimeSlot, error) {
	return nil, nil
}

func (f *fakeAvailability) Invalidate(ctx context.Context, providerID, date string) error {
	f.invalidated = append(f.invalidated, providerID+"|"+date)
	return nil
}

// fakeLocks records releases.
type fakeLocks struct {
	released []string
}

func (f *fakeLocks) Acquire(ctx context.Context, req models.AcquireLockRequest, ttl time.Duration) (*models.SlotLock, bool, error) {
	return nil, false, nil
}

func (f *fakeLocks) Release(ctx context.Context, lockID string) error {
	f.released = append(f.released, lockID)
	return nil
}

func (f *fakeLocks) IsFree(ctx context.Context, providerID, date string, start, end int) (bool, error) {
	return true, nil
}

func (f *fakeLocks) Sweep(ctx context.Context) (int, error) { return 0, nil }

// fakePayments records refund requests.
type fakePayments struct {
	refunds []RefundRequest
	err     error
}

func (f *fakePayments) Refund(ctx context.Context, req RefundRequest) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.refunds = append(f.refunds, req)
	return "re_" + req.BookingID, nil
}

// fakePayouts records scheduled bookings.
type fakePayouts struct {
	scheduled []string
	err       error
}

func (f *fakePayouts) Schedule(ctx context.Context, b *models.Booking) (*models.PayoutSchedule, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.scheduled = append(f.scheduled, b.ID)
	return &models.PayoutSchedule{ID: "po-" + b.ID, BookingID: b.ID}, nil
}

func (f *fakePayouts) ProcessDue(ctx context.Context) (payout.ProcessReport, error) {
	return payout.ProcessReport{}, nil
}

func (f *fakePayouts) MarkCompletedManually(ctx context.Context, payoutID string, req models.ManualPayoutRequest) (*models.PayoutSchedule, error) {
	return nil, nil
}

func (f *fakePayouts) GetByID(ctx context.Context, payoutID string) (*models.PayoutSchedule, error) {
	return nil, nil
}

func (f *fakePayouts) ListByProvider(ctx context.Context, providerID string) ([]models.PayoutSchedule, error) {
	return nil, nil
}

// fakeNotifier records events.
type fakeNotifier struct {
	confirmed []string
	cancelled []string
	payouts   []string
	alerts    []string
}

func (f *fakeNotifier) BookingConfirmed(ctx context.Context, b *models.Booking) {
	f.confirmed = append(f.confirmed, b.ID)
}

func (f *fakeNotifier) BookingCancelled(ctx context.Context, b *models.Booking) {
	f.cancelled = append(f.cancelled, b.ID)
}

func (f *fakeNotifier) PayoutCompleted(ctx context.Context, s *models.PayoutSchedule) {
	f.payouts = append(f.payouts, s.ID)
}

func (f *fakeNotifier) AlertOperator(ctx context.Context, subject, detail string) {
	f.alerts = append(f.alerts, subject)
}
