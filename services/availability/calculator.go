package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	bookingRepo "bookify/database/repository/booking"
	providerRepo "bookify/database/repository/provider"
	"bookify/models"
	"bookify/utils"

	"go.uber.org/zap"
)

// DefaultAvailabilityService derives candidate slots for a provider/day from
// the weekly schedule, blocked overrides and existing bookings.
type DefaultAvailabilityService struct {
	Providers       providerRepo.ProviderRepository
	Bookings        bookingRepo.BookingRepository
	Cache           *SlotCache
	DefaultDuration int // slot granularity in minutes when the caller passes 0
}

func (s *DefaultAvailabilityService) duration(d int) int {
	if d > 0 {
		return d
	}
	if s.DefaultDuration > 0 {
		return s.DefaultDuration
	}
	return 15
}

func (s *DefaultAvailabilityService) GetAvailableSlots(ctx context.Context, providerID, fromDate, toDate string, duration int) ([]models.TimeSlot, error) {
	from, err := time.Parse(utils.DateLayout, fromDate)
	if err != nil {
		return nil, &models.ValidationError{Reason: fmt.Sprintf("invalid from date %q", fromDate)}
	}
	to, err := time.Parse(utils.DateLayout, toDate)
	if err != nil {
		return nil, &models.ValidationError{Reason: fmt.Sprintf("invalid to date %q", toDate)}
	}
	if to.Before(from) {
		return nil, &models.ValidationError{Reason: "date range end precedes start"}
	}

	var all []models.TimeSlot
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		daySlots, err := s.GetDaySlots(ctx, providerID, d.Format(utils.DateLayout), duration)
		if err != nil {
			return nil, err
		}
		all = append(all, daySlots...)
	}
	return all, nil
}

func (s *DefaultAvailabilityService) GetDaySlots(ctx context.Context, providerID, date string, duration int) ([]models.TimeSlot, error) {
	dur := s.duration(duration)

	if s.Cache != nil {
		if slots, ok := s.Cache.Get(ctx, providerID, date, dur); ok {
			return slots, nil
		}
	}

	provider, err := s.Providers.GetByID(ctx, providerID)
	if err != nil {
		return nil, err
	}
	blocks, err := s.Providers.GetBlockedSlots(ctx, providerID, date)
	if err != nil {
		return nil, err
	}
	bookings, err := s.Bookings.ListForDate(ctx, providerID, date)
	if err != nil {
		return nil, err
	}

	slots, err := BuildDaySlots(*provider, date, blocks, bookings, dur)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, providerID, date, dur, slots); err != nil {
			utils.GetLogger().Warn("failed to cache day slots",
				zap.String("providerID", providerID), zap.String("date", date), zap.Error(err))
		}
	}
	return slots, nil
}

func (s *DefaultAvailabilityService) FindAlternativeSlots(ctx context.Context, providerID, date string, start, end, duration, limit int) ([]models.TimeSlot, error) {
	daySlots, err := s.GetDaySlots(ctx, providerID, date, duration)
	if err != nil {
		return nil, err
	}
	var alternatives []models.TimeSlot
	for _, slot := range daySlots {
		if !slot.Available || slot.Overlaps(start, end) {
			continue
		}
		alternatives = append(alternatives, slot)
		if limit > 0 && len(alternatives) >= limit {
			break
		}
	}
	return alternatives, nil
}

func (s *DefaultAvailabilityService) Invalidate(ctx context.Context, providerID, date string) error {
	if s.Cache == nil {
		return nil
	}
	return s.Cache.Invalidate(ctx, providerID, date)
}

// BuildDaySlots generates the slot projection for one date. Slots start at the
// window start and advance by duration; a trailing remainder shorter than
// duration is dropped, not truncated. Multiple windows on the same weekday are
// processed independently and never merge.
func BuildDaySlots(provider models.Provider, date string, blocks []models.BlockedSlot, bookings []models.Booking, duration int) ([]models.TimeSlot, error) {
	if duration <= 0 {
		return nil, &models.ValidationError{Reason: "slot duration must be positive"}
	}
	day, err := time.Parse(utils.DateLayout, date)
	if err != nil {
		return nil, &models.ValidationError{Reason: fmt.Sprintf("invalid date %q", date)}
	}

	windows := provider.WindowsForWeekday(day.Weekday())
	if len(windows) == 0 {
		return nil, nil
	}

	fullDayBlocked := false
	for _, b := range blocks {
		if b.FullDay() {
			fullDayBlocked = true
			break
		}
	}

	var slots []models.TimeSlot
	for _, w := range windows {
		for start := w.Start; start+duration <= w.End; start += duration {
			end := start + duration
			slots = append(slots, models.TimeSlot{
				Date:      date,
				Start:     start,
				End:       end,
				Available: !fullDayBlocked && slotFree(start, end, blocks, bookings),
			})
		}
	}

	sort.Slice(slots, func(i, j int) bool {
		return slots[i].Start < slots[j].Start
	})
	return slots, nil
}

// slotFree applies the half-open overlap test [s1,e1) x [s2,e2):
// overlap iff s1 < e2 && s2 < e1.
func slotFree(start, end int, blocks []models.BlockedSlot, bookings []models.Booking) bool {
	for _, b := range blocks {
		if b.Intersects(start, end) {
			return false
		}
	}
	for _, bk := range bookings {
		if !bk.Status.BlocksSlot() {
			continue
		}
		if bk.Start < end && start < bk.End {
			return false
		}
	}
	return true
}
