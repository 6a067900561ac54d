package slotlock

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bookify/models"
	"bookify/services/availability"
	"bookify/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultLockManager implements Service over a shared TTL store so the
// contested signal holds across parallel instances.
type DefaultLockManager struct {
	Store        LockStore
	Availability availability.Service
	Clock        utils.Clock
	DefaultTTL   time.Duration
}

func slotKey(providerID, date string, start, end int) string {
	return fmt.Sprintf("slotlock:%s:%s:%d-%d", providerID, date, start, end)
}

func idKey(lockID string) string {
	return fmt.Sprintf("slotlockid:%s", lockID)
}

func (m *DefaultLockManager) Acquire(ctx context.Context, req models.AcquireLockRequest, ttl time.Duration) (*models.SlotLock, bool, error) {
	if req.Start >= req.End {
		return nil, false, &models.ValidationError{Reason: "lock range start must precede end"}
	}
	if ttl <= 0 {
		ttl = m.DefaultTTL
	}
	now := m.Clock.Now()

	// The slot must currently be marked available.
	slots, err := m.Availability.GetDaySlots(ctx, req.ProviderID, req.Date, req.End-req.Start)
	if err != nil {
		return nil, false, err
	}
	found := false
	for _, s := range slots {
		if s.Start == req.Start && s.End == req.End {
			if !s.Available {
				return nil, true, nil
			}
			found = true
			break
		}
	}
	if !found {
		return nil, true, nil
	}

	lock := models.SlotLock{
		ID:          uuid.New().String(),
		ProviderID:  req.ProviderID,
		Date:        req.Date,
		Start:       req.Start,
		End:         req.End,
		SessionID:   req.SessionID,
		LockedUntil: now.Add(ttl),
	}
	payload, err := json.Marshal(lock)
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal slot lock: %w", err)
	}

	key := slotKey(req.ProviderID, req.Date, req.Start, req.End)
	ok, err := m.Store.SetNX(ctx, key, string(payload), ttl)
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire slot lock: %w", err)
	}
	if !ok {
		existing, presentErr := m.getLock(ctx, key)
		if presentErr != nil {
			return nil, false, presentErr
		}
		// Re-acquiring from the same session extends nothing but is not contested.
		if existing != nil && existing.SessionID == req.SessionID {
			return existing, false, nil
		}
		if existing != nil && existing.LockedUntil.After(now) {
			return nil, true, nil
		}
		// The holder's recorded expiry has passed but the entry lingers; the
		// store TTL has not reaped it yet. Take the lock over.
		if err := m.Store.SetEx(ctx, key, string(payload), ttl); err != nil {
			return nil, false, fmt.Errorf("failed to acquire slot lock: %w", err)
		}
	}

	if err := m.Store.SetEx(ctx, idKey(lock.ID), key, ttl); err != nil {
		utils.GetLogger().Warn("failed to store lock id mapping", zap.String("lockID", lock.ID), zap.Error(err))
	}
	if err := m.Availability.Invalidate(ctx, req.ProviderID, req.Date); err != nil {
		utils.GetLogger().Warn("failed to invalidate slot cache after acquire", zap.Error(err))
	}
	return &lock, false, nil
}

func (m *DefaultLockManager) Release(ctx context.Context, lockID string) error {
	key, present, err := m.Store.Get(ctx, idKey(lockID))
	if err != nil {
		return fmt.Errorf("failed to resolve lock %s: %w", lockID, err)
	}
	if !present {
		// Already expired or released.
		return nil
	}

	lock, err := m.getLock(ctx, key)
	if err != nil {
		return err
	}
	// Clear regardless of the lock's current state.
	if err := m.Store.Del(ctx, key); err != nil {
		return fmt.Errorf("failed to release slot lock: %w", err)
	}
	if err := m.Store.Del(ctx, idKey(lockID)); err != nil {
		return fmt.Errorf("failed to clear lock id mapping: %w", err)
	}
	if lock != nil {
		if err := m.Availability.Invalidate(ctx, lock.ProviderID, lock.Date); err != nil {
			utils.GetLogger().Warn("failed to invalidate slot cache after release", zap.Error(err))
		}
	}
	return nil
}

// IsFree applies the availability test used elsewhere: a slot is free iff it is
// available and no unexpired lock exists on it.
func (m *DefaultLockManager) IsFree(ctx context.Context, providerID, date string, start, end int) (bool, error) {
	slots, err := m.Availability.GetDaySlots(ctx, providerID, date, end-start)
	if err != nil {
		return false, err
	}
	available := false
	for _, s := range slots {
		if s.Start == start && s.End == end && s.Available {
			available = true
			break
		}
	}
	if !available {
		return false, nil
	}

	lock, err := m.getLock(ctx, slotKey(providerID, date, start, end))
	if err != nil {
		return false, err
	}
	if lock == nil {
		return true, nil
	}
	return !lock.LockedUntil.After(m.Clock.Now()), nil
}

// Sweep deletes lock entries whose recorded expiry has passed. Redis TTLs reap
// these on their own; the sweep only tightens the window.
func (m *DefaultLockManager) Sweep(ctx context.Context) (int, error) {
	now := m.Clock.Now()
	keys, err := m.Store.Keys(ctx, "slotlock:*")
	if err != nil {
		return 0, fmt.Errorf("failed to scan lock keys: %w", err)
	}
	purged := 0
	for _, key := range keys {
		lock, err := m.getLock(ctx, key)
		if err != nil || lock == nil {
			continue
		}
		if !lock.LockedUntil.After(now) {
			if err := m.Store.Del(ctx, key); err == nil {
				purged++
			}
		}
	}
	return purged, nil
}

func (m *DefaultLockManager) getLock(ctx context.Context, key string) (*models.SlotLock, error) {
	payload, present, err := m.Store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read slot lock: %w", err)
	}
	if !present {
		return nil, nil
	}
	var lock models.SlotLock
	if err := json.Unmarshal([]byte(payload), &lock); err != nil {
		return nil, fmt.Errorf("failed to parse slot lock: %w", err)
	}
	return &lock, nil
}
