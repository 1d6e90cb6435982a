// Package reservation implements the two inventory strategies the booking
// saga reserves seats against before a booking is ever written: per-seat
// distributed locks for general admission with seat selection, and an
// atomic counter for Tatkal (first-come-first-served, no seat picking).
// Both are built purely on lockstore.Store, with no Redis import of their
// own, so either can run against the in-memory store in tests.
package reservation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/lockstore"
)

// SeatLockTTL is how long a seat stays held before it must be renewed or
// confirmed into a booking.
const SeatLockTTL = 600 * time.Second

func seatLockKey(eventID string, seatID string) string {
	return fmt.Sprintf("lock:event:%s:seat:%s", eventID, seatID)
}

// SeatLocker hands out per-seat distributed locks. A lock is owned by a
// single holder string (typically a userId); only that holder can release
// or renew it, and it expires on its own after SeatLockTTL if never
// confirmed or released.
type SeatLocker struct {
	store lockstore.Store
}

func NewSeatLocker(store lockstore.Store) *SeatLocker {
	return &SeatLocker{store: store}
}

// TryLock acquires seatID for holder, or renews the TTL if holder already
// owns it. Returns false if another holder currently owns the seat.
func (l *SeatLocker) TryLock(ctx context.Context, eventID string, seatID, holder string) (bool, error) {
	key := seatLockKey(eventID, seatID)

	acquired, err := l.store.SetIfAbsent(ctx, key, holder, SeatLockTTL)
	if err != nil {
		return false, err
	}
	if acquired {
		return true, nil
	}

	owner, err := l.store.Get(ctx, key)
	if err != nil {
		if err == lockstore.ErrNotFound {
			// Lock expired between the failed SetIfAbsent and this Get; the
			// caller can retry, but from here we report a clean miss.
			return false, nil
		}
		return false, err
	}
	if owner == holder {
		if err := l.store.Expire(ctx, key, SeatLockTTL); err != nil {
			return false, err
		}
		return true, nil
	}

	return false, nil
}

// TryLockMany locks every seat in seatIDs for holder, all-or-nothing: if any
// seat fails to lock, every seat locked earlier in this call is rolled back.
func (l *SeatLocker) TryLockMany(ctx context.Context, eventID string, seatIDs []string, holder string) (bool, error) {
	locked := make([]string, 0, len(seatIDs))
	for _, seatID := range seatIDs {
		ok, err := l.TryLock(ctx, eventID, seatID, holder)
		if err != nil {
			l.ReleaseMany(context.WithoutCancel(ctx), eventID, locked, holder)
			return false, err
		}
		if !ok {
			l.ReleaseMany(context.WithoutCancel(ctx), eventID, locked, holder)
			return false, nil
		}
		locked = append(locked, seatID)
	}
	return true, nil
}

// Release releases seatID if holder currently owns it. Returns false if the
// seat wasn't locked, or was locked by someone else.
func (l *SeatLocker) Release(ctx context.Context, eventID string, seatID, holder string) (bool, error) {
	return l.store.DeleteIfEquals(ctx, seatLockKey(eventID, seatID), holder)
}

// ReleaseMany releases every seat in seatIDs owned by holder, best-effort:
// it keeps going past individual failures so a partial rollback doesn't
// leave the rest still held.
func (l *SeatLocker) ReleaseMany(ctx context.Context, eventID string, seatIDs []string, holder string) {
	for _, seatID := range seatIDs {
		_, _ = l.Release(ctx, eventID, seatID, holder)
	}
}

// IsLocked reports whether seatID currently has any owner.
func (l *SeatLocker) IsLocked(ctx context.Context, eventID string, seatID string) (bool, error) {
	_, err := l.store.Get(ctx, seatLockKey(eventID, seatID))
	if err == lockstore.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Owner returns the current holder of seatID, or lockstore.ErrNotFound if
// it isn't locked.
func (l *SeatLocker) Owner(ctx context.Context, eventID string, seatID string) (string, error) {
	return l.store.Get(ctx, seatLockKey(eventID, seatID))
}

// TTL returns the remaining hold time for seatID, or -2 if it isn't locked.
func (l *SeatLocker) TTL(ctx context.Context, eventID string, seatID string) (time.Duration, error) {
	return l.store.TTL(ctx, seatLockKey(eventID, seatID))
}

// VerifyOwnership confirms holder owns every seat in seatIDs. Used before
// creating a booking, so a lock that silently expired before checkout is
// caught rather than booking a seat nobody holds anymore.
func (l *SeatLocker) VerifyOwnership(ctx context.Context, eventID string, seatIDs []string, holder string) (bool, error) {
	for _, seatID := range seatIDs {
		owner, err := l.Owner(ctx, eventID, seatID)
		if err == lockstore.ErrNotFound {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if owner != holder {
			return false, nil
		}
	}
	return true, nil
}

// LockedSeats lists every currently-locked seat id for an event. Admin/debug
// only — backed by Store.Scan, never called on a booking hot path.
func (l *SeatLocker) LockedSeats(ctx context.Context, eventID string) ([]string, error) {
	pattern := seatLockKey(eventID, "*")
	keys, err := l.store.Scan(ctx, pattern)
	if err != nil {
		return nil, err
	}

	seatIDs := make([]string, 0, len(keys))
	for _, key := range keys {
		if idx := strings.LastIndex(key, ":"); idx != -1 {
			seatIDs = append(seatIDs, key[idx+1:])
		}
	}
	return seatIDs, nil
}

// ForceReleaseAll releases every lock held for an event regardless of
// owner, returning how many were released. Admin operation: used when an
// event is cancelled or pulled from sale entirely.
func (l *SeatLocker) ForceReleaseAll(ctx context.Context, eventID string) (int, error) {
	pattern := seatLockKey(eventID, "*")
	keys, err := l.store.Scan(ctx, pattern)
	if err != nil {
		return 0, err
	}

	released := 0
	for _, key := range keys {
		deleted, err := l.store.Delete(ctx, key)
		if err != nil {
			return released, err
		}
		if deleted {
			released++
		}
	}
	return released, nil
}
