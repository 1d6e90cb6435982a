// Package lockstore provides the atomic primitives the reservation engine
// builds seat locks and Tatkal counters on top of: SET NX EX, compare-and-delete,
// and the counter ops, all without any seat- or event-shaped logic of their own.
package lockstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key doesn't exist.
var ErrNotFound = errors.New("lockstore: key not found")

// Store is the minimal key-value primitive set the reservation engine needs.
// Every method must be atomic with respect to concurrent callers on the same
// key; a Redis-backed Store gets this from Redis's single-threaded command
// execution, an in-memory Store from an internal mutex.
type Store interface {
	// SetIfAbsent sets key=value with ttl only if key doesn't already exist.
	// Returns true if the set happened.
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// Get returns the current value of key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Expire refreshes key's TTL without changing its value. No-op if key
	// doesn't exist.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Delete removes key unconditionally. Returns true if key existed and
	// was removed, false if it was already absent (or already expired).
	Delete(ctx context.Context, key string) (bool, error)

	// DeleteIfEquals removes key only if its current value equals expected,
	// atomically. Returns true if it deleted. This is the compare-and-delete
	// primitive lock release needs so a caller can never release a lock it
	// no longer owns (e.g. after its own TTL expired and someone else
	// acquired it).
	DeleteIfEquals(ctx context.Context, key, expected string) (bool, error)

	// Incr atomically increments key (starting from 0 if absent) and returns
	// the new value.
	Incr(ctx context.Context, key string) (int64, error)

	// Decr atomically decrements key (starting from 0 if absent) and returns
	// the new value. Note the new value can go negative; callers needing a
	// floor must compensate explicitly (see reservation.TatkalCounter).
	Decr(ctx context.Context, key string) (int64, error)

	// Scan returns all keys matching pattern (a Redis-style glob, e.g.
	// "lock:event:42:seat:*"). Intended for admin/debug paths only — never
	// called on a hot path.
	Scan(ctx context.Context, pattern string) ([]string, error)

	// TTL returns the remaining time-to-live for key, or -1 if it has no
	// expiry, or -2 if it doesn't exist (mirrors Redis TTL semantics).
	TTL(ctx context.Context, key string) (time.Duration, error)
}
