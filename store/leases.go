package store

import (
	"time"

	"github.com/mark3labs/assassin-core/errs"
	"github.com/pocketbase/pocketbase/core"
)

// CollectionLeases backs the Scheduler's per-game lease key, so ticks
// over the same game from different Scheduler instances serialize
// against a TTL'd lease row instead of racing.
const CollectionLeases = "scheduler_leases"

// AcquireLease attempts to take the lease for key, valid for ttl. It
// succeeds if no lease exists or the existing one has expired; returns
// errs.Conflict if another tick currently holds it, so the caller just
// skips that game for this tick rather than waiting on it.
func (s *Store) AcquireLease(key string, ttl time.Duration) error {
	collection, err := s.app.FindCollectionByNameOrId(CollectionLeases)
	if err != nil {
		return errs.Internal(err, "find scheduler_leases collection")
	}

	now := time.Now()
	record, err := s.app.FindFirstRecordByFilter(
		CollectionLeases, "key = {:key}", map[string]any{"key": key},
	)
	if err == nil {
		expiresAt := record.GetDateTime("expires_at").Time()
		if expiresAt.After(now) {
			return errs.Conflict("lease %s held until %s", key, expiresAt)
		}
	} else {
		record = core.NewRecord(collection)
		record.Set("key", key)
	}

	record.Set("expires_at", now.Add(ttl))
	if err := s.app.Save(record); err != nil {
		return errs.Persistence(err, "acquire lease %s", key)
	}
	return nil
}

// ReleaseLease drops a lease early, e.g. after a tick finishes well
// before its TTL so the next scheduler instance need not wait it out.
func (s *Store) ReleaseLease(key string) error {
	record, err := s.app.FindFirstRecordByFilter(
		CollectionLeases, "key = {:key}", map[string]any{"key": key},
	)
	if err != nil {
		return nil
	}
	if err := s.app.Delete(record); err != nil {
		return errs.Persistence(err, "release lease %s", key)
	}
	return nil
}
