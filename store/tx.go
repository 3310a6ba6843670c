package store

import (
	"errors"

	"github.com/mark3labs/assassin-core/errs"
	"github.com/pocketbase/pocketbase/core"
)

// Transact runs fn inside a pocketbase transaction, giving callers a
// conditional-transaction abstraction that aborts on version mismatch.
// Callers detect a version mismatch by returning errs.Conflict from fn;
// Transact does not retry — KillPipeline retries conflicts itself; other
// callers pass errs.Conflict on to their own callers.
func (s *Store) Transact(fn func(txApp core.App) error) error {
	err := s.app.RunInTransaction(func(txApp core.App) error {
		return fn(txApp)
	})
	if err == nil {
		return nil
	}

	var coreErr *errs.Error
	if errors.As(err, &coreErr) {
		return err
	}

	return errs.Persistence(err, "store transaction failed")
}

// checkVersion is the compare-and-set primitive every write-path helper
// below uses: it compares the in-memory expected version against the
// stored record's version and fails with errs.Conflict on mismatch.
func checkVersion(record *core.Record, expected int64) error {
	actual := record.GetInt("version")
	if int64(actual) != expected {
		return errs.Conflict("version mismatch: expected %d, found %d", expected, actual)
	}
	return nil
}

func bumpVersion(record *core.Record) {
	record.Set("version", record.GetInt("version")+1)
}
