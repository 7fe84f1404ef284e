package warehouse

import (
	"context"
	"fmt"
	"time"
)

// MarkSyncSuccess records a surface's sync as having completed cleanly at
// the given time, clearing any previously recorded error (§4.4).
func (s *Store) MarkSyncSuccess(ctx context.Context, repositoryID int64, surface string, at time.Time) error {
	const q = `
		INSERT INTO sync_status (repository_id, surface, last_success_at, last_error, last_error_at)
		VALUES ($1, $2, $3, '', NULL)
		ON CONFLICT (repository_id, surface) DO UPDATE SET
			last_success_at = EXCLUDED.last_success_at,
			last_error = '',
			last_error_at = NULL
	`
	if _, err := s.querier(ctx).ExecContext(ctx, q, repositoryID, surface, at); err != nil {
		return fmt.Errorf("mark sync success repo %d surface %s: %w", repositoryID, surface, err)
	}
	return nil
}

// MarkSyncFailure records a non-aborting per-surface failure (§4.4: a
// surface failing degrades that surface's freshness without aborting the
// rest of the sync run). last_success_at is left untouched.
func (s *Store) MarkSyncFailure(ctx context.Context, repositoryID int64, surface string, syncErr error, at time.Time) error {
	const q = `
		INSERT INTO sync_status (repository_id, surface, last_error, last_error_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (repository_id, surface) DO UPDATE SET
			last_error = EXCLUDED.last_error,
			last_error_at = EXCLUDED.last_error_at
	`
	if _, err := s.querier(ctx).ExecContext(ctx, q, repositoryID, surface, syncErr.Error(), at); err != nil {
		return fmt.Errorf("mark sync failure repo %d surface %s: %w", repositoryID, surface, err)
	}
	return nil
}

// GetSyncStatus returns the per-surface bookkeeping row, or a zero-value
// SyncStatus (never-synced) if none exists yet — absence is not an error
// here, unlike entity lookups, since every repository starts unsynced.
func (s *Store) GetSyncStatus(ctx context.Context, repositoryID int64, surface string) (SyncStatus, error) {
	var st SyncStatus
	err := s.querier(ctx).GetContext(ctx, &st, `
		SELECT * FROM sync_status WHERE repository_id = $1 AND surface = $2
	`, repositoryID, surface)
	if isNoRows(err) {
		return SyncStatus{RepositoryID: repositoryID, Surface: surface}, nil
	}
	if err != nil {
		return SyncStatus{}, fmt.Errorf("get sync status repo %d surface %s: %w", repositoryID, surface, err)
	}
	return st, nil
}

// ListSyncStatus returns bookkeeping for every surface of a repository.
func (s *Store) ListSyncStatus(ctx context.Context, repositoryID int64) ([]SyncStatus, error) {
	var out []SyncStatus
	err := s.querier(ctx).SelectContext(ctx, &out, `
		SELECT * FROM sync_status WHERE repository_id = $1 ORDER BY surface
	`, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("list sync status repo %d: %w", repositoryID, err)
	}
	return out, nil
}
