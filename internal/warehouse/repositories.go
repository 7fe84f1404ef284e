package warehouse

import (
	"context"
	"fmt"
)

// TrackRepository inserts a new tracked repository, or updates its
// descriptive fields if already tracked (e.g. re-tracking after a rename).
func (s *Store) TrackRepository(ctx context.Context, repo Repository) (Repository, error) {
	const q = `
		INSERT INTO repositories (id, owner, name, full_name, default_branch, private, org_tag, host_created_at, host_updated_at, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		ON CONFLICT (id) DO UPDATE SET
			owner = EXCLUDED.owner,
			name = EXCLUDED.name,
			full_name = EXCLUDED.full_name,
			default_branch = EXCLUDED.default_branch,
			private = EXCLUDED.private,
			org_tag = EXCLUDED.org_tag,
			host_created_at = EXCLUDED.host_created_at,
			host_updated_at = EXCLUDED.host_updated_at,
			synced_at = now()
		RETURNING synced_at
	`
	row := s.querier(ctx).QueryRowContext(ctx, q,
		repo.ID, repo.Owner, repo.Name, repo.FullName, repo.DefaultBranch,
		repo.Private, repo.OrgTag, repo.HostCreatedAt, repo.HostUpdatedAt)
	if err := row.Scan(&repo.SyncedAt); err != nil {
		return Repository{}, fmt.Errorf("track repository %s: %w", repo.FullName, err)
	}
	return repo, nil
}

// UntrackRepository removes a repository and cascades to every owned row
// (milestones, issues, pulls, releases, events, sync status), per §3
// lifecycle ("deleted on untrack (cascades)").
func (s *Store) UntrackRepository(ctx context.Context, owner, name string) error {
	res, err := s.querier(ctx).ExecContext(ctx, `DELETE FROM repositories WHERE lower(owner) = lower($1) AND lower(name) = lower($2)`, owner, name)
	if err != nil {
		return fmt.Errorf("untrack repository %s/%s: %w", owner, name, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("repository %s/%s: %w", owner, name, ErrNotFound)
	}
	return nil
}

// GetRepository looks up a tracked repository by owner/name.
func (s *Store) GetRepository(ctx context.Context, owner, name string) (Repository, error) {
	var repo Repository
	err := s.querier(ctx).GetContext(ctx, &repo, `
		SELECT * FROM repositories WHERE lower(owner) = lower($1) AND lower(name) = lower($2)
	`, owner, name)
	if isNoRows(err) {
		return Repository{}, fmt.Errorf("repository %s/%s: %w", owner, name, ErrNotFound)
	}
	if err != nil {
		return Repository{}, fmt.Errorf("get repository %s/%s: %w", owner, name, err)
	}
	return repo, nil
}

// ListRepositories returns every tracked repository, ordered by full name.
func (s *Store) ListRepositories(ctx context.Context) ([]Repository, error) {
	var repos []Repository
	if err := s.querier(ctx).SelectContext(ctx, &repos, `SELECT * FROM repositories ORDER BY full_name`); err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	return repos, nil
}
