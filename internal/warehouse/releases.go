package warehouse

import (
	"context"
	"fmt"
)

// UpsertReleases writes one page of releases (§4.3 upsert discipline).
func (s *Store) UpsertReleases(ctx context.Context, repositoryID int64, releases []Release) error {
	const q = `
		INSERT INTO releases (id, repository_id, tag, name, body, draft, prerelease, author_login, created_at, published_at, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		ON CONFLICT (id) DO UPDATE SET
			tag = EXCLUDED.tag,
			name = EXCLUDED.name,
			body = EXCLUDED.body,
			draft = EXCLUDED.draft,
			prerelease = EXCLUDED.prerelease,
			published_at = EXCLUDED.published_at,
			synced_at = now()
	`
	for _, r := range releases {
		if _, err := s.querier(ctx).ExecContext(ctx, q,
			r.ID, repositoryID, r.Tag, r.Name, r.Body, r.Draft, r.Prerelease,
			r.AuthorLogin, r.CreatedAt, r.PublishedAt); err != nil {
			return fmt.Errorf("upsert release %s: %w", r.Tag, err)
		}
	}
	return nil
}

// ListReleases returns every release for a repository, newest first.
func (s *Store) ListReleases(ctx context.Context, repositoryID int64) ([]Release, error) {
	var out []Release
	err := s.querier(ctx).SelectContext(ctx, &out, `
		SELECT * FROM releases WHERE repository_id = $1 ORDER BY created_at DESC
	`, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("list releases for repo %d: %w", repositoryID, err)
	}
	return out, nil
}

// GetReleaseByTag finds a release by its tag name.
func (s *Store) GetReleaseByTag(ctx context.Context, repositoryID int64, tag string) (Release, error) {
	var r Release
	err := s.querier(ctx).GetContext(ctx, &r, `
		SELECT * FROM releases WHERE repository_id = $1 AND tag = $2
	`, repositoryID, tag)
	if isNoRows(err) {
		return Release{}, fmt.Errorf("release %q: %w", tag, ErrNotFound)
	}
	if err != nil {
		return Release{}, fmt.Errorf("get release %q: %w", tag, err)
	}
	return r, nil
}
