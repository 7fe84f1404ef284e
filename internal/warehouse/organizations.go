package warehouse

import (
	"context"
	"fmt"
	"time"
)

// UpsertOrganization registers (or updates) the organization root that
// Projects belong to (§3).
func (s *Store) UpsertOrganization(ctx context.Context, org Organization) error {
	const q = `
		INSERT INTO organizations (name, default_base_url, last_synced_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET
			default_base_url = EXCLUDED.default_base_url
	`
	if _, err := s.querier(ctx).ExecContext(ctx, q, org.Name, org.DefaultBaseURL, org.LastSyncedAt); err != nil {
		return fmt.Errorf("upsert organization %s: %w", org.Name, err)
	}
	return nil
}

// TouchOrganizationSync stamps last_synced_at, called once a projects sync
// page for the organization completes.
func (s *Store) TouchOrganizationSync(ctx context.Context, name string, at time.Time) error {
	res, err := s.querier(ctx).ExecContext(ctx,
		`UPDATE organizations SET last_synced_at = $2 WHERE name = $1`, name, at)
	if err != nil {
		return fmt.Errorf("touch organization %s sync: %w", name, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("organization %s: %w", name, ErrNotFound)
	}
	return nil
}

// GetOrganization looks up an organization by name.
func (s *Store) GetOrganization(ctx context.Context, name string) (Organization, error) {
	var org Organization
	err := s.querier(ctx).GetContext(ctx, &org, `SELECT * FROM organizations WHERE name = $1`, name)
	if isNoRows(err) {
		return Organization{}, fmt.Errorf("organization %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return Organization{}, fmt.Errorf("get organization %s: %w", name, err)
	}
	return org, nil
}

// ListOrganizations returns every registered organization.
func (s *Store) ListOrganizations(ctx context.Context) ([]Organization, error) {
	var out []Organization
	if err := s.querier(ctx).SelectContext(ctx, &out, `SELECT * FROM organizations ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	return out, nil
}
