package warehouse

import (
	"context"
	"fmt"
)

// UpsertMilestones writes one page of milestones inside the caller's
// transaction (§4.3 upsert discipline: one INSERT ... ON CONFLICT per row).
func (s *Store) UpsertMilestones(ctx context.Context, repositoryID int64, milestones []Milestone) error {
	const q = `
		INSERT INTO milestones (id, repository_id, number, title, description, state, open_issues, closed_issues, due_on, created_at, closed_at, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
		ON CONFLICT (id) DO UPDATE SET
			number = EXCLUDED.number,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			state = EXCLUDED.state,
			open_issues = EXCLUDED.open_issues,
			closed_issues = EXCLUDED.closed_issues,
			due_on = EXCLUDED.due_on,
			closed_at = EXCLUDED.closed_at,
			synced_at = now()
	`
	for _, m := range milestones {
		if _, err := s.querier(ctx).ExecContext(ctx, q,
			m.ID, repositoryID, m.Number, m.Title, m.Description, m.State,
			m.OpenIssues, m.ClosedIssues, m.DueOn, m.CreatedAt, m.ClosedAt); err != nil {
			return fmt.Errorf("upsert milestone %s#%d: %w", m.Title, m.Number, err)
		}
	}
	return nil
}

// ListMilestones returns every milestone for a repository, newest first.
func (s *Store) ListMilestones(ctx context.Context, repositoryID int64) ([]Milestone, error) {
	var out []Milestone
	err := s.querier(ctx).SelectContext(ctx, &out, `
		SELECT * FROM milestones WHERE repository_id = $1 ORDER BY number DESC
	`, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("list milestones for repo %d: %w", repositoryID, err)
	}
	return out, nil
}

// GetMilestoneByTitle finds a milestone by its (case-sensitive) title, used
// by the burndown endpoint's `?milestone=` parameter.
func (s *Store) GetMilestoneByTitle(ctx context.Context, repositoryID int64, title string) (Milestone, error) {
	var m Milestone
	err := s.querier(ctx).GetContext(ctx, &m, `
		SELECT * FROM milestones WHERE repository_id = $1 AND title = $2
	`, repositoryID, title)
	if isNoRows(err) {
		return Milestone{}, fmt.Errorf("milestone %q: %w", title, ErrNotFound)
	}
	if err != nil {
		return Milestone{}, fmt.Errorf("get milestone %q: %w", title, err)
	}
	return m, nil
}
