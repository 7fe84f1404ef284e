package warehouse

import (
	"context"
	"fmt"
	"time"
)

// UpsertIssueEvents appends one page of issue timeline events. Events are
// append-only within a sync window (§3): an INSERT with ON CONFLICT DO
// NOTHING, so an event seen again on a later sync is skipped rather than
// updated, since the host never mutates an already-recorded event.
func (s *Store) UpsertIssueEvents(ctx context.Context, events []IssueEvent) error {
	const q = `
		INSERT INTO issue_events (id, issue_id, event_type, actor_login, label, assignee, milestone_title, created_at, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (id) DO NOTHING
	`
	for _, e := range events {
		if _, err := s.querier(ctx).ExecContext(ctx, q,
			e.ID, e.IssueID, e.EventType, e.ActorLogin, e.Label, e.Assignee,
			e.MilestoneTitle, e.CreatedAt); err != nil {
			return fmt.Errorf("insert issue event %d: %w", e.ID, err)
		}
	}
	return nil
}

// ListIssueEvents returns the timeline for a single issue, oldest first —
// the order SLA response detection (§4.5) walks events in.
func (s *Store) ListIssueEvents(ctx context.Context, issueID int64) ([]IssueEvent, error) {
	var out []IssueEvent
	err := s.querier(ctx).SelectContext(ctx, &out, `
		SELECT * FROM issue_events WHERE issue_id = $1 ORDER BY created_at ASC
	`, issueID)
	if err != nil {
		return nil, fmt.Errorf("list events for issue %d: %w", issueID, err)
	}
	return out, nil
}

// ListIssueEventsForRepo returns every event for every issue in a repository
// created since the given time, used by the SLA report to feed the
// Derivation Layer without one query per issue.
func (s *Store) ListIssueEventsForRepo(ctx context.Context, repositoryID int64, since time.Time) ([]IssueEvent, error) {
	var out []IssueEvent
	err := s.querier(ctx).SelectContext(ctx, &out, `
		SELECT e.* FROM issue_events e
		JOIN issues i ON i.id = e.issue_id
		WHERE i.repository_id = $1 AND e.created_at >= $2
		ORDER BY e.created_at ASC
	`, repositoryID, since)
	if err != nil {
		return nil, fmt.Errorf("list events for repo %d: %w", repositoryID, err)
	}
	return out, nil
}
