package warehouse

import (
	"context"
	"fmt"
	"time"
)

// UpsertIssue writes an issue row and replaces its label/assignee membership
// in one statement group (§4.3 upsert discipline). Callers are expected to
// run this inside Store.WithTx alongside the rest of an "issues" sync page.
func (s *Store) UpsertIssue(ctx context.Context, issue Issue) error {
	const q = `
		INSERT INTO issues (id, repository_id, number, title, body, state, author_login, comments_count, milestone_id, created_at, updated_at, closed_at, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now())
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			body = EXCLUDED.body,
			state = EXCLUDED.state,
			author_login = EXCLUDED.author_login,
			comments_count = EXCLUDED.comments_count,
			milestone_id = EXCLUDED.milestone_id,
			updated_at = EXCLUDED.updated_at,
			closed_at = EXCLUDED.closed_at,
			synced_at = now()
	`
	if _, err := s.querier(ctx).ExecContext(ctx, q,
		issue.ID, issue.RepositoryID, issue.Number, issue.Title, issue.Body, issue.State,
		issue.AuthorLogin, issue.CommentsCount, issue.MilestoneID,
		issue.CreatedAt, issue.UpdatedAt, issue.ClosedAt); err != nil {
		return fmt.Errorf("upsert issue #%d: %w", issue.Number, err)
	}

	if _, err := s.querier(ctx).ExecContext(ctx, `DELETE FROM issue_labels WHERE issue_id = $1`, issue.ID); err != nil {
		return fmt.Errorf("clear labels for issue #%d: %w", issue.Number, err)
	}
	for _, label := range issue.Labels {
		if _, err := s.querier(ctx).ExecContext(ctx,
			`INSERT INTO issue_labels (issue_id, label) VALUES ($1, $2)`, issue.ID, label); err != nil {
			return fmt.Errorf("insert label %q for issue #%d: %w", label, issue.Number, err)
		}
	}

	if _, err := s.querier(ctx).ExecContext(ctx, `DELETE FROM issue_assignees WHERE issue_id = $1`, issue.ID); err != nil {
		return fmt.Errorf("clear assignees for issue #%d: %w", issue.Number, err)
	}
	for _, assignee := range issue.Assignees {
		if _, err := s.querier(ctx).ExecContext(ctx,
			`INSERT INTO issue_assignees (issue_id, login) VALUES ($1, $2)`, issue.ID, assignee); err != nil {
			return fmt.Errorf("insert assignee %q for issue #%d: %w", assignee, issue.Number, err)
		}
	}
	return nil
}

// IssueFilter narrows ListIssues, matching the query parameters the HTTP
// surface (§6.1 GET /repos/{owner}/{repo}/issues) accepts.
type IssueFilter struct {
	State        string // "", "open", "closed"
	UpdatedSince *time.Time
}

// ListIssues returns issues for a repository, newest-updated first, with
// label/assignee membership joined in.
func (s *Store) ListIssues(ctx context.Context, repositoryID int64, filter IssueFilter) ([]Issue, error) {
	q := `SELECT * FROM issues WHERE repository_id = $1`
	args := []any{repositoryID}
	if filter.State != "" {
		args = append(args, filter.State)
		q += fmt.Sprintf(" AND state = $%d", len(args))
	}
	if filter.UpdatedSince != nil {
		args = append(args, *filter.UpdatedSince)
		q += fmt.Sprintf(" AND updated_at >= $%d", len(args))
	}
	q += " ORDER BY updated_at DESC"

	var issues []Issue
	if err := s.querier(ctx).SelectContext(ctx, &issues, q, args...); err != nil {
		return nil, fmt.Errorf("list issues for repo %d: %w", repositoryID, err)
	}
	for i := range issues {
		if err := s.hydrateIssue(ctx, &issues[i]); err != nil {
			return nil, err
		}
	}
	return issues, nil
}

// GetIssue looks up a single issue by its repo-scoped number.
func (s *Store) GetIssue(ctx context.Context, repositoryID int64, number int) (Issue, error) {
	var issue Issue
	err := s.querier(ctx).GetContext(ctx, &issue, `
		SELECT * FROM issues WHERE repository_id = $1 AND number = $2
	`, repositoryID, number)
	if isNoRows(err) {
		return Issue{}, fmt.Errorf("issue #%d: %w", number, ErrNotFound)
	}
	if err != nil {
		return Issue{}, fmt.Errorf("get issue #%d: %w", number, err)
	}
	if err := s.hydrateIssue(ctx, &issue); err != nil {
		return Issue{}, err
	}
	return issue, nil
}

func (s *Store) hydrateIssue(ctx context.Context, issue *Issue) error {
	if err := s.querier(ctx).SelectContext(ctx, &issue.Labels,
		`SELECT label FROM issue_labels WHERE issue_id = $1 ORDER BY label`, issue.ID); err != nil {
		return fmt.Errorf("load labels for issue #%d: %w", issue.Number, err)
	}
	if err := s.querier(ctx).SelectContext(ctx, &issue.Assignees,
		`SELECT login FROM issue_assignees WHERE issue_id = $1 ORDER BY login`, issue.ID); err != nil {
		return fmt.Errorf("load assignees for issue #%d: %w", issue.Number, err)
	}
	return nil
}
