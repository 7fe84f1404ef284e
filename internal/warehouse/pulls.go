package warehouse

import (
	"context"
	"fmt"
	"time"
)

// UpsertPullRequest mirrors UpsertIssue's shape (§4.3): row upsert plus
// label-membership replace, run inside the caller's transaction.
func (s *Store) UpsertPullRequest(ctx context.Context, pr PullRequest) error {
	const q = `
		INSERT INTO pull_requests (id, repository_id, number, title, body, state, draft, merged, author_login, additions, deletions, changed_files, head_ref, base_ref, created_at, updated_at, closed_at, merged_at, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, now())
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			body = EXCLUDED.body,
			state = EXCLUDED.state,
			draft = EXCLUDED.draft,
			merged = EXCLUDED.merged,
			author_login = EXCLUDED.author_login,
			additions = EXCLUDED.additions,
			deletions = EXCLUDED.deletions,
			changed_files = EXCLUDED.changed_files,
			updated_at = EXCLUDED.updated_at,
			closed_at = EXCLUDED.closed_at,
			merged_at = EXCLUDED.merged_at,
			synced_at = now()
	`
	if _, err := s.querier(ctx).ExecContext(ctx, q,
		pr.ID, pr.RepositoryID, pr.Number, pr.Title, pr.Body, pr.State, pr.Draft, pr.Merged,
		pr.AuthorLogin, pr.Additions, pr.Deletions, pr.ChangedFiles, pr.HeadRef, pr.BaseRef,
		pr.CreatedAt, pr.UpdatedAt, pr.ClosedAt, pr.MergedAt); err != nil {
		return fmt.Errorf("upsert pull #%d: %w", pr.Number, err)
	}

	if _, err := s.querier(ctx).ExecContext(ctx, `DELETE FROM pull_request_labels WHERE pull_request_id = $1`, pr.ID); err != nil {
		return fmt.Errorf("clear labels for pull #%d: %w", pr.Number, err)
	}
	for _, label := range pr.Labels {
		if _, err := s.querier(ctx).ExecContext(ctx,
			`INSERT INTO pull_request_labels (pull_request_id, label) VALUES ($1, $2)`, pr.ID, label); err != nil {
			return fmt.Errorf("insert label %q for pull #%d: %w", label, pr.Number, err)
		}
	}
	return nil
}

// PullFilter narrows ListPullRequests (§6.1 GET /repos/{owner}/{repo}/pulls).
type PullFilter struct {
	State        string // "", "open", "closed", "merged"
	UpdatedSince *time.Time
}

// ListPullRequests returns pull requests for a repository, newest-updated
// first, with label membership joined in.
func (s *Store) ListPullRequests(ctx context.Context, repositoryID int64, filter PullFilter) ([]PullRequest, error) {
	q := `SELECT * FROM pull_requests WHERE repository_id = $1`
	args := []any{repositoryID}
	switch filter.State {
	case "merged":
		q += " AND merged = true"
	case "open", "closed":
		args = append(args, filter.State)
		q += fmt.Sprintf(" AND state = $%d", len(args))
	}
	if filter.UpdatedSince != nil {
		args = append(args, *filter.UpdatedSince)
		q += fmt.Sprintf(" AND updated_at >= $%d", len(args))
	}
	q += " ORDER BY updated_at DESC"

	var pulls []PullRequest
	if err := s.querier(ctx).SelectContext(ctx, &pulls, q, args...); err != nil {
		return nil, fmt.Errorf("list pulls for repo %d: %w", repositoryID, err)
	}
	for i := range pulls {
		if err := s.querier(ctx).SelectContext(ctx, &pulls[i].Labels,
			`SELECT label FROM pull_request_labels WHERE pull_request_id = $1 ORDER BY label`, pulls[i].ID); err != nil {
			return nil, fmt.Errorf("load labels for pull #%d: %w", pulls[i].Number, err)
		}
	}
	return pulls, nil
}

// GetPullRequest looks up a single pull request by its repo-scoped number.
func (s *Store) GetPullRequest(ctx context.Context, repositoryID int64, number int) (PullRequest, error) {
	var pr PullRequest
	err := s.querier(ctx).GetContext(ctx, &pr, `
		SELECT * FROM pull_requests WHERE repository_id = $1 AND number = $2
	`, repositoryID, number)
	if isNoRows(err) {
		return PullRequest{}, fmt.Errorf("pull #%d: %w", number, ErrNotFound)
	}
	if err != nil {
		return PullRequest{}, fmt.Errorf("get pull #%d: %w", number, err)
	}
	if err := s.querier(ctx).SelectContext(ctx, &pr.Labels,
		`SELECT label FROM pull_request_labels WHERE pull_request_id = $1 ORDER BY label`, pr.ID); err != nil {
		return PullRequest{}, fmt.Errorf("load labels for pull #%d: %w", pr.Number, err)
	}
	return pr, nil
}
