package sync

import (
	"context"
	"time"

	"github.com/google/go-github/v53/github"

	"github.com/prabasiva/greport/internal/hostclient"
	"github.com/prabasiva/greport/internal/warehouse"
)

func (c *Coordinator) syncMilestones(ctx context.Context, repo warehouse.Repository) error {
	pager := c.client.ListMilestones(repo.Owner, repo.Name)
	for !pager.Done() {
		page, err := pager.Next(ctx)
		if err != nil {
			return err
		}
		milestones := make([]warehouse.Milestone, 0, len(page))
		for _, m := range page {
			milestones = append(milestones, toMilestone(repo.ID, m))
		}
		if err := c.store.WithTx(ctx, func(ctx context.Context) error {
			return c.store.UpsertMilestones(ctx, repo.ID, milestones)
		}); err != nil {
			return err
		}
	}
	return nil
}

func toMilestone(repositoryID int64, m *github.Milestone) warehouse.Milestone {
	out := warehouse.Milestone{
		ID:           m.GetID(),
		RepositoryID: repositoryID,
		Number:       m.GetNumber(),
		Title:        m.GetTitle(),
		Description:  m.GetDescription(),
		State:        m.GetState(),
		OpenIssues:   m.GetOpenIssues(),
		ClosedIssues: m.GetClosedIssues(),
		CreatedAt:    m.GetCreatedAt().Time,
	}
	if m.DueOn != nil {
		t := m.GetDueOn().Time
		out.DueOn = &t
	}
	if m.ClosedAt != nil {
		t := m.GetClosedAt().Time
		out.ClosedAt = &t
	}
	return out
}

func (c *Coordinator) syncIssues(ctx context.Context, repo warehouse.Repository, since time.Time) error {
	pager := c.client.ListIssues(repo.Owner, repo.Name, hostclient.IssueListOptions{Since: since})
	for !pager.Done() {
		page, err := pager.Next(ctx)
		if err != nil {
			return err
		}
		if err := c.store.WithTx(ctx, func(ctx context.Context) error {
			for _, issue := range page {
				if err := c.store.UpsertIssue(ctx, toIssue(repo.ID, issue)); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

func toIssue(repositoryID int64, i *github.Issue) warehouse.Issue {
	out := warehouse.Issue{
		ID:            i.GetID(),
		RepositoryID:  repositoryID,
		Number:        i.GetNumber(),
		Title:         i.GetTitle(),
		Body:          i.GetBody(),
		State:         i.GetState(),
		AuthorLogin:   i.GetUser().GetLogin(),
		CommentsCount: i.GetComments(),
		CreatedAt:     i.GetCreatedAt().Time,
		UpdatedAt:     i.GetUpdatedAt().Time,
	}
	if i.Milestone != nil {
		id := i.Milestone.GetID()
		out.MilestoneID = &id
	}
	if i.ClosedAt != nil {
		t := i.GetClosedAt().Time
		out.ClosedAt = &t
	}
	for _, l := range i.Labels {
		out.Labels = append(out.Labels, l.GetName())
	}
	for _, a := range i.Assignees {
		out.Assignees = append(out.Assignees, a.GetLogin())
	}
	return out
}

// syncIssueEvents walks every currently-tracked issue's timeline. Bounded
// by the repository's issue count (§4.3 Read shapes: volumes fit in
// memory for a single tracked repository).
func (c *Coordinator) syncIssueEvents(ctx context.Context, repo warehouse.Repository) error {
	issues, err := c.store.ListIssues(ctx, repo.ID, warehouse.IssueFilter{})
	if err != nil {
		return err
	}
	for _, issue := range issues {
		pager := c.client.ListIssueEvents(repo.Owner, repo.Name, issue.Number)
		for !pager.Done() {
			page, err := pager.Next(ctx)
			if err != nil {
				return err
			}
			events := make([]warehouse.IssueEvent, 0, len(page))
			for _, e := range page {
				events = append(events, toIssueEvent(issue.ID, e))
			}
			if err := c.store.WithTx(ctx, func(ctx context.Context) error {
				return c.store.UpsertIssueEvents(ctx, events)
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func toIssueEvent(issueID int64, e *github.IssueEvent) warehouse.IssueEvent {
	out := warehouse.IssueEvent{
		ID:         e.GetID(),
		IssueID:    issueID,
		EventType:  e.GetEvent(),
		ActorLogin: e.GetActor().GetLogin(),
		CreatedAt:  e.GetCreatedAt(),
	}
	if e.Label != nil {
		out.Label = e.Label.GetName()
	}
	if e.Assignee != nil {
		out.Assignee = e.Assignee.GetLogin()
	}
	if e.Milestone != nil {
		out.MilestoneTitle = e.Milestone.GetTitle()
	}
	return out
}

func (c *Coordinator) syncPullRequests(ctx context.Context, repo warehouse.Repository) error {
	pager := c.client.ListPullRequests(repo.Owner, repo.Name, hostclient.PullListOptions{})
	for !pager.Done() {
		page, err := pager.Next(ctx)
		if err != nil {
			return err
		}
		if err := c.store.WithTx(ctx, func(ctx context.Context) error {
			for _, pr := range page {
				if err := c.store.UpsertPullRequest(ctx, toPullRequest(repo.ID, pr)); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

func toPullRequest(repositoryID int64, p *github.PullRequest) warehouse.PullRequest {
	out := warehouse.PullRequest{
		ID:           p.GetID(),
		RepositoryID: repositoryID,
		Number:       p.GetNumber(),
		Title:        p.GetTitle(),
		Body:         p.GetBody(),
		State:        p.GetState(),
		Draft:        p.GetDraft(),
		Merged:       p.GetMerged(),
		AuthorLogin:  p.GetUser().GetLogin(),
		Additions:    p.GetAdditions(),
		Deletions:    p.GetDeletions(),
		ChangedFiles: p.GetChangedFiles(),
		HeadRef:      p.GetHead().GetRef(),
		BaseRef:      p.GetBase().GetRef(),
		CreatedAt:    p.GetCreatedAt().Time,
		UpdatedAt:    p.GetUpdatedAt().Time,
	}
	if p.ClosedAt != nil {
		t := p.GetClosedAt().Time
		out.ClosedAt = &t
	}
	if p.MergedAt != nil {
		t := p.GetMergedAt().Time
		out.MergedAt = &t
	}
	for _, l := range p.Labels {
		out.Labels = append(out.Labels, l.GetName())
	}
	return out
}

func (c *Coordinator) syncReleases(ctx context.Context, repo warehouse.Repository) error {
	pager := c.client.ListReleases(repo.Owner, repo.Name)
	for !pager.Done() {
		page, err := pager.Next(ctx)
		if err != nil {
			return err
		}
		releases := make([]warehouse.Release, 0, len(page))
		for _, r := range page {
			releases = append(releases, toRelease(repo.ID, r))
		}
		if err := c.store.WithTx(ctx, func(ctx context.Context) error {
			return c.store.UpsertReleases(ctx, repo.ID, releases)
		}); err != nil {
			return err
		}
	}
	return nil
}

func toRelease(repositoryID int64, r *github.RepositoryRelease) warehouse.Release {
	out := warehouse.Release{
		ID:           r.GetID(),
		RepositoryID: repositoryID,
		Tag:          r.GetTagName(),
		Name:         r.GetName(),
		Body:         r.GetBody(),
		Draft:        r.GetDraft(),
		Prerelease:   r.GetPrerelease(),
		AuthorLogin:  r.GetAuthor().GetLogin(),
		CreatedAt:    r.GetCreatedAt().Time,
	}
	if r.PublishedAt != nil {
		t := r.GetPublishedAt().Time
		out.PublishedAt = &t
	}
	return out
}
