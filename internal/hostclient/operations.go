package hostclient

import (
	"context"
	"strconv"
	"time"

	"github.com/google/go-github/v53/github"
)

// IssueListOptions narrows ListIssues, mirroring the host's own filter
// vocabulary (state, since) rather than inventing one (§4.2).
type IssueListOptions struct {
	State string // "all", "open", "closed"; empty means "all"
	Since time.Time
}

// ListIssues returns a Pager over an owner/repo's issues, newest-updated
// first, requesting the host's max page size to minimize request count.
func (c *Client) ListIssues(owner, repo string, opts IssueListOptions) *Pager[*github.Issue] {
	state := opts.State
	if state == "" {
		state = "all"
	}
	return newPager(func(ctx context.Context, cursor string) ([]*github.Issue, string, bool, error) {
		page, _ := strconv.Atoi(cursor)
		listOpts := &github.IssueListByRepoOptions{
			State: state,
			Sort:  "updated",
			Since: opts.Since,
			ListOptions: github.ListOptions{
				Page:    page,
				PerPage: perPage,
			},
		}
		var issues []*github.Issue
		var nextPage int
		err := c.do(ctx, "list_issues", func(ctx context.Context) (*github.Response, error) {
			var resp *github.Response
			var err error
			issues, resp, err = c.rest.Issues.ListByRepo(ctx, owner, repo, listOpts)
			if resp != nil {
				nextPage = resp.NextPage
			}
			return resp, err
		})
		if err != nil {
			return nil, "", false, err
		}
		// Pull requests surface in the issues listing; the Sync Coordinator
		// dispatches them separately, so exclude them here.
		filtered := issues[:0]
		for _, issue := range issues {
			if issue.IsPullRequest() {
				continue
			}
			filtered = append(filtered, issue)
		}
		return filtered, strconv.Itoa(nextPage), nextPage != 0, nil
	})
}

// PullListOptions narrows ListPullRequests.
type PullListOptions struct {
	State string // "all", "open", "closed"
}

// ListPullRequests returns a Pager over an owner/repo's pull requests.
func (c *Client) ListPullRequests(owner, repo string, opts PullListOptions) *Pager[*github.PullRequest] {
	state := opts.State
	if state == "" {
		state = "all"
	}
	return newPager(func(ctx context.Context, cursor string) ([]*github.PullRequest, string, bool, error) {
		page, _ := strconv.Atoi(cursor)
		listOpts := &github.PullRequestListOptions{
			State: state,
			Sort:  "updated",
			ListOptions: github.ListOptions{
				Page:    page,
				PerPage: perPage,
			},
		}
		var pulls []*github.PullRequest
		var nextPage int
		err := c.do(ctx, "list_pull_requests", func(ctx context.Context) (*github.Response, error) {
			var resp *github.Response
			var err error
			pulls, resp, err = c.rest.PullRequests.List(ctx, owner, repo, listOpts)
			if resp != nil {
				nextPage = resp.NextPage
			}
			return resp, err
		})
		if err != nil {
			return nil, "", false, err
		}
		return pulls, strconv.Itoa(nextPage), nextPage != 0, nil
	})
}

// ListMilestones returns a Pager over an owner/repo's milestones.
func (c *Client) ListMilestones(owner, repo string) *Pager[*github.Milestone] {
	return newPager(func(ctx context.Context, cursor string) ([]*github.Milestone, string, bool, error) {
		page, _ := strconv.Atoi(cursor)
		listOpts := &github.MilestoneListOptions{
			State: "all",
			ListOptions: github.ListOptions{
				Page:    page,
				PerPage: perPage,
			},
		}
		var milestones []*github.Milestone
		var nextPage int
		err := c.do(ctx, "list_milestones", func(ctx context.Context) (*github.Response, error) {
			var resp *github.Response
			var err error
			milestones, resp, err = c.rest.Issues.ListMilestones(ctx, owner, repo, listOpts)
			if resp != nil {
				nextPage = resp.NextPage
			}
			return resp, err
		})
		if err != nil {
			return nil, "", false, err
		}
		return milestones, strconv.Itoa(nextPage), nextPage != 0, nil
	})
}

// ListReleases returns a Pager over an owner/repo's releases.
func (c *Client) ListReleases(owner, repo string) *Pager[*github.RepositoryRelease] {
	return newPager(func(ctx context.Context, cursor string) ([]*github.RepositoryRelease, string, bool, error) {
		page, _ := strconv.Atoi(cursor)
		listOpts := &github.ListOptions{Page: page, PerPage: perPage}
		var releases []*github.RepositoryRelease
		var nextPage int
		err := c.do(ctx, "list_releases", func(ctx context.Context) (*github.Response, error) {
			var resp *github.Response
			var err error
			releases, resp, err = c.rest.Repositories.ListReleases(ctx, owner, repo, listOpts)
			if resp != nil {
				nextPage = resp.NextPage
			}
			return resp, err
		})
		if err != nil {
			return nil, "", false, err
		}
		return releases, strconv.Itoa(nextPage), nextPage != 0, nil
	})
}

// ListIssueEvents returns a Pager over a single issue's timeline events.
func (c *Client) ListIssueEvents(owner, repo string, number int) *Pager[*github.IssueEvent] {
	return newPager(func(ctx context.Context, cursor string) ([]*github.IssueEvent, string, bool, error) {
		page, _ := strconv.Atoi(cursor)
		listOpts := &github.ListOptions{Page: page, PerPage: perPage}
		var events []*github.IssueEvent
		var nextPage int
		err := c.do(ctx, "list_issue_events", func(ctx context.Context) (*github.Response, error) {
			var resp *github.Response
			var err error
			events, resp, err = c.rest.Issues.ListIssueEvents(ctx, owner, repo, number, listOpts)
			if resp != nil {
				nextPage = resp.NextPage
			}
			return resp, err
		})
		if err != nil {
			return nil, "", false, err
		}
		return events, strconv.Itoa(nextPage), nextPage != 0, nil
	})
}

// GetRepository fetches a single repository's metadata.
func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*github.Repository, error) {
	var out *github.Repository
	err := c.do(ctx, "get_repository", func(ctx context.Context) (*github.Response, error) {
		var resp *github.Response
		var err error
		out, resp, err = c.rest.Repositories.Get(ctx, owner, repo)
		return resp, err
	})
	return out, err
}
