package derive

import (
	"sort"

	"github.com/prabasiva/greport/internal/warehouse"
)

// ContributorStats is one login's activity counts (§4.5 Contributors).
type ContributorStats struct {
	Login         string `json:"login"`
	IssuesCreated int    `json:"issues_created"`
	PRsCreated    int    `json:"prs_created"`
	PRsMerged     int    `json:"prs_merged"`
}

// ContributorSortBy selects the ranking key for ComputeContributors.
type ContributorSortBy string

const (
	SortByPRs    ContributorSortBy = "prs"
	SortByIssues ContributorSortBy = "issues"
)

// ComputeContributors implements §4.5 Contributors: one row per distinct
// login seen as an issue author, pull-request author, or merged-pull
// author, sorted descending by the caller's chosen key.
func ComputeContributors(issues []warehouse.Issue, pulls []warehouse.PullRequest, sortBy ContributorSortBy, limit int) []ContributorStats {
	byLogin := map[string]*ContributorStats{}
	get := func(login string) *ContributorStats {
		if login == "" {
			return nil
		}
		c, ok := byLogin[login]
		if !ok {
			c = &ContributorStats{Login: login}
			byLogin[login] = c
		}
		return c
	}

	for _, issue := range issues {
		if c := get(issue.AuthorLogin); c != nil {
			c.IssuesCreated++
		}
	}
	for _, pr := range pulls {
		if c := get(pr.AuthorLogin); c != nil {
			c.PRsCreated++
			if pr.Merged {
				c.PRsMerged++
			}
		}
	}

	out := make([]ContributorStats, 0, len(byLogin))
	for _, c := range byLogin {
		out = append(out, *c)
	}

	switch sortBy {
	case SortByPRs:
		sort.Slice(out, func(i, j int) bool {
			if out[i].PRsMerged != out[j].PRsMerged {
				return out[i].PRsMerged > out[j].PRsMerged
			}
			return out[i].Login < out[j].Login
		})
	default:
		sort.Slice(out, func(i, j int) bool {
			if out[i].IssuesCreated != out[j].IssuesCreated {
				return out[i].IssuesCreated > out[j].IssuesCreated
			}
			return out[i].Login < out[j].Login
		})
	}

	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}
