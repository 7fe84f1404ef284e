package hostclient

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shurcooL/githubv4"
)

// ProjectV2 is the typed shape of an organization's Projects V2 board
// (§3: Project). Its items' FieldValuesJSON/ContentJSON (see ProjectV2Item)
// are left opaque (§9 Design Note) for the Warehouse to store and the
// Derivation Layer to project with gjson, since the host's field schema is
// organization-defined and open-ended.
type ProjectV2 struct {
	NodeID      string
	Number      int
	Title       string
	Description string
	URL         string
	Closed      bool
	TotalItems  int
	CreatedAt   githubv4.DateTime
	UpdatedAt   githubv4.DateTime
}

// ProjectV2Item is a single card on a project board.
type ProjectV2Item struct {
	NodeID          string
	ContentType     string
	ContentNumber   int
	Title           string
	State           string
	URL             string
	RepositoryName  string
	CreatedAt       githubv4.DateTime
	UpdatedAt       githubv4.DateTime
	ContentJSON     string
	FieldValuesJSON string
}

type projectsQuery struct {
	Organization struct {
		ProjectsV2 struct {
			Nodes []struct {
				ID          githubv4.ID
				Number      int
				Title       string
				ShortDescription string
				URL         githubv4.URI
				Closed      bool
				CreatedAt   githubv4.DateTime
				UpdatedAt   githubv4.DateTime
				Items       struct {
					TotalCount int
				}
			}
			PageInfo struct {
				EndCursor   githubv4.String
				HasNextPage bool
			}
		} `graphql:"projectsV2(first: 20, after: $after)"`
	} `graphql:"organization(login: $login)"`
}

// ListProjects returns every Projects V2 board for an organization. Unlike
// the REST-backed operations, this pages in-memory since board counts per
// organization are small (tens, not thousands).
func (c *Client) ListProjects(ctx context.Context, org string) ([]ProjectV2, error) {
	var out []ProjectV2
	var after *githubv4.String
	for {
		var q projectsQuery
		vars := map[string]any{
			"login": githubv4.String(org),
			"after": after,
		}
		if err := c.queryGraphQL(ctx, "list_projects", &q, vars); err != nil {
			return nil, err
		}
		for _, n := range q.Organization.ProjectsV2.Nodes {
			out = append(out, ProjectV2{
				NodeID:      idString(n.ID),
				Number:      n.Number,
				Title:       n.Title,
				Description: n.ShortDescription,
				URL:         n.URL.String(),
				Closed:      n.Closed,
				TotalItems:  n.Items.TotalCount,
				CreatedAt:   n.CreatedAt,
				UpdatedAt:   n.UpdatedAt,
			})
		}
		if !q.Organization.ProjectsV2.PageInfo.HasNextPage {
			break
		}
		after = &q.Organization.ProjectsV2.PageInfo.EndCursor
	}
	return out, nil
}

type contentFields struct {
	Number     int
	Title      string
	State      string
	URL        githubv4.URI
	Repository struct {
		NameWithOwner string
	}
}

type fieldValueNode struct {
	ProjectV2ItemFieldValueCommon struct {
		Field struct {
			ProjectV2FieldCommon struct {
				Name string
			} `graphql:"... on ProjectV2FieldCommon"`
		}
	} `graphql:"... on ProjectV2ItemFieldValueCommon"`
	Text struct {
		Text string
	} `graphql:"... on ProjectV2ItemFieldTextValue"`
	Number struct {
		Number float64
	} `graphql:"... on ProjectV2ItemFieldNumberValue"`
	SingleSelect struct {
		Name string
	} `graphql:"... on ProjectV2ItemFieldSingleSelectValue"`
}

// itemNode is the GraphQL node shape for a single project card; named so
// the query struct and flattenProjectItem can share it exactly.
type itemNode struct {
	ID      githubv4.ID
	Content struct {
		Typename    githubv4.String `graphql:"__typename"`
		Issue       contentFields   `graphql:"... on Issue"`
		PullRequest contentFields   `graphql:"... on PullRequest"`
		DraftIssue  struct {
			Title string
		} `graphql:"... on DraftIssue"`
	}
	FieldValues struct {
		Nodes []fieldValueNode
	} `graphql:"fieldValues(first: 20)"`
}

type projectItemsQuery struct {
	Node struct {
		ProjectV2 struct {
			Items struct {
				Nodes    []itemNode
				PageInfo struct {
					EndCursor   githubv4.String
					HasNextPage bool
				}
			} `graphql:"items(first: 50, after: $after)"`
		} `graphql:"... on ProjectV2"`
	} `graphql:"node(id: $id)"`
}

// ListProjectItems returns every card on a project board identified by its
// GraphQL node ID, flattening field values into an opaque JSON blob (§9).
func (c *Client) ListProjectItems(ctx context.Context, projectNodeID string) ([]ProjectV2Item, error) {
	var out []ProjectV2Item
	var after *githubv4.String
	for {
		var q projectItemsQuery
		vars := map[string]any{
			"id":    githubv4.ID(projectNodeID),
			"after": after,
		}
		if err := c.queryGraphQL(ctx, "list_project_items", &q, vars); err != nil {
			return nil, err
		}
		for _, n := range q.Node.ProjectV2.Items.Nodes {
			item, err := flattenProjectItem(n)
			if err != nil {
				return nil, &Error{Kind: KindParse, Op: "list_project_items", Err: err}
			}
			out = append(out, item)
		}
		if !q.Node.ProjectV2.Items.PageInfo.HasNextPage {
			break
		}
		after = &q.Node.ProjectV2.Items.PageInfo.EndCursor
	}
	return out, nil
}

func flattenProjectItem(n itemNode) (ProjectV2Item, error) {
	item := ProjectV2Item{NodeID: idString(n.ID)}

	contentBlob := map[string]any{"type": string(n.Content.Typename)}
	switch n.Content.Typename {
	case "Issue":
		item.ContentType = "Issue"
		item.ContentNumber = n.Content.Issue.Number
		item.Title = n.Content.Issue.Title
		item.State = n.Content.Issue.State
		item.URL = n.Content.Issue.URL.String()
		item.RepositoryName = n.Content.Issue.Repository.NameWithOwner
		contentBlob["number"] = n.Content.Issue.Number
		contentBlob["state"] = n.Content.Issue.State
	case "PullRequest":
		item.ContentType = "PullRequest"
		item.ContentNumber = n.Content.PullRequest.Number
		item.Title = n.Content.PullRequest.Title
		item.State = n.Content.PullRequest.State
		item.URL = n.Content.PullRequest.URL.String()
		item.RepositoryName = n.Content.PullRequest.Repository.NameWithOwner
		contentBlob["number"] = n.Content.PullRequest.Number
		contentBlob["state"] = n.Content.PullRequest.State
	default:
		item.ContentType = "DraftIssue"
		item.Title = n.Content.DraftIssue.Title
	}

	fieldValues := make(map[string]any, len(n.FieldValues.Nodes))
	for _, fv := range n.FieldValues.Nodes {
		name := fv.ProjectV2ItemFieldValueCommon.Field.ProjectV2FieldCommon.Name
		if name == "" {
			continue
		}
		switch {
		case fv.Text.Text != "":
			fieldValues[name] = fv.Text.Text
		case fv.SingleSelect.Name != "":
			fieldValues[name] = fv.SingleSelect.Name
		default:
			fieldValues[name] = fv.Number.Number
		}
	}

	contentJSON, err := json.Marshal(contentBlob)
	if err != nil {
		return ProjectV2Item{}, err
	}
	fieldValuesJSON, err := json.Marshal(fieldValues)
	if err != nil {
		return ProjectV2Item{}, err
	}
	item.ContentJSON = string(contentJSON)
	item.FieldValuesJSON = string(fieldValuesJSON)
	return item, nil
}

func idString(id githubv4.ID) string {
	if s, ok := id.(string); ok {
		return s
	}
	b, _ := json.Marshal(id)
	return string(b)
}

// queryGraphQL runs a single GraphQL query through the same per-credential
// limiter, retry count and back-off curve as REST operations (§4.2), since
// the host enforces the same credential-scoped budget across both surfaces.
// Every GraphQL failure is treated as a transport error and retried, and
// rate-limit response headers are not observed on this path.
func (c *Client) queryGraphQL(ctx context.Context, op string, q any, vars map[string]any) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return &Error{Kind: KindTransport, Op: op, Err: err}
		}
		err := c.graphql.Query(ctx, q, vars)
		if err == nil {
			return nil
		}
		classified := &Error{Kind: KindTransport, Op: op, Err: err}
		lastErr = classified
		if attempt == maxRetries {
			break
		}
		wait := backoff(attempt, classified)
		c.log.Warn().Str("op", op).Int("attempt", attempt+1).Dur("wait", wait).Msg("retrying graphql query")
		select {
		case <-ctx.Done():
			return &Error{Kind: KindTransport, Op: op, Err: ctx.Err()}
		case <-time.After(wait):
		}
	}
	return lastErr
}
