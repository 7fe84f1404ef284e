package warehouse

import "time"

// Repository is the root entity; every other entity belongs to one (§3).
type Repository struct {
	ID             int64     `db:"id" json:"id"`
	Owner          string    `db:"owner" json:"owner"`
	Name           string    `db:"name" json:"name"`
	FullName       string    `db:"full_name" json:"full_name"`
	DefaultBranch  string    `db:"default_branch" json:"default_branch"`
	Private        bool      `db:"private" json:"private"`
	OrgTag         string    `db:"org_tag" json:"org_tag"`
	HostCreatedAt  *time.Time `db:"host_created_at" json:"host_created_at,omitempty"`
	HostUpdatedAt  *time.Time `db:"host_updated_at" json:"host_updated_at,omitempty"`
	SyncedAt       time.Time `db:"synced_at" json:"synced_at"`
}

// Milestone belongs to a Repository (§3).
type Milestone struct {
	ID            int64      `db:"id" json:"id"`
	RepositoryID  int64      `db:"repository_id" json:"repository_id"`
	Number        int        `db:"number" json:"number"`
	Title         string     `db:"title" json:"title"`
	Description   string     `db:"description" json:"description"`
	State         string     `db:"state" json:"state"`
	OpenIssues    int        `db:"open_issues" json:"open_issues"`
	ClosedIssues  int        `db:"closed_issues" json:"closed_issues"`
	DueOn         *time.Time `db:"due_on" json:"due_on,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	ClosedAt      *time.Time `db:"closed_at" json:"closed_at,omitempty"`
	SyncedAt      time.Time  `db:"synced_at" json:"synced_at"`
}

// Issue belongs to a Repository and optionally a Milestone (§3).
type Issue struct {
	ID            int64      `db:"id" json:"id"`
	RepositoryID  int64      `db:"repository_id" json:"repository_id"`
	Number        int        `db:"number" json:"number"`
	Title         string     `db:"title" json:"title"`
	Body          string     `db:"body" json:"body"`
	State         string     `db:"state" json:"state"`
	AuthorLogin   string     `db:"author_login" json:"author_login"`
	CommentsCount int        `db:"comments_count" json:"comments_count"`
	MilestoneID   *int64     `db:"milestone_id" json:"milestone_id,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
	ClosedAt      *time.Time `db:"closed_at" json:"closed_at,omitempty"`
	SyncedAt      time.Time  `db:"synced_at" json:"synced_at"`

	// Populated by ListIssues/GetIssue as a convenience join; never written
	// to a column of the issues table itself.
	Labels     []string `db:"-" json:"labels,omitempty"`
	Assignees  []string `db:"-" json:"assignees,omitempty"`
}

// PullRequest belongs to a Repository (§3).
type PullRequest struct {
	ID            int64      `db:"id" json:"id"`
	RepositoryID  int64      `db:"repository_id" json:"repository_id"`
	Number        int        `db:"number" json:"number"`
	Title         string     `db:"title" json:"title"`
	Body          string     `db:"body" json:"body"`
	State         string     `db:"state" json:"state"`
	Draft         bool       `db:"draft" json:"draft"`
	Merged        bool       `db:"merged" json:"merged"`
	AuthorLogin   string     `db:"author_login" json:"author_login"`
	Additions     int        `db:"additions" json:"additions"`
	Deletions     int        `db:"deletions" json:"deletions"`
	ChangedFiles  int        `db:"changed_files" json:"changed_files"`
	HeadRef       string     `db:"head_ref" json:"head_ref"`
	BaseRef       string     `db:"base_ref" json:"base_ref"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
	ClosedAt      *time.Time `db:"closed_at" json:"closed_at,omitempty"`
	MergedAt      *time.Time `db:"merged_at" json:"merged_at,omitempty"`
	SyncedAt      time.Time  `db:"synced_at" json:"synced_at"`

	Labels []string `db:"-" json:"labels,omitempty"`
}

// Size returns additions+deletions, the quantity PR size bins (§4.5) key on.
func (p PullRequest) Size() int { return p.Additions + p.Deletions }

// Release belongs to a Repository (§3).
type Release struct {
	ID            int64      `db:"id" json:"id"`
	RepositoryID  int64      `db:"repository_id" json:"repository_id"`
	Tag           string     `db:"tag" json:"tag"`
	Name          string     `db:"name" json:"name"`
	Body          string     `db:"body" json:"body"`
	Draft         bool       `db:"draft" json:"draft"`
	Prerelease    bool       `db:"prerelease" json:"prerelease"`
	AuthorLogin   string     `db:"author_login" json:"author_login"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	PublishedAt   *time.Time `db:"published_at" json:"published_at,omitempty"`
	SyncedAt      time.Time  `db:"synced_at" json:"synced_at"`
}

// IssueEvent belongs to an Issue, append-only within a sync window (§3).
//
// EventType is one of the host's timeline event names; SLA response
// detection (§4.5) only looks at "commented", "assigned", "labeled".
type IssueEvent struct {
	ID             int64     `db:"id" json:"id"`
	IssueID        int64     `db:"issue_id" json:"issue_id"`
	EventType      string    `db:"event_type" json:"event_type"`
	ActorLogin     string    `db:"actor_login" json:"actor_login"`
	Label          string    `db:"label" json:"label,omitempty"`
	Assignee       string    `db:"assignee" json:"assignee,omitempty"`
	MilestoneTitle string    `db:"milestone_title" json:"milestone_title,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	SyncedAt       time.Time `db:"synced_at" json:"synced_at"`
}

// Organization is the root for Projects (§3).
type Organization struct {
	Name            string     `db:"name" json:"name"`
	DefaultBaseURL  string     `db:"default_base_url" json:"default_base_url"`
	LastSyncedAt    *time.Time `db:"last_synced_at" json:"last_synced_at,omitempty"`
}

// Project is a Projects V2 board, belonging to an Organization (§3).
type Project struct {
	NodeID       string    `db:"node_id" json:"node_id"`
	Organization string    `db:"organization" json:"organization"`
	Number       int       `db:"number" json:"number"`
	Title        string    `db:"title" json:"title"`
	Description  string    `db:"description" json:"description"`
	URL          string    `db:"url" json:"url"`
	Closed       bool      `db:"closed" json:"closed"`
	TotalItems   int       `db:"total_items" json:"total_items"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
	SyncedAt     time.Time `db:"synced_at" json:"synced_at"`
}

// ProjectField is a typed field configured on a Project (§3, §9).
type ProjectField struct {
	NodeID     string    `db:"node_id" json:"node_id"`
	ProjectID  string    `db:"project_id" json:"project_id"`
	Name       string    `db:"name" json:"name"`
	FieldType  string    `db:"field_type" json:"field_type"`
	ConfigJSON string    `db:"config_json" json:"config_json"`
	SyncedAt   time.Time `db:"synced_at" json:"synced_at"`
}

// ProjectItem is a card on a Project board (§3, §9).
type ProjectItem struct {
	NodeID              string    `db:"node_id" json:"node_id"`
	ProjectID           string    `db:"project_id" json:"project_id"`
	ContentType         string    `db:"content_type" json:"content_type"`
	ContentNumber       int       `db:"content_number" json:"content_number"`
	Title               string    `db:"title" json:"title"`
	State               string    `db:"state" json:"state"`
	URL                 string    `db:"url" json:"url"`
	RepositoryFullName  string    `db:"repository_full_name" json:"repository_full_name"`
	ContentJSON         string    `db:"content_json" json:"-"`
	FieldValuesJSON     string    `db:"field_values_json" json:"-"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
	SyncedAt            time.Time `db:"synced_at" json:"synced_at"`
}

// SyncStatus is per-surface sync bookkeeping for a Repository (§3, §4.4).
type SyncStatus struct {
	RepositoryID  int64      `db:"repository_id" json:"repository_id"`
	Surface       string     `db:"surface" json:"surface"`
	LastSuccessAt *time.Time `db:"last_success_at" json:"last_success_at,omitempty"`
	LastError     string     `db:"last_error" json:"last_error,omitempty"`
	LastErrorAt   *time.Time `db:"last_error_at" json:"last_error_at,omitempty"`
}

// Surface names used as the `surface` column value and as dictionary keys
// throughout the Sync Coordinator (§4.4 fixed ordering).
const (
	SurfaceRepository = "repository"
	SurfaceMilestones = "milestones"
	SurfaceIssues     = "issues"
	SurfaceEvents     = "issue_events"
	SurfacePulls      = "pulls"
	SurfaceReleases   = "releases"
	SurfaceProjects   = "projects"
)
