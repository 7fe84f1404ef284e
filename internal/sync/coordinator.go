// Package sync is the Sync Coordinator (spec §4.4): it orchestrates pulling
// one repository's surfaces from the Host Client and upserting them into
// the Warehouse, in the fixed surface order the spec names, tolerating a
// per-surface failure without aborting the rest of the run.
package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/prabasiva/greport/internal/hostclient"
	"github.com/prabasiva/greport/internal/warehouse"
	"github.com/prabasiva/greport/pkg/logger"
)

// overlap absorbs clock skew and late events between incremental syncs
// (§4.4 Incremental sync).
const overlap = 1 * time.Hour

// State is a surface's position in the per-surface state machine
// (§4.4: Idle → Fetching(page n) → Upserting(page n) → Fetching(page n+1) |
// Done | Failed).
type State string

const (
	StateIdle      State = "idle"
	StateFetching  State = "fetching"
	StateUpserting State = "upserting"
	StateDone      State = "done"
	StateFailed    State = "failed"
)

// SurfaceResult is one surface's outcome within a sync run.
type SurfaceResult struct {
	Surface string
	State   State
	Pages   int
	Items   int
	Warning string // non-empty when State == StateFailed; the run continues regardless
}

// Result is the outcome of syncing a single repository (§4.4: "the
// coordinator accumulates warnings and reports them on the returned sync
// result").
type Result struct {
	Owner      string
	Name       string
	Surfaces   []SurfaceResult
	StartedAt  time.Time
	FinishedAt time.Time
}

// Warnings returns every surface's warning, in surface order.
func (r Result) Warnings() []string {
	var out []string
	for _, s := range r.Surfaces {
		if s.Warning != "" {
			out = append(out, fmt.Sprintf("%s: %s", s.Surface, s.Warning))
		}
	}
	return out
}

// Options controls a single repository sync.
type Options struct {
	// Full forces a full resync of every surface, ignoring each surface's
	// synced_at cursor (§4.4: forced when last_error is set or the config
	// requests it).
	Full bool
}

// Coordinator drives one repository's sync against a single Host Client
// credential and the shared Warehouse.
type Coordinator struct {
	store  *warehouse.Store
	client *hostclient.Client
	log    *logger.Logger
	now    func() time.Time
}

// New builds a Coordinator for one credential's Host Client and the shared
// warehouse Store.
func New(store *warehouse.Store, client *hostclient.Client, log *logger.Logger) *Coordinator {
	return &Coordinator{store: store, client: client, log: log, now: time.Now}
}

// surfaceOrder is the fixed sequencing §4.4 requires: "repository meta →
// milestones → issues → issue labels/assignees → issue events → pull
// requests → releases → projects (if organization-scoped)". Issue
// labels/assignees are folded into the issues surface (the Warehouse's
// UpsertIssue writes both atomically); projects are synced separately at
// the organization level, not per repository.
var surfaceOrder = []string{
	warehouse.SurfaceRepository,
	warehouse.SurfaceMilestones,
	warehouse.SurfaceIssues,
	warehouse.SurfaceEvents,
	warehouse.SurfacePulls,
	warehouse.SurfaceReleases,
}

// SyncRepository runs the full surface sequence for one owner/repo,
// recording a per-surface result regardless of individual failures.
func (c *Coordinator) SyncRepository(ctx context.Context, owner, name string, opts Options) (Result, error) {
	started := c.now()
	result := Result{Owner: owner, Name: name, StartedAt: started}

	repo, err := c.syncRepositoryMeta(ctx, owner, name)
	result.Surfaces = append(result.Surfaces, c.finish(warehouse.SurfaceRepository, err))
	if err != nil {
		result.FinishedAt = c.now()
		return result, fmt.Errorf("sync %s/%s: repository meta: %w", owner, name, err)
	}

	for _, surface := range surfaceOrder[1:] {
		surfErr := c.syncSurface(ctx, repo, surface, opts)
		result.Surfaces = append(result.Surfaces, c.finish(surface, surfErr))
		if surfErr != nil {
			c.log.WithRepo(owner, name).WithError(surfErr).Warn("surface sync failed, continuing")
		}
	}

	result.FinishedAt = c.now()
	return result, nil
}

func (c *Coordinator) finish(surface string, err error) SurfaceResult {
	if err != nil {
		return SurfaceResult{Surface: surface, State: StateFailed, Warning: err.Error()}
	}
	return SurfaceResult{Surface: surface, State: StateDone}
}

func (c *Coordinator) syncRepositoryMeta(ctx context.Context, owner, name string) (warehouse.Repository, error) {
	hostRepo, err := c.client.GetRepository(ctx, owner, name)
	if err != nil {
		return warehouse.Repository{}, err
	}

	repo := warehouse.Repository{
		ID:            hostRepo.GetID(),
		Owner:         owner,
		Name:          name,
		FullName:      hostRepo.GetFullName(),
		DefaultBranch: hostRepo.GetDefaultBranch(),
		Private:       hostRepo.GetPrivate(),
	}
	if t := hostRepo.GetCreatedAt().Time; !t.IsZero() {
		repo.HostCreatedAt = &t
	}
	if t := hostRepo.GetUpdatedAt().Time; !t.IsZero() {
		repo.HostUpdatedAt = &t
	}

	var tracked warehouse.Repository
	err = c.store.WithTx(ctx, func(ctx context.Context) error {
		var txErr error
		tracked, txErr = c.store.TrackRepository(ctx, repo)
		return txErr
	})
	return tracked, err
}

func (c *Coordinator) syncSurface(ctx context.Context, repo warehouse.Repository, surface string, opts Options) error {
	since, err := c.cursor(ctx, repo.ID, surface, opts)
	if err != nil {
		return err
	}

	var syncErr error
	switch surface {
	case warehouse.SurfaceMilestones:
		syncErr = c.syncMilestones(ctx, repo)
	case warehouse.SurfaceIssues:
		syncErr = c.syncIssues(ctx, repo, since)
	case warehouse.SurfaceEvents:
		syncErr = c.syncIssueEvents(ctx, repo)
	case warehouse.SurfacePulls:
		syncErr = c.syncPullRequests(ctx, repo)
	case warehouse.SurfaceReleases:
		syncErr = c.syncReleases(ctx, repo)
	}

	now := c.now()
	if syncErr != nil {
		_ = c.store.MarkSyncFailure(ctx, repo.ID, surface, syncErr, now)
		return syncErr
	}
	return c.store.MarkSyncSuccess(ctx, repo.ID, surface, now)
}

// cursor resolves the `since` timestamp passed to incremental operations
// (§4.4): max(synced_at) - overlap, or the zero time for a forced full
// sync (opts.Full, or the surface's last attempt recorded an error).
func (c *Coordinator) cursor(ctx context.Context, repositoryID int64, surface string, opts Options) (time.Time, error) {
	if opts.Full {
		return time.Time{}, nil
	}
	status, err := c.store.GetSyncStatus(ctx, repositoryID, surface)
	if err != nil {
		return time.Time{}, err
	}
	if status.LastError != "" || status.LastSuccessAt == nil {
		return time.Time{}, nil
	}
	return status.LastSuccessAt.Add(-overlap), nil
}
