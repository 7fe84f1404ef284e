package sync

import (
	"context"
	"sync"
)

// RepoRef names one tracked repository for a batch sync run.
type RepoRef struct {
	Owner string
	Name  string
}

// CoordinatorFor resolves the Coordinator (and the credential it is bound
// to) that should sync a repository owned by owner. credentialID groups
// repositories that must run sequentially against the same rate budget
// (§4.4/§5: "sync runs are serialized per credential"); it is typically the
// Credential Registry's resolved hostclient.Credential.ID.
type CoordinatorFor func(ctx context.Context, owner string) (coord *Coordinator, credentialID string, err error)

// BatchOptions controls a RunBatch call.
type BatchOptions struct {
	Full bool
	// MaxWorkers bounds how many distinct-credential groups sync
	// concurrently. Zero means one worker per distinct credential, the
	// spec's stated default (§4.4: "one worker per organization").
	MaxWorkers int
}

// BatchOutcome is one repository's result within a batch run. Err is set
// when the repository's credential could not be resolved (Result is then
// zero) or when SyncRepository itself returned an error (Result then holds
// the partial run).
type BatchOutcome struct {
	Repo   RepoRef
	Result Result
	Err    error
}

// BatchResult is the outcome of RunBatch: one BatchOutcome per repository,
// in the order repos was given.
type BatchResult struct {
	Outcomes []BatchOutcome
}

// Warnings flattens every outcome's surface warnings and resolution
// failures into one slice, owner/name-prefixed.
func (b BatchResult) Warnings() []string {
	var out []string
	for _, o := range b.Outcomes {
		if o.Err != nil {
			out = append(out, o.Repo.Owner+"/"+o.Repo.Name+": "+o.Err.Error())
			continue
		}
		for _, w := range o.Result.Warnings() {
			out = append(out, o.Repo.Owner+"/"+o.Repo.Name+": "+w)
		}
	}
	return out
}

// RunBatch syncs every repository in repos (§4.4, §5): sequential within a
// credential group to respect that credential's rate budget, concurrent
// across distinct-credential groups up to a bounded worker pool.
func RunBatch(ctx context.Context, repos []RepoRef, coordinatorFor CoordinatorFor, opts BatchOptions) BatchResult {
	outcomes := make([]BatchOutcome, len(repos))

	type job struct {
		index int
		repo  RepoRef
		coord *Coordinator
	}
	groups := make(map[string][]job)
	var order []string
	for i, repo := range repos {
		coord, credentialID, err := coordinatorFor(ctx, repo.Owner)
		if err != nil {
			outcomes[i] = BatchOutcome{Repo: repo, Err: err}
			continue
		}
		if _, ok := groups[credentialID]; !ok {
			order = append(order, credentialID)
		}
		groups[credentialID] = append(groups[credentialID], job{index: i, repo: repo, coord: coord})
	}

	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = len(order)
	}
	if workers <= 0 {
		return BatchResult{Outcomes: outcomes}
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, credentialID := range order {
		jobs := groups[credentialID]
		wg.Add(1)
		sem <- struct{}{}
		go func(jobs []job) {
			defer wg.Done()
			defer func() { <-sem }()
			for _, j := range jobs {
				result, err := j.coord.SyncRepository(ctx, j.repo.Owner, j.repo.Name, Options{Full: opts.Full})
				mu.Lock()
				outcomes[j.index] = BatchOutcome{Repo: j.repo, Result: result, Err: err}
				mu.Unlock()
			}
		}(jobs)
	}

	wg.Wait()
	return BatchResult{Outcomes: outcomes}
}
