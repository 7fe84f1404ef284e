package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBatchPreservesOrderOnResolutionFailure(t *testing.T) {
	repos := []RepoRef{
		{Owner: "acme", Name: "widgets"},
		{Owner: "unlisted", Name: "gizmos"},
		{Owner: "acme", Name: "sprockets"},
	}

	coordinatorFor := func(ctx context.Context, owner string) (*Coordinator, string, error) {
		if owner == "unlisted" {
			return nil, "", errors.New("no credential configured for owner")
		}
		return nil, "", errors.New("stub coordinator unavailable in unit test")
	}

	result := RunBatch(context.Background(), repos, coordinatorFor, BatchOptions{})

	require.Len(t, result.Outcomes, 3)
	for i, repo := range repos {
		assert.Equal(t, repo, result.Outcomes[i].Repo)
		require.Error(t, result.Outcomes[i].Err)
	}
	assert.Equal(t, "unlisted", repos[1].Owner)
}

func TestRunBatchEmptyInput(t *testing.T) {
	coordinatorFor := func(ctx context.Context, owner string) (*Coordinator, string, error) {
		t.Fatal("coordinatorFor should never be called for an empty repo list")
		return nil, "", nil
	}

	result := RunBatch(context.Background(), nil, coordinatorFor, BatchOptions{})
	assert.Empty(t, result.Outcomes)
}

func TestBatchResultWarningsFormatsResolutionErrors(t *testing.T) {
	result := BatchResult{
		Outcomes: []BatchOutcome{
			{Repo: RepoRef{Owner: "acme", Name: "widgets"}, Err: errors.New("no credential configured for owner")},
			{Repo: RepoRef{Owner: "acme", Name: "sprockets"}},
		},
	}

	warnings := result.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, "acme/widgets: no credential configured for owner", warnings[0])
}

func TestRunBatchResolvesCredentialForEveryRepository(t *testing.T) {
	repos := []RepoRef{
		{Owner: "acme", Name: "widgets"},
		{Owner: "acme", Name: "sprockets"},
	}

	var seenOwners []string
	coordinatorFor := func(ctx context.Context, owner string) (*Coordinator, string, error) {
		seenOwners = append(seenOwners, owner)
		return nil, "org:acme", errors.New("stub coordinator unavailable in unit test")
	}

	result := RunBatch(context.Background(), repos, coordinatorFor, BatchOptions{MaxWorkers: 4})

	require.Len(t, result.Outcomes, 2)
	assert.Equal(t, []string{"acme", "acme"}, seenOwners)
}
