package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prabasiva/greport/internal/warehouse"
)

func TestGenerateReleaseNotesGroupsByCategory(t *testing.T) {
	milestone := warehouse.Milestone{Title: "v1.0"}
	issues := []warehouse.Issue{
		{Number: 1, Title: "crash on startup", State: "closed", Labels: []string{"bug"}},
		{Number: 2, Title: "add dark mode", State: "closed", Labels: []string{"feature"}},
		{Number: 3, Title: "still open", State: "open", Labels: []string{"bug"}},
		{Number: 4, Title: "tidy docs", State: "closed"},
	}

	notes := GenerateReleaseNotes(milestone, issues)
	require.Len(t, notes.Sections, 3) // Features, Bug Fixes, Other (no Breaking)
	assert.Equal(t, NoteFeatures, notes.Sections[0].Category)
	assert.Equal(t, NoteFixes, notes.Sections[1].Category)
	assert.Equal(t, NoteOther, notes.Sections[2].Category)
	assert.Contains(t, notes.Markdown, "v1.0")
	assert.Contains(t, notes.Markdown, "crash on startup")
	assert.NotContains(t, notes.Markdown, "still open")
}

func TestGenerateReleaseNotesEmptyWhenNoClosedIssues(t *testing.T) {
	milestone := warehouse.Milestone{Title: "v2.0"}
	issues := []warehouse.Issue{{Number: 1, Title: "open one", State: "open"}}

	notes := GenerateReleaseNotes(milestone, issues)
	assert.Empty(t, notes.Sections)
}
