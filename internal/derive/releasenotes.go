package derive

import (
	"sort"
	"strconv"
	"strings"

	"github.com/prabasiva/greport/internal/warehouse"
)

// ReleaseNoteCategory buckets a closed issue into a release-notes section
// by its labels, falling back to "Other" when no recognized label matches.
type ReleaseNoteCategory string

const (
	NoteBreaking    ReleaseNoteCategory = "Breaking Changes"
	NoteFeatures    ReleaseNoteCategory = "Features"
	NoteFixes       ReleaseNoteCategory = "Bug Fixes"
	NoteOther       ReleaseNoteCategory = "Other"
)

// releaseNoteLabelOrder fixes both the category-to-label mapping and the
// section ordering a generated changelog renders in; "breaking" outranks
// "feature", which outranks "bug" — most release-note conventions lead
// with what might surprise a consumer upgrading.
var releaseNoteLabelOrder = []struct {
	Category ReleaseNoteCategory
	Labels   map[string]bool
}{
	{NoteBreaking, map[string]bool{"breaking": true, "breaking-change": true}},
	{NoteFeatures, map[string]bool{"feature": true, "enhancement": true}},
	{NoteFixes, map[string]bool{"bug": true, "bugfix": true, "fix": true}},
}

// ReleaseNoteEntry is one closed issue rendered into a release-notes section.
type ReleaseNoteEntry struct {
	IssueNumber int    `json:"issue_number"`
	Title       string `json:"title"`
	AuthorLogin string `json:"author_login"`
}

// ReleaseNoteSection is one category's entries, in the fixed category order.
type ReleaseNoteSection struct {
	Category ReleaseNoteCategory `json:"category"`
	Entries  []ReleaseNoteEntry  `json:"entries"`
}

// ReleaseNotes is the `.../releases/notes?milestone=…` result (§6.1):
// closed issues linked to a milestone, grouped into sections, plus a
// Markdown rendering of the same content.
type ReleaseNotes struct {
	MilestoneTitle string                `json:"milestone_title"`
	Sections       []ReleaseNoteSection  `json:"sections"`
	Markdown       string                `json:"markdown"`
}

// categorize returns the first matching category for an issue's labels, or
// NoteOther when none match.
func categorize(issue warehouse.Issue) ReleaseNoteCategory {
	for _, row := range releaseNoteLabelOrder {
		for _, label := range issue.Labels {
			if row.Labels[strings.ToLower(label)] {
				return row.Category
			}
		}
	}
	return NoteOther
}

// GenerateReleaseNotes implements §6.1's `releases/notes` endpoint:
// closed issues linked to the named milestone, grouped by category and
// rendered as Markdown, sorted by issue number within each section.
func GenerateReleaseNotes(milestone warehouse.Milestone, issues []warehouse.Issue) ReleaseNotes {
	byCategory := map[ReleaseNoteCategory][]ReleaseNoteEntry{}

	for _, issue := range issues {
		if issue.State != "closed" {
			continue
		}
		cat := categorize(issue)
		byCategory[cat] = append(byCategory[cat], ReleaseNoteEntry{
			IssueNumber: issue.Number, Title: issue.Title, AuthorLogin: issue.AuthorLogin,
		})
	}

	order := append(append([]ReleaseNoteCategory{}, sectionOrder()...), NoteOther)

	var sections []ReleaseNoteSection
	var sb strings.Builder
	sb.WriteString("## " + milestone.Title + "\n\n")
	for _, cat := range order {
		entries := byCategory[cat]
		if len(entries) == 0 {
			continue
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].IssueNumber < entries[j].IssueNumber })
		sections = append(sections, ReleaseNoteSection{Category: cat, Entries: entries})

		sb.WriteString("### " + string(cat) + "\n\n")
		for _, e := range entries {
			sb.WriteString("- " + e.Title + " (#" + strconv.Itoa(e.IssueNumber) + ")\n")
		}
		sb.WriteString("\n")
	}

	return ReleaseNotes{MilestoneTitle: milestone.Title, Sections: sections, Markdown: strings.TrimRight(sb.String(), "\n") + "\n"}
}

func sectionOrder() []ReleaseNoteCategory {
	out := make([]ReleaseNoteCategory, 0, len(releaseNoteLabelOrder))
	for _, row := range releaseNoteLabelOrder {
		out = append(out, row.Category)
	}
	return out
}
