package storage

import (
	"time"

	"triviafetch/pkg/opentdb"
)

// Category is one locally-known trivia category. Identity is the id;
// AddedAt records when the category was first observed locally and is
// never changed afterwards.
type Category struct {
	ID      int        `json:"id"`
	Name    string     `json:"name"`
	AddedAt *time.Time `json:"added_at,omitempty"`
}

// Statistics are per-dataset tallies. They are always recomputed from
// the live question set before every save, never patched incrementally,
// so they cannot drift from the underlying data.
type Statistics struct {
	TotalQuestions int            `json:"total_questions"`
	ByDifficulty   map[string]int `json:"by_difficulty"`
	ByType         map[string]int `json:"by_type"`
}

// CategoryDataset is the persisted question set of one category.
// Questions keep insertion order; duplicates are defined by decoded
// question text within the category.
type CategoryDataset struct {
	CategoryID        int                `json:"category_id"`
	CategoryName      string             `json:"category_name"`
	DownloadTimestamp time.Time          `json:"download_timestamp"`
	Questions         []opentdb.Question `json:"questions"`
	Statistics        Statistics         `json:"statistics"`
}

// NewCategoryDataset creates an empty dataset for a category
func NewCategoryDataset(cat Category) *CategoryDataset {
	ds := &CategoryDataset{
		CategoryID:        cat.ID,
		CategoryName:      cat.Name,
		DownloadTimestamp: time.Now().UTC(),
		Questions:         make([]opentdb.Question, 0),
	}
	ds.RecomputeStatistics()
	return ds
}

// RecomputeStatistics rebuilds the statistics from the question set
func (d *CategoryDataset) RecomputeStatistics() {
	stats := Statistics{
		TotalQuestions: len(d.Questions),
		ByDifficulty:   map[string]int{"easy": 0, "medium": 0, "hard": 0},
		ByType:         map[string]int{"multiple": 0, "boolean": 0},
	}
	for _, q := range d.Questions {
		stats.ByDifficulty[q.Difficulty]++
		stats.ByType[q.Type]++
	}
	d.Statistics = stats
}

// Deduplicate removes questions whose text repeats an earlier entry,
// keeping first occurrences and insertion order. It returns the number
// of removed duplicates. This is a repair step for datasets written by
// earlier runs; statistics are recomputed regardless of the outcome.
func (d *CategoryDataset) Deduplicate() int {
	seen := make(map[string]struct{}, len(d.Questions))
	unique := d.Questions[:0]
	removed := 0

	for _, q := range d.Questions {
		if _, ok := seen[q.Question]; ok {
			removed++
			continue
		}
		seen[q.Question] = struct{}{}
		unique = append(unique, q)
	}

	d.Questions = unique
	d.RecomputeStatistics()
	return removed
}

// SeenQuestions returns the set of question texts already in the dataset,
// used to seed the in-run duplicate ledger
func (d *CategoryDataset) SeenQuestions() map[string]struct{} {
	seen := make(map[string]struct{}, len(d.Questions))
	for _, q := range d.Questions {
		seen[q.Question] = struct{}{}
	}
	return seen
}

// Append adds a question if its text is not already present, updating
// the seen set. It reports whether the question was added.
func (d *CategoryDataset) Append(q opentdb.Question, seen map[string]struct{}) bool {
	if _, ok := seen[q.Question]; ok {
		return false
	}
	seen[q.Question] = struct{}{}
	d.Questions = append(d.Questions, q)
	return true
}
