package archive

import (
	"time"

	"triviafetch/pkg/storage"
)

// DownloadStats are the run-level counters. Created when a run starts,
// advanced by the orchestrator as categories complete, finalized once at
// run end. DownloadedQuestions counts questions newly added this run;
// TotalQuestions counts everything held in the touched datasets.
type DownloadStats struct {
	TotalCategories     int        `json:"total_categories"`
	CompletedCategories int        `json:"completed_categories"`
	TotalQuestions      int        `json:"total_questions"`
	DownloadedQuestions int        `json:"downloaded_questions"`
	FailedRequests      int        `json:"failed_requests"`
	StartTime           time.Time  `json:"start_time"`
	EndTime             *time.Time `json:"end_time,omitempty"`
}

// NewDownloadStats creates stats with the start time set
func NewDownloadStats() DownloadStats {
	return DownloadStats{
		StartTime: time.Now().UTC(),
	}
}

// Finish stamps the end time
func (s *DownloadStats) Finish() {
	now := time.Now().UTC()
	s.EndTime = &now
}

// Duration returns the elapsed run time, or zero if the run is unfinished
func (s *DownloadStats) Duration() time.Duration {
	if s.EndTime == nil {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

// CategorySummary is one category's line in the persisted run summary
type CategorySummary struct {
	Name          string             `json:"name"`
	ID            int                `json:"id"`
	QuestionCount int                `json:"question_count"`
	Statistics    storage.Statistics `json:"statistics"`
}

// Summary is the persisted run summary, written to
// metadata/download_summary.json at the end of a full run
type Summary struct {
	DownloadStats     DownloadStats     `json:"download_stats"`
	CategoriesSummary []CategorySummary `json:"categories_summary"`
	TotalQuestions    int               `json:"total_questions"`
}
