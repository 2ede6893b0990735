package archive

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triviafetch/pkg/storage"
)

func TestCountsRowMath(t *testing.T) {
	row := CountsRow{Available: 200, Downloaded: 150}
	assert.Equal(t, 50, row.Missing())
	assert.InDelta(t, 75.0, row.PercentComplete(), 0.001)

	empty := CountsRow{Available: 0, Downloaded: 0}
	assert.Equal(t, 0.0, empty.PercentComplete())
}

func TestCompareCounts(t *testing.T) {
	api := newFakeAPI(t)
	api.counts[9] = 300
	api.counts[10] = 100
	dir := t.TempDir()

	archiver, _ := newTestArchiver(t, api, dir)

	summary := Summary{
		CategoriesSummary: []CategorySummary{
			{ID: 9, Name: "General Knowledge", QuestionCount: 250},
			{ID: 10, Name: "Entertainment: Books", QuestionCount: 100},
		},
	}
	require.NoError(t, archiver.Store().SaveSummary(summary))

	comparison, err := archiver.CompareCounts(context.Background())
	require.NoError(t, err)
	require.Len(t, comparison.Rows, 2)

	assert.Equal(t, 400, comparison.TotalAvailable)
	assert.Equal(t, 350, comparison.TotalDownloaded)
	assert.Equal(t, 50, comparison.TotalMissing())
	assert.Equal(t, 50, comparison.Rows[0].Missing())
	assert.Equal(t, 0, comparison.Rows[1].Missing())
}

func TestCompareCountsWithoutSummary(t *testing.T) {
	api := newFakeAPI(t)
	archiver, _ := newTestArchiver(t, api, t.TempDir())

	_, err := archiver.CompareCounts(context.Background())
	require.Error(t, err)
}

func TestRenderCountsTable(t *testing.T) {
	comparison := &CountsComparison{
		Rows: []CountsRow{
			{CategoryID: 9, Name: "General Knowledge", Available: 300, Downloaded: 250},
		},
		TotalAvailable:  300,
		TotalDownloaded: 250,
	}

	rendered := RenderCountsTable(comparison)
	assert.Contains(t, rendered, "General Knowledge")
	assert.Contains(t, rendered, "300")
	assert.Contains(t, rendered, "250")
	assert.Contains(t, rendered, "83.3%")
}

func TestRenderSummaryTable(t *testing.T) {
	stats := NewDownloadStats()
	stats.TotalCategories = 24
	stats.CompletedCategories = 23
	stats.DownloadedQuestions = 512
	stats.TotalQuestions = 4000
	stats.FailedRequests = 3
	stats.StartTime = time.Now().Add(-90 * time.Second)
	stats.Finish()

	rendered := RenderSummaryTable(&stats)
	assert.Contains(t, rendered, "OpenTDB Download Summary")
	assert.Contains(t, rendered, "24")
	assert.Contains(t, rendered, "512")
	assert.Contains(t, rendered, "Duration")
}

func TestFormatAvailability(t *testing.T) {
	assert.Equal(t, "all 120 available questions downloaded", FormatAvailability(120, 120))
	assert.Equal(t, "all 120 available questions downloaded", FormatAvailability(130, 120))
	assert.Equal(t, "downloaded 60/120 questions (50.0%)", FormatAvailability(60, 120))
	assert.Equal(t, "42 questions downloaded (remote count unavailable)", FormatAvailability(42, 0))
}

func TestCategorySummaryCarriesStatistics(t *testing.T) {
	stats := storage.Statistics{
		TotalQuestions: 10,
		ByDifficulty:   map[string]int{"easy": 4, "medium": 3, "hard": 3},
		ByType:         map[string]int{"multiple": 8, "boolean": 2},
	}
	summary := CategorySummary{ID: 9, Name: "General Knowledge", QuestionCount: 10, Statistics: stats}
	assert.Equal(t, 4, summary.Statistics.ByDifficulty["easy"])
}
