package archive

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// RenderSummaryTable renders the end-of-run summary table
func RenderSummaryTable(stats *DownloadStats) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("OpenTDB Download Summary")
	tw.AppendHeader(table.Row{"Metric", "Value"})

	tw.AppendRow(table.Row{"Total Categories", stats.TotalCategories})
	tw.AppendRow(table.Row{"Completed Categories", stats.CompletedCategories})
	tw.AppendRow(table.Row{"Questions Downloaded", stats.DownloadedQuestions})
	tw.AppendRow(table.Row{"Questions On Disk", stats.TotalQuestions})
	tw.AppendRow(table.Row{"Failed Requests", stats.FailedRequests})
	if stats.EndTime != nil {
		tw.AppendRow(table.Row{"Duration", stats.Duration().Round(time.Second).String()})
	}

	return tw.Render()
}

// CountsRow is one category's line of the counts comparison
type CountsRow struct {
	CategoryID int
	Name       string
	Available  int
	Downloaded int
}

// Missing returns how many remote questions are not on disk
func (r CountsRow) Missing() int {
	return r.Available - r.Downloaded
}

// PercentComplete returns the download completeness percentage
func (r CountsRow) PercentComplete() float64 {
	if r.Available <= 0 {
		return 0
	}
	return float64(r.Downloaded) / float64(r.Available) * 100
}

// CountsComparison reconciles local question counts against the remote
// ones, per category and in total
type CountsComparison struct {
	Rows            []CountsRow
	TotalAvailable  int
	TotalDownloaded int
}

// TotalMissing returns the overall number of missing questions
func (c *CountsComparison) TotalMissing() int {
	return c.TotalAvailable - c.TotalDownloaded
}

// CompareCounts fetches the remote-reported question count for every
// category of the last run summary and compares it to what was
// downloaded. Pure reporting: nothing is written.
func (a *Archiver) CompareCounts(ctx context.Context) (*CountsComparison, error) {
	var summary Summary
	if err := a.store.LoadSummary(&summary); err != nil {
		return nil, fmt.Errorf("no download summary found, run a download first: %w", err)
	}

	comparison := &CountsComparison{
		Rows: make([]CountsRow, 0, len(summary.CategoriesSummary)),
	}

	for _, cat := range summary.CategoriesSummary {
		available, err := a.client.QuestionCount(ctx, cat.ID)
		if err != nil {
			a.logger.WithError(err).WithField("category_id", cat.ID).
				Error("failed to fetch remote count, skipping category")
			continue
		}

		row := CountsRow{
			CategoryID: cat.ID,
			Name:       cat.Name,
			Available:  available.Total,
			Downloaded: cat.QuestionCount,
		}
		comparison.Rows = append(comparison.Rows, row)
		comparison.TotalAvailable += row.Available
		comparison.TotalDownloaded += row.Downloaded
	}

	return comparison, nil
}

// RenderCountsTable renders the counts comparison table
func RenderCountsTable(c *CountsComparison) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("Question Count Comparison")
	tw.AppendHeader(table.Row{"ID", "Category", "Available", "Downloaded", "Missing", "% Complete"})

	for _, row := range c.Rows {
		tw.AppendRow(table.Row{
			row.CategoryID,
			row.Name,
			row.Available,
			row.Downloaded,
			row.Missing(),
			fmt.Sprintf("%.1f%%", row.PercentComplete()),
		})
	}

	overall := 0.0
	if c.TotalAvailable > 0 {
		overall = float64(c.TotalDownloaded) / float64(c.TotalAvailable) * 100
	}
	tw.AppendFooter(table.Row{
		"",
		"Total",
		c.TotalAvailable,
		c.TotalDownloaded,
		c.TotalMissing(),
		fmt.Sprintf("%.1f%%", overall),
	})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})

	return tw.Render()
}

// FormatAvailability renders the downloaded/available comparison line
// shown after a single-category download
func FormatAvailability(downloaded, available int) string {
	if available <= 0 {
		return strconv.Itoa(downloaded) + " questions downloaded (remote count unavailable)"
	}
	pct := float64(downloaded) / float64(available) * 100
	if downloaded >= available {
		return fmt.Sprintf("all %d available questions downloaded", available)
	}
	return fmt.Sprintf("downloaded %d/%d questions (%.1f%%)", downloaded, available, pct)
}
