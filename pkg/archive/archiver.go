package archive

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"triviafetch/pkg/config"
	errs "triviafetch/pkg/errors"
	"triviafetch/pkg/logger"
	"triviafetch/pkg/opentdb"
	"triviafetch/pkg/ratelimit"
	"triviafetch/pkg/retry"
	"triviafetch/pkg/storage"
	"triviafetch/pkg/token"
)

// Archiver orchestrates the download of trivia questions from OpenTDB
// into the local output root. Categories are processed strictly one at a
// time: the session token is a single shared mutable resource, and token
// rotation inside one category's loop would corrupt the duplicate ledger
// of any other category sharing the same token window.
type Archiver struct {
	cfg    *config.Config
	client *opentdb.Client
	tokens *token.Manager
	store  *storage.Manager
	logger logger.Logger

	stats DownloadStats

	// sleep waits out a backoff delay; injectable for tests
	sleep func(ctx context.Context, delay time.Duration) error
}

// New creates an Archiver from configuration, wiring the rate limiter,
// API client, token manager and storage manager together
func New(cfg *config.Config) (*Archiver, error) {
	log := logger.GetLogger()

	store, err := storage.NewManager(cfg.Output.BaseDirectory, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage manager: %w", err)
	}

	gate := ratelimit.NewIntervalGate(cfg.API.MinRequestInterval)
	client := opentdb.NewClient(cfg.API.BaseURL, cfg.API.RequestTimeout, gate, log)

	tokens, err := token.NewManager(store.TokensDir(), client, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create token manager: %w", err)
	}

	return &Archiver{
		cfg:    cfg,
		client: client,
		tokens: tokens,
		store:  store,
		logger: log,
		sleep:  retry.Wait,
	}, nil
}

// Tokens exposes the token manager so the CLI can force a reset
func (a *Archiver) Tokens() *token.Manager {
	return a.tokens
}

// Store exposes the storage manager
func (a *Archiver) Store() *storage.Manager {
	return a.store
}

// SyncCategories fetches the remote category list and merges it into the
// persisted one. Existing entries keep their original added_at; new
// entries are stamped now. The merged, id-sorted list is persisted only
// when new entries were found. On remote failure the persisted list is
// returned as a fallback; with no fallback either the sync fails and the
// caller aborts the run.
func (a *Archiver) SyncCategories(ctx context.Context) ([]storage.Category, error) {
	persisted, err := a.store.LoadCategories()
	if err != nil {
		return nil, err
	}

	remote, err := a.client.Categories(ctx)
	if err != nil {
		if len(persisted) == 0 {
			return nil, fmt.Errorf("no categories available: %w", err)
		}
		a.logger.WithError(err).Warn("failed to fetch remote categories, using persisted list")
		a.store.SetCategories(persisted)
		return persisted, nil
	}

	known := make(map[int]struct{}, len(persisted))
	for _, cat := range persisted {
		known[cat.ID] = struct{}{}
	}

	merged := make([]storage.Category, len(persisted))
	copy(merged, persisted)

	now := time.Now().UTC()
	newCount := 0
	for _, rc := range remote {
		if _, ok := known[rc.ID]; ok {
			continue
		}
		addedAt := now
		merged = append(merged, storage.Category{
			ID:      rc.ID,
			Name:    rc.Name,
			AddedAt: &addedAt,
		})
		newCount++
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].ID < merged[j].ID })

	if newCount > 0 {
		if err := a.store.SaveCategories(merged); err != nil {
			return nil, err
		}
		a.logger.InfoWithFields("category list updated", map[string]interface{}{
			"new_categories":   newCount,
			"total_categories": len(merged),
		})
	}

	a.store.SetCategories(merged)
	return merged, nil
}

// DownloadAll downloads every category sequentially. A single category's
// failure is logged and the run moves on; only a failed category sync
// aborts the run. The run summary is persisted at the end regardless of
// per-category failures.
func (a *Archiver) DownloadAll(ctx context.Context) (*DownloadStats, error) {
	a.stats = NewDownloadStats()
	a.logger.Info("starting OpenTDB download")

	categories, err := a.SyncCategories(ctx)
	if err != nil {
		a.stats.Finish()
		return &a.stats, fmt.Errorf("aborting run: %w", err)
	}

	a.stats.TotalCategories = len(categories)
	summaries := make([]CategorySummary, 0, len(categories))

	for _, cat := range categories {
		// Cancellation is honored between categories only. Data for
		// completed categories is already on disk and stays valid.
		if err := ctx.Err(); err != nil {
			a.logger.WithError(err).Warn("run cancelled, keeping completed categories")
			break
		}

		ds, added, err := a.downloadCategory(ctx, cat)
		if err != nil {
			a.logger.WithError(err).WithFields(map[string]interface{}{
				"category_id":   cat.ID,
				"category_name": cat.Name,
			}).Error("category download failed")
			continue
		}

		a.stats.CompletedCategories++
		a.stats.TotalQuestions += ds.Statistics.TotalQuestions
		a.stats.DownloadedQuestions += added
		summaries = append(summaries, CategorySummary{
			Name:          ds.CategoryName,
			ID:            ds.CategoryID,
			QuestionCount: ds.Statistics.TotalQuestions,
			Statistics:    ds.Statistics,
		})
	}

	a.stats.FailedRequests = int(a.client.FailedRequests())
	a.stats.Finish()

	summary := Summary{
		DownloadStats:     a.stats,
		CategoriesSummary: summaries,
		TotalQuestions:    a.stats.TotalQuestions,
	}
	if err := a.store.SaveSummary(summary); err != nil {
		a.logger.WithError(err).Error("failed to persist run summary")
	}

	a.logger.InfoWithFields("download run finished", map[string]interface{}{
		"completed_categories": a.stats.CompletedCategories,
		"total_categories":     a.stats.TotalCategories,
		"downloaded_questions": a.stats.DownloadedQuestions,
		"failed_requests":      a.stats.FailedRequests,
	})

	return &a.stats, nil
}

// SingleCategoryResult carries what DownloadSingleCategory learned beyond
// the run stats: the remote-reported availability for comparison against
// what was actually retrieved.
type SingleCategoryResult struct {
	Stats     *DownloadStats
	Category  storage.Category
	Dataset   *storage.CategoryDataset
	Available *opentdb.QuestionCount
}

// DownloadSingleCategory downloads one category by id. It additionally
// fetches the remote-reported available count so the caller can display
// the downloaded/available comparison.
func (a *Archiver) DownloadSingleCategory(ctx context.Context, categoryID int) (*SingleCategoryResult, error) {
	a.stats = NewDownloadStats()

	categories, err := a.SyncCategories(ctx)
	if err != nil {
		a.stats.Finish()
		return nil, fmt.Errorf("aborting run: %w", err)
	}

	var target *storage.Category
	for i := range categories {
		if categories[i].ID == categoryID {
			target = &categories[i]
			break
		}
	}
	if target == nil {
		a.stats.Finish()
		return nil, fmt.Errorf("category id %d not found", categoryID)
	}

	a.stats.TotalCategories = 1

	available, err := a.client.QuestionCount(ctx, categoryID)
	if err != nil {
		a.logger.WithError(err).Warn("failed to fetch remote question count")
		available = nil
	}

	result := &SingleCategoryResult{
		Category:  *target,
		Available: available,
	}

	ds, added, err := a.downloadCategory(ctx, *target)
	if err != nil {
		a.logger.WithError(err).WithField("category_id", categoryID).Error("category download failed")
	} else {
		a.stats.CompletedCategories++
		a.stats.TotalQuestions += ds.Statistics.TotalQuestions
		a.stats.DownloadedQuestions += added
		result.Dataset = ds
	}

	a.stats.FailedRequests = int(a.client.FailedRequests())
	a.stats.Finish()
	result.Stats = &a.stats

	return result, nil
}

// downloadCategory is the core download loop for one category. It returns
// the persisted dataset and the number of questions newly added this run.
func (a *Archiver) downloadCategory(ctx context.Context, cat storage.Category) (*storage.CategoryDataset, int, error) {
	log := a.logger.WithFields(map[string]interface{}{
		"category_id":   cat.ID,
		"category_name": cat.Name,
	})

	tok, isNew, err := a.tokens.Get(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("no session token: %w", err)
	}

	if isNew {
		// A fresh token has no server-side memory of prior fetches. A
		// duplicate ledger built against the old token would wrongly
		// mark questions the server is about to serve again, so the
		// persisted dataset is discarded and rebuilt from empty.
		if err := a.store.DeleteDataset(cat); err != nil {
			return nil, 0, err
		}
		log.Warn("new session token, discarding persisted dataset for a clean ledger")
	}

	ds, err := a.store.LoadDataset(cat)
	if err != nil {
		return nil, 0, err
	}
	if ds == nil {
		ds = storage.NewCategoryDataset(cat)
	} else if removed := ds.Deduplicate(); removed > 0 {
		log.WarnWithFields("repaired duplicate questions in persisted dataset", map[string]interface{}{
			"removed": removed,
		})
	}

	seen := ds.SeenQuestions()
	added := 0
	batch := 0

	var loopErr error

pages:
	for {
		batch++
		log.InfoWithFields("requesting question batch", map[string]interface{}{
			"batch": batch,
		})

		resp, err := a.fetchBatch(ctx, cat.ID, tok.Value)
		if err != nil {
			// Retries exhausted without ever obtaining a real remote
			// response code. Terminates the category, not the run.
			loopErr = err
			break
		}

		switch resp.ResponseCode {
		case opentdb.CodeSuccess:
			if len(resp.Results) == 0 {
				log.Info("empty results with success code, all questions retrieved")
				break pages
			}
			for _, raw := range resp.Results {
				decoded, err := opentdb.DecodeQuestion(raw)
				if err != nil {
					log.WithError(err).Error("failed to decode question, skipping item")
					continue
				}
				if ds.Append(decoded, seen) {
					added++
				}
			}
			log.InfoWithFields("batch merged", map[string]interface{}{
				"batch":       batch,
				"batch_size":  len(resp.Results),
				"total":       len(ds.Questions),
				"added_total": added,
			})

		case opentdb.CodeNoResults:
			log.Info("category exhausted (no results)")
			break pages

		case opentdb.CodeTokenEmpty:
			// The token's question budget is spent for this run. The
			// token is NOT rotated here: other categories in the same
			// run still rely on its dedup window. Rotation happens only
			// at the top of a category download.
			log.WarnWithFields("session token exhausted, stopping category", map[string]interface{}{
				"downloaded": len(ds.Questions),
			})
			break pages

		default:
			loopErr = errs.New(errs.ErrorTypeProtocol, resp.ResponseCode,
				"unexpected response code: %s", opentdb.ResponseCodeText(resp.ResponseCode))
			log.WithError(loopErr).Error("stopping category on API error")
			break pages
		}
	}

	// Persist whatever was accumulated even when the loop failed:
	// progress is file-per-category and always safe to resume.
	ds.DownloadTimestamp = time.Now().UTC()
	if err := a.store.SaveDataset(ds); err != nil {
		return nil, 0, err
	}

	log.InfoWithFields("category download complete", map[string]interface{}{
		"batches":         batch,
		"total_questions": ds.Statistics.TotalQuestions,
		"newly_added":     added,
	})

	if loopErr != nil {
		return nil, 0, loopErr
	}
	return ds, added, nil
}

// fetchBatch requests one page of questions, retrying with exponential
// backoff only while the gateway fails to obtain a real response code
func (a *Archiver) fetchBatch(ctx context.Context, categoryID int, tokenValue string) (*opentdb.QuestionsResponse, error) {
	cfg := &retry.Config{
		MaxAttempts: a.cfg.API.MaxRetries + 1,
		Backoff: &retry.ExponentialBackoff{
			BaseDelay:  a.cfg.API.RetryBackoffBase,
			Multiplier: 2.0,
		},
		RetryIf: retryOnSentinel,
		Sleep:   a.sleep,
		Context: ctx,
		Logger:  a.logger,
	}

	return retry.DoWithResult(func() (*opentdb.QuestionsResponse, error) {
		return a.client.Questions(ctx, opentdb.QuestionsQuery{
			Amount:     opentdb.MaxQuestionsPerRequest,
			CategoryID: categoryID,
			Token:      tokenValue,
		})
	}, cfg)
}

// retryOnSentinel retries every gateway failure: a failed request yields
// no remote response code, and rate-limit rejections are
// indistinguishable from transport errors at this level. Cancellation is
// never retried.
func retryOnSentinel(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}
