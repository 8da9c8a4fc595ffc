// Package pipeline orchestrates the hands-off scrape → classify →
// merge → propagate → retrain cycle, optionally on a cron schedule.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"eventclass/internal/classify"
	"eventclass/internal/config"
	"eventclass/internal/dataset"
	"eventclass/internal/feed"
	"eventclass/internal/labels"
	appLog "eventclass/internal/log"
	"eventclass/internal/series"
	"eventclass/internal/store"
)

// Runner executes the automated pipeline. All collaborators are
// explicit; nothing here reads ambient globals, so a Runner can be
// constructed with test doubles for the store or a pre-scraped table.
type Runner struct {
	Cfg   *config.Config
	Store *store.Store

	// Collect overrides feed scraping when set (tests, or re-running
	// the pipeline over an existing file via --input).
	Collect func(ctx context.Context) (*dataset.Table, error)
}

// combinedPath is where the cumulative labeled dataset lives.
func (r *Runner) combinedPath() string {
	return filepath.Join(r.Cfg.DataDir, "events_labeled.csv")
}

// RunOnce executes one full pipeline cycle. Stages are re-runnable:
// propagation and merging only ever fill gaps, so re-triggering after
// a partial failure converges to the same dataset.
func (r *Runner) RunOnce(ctx context.Context) error {
	started := time.Now()
	cols := r.Cfg.Columns

	fresh, err := r.collect(ctx)
	if err != nil {
		return err
	}
	fresh.EnsureColumns(cols.Title, cols.Desc, cols.Start, cols.Loc, cols.Label)
	series.Annotate(fresh, cols)

	// Predict with the current model if one exists; a missing model
	// just means this cycle runs on weak labels only.
	artifact, err := classify.LoadArtifact(r.Cfg.ModelPath)
	switch {
	case err == nil:
		preds := artifact.Predict(fresh, r.Cfg.Threshold)
		classify.Apply(fresh, preds)
		review := 0
		for _, p := range preds {
			if p.NeedsReview {
				review++
			}
		}
		appLog.Info("pipeline: predictions applied", "events", len(preds), "needs_review", review)
	case errors.Is(err, os.ErrNotExist):
		appLog.Warn("pipeline: no model artifact yet, skipping prediction", "path", r.Cfg.ModelPath)
	default:
		return fmt.Errorf("pipeline: load model: %w", err)
	}

	weakMatched := labels.WeakTable(fresh, cols)
	appLog.Info("pipeline: weak labels computed", "matched", weakMatched, "events", len(fresh.Rows))

	// Combine with the cumulative dataset before merging so manual
	// labels from earlier cycles win over this cycle's predictions.
	combined, err := r.loadCombined(fresh, cols)
	if err != nil {
		return err
	}

	labeledBefore := series.CountLabeled(combined, cols.Label)
	fromModel := labels.MergeTable(combined, cols)

	mode, err := series.ParseMode(r.Cfg.PropagationMode)
	if err != nil {
		return err
	}
	res := series.PropagateTable(combined, cols, cols.Label, mode)
	labeledAfter := series.CountLabeled(combined, cols.Label)

	appLog.Info("pipeline: labels merged and propagated",
		"labeled_before", labeledBefore,
		"from_model", fromModel,
		"filled", res.FilledCount(),
		"conflicts", len(res.Conflicts),
		"labeled_after", labeledAfter,
	)

	if err := os.MkdirAll(r.Cfg.DataDir, 0o755); err != nil {
		return err
	}
	if err := dataset.Save(combined, r.combinedPath()); err != nil {
		return fmt.Errorf("pipeline: save combined dataset: %w", err)
	}

	// Retrain on the expanded corpus when it is big enough; an
	// insufficient corpus is not a pipeline failure, just a cycle that
	// didn't learn anything new.
	newArtifact, err := classify.Train(combined, classify.Options{Columns: cols})
	var insufficient *classify.InsufficientDataError
	switch {
	case err == nil:
		if err := newArtifact.Save(r.Cfg.ModelPath); err != nil {
			return fmt.Errorf("pipeline: save model: %w", err)
		}
		appLog.Info("pipeline: model retrained",
			"labeled", newArtifact.Metrics.LabeledRows,
			"held_out", newArtifact.Metrics.HeldOut,
			"model", r.Cfg.ModelPath,
		)
	case errors.As(err, &insufficient):
		appLog.Warn("pipeline: not enough labeled rows to retrain",
			"labeled", insufficient.Labeled, "min", insufficient.Min)
	default:
		return fmt.Errorf("pipeline: retrain: %w", err)
	}

	if r.Store != nil {
		if err := r.Store.Record(store.Run{
			Stage:      "pipeline",
			Output:     r.combinedPath(),
			Rows:       len(combined.Rows),
			LabeledIn:  labeledBefore,
			LabeledOut: labeledAfter,
			Filled:     res.FilledCount(),
			Conflicts:  len(res.Conflicts),
			StartedAt:  started,
			FinishedAt: time.Now(),
		}); err != nil {
			appLog.Error("pipeline: run history write failed", err)
		}
	}

	return nil
}

func (r *Runner) collect(ctx context.Context) (*dataset.Table, error) {
	if r.Collect != nil {
		return r.Collect(ctx)
	}

	now := time.Now()
	var months []string
	for i := 0; i < r.Cfg.Feed.MonthsAhead; i++ {
		m := now.AddDate(0, i, 0)
		months = append(months, feed.MonthURL(r.Cfg.Feed.BaseURL, m.Year(), m.Month()))
	}

	collector := &feed.Collector{
		Discoverer:  &feed.Discoverer{Base: r.Cfg.Feed.BaseURL},
		Fetcher:     feed.NewFetcher(r.Cfg.Feed.CacheDir),
		HorizonDays: r.Cfg.Feed.HorizonDays,
	}
	events, err := collector.Collect(ctx, months)
	if err != nil {
		return nil, err
	}
	return feed.EventsToTable(events), nil
}

// loadCombined appends fresh rows to the cumulative dataset, dropping
// fresh rows whose uid already exists (the earlier row, which may
// carry a manual label, wins).
func (r *Runner) loadCombined(fresh *dataset.Table, cols dataset.Columns) (*dataset.Table, error) {
	existing, err := dataset.Load(r.combinedPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fresh, nil
		}
		return nil, fmt.Errorf("pipeline: load combined dataset: %w", err)
	}

	seen := make(map[string]bool, len(existing.Rows))
	for _, row := range existing.Rows {
		if uid := row.Get(cols.ID); uid != "" {
			seen[uid] = true
		}
	}

	for _, c := range fresh.Columns {
		existing.AddColumn(c)
	}
	dropped := 0
	for _, row := range fresh.Rows {
		if uid := row.Get(cols.ID); uid != "" && seen[uid] {
			dropped++
			continue
		}
		existing.Rows = append(existing.Rows, row)
	}
	existing.EnsureColumns(existing.Columns...)

	appLog.Info("pipeline: datasets combined",
		"existing", len(existing.Rows)-len(fresh.Rows)+dropped,
		"fresh", len(fresh.Rows),
		"duplicates_dropped", dropped,
	)
	return existing, nil
}

// Schedule runs the pipeline on the configured cron expression until
// the context is canceled.
func (r *Runner) Schedule(ctx context.Context) error {
	if r.Cfg.Schedule == "" {
		return errors.New("pipeline: no schedule configured")
	}

	c := cron.New()
	_, err := c.AddFunc(r.Cfg.Schedule, func() {
		if err := r.RunOnce(ctx); err != nil {
			appLog.Error("pipeline: scheduled run failed", err)
		}
	})
	if err != nil {
		return fmt.Errorf("pipeline: invalid schedule %q: %w", r.Cfg.Schedule, err)
	}

	appLog.Info("pipeline: scheduler started", "schedule", r.Cfg.Schedule)
	c.Start()
	<-ctx.Done()

	stopCtx := c.Stop()
	<-stopCtx.Done()
	appLog.Info("pipeline: scheduler stopped")
	return nil
}
