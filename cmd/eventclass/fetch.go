package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"eventclass/internal/dataset"
	"eventclass/internal/feed"
	appLog "eventclass/internal/log"
	"eventclass/internal/series"
	"eventclass/internal/store"
)

func fetchCommand(a *app) *cobra.Command {
	var (
		out    string
		base   string
		months int
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Scrape the chamber calendar and write an event table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			started := time.Now()
			cfg := a.cfg.Feed
			if base != "" {
				cfg.BaseURL = base
			}
			if months > 0 {
				cfg.MonthsAhead = months
			}
			if out == "" {
				out = "events.csv"
			}

			now := time.Now()
			var monthURLs []string
			for i := 0; i < cfg.MonthsAhead; i++ {
				m := now.AddDate(0, i, 0)
				monthURLs = append(monthURLs, feed.MonthURL(cfg.BaseURL, m.Year(), m.Month()))
			}

			collector := &feed.Collector{
				Discoverer:  &feed.Discoverer{Base: cfg.BaseURL},
				Fetcher:     feed.NewFetcher(cfg.CacheDir),
				HorizonDays: cfg.HorizonDays,
			}
			events, err := collector.Collect(cmd.Context(), monthURLs)
			if err != nil {
				return err
			}

			t := feed.EventsToTable(events)
			series.Annotate(t, a.cfg.Columns)
			if err := dataset.Save(t, out); err != nil {
				return err
			}

			fmt.Printf("fetched %d events from %d month pages -> %s\n", len(t.Rows), len(monthURLs), out)
			a.recordRun(store.Run{
				Stage:      "fetch",
				Output:     out,
				Rows:       len(t.Rows),
				StartedAt:  started,
				FinishedAt: time.Now(),
			})
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "events.csv", "Output file (.csv or .json)")
	cmd.Flags().StringVar(&base, "base-url", "", "Chamber site base URL (overrides config)")
	cmd.Flags().IntVar(&months, "months", 0, "Month pages to scrape starting this month (overrides config)")
	return cmd
}

// recordRun writes a run-history row, best effort. A broken history
// database never fails the command that did the real work.
func (a *app) recordRun(r store.Run) {
	s, err := store.Open(a.cfg.StorePath)
	if err != nil {
		appLog.Warn("run history unavailable", "path", a.cfg.StorePath, "error", err)
		return
	}
	defer s.Close()
	if err := s.Record(r); err != nil {
		appLog.Warn("run history write failed", "error", err)
	}
}
