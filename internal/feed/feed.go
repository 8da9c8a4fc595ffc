// Package feed collects chamber calendar events: it discovers event
// detail pages on month views, pulls each event's ICS payload, parses
// the VEVENTs, and expands recurrences into concrete event records.
package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eventclass/internal/dataset"
	appLog "eventclass/internal/log"
	"eventclass/internal/model"
)

// Collector ties discovery, fetching, parsing and expansion together.
type Collector struct {
	Discoverer *Discoverer
	Fetcher    *Fetcher

	// HorizonDays bounds recurrence expansion: occurrences are emitted
	// from the start of the current month up to now+HorizonDays.
	HorizonDays int
}

// MonthURL builds the month-calendar URL for a given year/month.
func MonthURL(base string, year int, month time.Month) string {
	return fmt.Sprintf("%s/events/calendar/%04d-%02d-01", strings.TrimRight(base, "/"), year, int(month))
}

// Collect scrapes the given month-view URLs and returns the expanded
// event records. Individual page or payload failures are logged and
// skipped; Collect fails only when nothing could be gathered at all.
func (c *Collector) Collect(ctx context.Context, monthURLs []string) ([]model.Event, error) {
	var sources []Source
	seenICS := make(map[string]bool)

	for _, monthURL := range monthURLs {
		pages, err := c.Discoverer.EventPages(ctx, monthURL)
		if err != nil {
			appLog.Error("feed: month discovery failed", err, "url", monthURL)
			continue
		}
		for _, page := range pages {
			icsURL, err := c.Discoverer.ICSLink(ctx, page)
			if err != nil {
				appLog.Warn("feed: no ICS link for event page", "page", page, "reason", err.Error())
				continue
			}
			if seenICS[icsURL] {
				continue
			}
			seenICS[icsURL] = true
			sources = append(sources, Source{ID: sourceID(page), URL: icsURL, Page: page})
		}
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("feed: no ICS sources discovered from %d month pages", len(monthURLs))
	}

	results, errs := c.Fetcher.FetchAll(ctx, sources)
	if len(results) == 0 {
		return nil, fmt.Errorf("feed: all %d ICS fetches failed", len(sources))
	}
	if len(errs) > 0 {
		appLog.Warn("feed: some ICS fetches failed", "failed", len(errs), "ok", len(results))
	}

	var parsed []ParsedEvent
	for _, res := range results {
		events, err := ParseICS(res.Source, res.Body)
		if err != nil {
			continue // already logged by ParseICS
		}
		parsed = append(parsed, events...)
	}

	now := time.Now()
	horizon := c.HorizonDays
	if horizon <= 0 {
		horizon = 90
	}
	expanded, err := ExpandEvents(parsed, ExpandConfig{
		RangeStart: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()),
		RangeEnd:   now.AddDate(0, 0, horizon),
	})
	if err != nil {
		return nil, err
	}

	appLog.Info("feed: collection complete",
		"sources", len(sources),
		"vevents", len(parsed),
		"events", len(expanded.Events),
		"truncated", len(expanded.TruncatedEvents),
	)
	return expanded.Events, nil
}

// sourceID derives a short provenance identifier from a detail page
// URL (its slug, when present).
func sourceID(page string) string {
	if m := detailSlugRe.FindStringSubmatch(page); m != nil {
		return m[1]
	}
	return page
}

// EventsToTable converts event records into the tabular form the rest
// of the pipeline consumes.
func EventsToTable(events []model.Event) *dataset.Table {
	t := &dataset.Table{
		Columns: []string{
			"uid", "title", "description", "location",
			"start", "end", "url", "category",
			"source", "source_page",
		},
	}
	for _, ev := range events {
		t.Rows = append(t.Rows, dataset.Row{
			"uid":         ev.UID,
			"title":       ev.Title,
			"description": ev.Description,
			"location":    ev.Location,
			"start":       formatTime(ev.Start, ev.AllDay),
			"end":         formatTime(ev.End, ev.AllDay),
			"url":         ev.URL,
			"category":    strings.Join(ev.Category, ", "),
			"source":      ev.Source,
			"source_page": ev.SourcePage,
		})
	}
	return t
}

func formatTime(t time.Time, allDay bool) string {
	if t.IsZero() {
		return ""
	}
	if allDay {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}
