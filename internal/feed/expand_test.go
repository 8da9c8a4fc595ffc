package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandSingleEvent(t *testing.T) {
	start := time.Date(2025, 6, 7, 9, 0, 0, 0, time.UTC)
	events := []ParsedEvent{{
		UID:     "single-1",
		Summary: "Art Walk",
		Start:   start,
		End:     start.Add(3 * time.Hour),
	}}

	res, err := ExpandEvents(events, ExpandConfig{
		RangeStart: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		RangeEnd:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, res.Events, 1)
	assert.Equal(t, "single-1", res.Events[0].UID)
	assert.Equal(t, start, res.Events[0].Start)
}

func TestExpandSingleEventOutsideWindow(t *testing.T) {
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	events := []ParsedEvent{{UID: "old", Start: start, End: start.Add(time.Hour)}}

	res, err := ExpandEvents(events, ExpandConfig{
		RangeStart: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		RangeEnd:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Events)
}

func TestExpandRecurringEvent(t *testing.T) {
	start := time.Date(2025, 6, 7, 9, 0, 0, 0, time.UTC)
	events := []ParsedEvent{{
		UID:      "weekly-1",
		Summary:  "Farmers Market",
		Start:    start,
		End:      start.Add(3 * time.Hour),
		RawRRule: "FREQ=WEEKLY;COUNT=10",
	}}

	res, err := ExpandEvents(events, ExpandConfig{
		RangeStart: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		RangeEnd:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	// June 7, 14, 21, 28 fall inside the window.
	require.Len(t, res.Events, 4)
	for i, ev := range res.Events {
		assert.Equal(t, "weekly-1", ev.UID, "every occurrence keeps the parent UID")
		assert.Equal(t, start.AddDate(0, 0, 7*i), ev.Start)
		assert.Equal(t, 3*time.Hour, ev.End.Sub(ev.Start))
	}
	assert.Empty(t, res.TruncatedEvents)
}

func TestExpandRecurringWithExDate(t *testing.T) {
	start := time.Date(2025, 6, 7, 9, 0, 0, 0, time.UTC)
	events := []ParsedEvent{{
		UID:      "weekly-2",
		Start:    start,
		End:      start.Add(time.Hour),
		RawRRule: "FREQ=WEEKLY;COUNT=4",
		ExDates:  []time.Time{start.AddDate(0, 0, 7)},
	}}

	res, err := ExpandEvents(events, ExpandConfig{
		RangeStart: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		RangeEnd:   time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.Len(t, res.Events, 3)
	for _, ev := range res.Events {
		assert.NotEqual(t, start.AddDate(0, 0, 7), ev.Start)
	}
}

func TestExpandOverrideReplacesOccurrence(t *testing.T) {
	start := time.Date(2025, 6, 7, 9, 0, 0, 0, time.UTC)
	moved := start.AddDate(0, 0, 7).Add(2 * time.Hour)
	rid := start.AddDate(0, 0, 7)

	events := []ParsedEvent{
		{
			UID:      "weekly-3",
			Summary:  "Storytime",
			Start:    start,
			End:      start.Add(time.Hour),
			RawRRule: "FREQ=WEEKLY;COUNT=3",
		},
		{
			UID:        "weekly-3",
			Summary:    "Storytime (moved)",
			Start:      moved,
			End:        moved.Add(time.Hour),
			Recurrence: &rid,
			IsOverride: true,
		},
	}

	res, err := ExpandEvents(events, ExpandConfig{
		RangeStart: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		RangeEnd:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, res.Events, 3)

	assert.Equal(t, "Storytime (moved)", res.Events[1].Title)
	assert.Equal(t, moved, res.Events[1].Start)
	assert.Equal(t, "Storytime", res.Events[0].Title)
}

func TestExpandAllDayRecurring(t *testing.T) {
	start := time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC)
	events := []ParsedEvent{{
		UID:      "allday-weekly",
		Start:    start,
		AllDay:   true,
		RawRRule: "FREQ=WEEKLY;COUNT=2",
	}}

	res, err := ExpandEvents(events, ExpandConfig{
		RangeStart: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		RangeEnd:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, res.Events, 2)
	assert.True(t, res.Events[0].AllDay)
	assert.Equal(t, 24*time.Hour, res.Events[0].End.Sub(res.Events[0].Start))
}

func TestExpandInvalidWindow(t *testing.T) {
	_, err := ExpandEvents(nil, ExpandConfig{
		RangeStart: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		RangeEnd:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.Error(t, err)
}

func TestExpandOccurrenceCap(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	events := []ParsedEvent{{
		UID:      "daily-1",
		Start:    start,
		End:      start.Add(time.Hour),
		RawRRule: "FREQ=DAILY",
	}}

	res, err := ExpandEvents(events, ExpandConfig{
		RangeStart:             start,
		RangeEnd:               start.AddDate(0, 0, 20),
		MaxOccurrencesPerEvent: 5,
	})
	require.NoError(t, err)
	assert.Len(t, res.Events, 5)
	assert.Equal(t, []string{"daily-1"}, res.TruncatedEvents)
}
