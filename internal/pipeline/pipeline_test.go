package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventclass/internal/config"
	"eventclass/internal/dataset"
	"eventclass/internal/store"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.ModelPath = filepath.Join(dir, "models", "svm.json")
	cfg.StorePath = filepath.Join(dir, "data", "runs.db")
	return cfg
}

// fakeCollect returns a labeled corpus large enough to retrain, plus
// one unlabeled recurrence that strict propagation should fill.
func fakeCollect(ctx context.Context) (*dataset.Table, error) {
	cols := dataset.DefaultColumns()
	t := &dataset.Table{Columns: []string{cols.ID, cols.Title, cols.Desc, cols.Start, cols.Loc, cols.Label}}
	for i := 0; i < 4; i++ {
		t.Rows = append(t.Rows,
			dataset.Row{
				cols.ID:    fmt.Sprintf("market-%d", i),
				cols.Title: "farmers market",
				cols.Desc:  "community market with live concert",
				cols.Start: "2025-06-07T09:00:00Z",
				cols.Loc:   "Town Park",
				cols.Label: "1",
			},
			dataset.Row{
				cols.ID:    fmt.Sprintf("board-%d", i),
				cols.Title: "board meeting",
				cols.Desc:  "chamber board meeting and networking",
				cols.Start: "2025-06-02T08:00:00Z",
				cols.Loc:   "Chamber Office",
				cols.Label: "0",
			},
		)
	}
	// Unlabeled member of the market series (shared uid).
	t.Rows = append(t.Rows, dataset.Row{
		cols.ID:    "market-0",
		cols.Title: "farmers market",
		cols.Start: "2025-06-14T09:00:00Z",
	})
	return t, nil
}

func TestRunOnce(t *testing.T) {
	cfg := testConfig(t)
	s, err := store.Open(cfg.StorePath)
	require.NoError(t, err)
	defer s.Close()

	r := &Runner{Cfg: cfg, Store: s, Collect: fakeCollect}
	require.NoError(t, r.RunOnce(context.Background()))

	// The combined dataset was written with propagated labels.
	combined, err := dataset.Load(filepath.Join(cfg.DataDir, "events_labeled.csv"))
	require.NoError(t, err)
	require.Len(t, combined.Rows, 9)

	cols := cfg.Columns
	var propagated int
	for _, row := range combined.Rows {
		if row.Get(dataset.ColLabelSource) == "series_propagation" {
			propagated++
			assert.Equal(t, "1", row.Get(cols.Label))
		}
	}
	assert.Equal(t, 1, propagated)

	// The model was trained and saved.
	_, err = os.Stat(cfg.ModelPath)
	require.NoError(t, err)

	// The run was recorded.
	runs, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "pipeline", runs[0].Stage)
	assert.Equal(t, 9, runs[0].Rows)
	assert.Equal(t, 1, runs[0].Filled)
}

func TestRunOnceIdempotent(t *testing.T) {
	cfg := testConfig(t)
	r := &Runner{Cfg: cfg, Collect: fakeCollect}

	require.NoError(t, r.RunOnce(context.Background()))
	// Second cycle sees the same uids again and must not duplicate.
	require.NoError(t, r.RunOnce(context.Background()))

	combined, err := dataset.Load(filepath.Join(cfg.DataDir, "events_labeled.csv"))
	require.NoError(t, err)
	assert.Len(t, combined.Rows, 9)
}

func TestScheduleRejectsEmpty(t *testing.T) {
	r := &Runner{Cfg: testConfig(t)}
	assert.Error(t, r.Schedule(context.Background()))
}
