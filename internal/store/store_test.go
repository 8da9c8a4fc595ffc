package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRecordRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "runs.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, stage := range []string{"fetch", "train", "pipeline"} {
		require.NoError(t, s.Record(Run{
			Stage:      stage,
			Input:      "in.csv",
			Output:     "out.csv",
			Rows:       10 + i,
			LabeledIn:  i,
			LabeledOut: i + 5,
			Filled:     i,
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + time.Minute),
		}))
	}

	runs, err := s.Recent(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, "pipeline", runs[0].Stage)
	assert.Equal(t, "train", runs[1].Stage)
	assert.Equal(t, 12, runs[0].Rows)
	assert.Equal(t, 7, runs[0].LabeledOut)
	assert.True(t, runs[0].FinishedAt.After(runs[1].FinishedAt))
}

func TestStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(Run{Stage: "tag", StartedAt: time.Now(), FinishedAt: time.Now()}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	runs, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "tag", runs[0].Stage)
}
