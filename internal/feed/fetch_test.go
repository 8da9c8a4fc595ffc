package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(t *testing.T) *Fetcher {
	t.Helper()
	f := NewFetcher(t.TempDir())
	f.Delay = 0
	return f
}

func TestFetchOneCachesAndRevalidates(t *testing.T) {
	const body = "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Write([]byte(body))
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	src := Source{ID: "test", URL: srv.URL + "/events/ical/test.ics"}

	res, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, []byte(body), res.Body)
	assert.False(t, res.FromCache)

	// Second fetch revalidates and serves from cache on 304.
	res, err = f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, []byte(body), res.Body)
	assert.True(t, res.FromCache)
	assert.Equal(t, 2, hits)
}

func TestFetchOneFallsBackToCacheOnServerError(t *testing.T) {
	const body = "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"
	fail := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(body))
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	src := Source{ID: "test", URL: srv.URL + "/a.ics"}

	_, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)

	fail = true
	res, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	assert.Equal(t, []byte(body), res.Body)
}

func TestFetchOneErrorsWithoutURL(t *testing.T) {
	f := newTestFetcher(t)
	_, err := f.FetchOne(context.Background(), Source{ID: "x"})
	assert.Error(t, err)
}

func TestFetchAllCollectsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"))
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	results, errs := f.FetchAll(context.Background(), []Source{
		{ID: "good", URL: srv.URL + "/a.ics"},
		{ID: "bad"},
	})
	assert.Len(t, results, 1)
	assert.Len(t, errs, 1)
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://example.org/...(redacted)", redactURL("https://example.org/events/ical/secret-slug.ics"))
	assert.Equal(t, "feed://...(redacted)", redactURL("not a url"))
}
