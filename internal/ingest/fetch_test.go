package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/sentidash/internal/model"
)

func newDataServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /private/\n")
		case "/exports/feedback.csv", "/private/feedback.csv":
			hits.Add(1)
			w.Header().Set("Content-Type", "text/csv")
			_, _ = fmt.Fprint(w, sampleCSV)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func remoteConfig(t *testing.T) model.RemoteConfig {
	return model.RemoteConfig{
		Timeout:   5 * time.Second,
		MaxBytes:  1 << 20,
		UserAgent: "sentidash-test/1.0",
		Robots:    true,
		CacheTTL:  time.Hour,
		CacheDir:  t.TempDir(),
	}
}

func TestOpen_RemoteCSV(t *testing.T) {
	var hits atomic.Int32
	srv := newDataServer(t, &hits)

	cfg := model.DataConfig{Path: srv.URL + "/exports/feedback.csv?token=x", Remote: remoteConfig(t)}

	store, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, store.Len())

	_, err = Open(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "second open is served from the download cache")
}

func TestFetcher_RobotsDisallowed(t *testing.T) {
	var hits atomic.Int32
	srv := newDataServer(t, &hits)

	_, err := NewFetcher(remoteConfig(t)).Fetch(context.Background(), srv.URL+"/private/feedback.csv")
	assert.True(t, errors.Is(err, ErrDisallowed), "got %v", err)
	assert.Zero(t, hits.Load())

	cfg := remoteConfig(t)
	cfg.Robots = false
	_, err = NewFetcher(cfg).Fetch(context.Background(), srv.URL+"/private/feedback.csv")
	assert.NoError(t, err)
}

func TestFetcher_StatusAndSizeErrors(t *testing.T) {
	var hits atomic.Int32
	srv := newDataServer(t, &hits)

	_, err := NewFetcher(remoteConfig(t)).Fetch(context.Background(), srv.URL+"/missing.csv")
	assert.Error(t, err)

	cfg := remoteConfig(t)
	cfg.MaxBytes = 10
	_, err = NewFetcher(cfg).Fetch(context.Background(), srv.URL+"/exports/feedback.csv")
	assert.ErrorContains(t, err, "exceeds")
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, "sqlite", formatFromPath("data/feedback.DB"))
	assert.Equal(t, "csv", formatFromPath("feedback.csv"))
	assert.Equal(t, "sqlite", formatFromPath("https://example.com/dump.sqlite?v=2"))
	assert.Equal(t, "csv", formatFromPath("https://example.com/export"))
}
