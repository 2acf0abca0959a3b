package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/ppiankov/sentidash/internal/cache"
	"github.com/ppiankov/sentidash/internal/logger"
	"github.com/ppiankov/sentidash/internal/model"
	"github.com/ppiankov/sentidash/internal/util"
)

// ErrDisallowed is returned when robots.txt forbids fetching a data URL
var ErrDisallowed = errors.New("disallowed by robots.txt")

const maxRedirects = 3

// Fetcher downloads feedback tables over HTTP
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker // nil when robots.txt is ignored
	cache      cache.Cache         // nil when downloads are not cached
	cfg        model.RemoteConfig
}

// NewFetcher creates a fetcher. A non-empty CacheDir with a positive
// CacheTTL keeps downloads on disk between runs.
func NewFetcher(cfg model.RemoteConfig) *Fetcher {
	client := util.NewHTTPClient(cfg.Timeout, cfg.HTTPProxy, cfg.HTTPSProxy)
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		return nil
	}

	f := &Fetcher{
		httpClient: client,
		userAgent:  cfg.UserAgent,
		maxBytes:   cfg.MaxBytes,
		cfg:        cfg,
	}
	if cfg.Robots {
		f.robots = util.NewRobotsChecker(client, cfg.UserAgent)
	}
	if cfg.CacheDir != "" && cfg.CacheTTL > 0 {
		f.cache = cache.NewDiskCache(cfg.CacheDir, cfg.CacheTTL)
	}
	return f
}

// Fetch returns the body at rawURL, from the download cache when fresh
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	log := logger.FromContext(ctx)
	key := cache.FetchKey(rawURL)

	if f.cache != nil {
		if data, ok := f.cache.Get(key); ok {
			log.V(1).Info("using cached download", "url", rawURL, "bytes", len(data))
			return data, nil
		}
	}

	if f.robots != nil {
		allowed, err := f.robots.Allowed(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("%s: %w", rawURL, ErrDisallowed)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/csv,application/vnd.sqlite3,application/octet-stream;q=0.9,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	reader := io.Reader(resp.Body)
	if f.maxBytes > 0 {
		// One extra byte tells a body at the limit from one over it
		reader = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if f.maxBytes > 0 && int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("response exceeds %d bytes", f.maxBytes)
	}

	log.Info("downloaded feedback table", "url", resp.Request.URL.String(), "bytes", len(body))

	if f.cache != nil {
		if err := f.cache.Set(key, body, f.cfg.CacheTTL); err != nil {
			log.V(1).Info("download cache write failed", "error", err.Error())
		}
	}
	return body, nil
}

// IsRemote reports whether a data path is an http(s) URL
func IsRemote(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}

// remoteExt returns the extension of a URL's path, ignoring the query
func remoteExt(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return path.Ext(u.Path)
}
