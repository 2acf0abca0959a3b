package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/sentidash/internal/logger"
	"github.com/ppiankov/sentidash/internal/model"
	"github.com/ppiankov/sentidash/internal/table"
)

// Open loads the configured data source into an immutable store. Path may
// be a local file or an http(s) URL.
func Open(ctx context.Context, cfg model.DataConfig) (*table.Store, error) {
	format := cfg.Format
	if format == "" {
		format = formatFromPath(cfg.Path)
	}
	opts := Options{StripHTML: cfg.StripHTML}

	var (
		records []model.Record
		err     error
	)
	if IsRemote(cfg.Path) {
		records, err = openRemote(ctx, cfg, format, opts)
	} else {
		records, err = openLocal(ctx, cfg.Path, cfg.Table, format, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", cfg.Path, err)
	}

	logger.FromContext(ctx).Info("loaded feedback table", "path", cfg.Path, "format", format, "rows", len(records))
	return table.New(records), nil
}

func openLocal(ctx context.Context, path, tableName, format string, opts Options) ([]model.Record, error) {
	switch format {
	case "csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open data file: %w", err)
		}
		defer func() { _ = f.Close() }()
		return LoadCSV(ctx, f, opts)
	case "sqlite":
		return LoadSQLite(ctx, path, tableName, opts)
	default:
		return nil, fmt.Errorf("unsupported data format %q (supported: csv, sqlite)", format)
	}
}

func openRemote(ctx context.Context, cfg model.DataConfig, format string, opts Options) ([]model.Record, error) {
	if format != "csv" && format != "sqlite" {
		return nil, fmt.Errorf("unsupported data format %q (supported: csv, sqlite)", format)
	}

	body, err := NewFetcher(cfg.Remote).Fetch(ctx, cfg.Path)
	if err != nil {
		return nil, err
	}
	if format == "csv" {
		return LoadCSV(ctx, bytes.NewReader(body), opts)
	}

	// SQLite needs a file on disk
	tmp, err := os.CreateTemp("", "sentidash-*.db")
	if err != nil {
		return nil, fmt.Errorf("create temp database: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	_, err = io.Copy(tmp, bytes.NewReader(body))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("write temp database: %w", err)
	}
	return LoadSQLite(ctx, tmp.Name(), cfg.Table, opts)
}

func formatFromPath(p string) string {
	ext := filepath.Ext(p)
	if IsRemote(p) {
		ext = remoteExt(p)
	}
	switch strings.ToLower(ext) {
	case ".db", ".sqlite", ".sqlite3":
		return "sqlite"
	default:
		return "csv"
	}
}
