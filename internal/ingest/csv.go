package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/ppiankov/sentidash/internal/logger"
	"github.com/ppiankov/sentidash/internal/model"
)

// ErrMissingColumn is returned when a required column is absent from the header
var ErrMissingColumn = errors.New("missing required column")

// Options controls record normalisation
type Options struct {
	StripHTML bool // Strip markup from feedback and summary text
}

// Column headers, matched case-insensitively
const (
	headerBrand    = "brand"
	headerModel    = "model"
	headerFeature  = "feature"
	headerFact     = "fact"
	headerRanking  = "criticalranking"
	headerSegment  = "segment"
	headerSource   = "source"
	headerDate     = "date"
	headerFeedback = "feedback"
	headerSummary  = "summary"
)

var requiredHeaders = []string{headerModel, headerFact}

// dateLayouts are tried in order when parsing record dates
var dateLayouts = []string{
	model.DateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"02-01-2006",
	"2006/01/02",
}

// LoadCSV reads a feedback table. Input that is not valid UTF-8 is decoded
// as Windows-1252, which covers Latin-1 exports.
func LoadCSV(ctx context.Context, r io.Reader, opts Options) ([]model.Record, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	if !utf8.Valid(raw) {
		logger.FromContext(ctx).V(1).Info("decoding non-UTF-8 input as windows-1252")
		raw, err = charmap.Windows1252.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, fmt.Errorf("decode csv: %w", err)
		}
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := headerIndex(header)
	for _, h := range requiredHeaders {
		if _, ok := index[h]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, h)
		}
	}

	var records []model.Record
	line := 1
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		get := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(fields) {
				return ""
			}
			return strings.TrimSpace(fields[i])
		}

		rec := NewRecord(ctx, RawRow{
			Brand:    get(headerBrand),
			Model:    get(headerModel),
			Feature:  get(headerFeature),
			Fact:     get(headerFact),
			Ranking:  get(headerRanking),
			Segment:  get(headerSegment),
			Source:   get(headerSource),
			Date:     get(headerDate),
			Feedback: get(headerFeedback),
			Summary:  get(headerSummary),
		}, opts)
		rec.Row = len(records)
		records = append(records, rec)
	}

	return records, nil
}

// RawRow is one untyped row as read from a source
type RawRow struct {
	Brand, Model, Feature, Fact, Ranking, Segment, Source, Date, Feedback, Summary string
}

// NewRecord converts a raw row into a record. Unparseable rankings load as 0
// and unparseable dates keep the raw string with HasDate false.
func NewRecord(ctx context.Context, raw RawRow, opts Options) model.Record {
	rec := model.Record{
		Brand:    raw.Brand,
		Model:    raw.Model,
		Feature:  raw.Feature,
		Fact:     raw.Fact,
		Segment:  raw.Segment,
		Source:   raw.Source,
		Date:     raw.Date,
		Feedback: raw.Feedback,
		Summary:  raw.Summary,
	}

	if raw.Ranking != "" {
		n, err := parseRanking(raw.Ranking)
		if err != nil {
			logger.FromContext(ctx).Info("invalid critical ranking, using 0", "model", raw.Model, "value", raw.Ranking)
		}
		rec.CriticalRanking = n
	}

	if t, ok := parseDate(raw.Date); ok {
		rec.Time = t
		rec.HasDate = true
	}

	if opts.StripHTML {
		rec.Feedback = StripHTML(rec.Feedback)
		rec.Summary = StripHTML(rec.Summary)
	}

	return rec
}

func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		key = strings.ReplaceAll(key, "_", "")
		key = strings.ReplaceAll(key, " ", "")
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	return index
}

func parseRanking(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
