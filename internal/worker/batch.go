package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/sentidash/internal/dashboard"
	"github.com/ppiankov/sentidash/internal/logger"
	"github.com/ppiankov/sentidash/internal/model"
	"github.com/ppiankov/sentidash/internal/session"
)

// Reporter renders the dashboard for one named selection
type Reporter interface {
	Report(ctx context.Context, name string, sel model.Selection) *dashboard.Report
}

// Preset is a named, saved selection
type Preset struct {
	Name      string
	Selection model.Selection
}

// ReportJob renders one preset and optionally writes it to disk
type ReportJob struct {
	Index    int
	Preset   Preset
	Reporter Reporter
	OutDir   string
	Formats  []string
	BaseName string // file name without extension, defaults to the preset slug
}

// Execute executes the report job
func (j *ReportJob) Execute(ctx context.Context) Result {
	result := &ReportResult{Index: j.Index, Name: j.Preset.Name}
	if err := ctx.Err(); err != nil {
		result.Error = err
		return result
	}

	result.Report = j.Reporter.Report(ctx, j.Preset.Name, j.Preset.Selection)

	if j.OutDir == "" {
		return result
	}
	base := j.BaseName
	if base == "" {
		base = slug(j.Preset.Name)
	}
	for _, format := range j.Formats {
		path := filepath.Join(j.OutDir, base+extension(format))
		if err := dashboard.WriteFile(path, format, result.Report); err != nil {
			result.Error = fmt.Errorf("write %s report: %w", format, err)
			return result
		}
		result.Files = append(result.Files, path)
	}
	return result
}

// ReportResult is the outcome of a report job
type ReportResult struct {
	Index  int
	Name   string
	Report *dashboard.Report
	Files  []string
	Error  error
}

// GetError returns the error from the report result
func (r *ReportResult) GetError() error {
	return r.Error
}

// BatchProcessor renders many presets concurrently
type BatchProcessor struct {
	reporter    Reporter
	concurrency int
	outDir      string
	formats     []string
}

// NewBatchProcessor creates a batch processor. With an empty outDir reports
// are only returned, not written.
func NewBatchProcessor(reporter Reporter, concurrency int, outDir string, formats []string) *BatchProcessor {
	if len(formats) == 0 {
		formats = []string{dashboard.FormatJSON}
	}
	return &BatchProcessor{
		reporter:    reporter,
		concurrency: concurrency,
		outDir:      outDir,
		formats:     formats,
	}
}

// ProcessPresets renders presets concurrently. Results keep preset order.
func (b *BatchProcessor) ProcessPresets(ctx context.Context, presets []Preset) []*ReportResult {
	if len(presets) == 0 {
		return []*ReportResult{}
	}

	names := fileNames(presets)

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, preset := range presets {
		submitted := pool.Submit(&ReportJob{
			Index:    i,
			Preset:   preset,
			Reporter: b.reporter,
			OutDir:   b.outDir,
			Formats:  b.formats,
			BaseName: names[i],
		})
		if !submitted {
			logger.FromContext(ctx).Info("batch cancelled", "submitted", i, "total", len(presets))
			break
		}
	}

	results := pool.Wait()

	out := make([]*ReportResult, 0, len(results))
	for _, r := range results {
		out = append(out, r.(*ReportResult))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// ProcessFile reads presets from a YAML file and renders them
func (b *BatchProcessor) ProcessFile(ctx context.Context, path string) ([]*ReportResult, error) {
	presets, err := LoadPresets(path)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	return b.ProcessPresets(ctx, presets), nil
}

type presetEntry struct {
	Name      string           `yaml:"name"`
	Selection session.Snapshot `yaml:"selection"`
}

type presetFile struct {
	Presets []presetEntry `yaml:"presets"`
}

// LoadPresets reads a presets file
func LoadPresets(path string) ([]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return ParsePresets(data)
}

// ParsePresets accepts either a document with a top-level "presets" list
// or a bare list. Unnamed presets are numbered; repeated names keep the
// first occurrence.
func ParsePresets(data []byte) ([]Preset, error) {
	var entries []presetEntry

	var file presetFile
	if err := yaml.Unmarshal(data, &file); err == nil && len(file.Presets) > 0 {
		entries = file.Presets
	} else if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}

	presets := make([]Preset, 0, len(entries))
	seen := make(map[string]bool)
	for i, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			name = fmt.Sprintf("preset-%d", i+1)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		presets = append(presets, Preset{Name: name, Selection: session.Restore(e.Selection)})
	}
	return presets, nil
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9_-]+`)

func slug(name string) string {
	s := unsafeChars.ReplaceAllString(strings.ToLower(name), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "report"
	}
	return s
}

// fileNames assigns each preset a distinct slug. A slug already taken gets
// the preset's position appended.
func fileNames(presets []Preset) []string {
	names := make([]string, len(presets))
	taken := make(map[string]bool, len(presets))
	for i, p := range presets {
		name := slug(p.Name)
		for n := i + 1; taken[name]; n++ {
			name = fmt.Sprintf("%s-%d", slug(p.Name), n)
		}
		taken[name] = true
		names[i] = name
	}
	return names
}

func extension(format string) string {
	switch format {
	case dashboard.FormatMarkdown:
		return ".md"
	case dashboard.FormatYAML:
		return ".yaml"
	case dashboard.FormatTable:
		return ".txt"
	default:
		return ".json"
	}
}
