package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/sentidash/internal/llm"
	"github.com/ppiankov/sentidash/internal/model"
)

// Output formats
const (
	FormatTable    = "table"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMarkdown = "markdown"
)

// Render writes v in the requested format. Table and Markdown output are
// available for the dashboard's own result types; anything else falls back
// to YAML.
func Render(w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		return renderYAML(w, v)
	case FormatTable, FormatMarkdown, "":
		if s, ok := plainText(v, format == FormatMarkdown); ok {
			_, err := io.WriteString(w, s)
			return err
		}
		sections, ok := tables(v)
		if !ok {
			return renderYAML(w, v)
		}
		for i, sec := range sections {
			if i > 0 {
				fmt.Fprintln(w)
			}
			if format == FormatMarkdown {
				if sec.title != "" {
					fmt.Fprintf(w, "## %s\n\n", sec.title)
				}
				fmt.Fprintln(w, sec.writer.RenderMarkdown())
				continue
			}
			if sec.title != "" {
				sec.writer.SetTitle(sec.title)
			}
			fmt.Fprintln(w, sec.writer.Render())
		}
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteFile renders v into path, creating parent directories
func WriteFile(path, format string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	var buf bytes.Buffer
	if err := Render(&buf, format, v); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// renderYAML goes through JSON so field names match the JSON output, then
// re-emits the node tree in block style with key order preserved.
func renderYAML(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return fmt.Errorf("convert to yaml: %w", err)
	}
	blockStyle(&node)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func blockStyle(n *yaml.Node) {
	if n.Kind == yaml.SequenceNode || n.Kind == yaml.MappingNode {
		n.Style = 0
	}
	if n.Kind == yaml.ScalarNode && n.Style == yaml.DoubleQuotedStyle && n.Tag == "!!str" {
		n.Style = 0
	}
	for _, c := range n.Content {
		blockStyle(c)
	}
}

type section struct {
	title  string
	writer table.Writer
}

func newWriter(header table.Row) table.Writer {
	tw := table.NewWriter()
	tw.AppendHeader(header)
	tw.SetStyle(table.StyleLight)
	return tw
}

// plainText handles values that render as prose rather than tables
func plainText(v any, markdown bool) (string, bool) {
	switch t := v.(type) {
	case *llm.Digest:
		return llm.RenderMarkdown(t), true
	case string:
		return t + "\n", true
	case ChartView:
		if t.Chart.Empty {
			return "Select a date range to see the chart.\n", true
		}
	case model.View:
		switch t.Intent.Kind {
		case model.ViewMain:
			return "main dashboard\n", true
		case model.ViewInvalid, model.ViewNotFound:
			return t.Message + "\n", true
		case model.ViewFeedbackDetail:
			if t.Record == nil {
				return "", false
			}
			if markdown {
				return fmt.Sprintf("### Feedback for Model: %s\n\nDate: %s\n\nFeedback: %s\n", t.Intent.Model, t.Intent.Date, t.Record.Feedback), true
			}
			return fmt.Sprintf("Feedback for Model: %s\nDate: %s\nFeedback: %s\n", t.Intent.Model, t.Intent.Date, t.Record.Feedback), true
		}
	}
	return "", false
}

func tables(v any) ([]section, bool) {
	switch t := v.(type) {
	case *Report:
		secs := []section{}
		if t.Chart.Chart.Empty {
			tw := newWriter(table.Row{"Chart"})
			tw.AppendRow(table.Row{"Select a date range to see the chart."})
			secs = append(secs, section{title: t.Name, writer: tw})
		} else {
			secs = append(secs, section{title: t.Name + ": " + t.Chart.Heading, writer: chartTable(t.Chart.Chart)})
		}
		secs = append(secs, section{title: "Features", writer: featureTable(t.Features)})
		return secs, true
	case ChartView:
		return []section{{title: t.Heading, writer: chartTable(t.Chart)}}, true
	case TrendView:
		return []section{{title: fmt.Sprintf("Daily sentiment (%d-day average)", t.Window), writer: trendTable(t)}}, true
	case []model.FeatureSummary:
		return []section{{writer: featureTable(t)}}, true
	case model.Highlights:
		tw := newWriter(table.Row{"Model", "Feature", "Critical Ranking"})
		for _, h := range t.Rows {
			tw.AppendRow(table.Row{h.Model, h.Feature, h.Polarity})
		}
		return []section{{title: "Highlighted models", writer: tw}}, true
	case model.View:
		tw := newWriter(table.Row{"#", "Brand", "Model", "Date", "Category", "Summary", "Words"})
		for _, e := range t.Feedback {
			tw.AppendRow(table.Row{e.Index, e.Brand, e.Model, e.Date, e.Category, e.Summary, e.WordCount})
		}
		return []section{{title: "Feedback for " + t.Intent.Model, writer: tw}}, true
	case map[model.Dimension][]model.Option:
		tw := newWriter(table.Row{"Dimension", "Options"})
		for _, d := range model.Dimensions {
			tw.AppendRow(table.Row{d, joinLabels(t[d])})
		}
		return []section{{writer: tw}}, true
	case []model.Option:
		tw := newWriter(table.Row{"Value", "Label"})
		for _, o := range t {
			tw.AppendRow(table.Row{o.Value, o.Label})
		}
		return []section{{writer: tw}}, true
	case []model.Record:
		tw := newWriter(table.Row{"Row", "Brand", "Model", "Feature", "Fact", "Ranking", "Source", "Date"})
		for _, r := range t {
			tw.AppendRow(table.Row{r.Row, r.Brand, r.Model, r.Feature, r.SentimentFact(), r.CriticalRanking, r.Source, r.FormattedDate()})
		}
		tw.AppendFooter(table.Row{"", "", "", "", "", "", "Rows", strconv.Itoa(len(t))})
		return []section{{writer: tw}}, true
	}
	return nil, false
}

func chartTable(c model.Chart) table.Writer {
	header := table.Row{"Model"}
	for _, f := range model.Facts {
		header = append(header, string(f))
	}
	header = append(header, "Total")

	tw := newWriter(header)
	for _, m := range c.Models {
		row := table.Row{m}
		for _, f := range model.Facts {
			row = append(row, c.Counts[m][f])
		}
		row = append(row, c.Counts[m].Total())
		tw.AppendRow(row)
	}

	configs := []table.ColumnConfig{{Number: 1, Align: text.AlignLeft}}
	for i := range len(model.Facts) + 1 {
		configs = append(configs, table.ColumnConfig{Number: i + 2, Align: text.AlignRight})
	}
	tw.SetColumnConfigs(configs)
	return tw
}

func featureTable(summaries []model.FeatureSummary) table.Writer {
	tw := newWriter(table.Row{"Model", "Positive", "Negative"})
	for _, s := range summaries {
		tw.AppendRow(table.Row{s.Model, joinFeatures(s.Positive), joinFeatures(s.Negative)})
	}
	return tw
}

func trendTable(t TrendView) table.Writer {
	header := table.Row{"Date"}
	for _, f := range model.Facts {
		header = append(header, string(f))
	}
	tw := newWriter(header)
	for i, p := range t.Points {
		row := table.Row{p.Date}
		for _, f := range model.Facts {
			row = append(row, fmt.Sprintf("%d (%.1f)", p.Counts[f], t.Averages[i].Averages[f]))
		}
		tw.AppendRow(row)
	}
	return tw
}

func joinFeatures(refs []model.FeatureRef) string {
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		names = append(names, r.Feature)
	}
	return strings.Join(names, ", ")
}

func joinLabels(opts []model.Option) string {
	labels := make([]string, 0, len(opts))
	for _, o := range opts {
		labels = append(labels, o.Label)
	}
	return strings.Join(labels, ", ")
}
