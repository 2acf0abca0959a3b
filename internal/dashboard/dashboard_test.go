package dashboard

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/sentidash/internal/fixture"
	"github.com/ppiankov/sentidash/internal/llm"
	"github.com/ppiankov/sentidash/internal/model"
	"github.com/ppiankov/sentidash/internal/table"
)

// firstSampler keeps the first k items
type firstSampler struct{}

func (firstSampler) Sample(items []string, k int) []string { return items[:k] }

func newDashboard(t *testing.T) *Dashboard {
	t.Helper()
	return New(context.Background(), table.New(fixture.Dashboard()), model.DefaultConfig(), WithSampler(firstSampler{}))
}

func january() model.Selection {
	return model.Selection{FromDate: model.MustDate("2024-01-01"), ToDate: model.MustDate("2024-01-31")}
}

func TestDashboard_ChartView(t *testing.T) {
	d := newDashboard(t)

	sel := january()
	sel.Feature = []string{"Battery"}
	sel.Fact = []string{"Very Positive"}
	view := d.Chart(sel)

	assert.Equal(t, "Very Positive Sentiment on Battery", view.Heading)
	assert.Equal(t, []string{"Leaf"}, view.Chart.Models)
	assert.Len(t, view.Series, 5)
}

func TestDashboard_Report(t *testing.T) {
	d := newDashboard(t)

	sel := january()
	sel.Brand = []string{"Toyota"}
	sel.Model = []string{"Leaf"}

	report := d.Report(context.Background(), "stale-leaf", sel)
	assert.Equal(t, "stale-leaf", report.Name)
	assert.Equal(t, []string{"Toyota"}, report.Selection["brand"])
	assert.Empty(t, report.Chart.Chart.Models, "Leaf is not a Toyota")
	require.Len(t, report.Features, 1)
	assert.Equal(t, "Leaf", report.Features[0].Model)
	assert.Equal(t, []string{"Leaf"}, report.Stale[model.DimModel])
}

func TestDashboard_Query(t *testing.T) {
	d := newDashboard(t)

	rows, err := d.Query(`r.source == "Forum" && r.ranking < 0`)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Seats", rows[0].Feature)

	_, err = d.Query(`r.source ==`)
	assert.Error(t, err)
}

func TestDashboard_DigestDisabled(t *testing.T) {
	d := newDashboard(t)

	assert.False(t, d.DigestEnabled())
	_, err := d.Digest(context.Background(), "Leaf")
	assert.True(t, errors.Is(err, llm.ErrDisabled))
}

func TestDashboard_ViewAndClick(t *testing.T) {
	d := newDashboard(t)

	path := d.Click(model.Click{Points: []model.ClickPoint{{X: "Leaf"}}}, model.Selection{})
	assert.Equal(t, "/feedback/Leaf/None/None", path)

	view := d.View(path)
	assert.Equal(t, model.ViewModelFeedback, view.Intent.Kind)
	assert.Len(t, view.Feedback, 3)
}

func TestRender_Formats(t *testing.T) {
	d := newDashboard(t)
	chart := d.Chart(january())

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatJSON, chart))
	assert.Contains(t, buf.String(), `"heading": " Sentiment on Features"`)

	buf.Reset()
	require.NoError(t, Render(&buf, FormatYAML, chart))
	assert.Contains(t, buf.String(), "Sentiment on Features")
	assert.NotContains(t, buf.String(), "{", "block style only")
	assert.Contains(t, buf.String(), "- Leaf")

	buf.Reset()
	require.NoError(t, Render(&buf, FormatTable, chart))
	assert.Contains(t, buf.String(), "Leaf")
	assert.Contains(t, buf.String(), "Prius")

	buf.Reset()
	require.NoError(t, Render(&buf, FormatMarkdown, d.Features(model.Selection{})))
	assert.Contains(t, buf.String(), "| Leaf ")
	assert.Contains(t, buf.String(), "Battery, Infotainment")

	assert.Error(t, Render(&buf, "xml", chart))
}

func TestRender_ProseViews(t *testing.T) {
	d := newDashboard(t)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatTable, d.Chart(model.Selection{})))
	assert.Equal(t, "Select a date range to see the chart.\n", buf.String())

	buf.Reset()
	require.NoError(t, Render(&buf, FormatTable, d.View("/feedback/details/Leaf/9/2024-01-10")))
	assert.Equal(t, model.MessageNotFound+"\n", buf.String())

	buf.Reset()
	require.NoError(t, Render(&buf, FormatTable, d.View("/feedback/details/Leaf/0/2024-01-10")))
	assert.True(t, strings.HasPrefix(buf.String(), "Feedback for Model: Leaf\nDate: 2024-01-10\n"))
}

func TestWriteFile(t *testing.T) {
	d := newDashboard(t)
	path := filepath.Join(t.TempDir(), "reports", "january.json")

	require.NoError(t, WriteFile(path, FormatJSON, d.Report(context.Background(), "january", january())))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "january"`)
}
