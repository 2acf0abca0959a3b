package navigate

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/sentidash/internal/fixture"
	"github.com/ppiankov/sentidash/internal/model"
	"github.com/ppiankov/sentidash/internal/table"
)

func newNavigator() *Navigator {
	return New(table.New(fixture.Dashboard()))
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		path string
		want model.Intent
	}{
		{"", model.Intent{Kind: model.ViewMain}},
		{"/", model.Intent{Kind: model.ViewMain}},
		{"/feedback", model.Intent{Kind: model.ViewMain}},
		{"/feedback/", model.Intent{Kind: model.ViewMain}},
		{"/other/Leaf", model.Intent{Kind: model.ViewMain}},
		{"/feedback/Leaf", model.Intent{Kind: model.ViewModelFeedback, Model: "Leaf"}},
		{"/feedback/Model%20S/Battery/Positive", model.Intent{Kind: model.ViewModelFeedback, Model: "Model S", Feature: "Battery", Fact: "Positive"}},
		{"/feedback/details/Leaf", model.Intent{Kind: model.ViewMain}},
		{"/feedback/details/Leaf/1", model.Intent{Kind: model.ViewMain}},
		{"/feedback/details/Leaf/1/2024-01-15", model.Intent{Kind: model.ViewFeedbackDetail, Model: "Leaf", Index: 1, Date: "2024-01-15"}},
		{"/feedback/details/Leaf/abc/2024-01-15", model.Intent{Kind: model.ViewInvalid, Model: "Leaf"}},
		{"/feedback/details/Leaf/-1/2024-01-15", model.Intent{Kind: model.ViewInvalid, Model: "Leaf"}},
		{"/feedback/details/Leaf/0/yesterday", model.Intent{Kind: model.ViewInvalid, Model: "Leaf"}},
		{"/feedback/details/Leaf/0/2024-01-15junk", model.Intent{Kind: model.ViewInvalid, Model: "Leaf"}},
		{"/feedback/details/Leaf/0/2024-02-30", model.Intent{Kind: model.ViewInvalid, Model: "Leaf"}},
		{"/feedback/details/Leaf/0/2024-01-15T08:30:00Z", model.Intent{Kind: model.ViewFeedbackDetail, Model: "Leaf", Date: "2024-01-15"}},
		{"/feedback/details/Leaf/+0/2024-01-15", model.Intent{Kind: model.ViewInvalid, Model: "Leaf"}},
		{"/feedback/details/Leaf/99999999999999999999/2024-01-15", model.Intent{Kind: model.ViewFeedbackDetail, Model: "Leaf", Index: math.MaxInt, Date: "2024-01-15"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePath(tt.path))
		})
	}
}

func TestNavigator_Resolve_ModelFeedback(t *testing.T) {
	view := newNavigator().Resolve("/feedback/Leaf")

	assert.Equal(t, model.ViewModelFeedback, view.Intent.Kind)
	require.Len(t, view.Feedback, 3)
	assert.Equal(t, 7, view.Feedback[0].WordCount)
	assert.Equal(t, "/feedback/details/Leaf/0/2024-01-10", view.Feedback[0].Link)
	assert.Equal(t, "Infotainment summary", view.Feedback[1].Summary)
	assert.Equal(t, "segment", view.Feedback[2].Category)
	assert.Nil(t, view.Record)
}

func TestNavigator_Resolve_UnknownModelHasEmptyList(t *testing.T) {
	view := newNavigator().Resolve("/feedback/Cybertruck")

	assert.Equal(t, model.ViewModelFeedback, view.Intent.Kind)
	assert.NotNil(t, view.Feedback)
	assert.Empty(t, view.Feedback)
}

func TestNavigator_Resolve_DetailMatchesListIndex(t *testing.T) {
	n := newNavigator()

	for _, entry := range n.FeedbackList("Leaf") {
		view := n.Resolve(entry.Link)
		require.Equal(t, model.ViewFeedbackDetail, view.Intent.Kind, entry.Link)
		require.NotNil(t, view.Record)
		assert.Equal(t, entry.Key, view.Record.Key())
		assert.Equal(t, entry.Summary, view.Record.Summary)
	}
}

func TestNavigator_Resolve_Failures(t *testing.T) {
	n := newNavigator()

	view := n.Resolve("/feedback/details/Leaf/3/2024-01-10")
	assert.Equal(t, model.ViewNotFound, view.Intent.Kind)
	assert.Equal(t, model.MessageNotFound, view.Message)

	view = n.Resolve("/feedback/details/Nobody/0/2024-01-10")
	assert.Equal(t, model.ViewNotFound, view.Intent.Kind)

	view = n.Resolve("/feedback/details/Leaf/x/2024-01-10")
	assert.Equal(t, model.ViewInvalid, view.Intent.Kind)
	assert.Equal(t, model.MessageInvalidIndex, view.Message)

	view = n.Resolve("/feedback/details/Leaf/99999999999999999999/2024-01-10")
	assert.Equal(t, model.ViewNotFound, view.Intent.Kind)

	view = n.Resolve("/feedback/details/Leaf/0/2024-01-10junk")
	assert.Equal(t, model.ViewInvalid, view.Intent.Kind)
	assert.Nil(t, view.Record)

	view = n.Resolve("/feedback/details/Leaf")
	assert.Equal(t, model.ViewMain, view.Intent.Kind)
	assert.Empty(t, view.Message)
}

func TestNavigator_FeedbackList_StableOrderAndTruncation(t *testing.T) {
	var rows []fixture.Row
	for i := range 60 {
		words := "one two"
		if i%2 == 0 {
			words = "one two three"
		}
		rows = append(rows, fixture.Row{Model: "X", Feature: fmt.Sprintf("f%02d", i), Date: "2024-01-01", Feedback: words})
	}
	n := New(table.New(fixture.Records(rows...)))

	list := n.FeedbackList("X")
	require.Len(t, list, MaxFeedback)

	// 30 three-word rows first in table order, then the first 20 two-word rows
	assert.Equal(t, "f00 summary", list[0].Summary)
	assert.Equal(t, "f02 summary", list[1].Summary)
	assert.Equal(t, "f58 summary", list[29].Summary)
	assert.Equal(t, "f01 summary", list[30].Summary)
	assert.Equal(t, "f39 summary", list[49].Summary)
	for i, e := range list {
		assert.Equal(t, i, e.Index)
	}
}

func TestClickPath(t *testing.T) {
	tests := []struct {
		name  string
		click model.Click
		sel   model.Selection
		want  string
	}{
		{"empty click", model.Click{}, model.Selection{}, "/"},
		{"no selection", model.Click{Points: []model.ClickPoint{{X: "Leaf"}}}, model.Selection{}, "/feedback/Leaf/None/None"},
		{"first feature and fact", model.Click{Label: "Leaf"}, model.Selection{Feature: []string{"Seats", "Battery"}, Fact: []string{"Negative"}}, "/feedback/Leaf/Seats/Negative"},
		{"escaped model", model.Click{Label: "Model S"}, model.Selection{}, "/feedback/Model%20S/None/None"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClickPath(tt.click, tt.sel))
		})
	}
}

func TestClickPath_ResolvesToModelFeedback(t *testing.T) {
	path := ClickPath(model.Click{Label: "Model S"}, model.Selection{Fact: []string{"Very Positive"}})

	intent := ParsePath(path)
	assert.Equal(t, model.Intent{Kind: model.ViewModelFeedback, Model: "Model S", Feature: "None", Fact: "Very Positive"}, intent)
}
