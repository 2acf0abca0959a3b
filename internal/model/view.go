package model

import (
	"net/url"
	"strconv"
)

// ViewKind identifies which page a path resolves to
type ViewKind string

const (
	ViewMain           ViewKind = "main"
	ViewModelFeedback  ViewKind = "model_feedback"
	ViewFeedbackDetail ViewKind = "feedback_detail"
	ViewNotFound       ViewKind = "not_found" // Detail index outside the model's list
	ViewInvalid        ViewKind = "invalid"   // Malformed index or date
)

// Messages rendered for the failure views
const (
	MessageNotFound     = "No feedback found."
	MessageInvalidIndex = "Invalid feedback index"
)

// Intent is the parsed form of a navigation path
type Intent struct {
	Kind    ViewKind `json:"kind"`
	Model   string   `json:"model,omitempty"`
	Feature string   `json:"feature,omitempty"` // Hint carried by click and feature links
	Fact    string   `json:"fact,omitempty"`    // Hint carried by click and feature links
	Index   int      `json:"index,omitempty"`
	Date    string   `json:"date,omitempty"`
}

// FeedbackEntry is one row of a model's word-count ordered feedback list
type FeedbackEntry struct {
	Index     int    `json:"index"`
	Brand     string `json:"brand"`
	Model     string `json:"model"`
	Date      string `json:"date"`
	Category  string `json:"category"`
	Summary   string `json:"summary"`
	WordCount int    `json:"word_count"`
	Link      string `json:"link"`
	Key       string `json:"key"`
}

// View is the payload a path resolves to. Exactly one of Feedback or Record
// is set for the feedback views; failure views carry only Message.
type View struct {
	Intent   Intent          `json:"intent"`
	Feedback []FeedbackEntry `json:"feedback,omitempty"`
	Record   *Record         `json:"record,omitempty"`
	Message  string          `json:"message,omitempty"`
}

// Click is the chart click payload. Label is the clicked category, read as a model name.
type Click struct {
	Label  string       `json:"label,omitempty"`
	Points []ClickPoint `json:"points,omitempty"`
}

// ClickPoint mirrors a plotly clickData point
type ClickPoint struct {
	X string `json:"x"`
}

// Model returns the clicked model, preferring the first point over Label
func (c Click) Model() string {
	if len(c.Points) > 0 && c.Points[0].X != "" {
		return c.Points[0].X
	}
	return c.Label
}

// Path prefixes of the feedback pages
const (
	FeedbackPrefix = "/feedback"
	DetailPrefix   = "/feedback/details"
)

// FeedbackPath links a model's feedback page. Feature and fact are optional
// hints; both are appended only when feature is set.
func FeedbackPath(model, feature, fact string) string {
	p := FeedbackPrefix + "/" + url.PathEscape(model)
	if feature != "" {
		p += "/" + url.PathEscape(feature) + "/" + url.PathEscape(fact)
	}
	return p
}

// DetailPath links one entry of a model's feedback list
func DetailPath(model string, index int, date string) string {
	return DetailPrefix + "/" + url.PathEscape(model) + "/" + strconv.Itoa(index) + "/" + url.PathEscape(date)
}
