// Package navigate resolves page paths and chart clicks into views.
//
// Detail links address a record by its position in the model's feedback
// list, which is ordered by descending word count and truncated to
// MaxFeedback entries. The same ordering is used when links are generated
// and when they are resolved, so an index always names the same record for
// a given table.
package navigate

import (
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/sentidash/internal/model"
	"github.com/ppiankov/sentidash/internal/table"
)

// MaxFeedback bounds a model's feedback list
const MaxFeedback = 50

// None stands in for an unselected feature or fact in click paths
const None = "None"

// Navigator resolves paths against an immutable table
type Navigator struct {
	store *table.Store
}

func New(store *table.Store) *Navigator {
	return &Navigator{store: store}
}

// Resolve maps a path onto a view. It never fails; malformed paths resolve
// to the main view or to an Invalid/NotFound view with a message.
func (n *Navigator) Resolve(path string) model.View {
	intent := ParsePath(path)

	switch intent.Kind {
	case model.ViewModelFeedback:
		return model.View{Intent: intent, Feedback: n.FeedbackList(intent.Model)}
	case model.ViewFeedbackDetail:
		rows := n.Records(intent.Model)
		if intent.Index >= len(rows) {
			intent.Kind = model.ViewNotFound
			return model.View{Intent: intent, Message: model.MessageNotFound}
		}
		rec := rows[intent.Index]
		return model.View{Intent: intent, Record: &rec}
	case model.ViewInvalid:
		return model.View{Intent: intent, Message: model.MessageInvalidIndex}
	default:
		return model.View{Intent: intent}
	}
}

// ParsePath classifies a path without consulting the table. Detail paths
// with a malformed index or date parse as Invalid; range checks happen in
// Resolve.
func ParsePath(path string) model.Intent {
	main := model.Intent{Kind: model.ViewMain}

	if rest, ok := strings.CutPrefix(path, model.DetailPrefix); ok {
		parts := segments(rest)
		if len(parts) < 3 {
			return main
		}
		intent := model.Intent{Kind: model.ViewFeedbackDetail, Model: parts[0]}

		index, ok := parseIndex(parts[1])
		if !ok {
			return model.Intent{Kind: model.ViewInvalid, Model: parts[0]}
		}
		date, ok := parsePathDate(parts[2])
		if !ok {
			return model.Intent{Kind: model.ViewInvalid, Model: parts[0]}
		}
		intent.Index = index
		intent.Date = date.Format(model.DateLayout)
		return intent
	}

	if rest, ok := strings.CutPrefix(path, model.FeedbackPrefix+"/"); ok {
		parts := segments(rest)
		if len(parts) == 0 || parts[0] == "" {
			return main
		}
		intent := model.Intent{Kind: model.ViewModelFeedback, Model: parts[0]}
		if len(parts) > 1 {
			intent.Feature = parts[1]
		}
		if len(parts) > 2 {
			intent.Fact = parts[2]
		}
		return intent
	}

	return main
}

// parseIndex accepts unsigned decimal digits only. Values too large for an
// int saturate so Resolve reports them as not found.
func parseIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return math.MaxInt, true
	}
	return n, true
}

// parsePathDate accepts a whole YYYY-MM-DD or RFC3339 token, nothing trailing
func parsePathDate(s string) (time.Time, bool) {
	if t, err := time.Parse(model.DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// FeedbackList returns the model's rows ordered by descending word count,
// ties kept in table order, truncated to MaxFeedback. Entry i links to
// detail index i.
func (n *Navigator) FeedbackList(modelName string) []model.FeedbackEntry {
	rows := n.Records(modelName)
	out := make([]model.FeedbackEntry, 0, len(rows))
	for i, r := range rows {
		out = append(out, model.FeedbackEntry{
			Index:     i,
			Brand:     r.Brand,
			Model:     r.Model,
			Date:      r.FormattedDate(),
			Category:  r.Segment,
			Summary:   r.Summary,
			WordCount: r.WordCount(),
			Link:      model.DetailPath(r.Model, i, r.FormattedDate()),
			Key:       r.Key(),
		})
	}
	return out
}

// Records returns the model's rows in feedback list order
func (n *Navigator) Records(modelName string) []model.Record {
	rows := n.store.Query(table.ModelIs(modelName))
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].WordCount() > rows[j].WordCount()
	})
	if len(rows) > MaxFeedback {
		rows = rows[:MaxFeedback]
	}
	return rows
}

// ClickPath turns a chart click into a feedback path carrying the first
// selected feature and fact. A click without a model goes home.
func ClickPath(click model.Click, sel model.Selection) string {
	m := click.Model()
	if m == "" {
		return "/"
	}
	feature := sel.First(model.DimFeature, None)
	fact := sel.First(model.DimFact, None)
	return model.FeedbackPath(m, feature, fact)
}

// segments splits a path remainder on "/", dropping the leading empty
// segment and unescaping each part. Parts that fail to unescape are kept raw.
func segments(rest string) []string {
	rest = strings.TrimPrefix(rest, "/")
	if rest == "" {
		return nil
	}
	parts := strings.Split(rest, "/")
	for i, p := range parts {
		if u, err := url.PathUnescape(p); err == nil {
			parts[i] = u
		}
	}
	return parts
}
