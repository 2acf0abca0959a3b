package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/sentidash/internal/cache"
	"github.com/ppiankov/sentidash/internal/model"
	"github.com/ppiankov/sentidash/internal/session"
)

const sessionFlag = "session"

// Selection flags, shared by every command that filters the table
var selectionFlags = []struct {
	name  string
	dim   model.Dimension
	usage string
}{
	{"brand", model.DimBrand, "brands to include (repeatable, All = no filter)"},
	{"model", model.DimModel, "models to include"},
	{"feature", model.DimFeature, "features to include"},
	{"fact", model.DimFact, "sentiment facts to include"},
	{"category", model.DimCategory, "categories (Segment, Price)"},
	{"source", model.DimSource, "feedback sources to include"},
}

func addSelectionFlags(cmd *cobra.Command) {
	addFilterFlags(cmd)
	cmd.Flags().String(sessionFlag, "", "session id holding a saved selection")
}

func addFilterFlags(cmd *cobra.Command) {
	for _, f := range selectionFlags {
		cmd.Flags().StringSlice(f.name, nil, f.usage)
	}
	cmd.Flags().String("from", "", "start date, inclusive (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "end date, inclusive (YYYY-MM-DD)")
}

// applySelectionFlags overrides base with every selection flag the user set
func applySelectionFlags(cmd *cobra.Command, base model.Selection) (model.Selection, error) {
	sel := base
	for _, f := range selectionFlags {
		if !cmd.Flags().Changed(f.name) {
			continue
		}
		values, err := cmd.Flags().GetStringSlice(f.name)
		if err != nil {
			return sel, err
		}
		sel = sel.With(f.dim, values)
	}

	for name, target := range map[string]**model.Date{"from": &sel.FromDate, "to": &sel.ToDate} {
		if !cmd.Flags().Changed(name) {
			continue
		}
		raw, _ := cmd.Flags().GetString(name)
		if raw == "" {
			*target = nil
			continue
		}
		d, err := model.ParseDate(raw)
		if err != nil {
			return sel, fmt.Errorf("--%s: %w", name, err)
		}
		*target = &d
	}
	return sel, nil
}

// sessionStore persists CLI sessions in memory and on disk so a selection
// survives between invocations
func (a *app) sessionStore() *session.Store {
	c := cache.NewLayeredCache(a.cfg.Session.TTL, a.cfg.Session.Dir, a.cfg.Session.TTL)
	return session.NewStore(c, a.cfg.Session.TTL)
}

// selection loads --session (when given) and applies selection flags on top
func (a *app) selection(cmd *cobra.Command) (model.Selection, error) {
	var base model.Selection
	if id, _ := cmd.Flags().GetString(sessionFlag); id != "" {
		sel, err := a.sessionStore().Get(a.ctx, id)
		if err != nil {
			if errors.Is(err, session.ErrNoSession) {
				return sel, fmt.Errorf("session %s not found or expired", id)
			}
			return sel, err
		}
		base = sel
	}
	return applySelectionFlags(cmd, base)
}
