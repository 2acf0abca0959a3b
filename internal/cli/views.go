package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/sentidash/internal/dashboard"
	"github.com/ppiankov/sentidash/internal/model"
)

var optionsCmd = &cobra.Command{
	Use:   "options [dimension]",
	Short: "List dropdown options for the current selection",
	Long: `Options lists the values each filter dimension offers. Model options
follow the selected brands and feature options follow the selected models.

Example:
  sentidash options
  sentidash options model --brand Toyota`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, d, sel, err := prepare(cmd)
		if err != nil {
			return err
		}

		for _, line := range staleLines(d.Stale(a.ctx, sel)) {
			fmt.Fprintf(os.Stderr, "Warning: stale selection %s\n", line)
		}

		if len(args) == 1 {
			dim, err := model.ParseDimension(args[0])
			if err != nil {
				return err
			}
			return a.render(d.OptionsFor(a.ctx, dim, sel))
		}
		return a.render(d.Options(a.ctx, sel))
	},
}

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Show sentiment counts per model",
	Long: `Chart counts feedback rows per model and sentiment fact for the
selection. Both --from and --to are required for a non-empty chart.

Example:
  sentidash chart --from 2024-01-01 --to 2024-03-31 --brand Nissan
  sentidash chart --session $ID -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, d, sel, err := prepare(cmd)
		if err != nil {
			return err
		}
		return a.render(d.Chart(sel))
	},
}

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Show daily sentiment counts with moving averages",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, d, sel, err := prepare(cmd)
		if err != nil {
			return err
		}
		window, _ := cmd.Flags().GetInt("window")
		return a.render(d.Trend(sel, window))
	},
}

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Summarise the best and worst features of the selected models",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, d, sel, err := prepare(cmd)
		if err != nil {
			return err
		}
		return a.render(d.Features(sel))
	},
}

var highlightsCmd = &cobra.Command{
	Use:   "highlights",
	Short: "Sample highlighted models with extreme rankings",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		d, err := a.dashboard()
		if err != nil {
			return err
		}
		return a.render(d.Highlights())
	},
}

var viewCmd = &cobra.Command{
	Use:   "view <path>",
	Short: "Resolve a dashboard path to its view",
	Long: `View resolves the same paths the dashboard links to.

Example:
  sentidash view /feedback/Leaf
  sentidash view /feedback/details/Leaf/0/2024-01-10`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		d, err := a.dashboard()
		if err != nil {
			return err
		}
		return a.render(d.View(args[0]))
	},
}

var clickCmd = &cobra.Command{
	Use:   "click <model>",
	Short: "Print the path a chart click on a model leads to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, d, sel, err := prepare(cmd)
		if err != nil {
			return err
		}
		path := d.Click(model.Click{Points: []model.ClickPoint{{X: args[0]}}}, sel)

		follow, _ := cmd.Flags().GetBool("follow")
		if !follow {
			fmt.Println(path)
			return nil
		}
		return a.render(d.View(path))
	},
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Filter feedback rows with an expression",
	Long: `Query filters the table with a CEL expression over the row variable r.
Fields: row, brand, model, feature, fact, ranking, segment, source, date,
feedback, summary, words.

Example:
  sentidash query --where 'r.brand == "Nissan" && r.ranking <= -3'
  sentidash query --where 'r.feedback.contains("battery")' -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		d, err := a.dashboard()
		if err != nil {
			return err
		}
		where, _ := cmd.Flags().GetString("where")
		rows, err := d.Query(where)
		if err != nil {
			return fmt.Errorf("invalid --where: %w", err)
		}
		return a.render(rows)
	},
}

var digestCmd = &cobra.Command{
	Use:   "digest <model>",
	Short: "Summarise a model's feedback with the configured LLM",
	Long: `Digest sends the model's longest feedback entries to the configured
LLM provider and prints the summary.

Example:
  SENTIDASH_LLM_PROVIDER=openai OPENAI_API_KEY=sk-... sentidash digest Leaf
  sentidash digest Leaf --llm-provider ollama --llm-model llama3.1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if p, _ := cmd.Flags().GetString("llm-provider"); p != "" {
			a.cfg.LLM.Provider = p
		}
		if m, _ := cmd.Flags().GetString("llm-model"); m != "" {
			a.cfg.LLM.Model = m
		}
		if a.cfg.LLM.Provider == "" {
			return fmt.Errorf("no LLM provider configured (set llm.provider or --llm-provider)")
		}

		d, err := a.dashboard()
		if err != nil {
			return err
		}
		digest, err := d.Digest(a.ctx, args[0])
		if err != nil {
			return fmt.Errorf("digest failed: %w", err)
		}
		return a.render(digest)
	},
}

// prepare resolves config, the dashboard and the selection for a command
func prepare(cmd *cobra.Command) (*app, *dashboard.Dashboard, model.Selection, error) {
	a, err := newApp(cmd)
	if err != nil {
		return nil, nil, model.Selection{}, err
	}
	sel, err := a.selection(cmd)
	if err != nil {
		return nil, nil, model.Selection{}, err
	}
	d, err := a.dashboard()
	if err != nil {
		return nil, nil, model.Selection{}, err
	}
	return a, d, sel, nil
}

func init() {
	for _, cmd := range []*cobra.Command{optionsCmd, chartCmd, trendCmd, featuresCmd, clickCmd} {
		addSelectionFlags(cmd)
	}
	trendCmd.Flags().Int("window", 7, "moving average window in days")
	clickCmd.Flags().Bool("follow", false, "resolve the path and print the feedback view")
	queryCmd.Flags().String("where", "true", "CEL filter expression")
	digestCmd.Flags().String("llm-provider", "", "LLM provider (openai, ollama)")
	digestCmd.Flags().String("llm-model", "", "LLM model name")

	rootCmd.AddCommand(optionsCmd, chartCmd, trendCmd, featuresCmd, highlightsCmd, viewCmd, clickCmd, queryCmd, digestCmd)
}

// staleLines formats stale values one dimension per line, in cascade order
func staleLines(stale map[model.Dimension][]string) []string {
	var lines []string
	for _, dim := range model.Dimensions {
		if values := stale[dim]; len(values) > 0 {
			lines = append(lines, fmt.Sprintf("%s: %s", dim, strings.Join(values, ", ")))
		}
	}
	return lines
}
