package table

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	celext "github.com/google/cel-go/ext"

	"github.com/ppiankov/sentidash/internal/model"
)

// newRecordEnv creates the CEL environment used for row expressions.
// A row is bound to the variable "r".
func newRecordEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("r", cel.MapType(cel.StringType, cel.DynType)),
		celext.Strings(),
		celext.Lists(),
		celext.Math(),
	)
}

// CELPredicate compiles a boolean CEL expression into a Predicate.
// Example: `r.brand == "Nissan" && r.ranking >= 0 && r.feature.contains("seat")`
//
// Rows whose evaluation fails or yields a non-bool are treated as non-matching.
func CELPredicate(expr string) (Predicate, error) {
	env, err := newRecordEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(types.BoolType) && !ast.OutputType().IsExactType(types.DynType) {
		return nil, fmt.Errorf("expression must evaluate to bool, got %s", ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}

	return func(r model.Record) bool {
		out, _, err := prg.Eval(map[string]any{"r": recordVars(r)})
		if err != nil {
			return false
		}
		b, ok := out.Value().(bool)
		return ok && b
	}, nil
}

// recordVars exposes a record to CEL
func recordVars(r model.Record) map[string]any {
	date := ""
	if r.HasDate {
		date = r.FormattedDate()
	}
	return map[string]any{
		"row":      int64(r.Row),
		"brand":    r.Brand,
		"model":    r.Model,
		"feature":  r.Feature,
		"fact":     string(r.SentimentFact()),
		"ranking":  int64(r.CriticalRanking),
		"segment":  r.Segment,
		"source":   r.Source,
		"date":     date,
		"feedback": r.Feedback,
		"summary":  r.Summary,
		"words":    int64(r.WordCount()),
	}
}
