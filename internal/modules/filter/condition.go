// Package filter provides implementations for filter modules.
// Condition module keeps rows for which a boolean expression holds.
package filter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/vm"

	"github.com/olyfilter/olyfilter/internal/errhandling"
	"github.com/olyfilter/olyfilter/internal/logger"
	"github.com/olyfilter/olyfilter/pkg/table"
)

// ModuleTypeCondition is the module type used in logs.
const ModuleTypeCondition = "condition"

// ErrEmptyExpression is returned when the condition expression is blank.
var ErrEmptyExpression = errors.New("expression cannot be empty")

// ConditionModule evaluates an expr-lang expression against every row.
//
// Each row is exposed as its column values: missing cells are nil, integer
// columns int64, float columns float64, others string. Columns whose names
// are not identifiers are reachable as $env["Column Name"]. Unknown names
// evaluate to nil.
//
// A row whose evaluation fails while a column the expression names is missing
// in that row does not match, as a comparison with NaN is false. Any other
// evaluation error aborts.
type ConditionModule struct {
	expression string
	program    *vm.Program
	refs       columnRefs
}

// columnRefs collects the names an expression reads from the row.
type columnRefs map[string]struct{}

// Visit implements ast.Visitor.
func (c columnRefs) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		c[n.Value] = struct{}{}
	case *ast.MemberNode:
		id, ok := n.Node.(*ast.IdentifierNode)
		if !ok || id.Value != "$env" {
			return
		}
		if prop, ok := n.Property.(*ast.StringNode); ok {
			c[prop.Value] = struct{}{}
		}
	}
}

// missingIn reports whether env holds a missing cell for a referenced column.
func (c columnRefs) missingIn(env map[string]any) bool {
	for name := range c {
		if v, ok := env[name]; ok && v == nil {
			return true
		}
	}
	return false
}

// NewCondition compiles expression into a condition filter module.
func NewCondition(expression string) (*ConditionModule, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, errhandling.NewInvalidExpressionError(expression, ErrEmptyExpression)
	}

	refs := columnRefs{}
	program, err := expr.Compile(expression, expr.AllowUndefinedVariables(), expr.AsBool(), expr.Patch(refs))
	if err != nil {
		return nil, errhandling.NewInvalidExpressionError(expression, err)
	}

	logger.Debug("condition module initialized", slog.String("expression", expression))

	return &ConditionModule{expression: expression, program: program, refs: refs}, nil
}

// Type implements Module.
func (c *ConditionModule) Type() string { return ModuleTypeCondition }

// Process implements the filter.Module interface.
func (c *ConditionModule) Process(ctx context.Context, tbl *table.Table) (*table.Table, error) {
	var (
		evalErr error
		idx     int
	)
	out := tbl.Filter(func(r table.Row) bool {
		defer func() { idx++ }()
		if evalErr != nil {
			return false
		}
		if idx%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				evalErr = err
				return false
			}
		}

		env := r.Env()
		result, err := expr.Run(c.program, env)
		if err != nil {
			if c.refs.missingIn(env) {
				return false
			}
			evalErr = errhandling.NewInvalidExpressionError(c.expression,
				fmt.Errorf("row %d: %w", idx, err))
			return false
		}
		keep, ok := result.(bool)
		if !ok {
			evalErr = errhandling.NewInvalidExpressionError(c.expression,
				fmt.Errorf("row %d: expected bool, got %T", idx, result))
			return false
		}
		return keep
	})
	if evalErr != nil {
		return nil, evalErr
	}

	logger.Debug("condition applied",
		slog.String("expression", c.expression),
		slog.Int("rows_before", tbl.Len()),
		slog.Int("rows_after", out.Len()),
	)
	return out, nil
}

// Verify ConditionModule implements Module
var _ Module = (*ConditionModule)(nil)
