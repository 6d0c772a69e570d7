package query

import (
	"context"

	"github.com/jjenkins/parliament/internal/filter"
)

// Runner executes plans for one resource type
type Runner[T any] interface {
	Count(ctx context.Context, p *Plan) (int, error)
	Fetch(ctx context.Context, p *Plan) ([]T, error)
}

// Set is a lazily evaluated collection: a plan bound to the runner that can
// execute it. Nothing touches the data store until Count, All, First or
// Slice is called.
type Set[T any] struct {
	runner Runner[T]
	plan   *Plan
}

// NewSet binds a base plan to a runner
func NewSet[T any](runner Runner[T], plan *Plan) Set[T] {
	if plan == nil {
		plan = NewPlan()
	}
	return Set[T]{runner: runner, plan: plan}
}

// Plan returns the set's current plan
func (s Set[T]) Plan() *Plan { return s.plan }

// Filter narrows the set
func (s Set[T]) Filter(conds ...filter.Condition) Set[T] {
	return Set[T]{runner: s.runner, plan: s.plan.Filter(conds...)}
}

// Where narrows the set by a single equality condition
func (s Set[T]) Where(field string, value any) Set[T] {
	return s.Filter(filter.Condition{Field: field, Op: filter.Exact, Value: value})
}

// OrderBy replaces the set's ordering
func (s Set[T]) OrderBy(fields ...string) Set[T] {
	return Set[T]{runner: s.runner, plan: s.plan.OrderBy(fields...)}
}

// Limit restricts the set to its first n rows
func (s Set[T]) Limit(n int) Set[T] {
	return Set[T]{runner: s.runner, plan: s.plan.Slice(0, n)}
}

// Count returns the number of rows in the set, ignoring any window
func (s Set[T]) Count(ctx context.Context) (int, error) {
	return s.runner.Count(ctx, s.plan)
}

// All materializes the set
func (s Set[T]) All(ctx context.Context) ([]T, error) {
	return s.runner.Fetch(ctx, s.plan)
}

// First returns the first row, or nil when the set is empty
func (s Set[T]) First(ctx context.Context) (*T, error) {
	rows, err := s.runner.Fetch(ctx, s.plan.Slice(0, 1))
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// Slice materializes limit rows starting at offset
func (s Set[T]) Slice(ctx context.Context, offset, limit int) ([]T, error) {
	return s.runner.Fetch(ctx, s.plan.Slice(offset, limit))
}
