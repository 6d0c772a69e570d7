// Package querytest evaluates query plans against in-memory rows, for tests
// of code that consumes query.Set without a database.
package querytest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jjenkins/parliament/internal/filter"
	"github.com/jjenkins/parliament/internal/query"
)

// FieldFunc returns the value of a logical field for a row. A nil value is
// treated as SQL NULL. A []string value matches an equality condition when
// it contains the condition's value.
type FieldFunc[T any] func(row T, field string) (any, bool)

// Runner is a query.Runner over a fixed slice of rows
type Runner[T any] struct {
	Rows  []T
	Field FieldFunc[T]

	// Fetches counts calls to Fetch
	Fetches int
}

// NewRunner returns a runner over rows
func NewRunner[T any](rows []T, field FieldFunc[T]) *Runner[T] {
	return &Runner[T]{Rows: rows, Field: field}
}

// Set binds a base plan to the runner
func (r *Runner[T]) Set(plan *query.Plan) query.Set[T] {
	return query.NewSet[T](r, plan)
}

func (r *Runner[T]) Count(ctx context.Context, p *query.Plan) (int, error) {
	rows, err := r.filter(p)
	return len(rows), err
}

func (r *Runner[T]) Fetch(ctx context.Context, p *query.Plan) ([]T, error) {
	r.Fetches++
	rows, err := r.filter(p)
	if err != nil {
		return nil, err
	}
	if err := r.sort(rows, p.Ordering()); err != nil {
		return nil, err
	}

	offset, limit := p.Window()
	if limit < 0 || offset >= len(rows) {
		return []T{}, nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows, nil
}

func (r *Runner[T]) filter(p *query.Plan) ([]T, error) {
	out := make([]T, 0, len(r.Rows))
	for _, row := range r.Rows {
		keep := true
		for _, cond := range p.Conditions() {
			v, ok := r.Field(row, cond.Field)
			if !ok {
				return nil, fmt.Errorf("querytest: unknown field %q", cond.Field)
			}
			match, err := matches(v, cond)
			if err != nil {
				return nil, err
			}
			if !match {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *Runner[T]) sort(rows []T, order []string) error {
	var err error
	sort.SliceStable(rows, func(i, j int) bool {
		for _, term := range order {
			field, desc := query.OrderField(term)
			a, ok := r.Field(rows[i], field)
			b, ok2 := r.Field(rows[j], field)
			if !ok || !ok2 {
				err = fmt.Errorf("querytest: unknown order field %q", field)
				return false
			}
			// NULLS LAST in both directions
			switch {
			case a == nil && b == nil:
				continue
			case a == nil:
				return false
			case b == nil:
				return true
			}
			c, cerr := compare(a, b)
			if cerr != nil {
				err = cerr
				return false
			}
			if c == 0 {
				continue
			}
			if desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return err
}

func matches(v any, cond filter.Condition) (bool, error) {
	if v == nil {
		return false, nil
	}
	if list, ok := v.([]string); ok {
		if cond.Op != filter.Exact {
			return false, fmt.Errorf("querytest: operator %q on a list field", cond.Op)
		}
		for _, s := range list {
			if s == cond.Value {
				return true, nil
			}
		}
		return false, nil
	}
	c, err := compare(v, cond.Value)
	if err != nil {
		return false, err
	}
	switch cond.Op {
	case filter.Exact:
		return c == 0, nil
	case filter.Gt:
		return c > 0, nil
	case filter.Gte:
		return c >= 0, nil
	case filter.Lt:
		return c < 0, nil
	case filter.Lte:
		return c <= 0, nil
	}
	return false, fmt.Errorf("querytest: unsupported operator %q", cond.Op)
}

func compare(a, b any) (int, error) {
	switch x := normalize(a).(type) {
	case int64:
		y, ok := normalize(b).(int64)
		if !ok {
			return 0, fmt.Errorf("querytest: cannot compare %T with %T", a, b)
		}
		return cmpOrdered(x, y), nil
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, fmt.Errorf("querytest: cannot compare %T with %T", a, b)
		}
		return cmpOrdered(x, y), nil
	case time.Time:
		y, ok := b.(time.Time)
		if !ok {
			return 0, fmt.Errorf("querytest: cannot compare %T with %T", a, b)
		}
		return x.Compare(y), nil
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, fmt.Errorf("querytest: cannot compare %T with %T", a, b)
		}
		switch {
		case x == y:
			return 0, nil
		case y:
			return -1, nil
		default:
			return 1, nil
		}
	}
	return 0, fmt.Errorf("querytest: unsupported value type %T", a)
}

func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	}
	return v
}

func cmpOrdered[V int64 | string](a, b V) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
