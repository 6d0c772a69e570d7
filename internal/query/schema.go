package query

import (
	"fmt"
	"strings"

	"github.com/jjenkins/parliament/internal/filter"
)

// Column maps a logical field onto SQL. An Expr containing %s embeds the
// comparison itself (e.g. an EXISTS subquery); otherwise the comparison is
// appended. Join names a join the expression needs.
type Column struct {
	Expr string
	Join string
}

// Join is a named join clause, added to a query only when referenced
type Join struct {
	Name   string
	Clause string
}

// Schema describes how plans for one resource compile to PostgreSQL
type Schema struct {
	Select  string // column list
	From    string // base table and any joins the select list needs
	Joins   []Join
	Columns map[string]Column
}

var sqlOperators = map[filter.Operator]string{
	filter.Exact: "=",
	filter.Gt:    ">",
	filter.Gte:   ">=",
	filter.Lt:    "<",
	filter.Lte:   "<=",
}

// Compile renders the plan as a SELECT with positional arguments
func (s *Schema) Compile(p *Plan) (string, []any, error) {
	joins, where, args, err := s.predicates(p)
	if err != nil {
		return "", nil, err
	}

	var orderTerms []string
	for _, term := range p.order {
		field, desc := OrderField(term)
		col, ok := s.Columns[field]
		if !ok {
			return "", nil, fmt.Errorf("query: unknown order field %q", field)
		}
		if col.Join != "" {
			joins[col.Join] = true
		}
		dir := "ASC"
		if desc {
			dir = "DESC"
		}
		orderTerms = append(orderTerms, fmt.Sprintf("%s %s NULLS LAST", col.Expr, dir))
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(s.Select)
	b.WriteString(" FROM ")
	b.WriteString(s.From)
	s.writeJoins(&b, joins)
	writeWhere(&b, where)
	if len(orderTerms) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(orderTerms, ", "))
	}

	offset, limit := p.Window()
	switch {
	case limit < 0:
		b.WriteString(" LIMIT 0")
	case limit > 0:
		args = append(args, limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		fmt.Fprintf(&b, " OFFSET $%d", len(args))
	}
	return b.String(), args, nil
}

// CompileCount renders a COUNT(*) over the plan's conditions
func (s *Schema) CompileCount(p *Plan) (string, []any, error) {
	joins, where, args, err := s.predicates(p)
	if err != nil {
		return "", nil, err
	}
	var b strings.Builder
	b.WriteString("SELECT COUNT(*) FROM ")
	b.WriteString(s.From)
	s.writeJoins(&b, joins)
	writeWhere(&b, where)
	return b.String(), args, nil
}

func (s *Schema) predicates(p *Plan) (map[string]bool, []string, []any, error) {
	joins := map[string]bool{}
	var where []string
	var args []any
	for _, cond := range p.where {
		col, ok := s.Columns[cond.Field]
		if !ok {
			return nil, nil, nil, fmt.Errorf("query: unknown field %q", cond.Field)
		}
		op, ok := sqlOperators[cond.Op]
		if !ok {
			return nil, nil, nil, fmt.Errorf("query: unsupported operator %q", cond.Op)
		}
		if col.Join != "" {
			joins[col.Join] = true
		}
		args = append(args, cond.Value)
		cmp := fmt.Sprintf("%s $%d", op, len(args))
		if strings.Contains(col.Expr, "%s") {
			where = append(where, fmt.Sprintf(col.Expr, cmp))
		} else {
			where = append(where, col.Expr+" "+cmp)
		}
	}
	return joins, where, args, nil
}

func (s *Schema) writeJoins(b *strings.Builder, used map[string]bool) {
	for _, j := range s.Joins {
		if used[j.Name] {
			b.WriteString(" ")
			b.WriteString(j.Clause)
		}
	}
}

func writeWhere(b *strings.Builder, where []string) {
	if len(where) == 0 {
		return
	}
	b.WriteString(" WHERE ")
	b.WriteString(strings.Join(where, " AND "))
}
