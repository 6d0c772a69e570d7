package query

import (
	"strings"

	"github.com/jjenkins/parliament/internal/filter"
)

// Plan is an immutable description of a query. Every method returns a new
// plan, so a base plan can be shared and refined per request.
type Plan struct {
	where    []filter.Condition
	order    []string
	prefetch []string
	offset   int
	limit    int
}

// NewPlan returns an empty plan
func NewPlan() *Plan {
	return &Plan{}
}

func (p *Plan) clone() *Plan {
	c := *p
	c.where = append([]filter.Condition(nil), p.where...)
	c.order = append([]string(nil), p.order...)
	c.prefetch = append([]string(nil), p.prefetch...)
	return &c
}

// Filter adds conditions, all of which must hold
func (p *Plan) Filter(conds ...filter.Condition) *Plan {
	c := p.clone()
	c.where = append(c.where, conds...)
	return c
}

// OrderBy replaces the ordering. A leading "-" sorts that field descending.
func (p *Plan) OrderBy(fields ...string) *Plan {
	c := p.clone()
	c.order = append([]string(nil), fields...)
	return c
}

// Prefetch declares relations to load in one batch after the main query
func (p *Plan) Prefetch(relations ...string) *Plan {
	c := p.clone()
	c.prefetch = append(c.prefetch, relations...)
	return c
}

// Slice restricts the plan to limit rows starting at offset. A limit of
// zero means unbounded. Slicing a sliced plan narrows the existing window.
func (p *Plan) Slice(offset, limit int) *Plan {
	c := p.clone()
	if offset < 0 {
		offset = 0
	}
	c.offset = p.offset + offset
	if p.limit > 0 {
		remaining := p.limit - offset
		if remaining < 0 {
			remaining = 0
		}
		if limit <= 0 || limit > remaining {
			limit = remaining
		}
		if limit == 0 {
			// window exhausted; keep an impossible slice rather than "unbounded"
			c.limit = -1
			return c
		}
	}
	c.limit = limit
	return c
}

// Conditions returns the plan's conditions
func (p *Plan) Conditions() []filter.Condition { return p.where }

// Ordering returns the plan's order fields
func (p *Plan) Ordering() []string { return p.order }

// Window returns the offset and limit; a negative limit selects nothing
func (p *Plan) Window() (offset, limit int) { return p.offset, p.limit }

// Prefetches reports whether relation was declared for batch loading
func (p *Plan) Prefetches(relation string) bool {
	for _, r := range p.prefetch {
		if r == relation {
			return true
		}
	}
	return false
}

// OrderField splits an order term into its field and direction
func OrderField(term string) (field string, desc bool) {
	if strings.HasPrefix(term, "-") {
		return term[1:], true
	}
	return term, false
}
