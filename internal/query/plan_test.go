package query

import (
	"testing"

	"github.com/jjenkins/parliament/internal/filter"
	"github.com/stretchr/testify/assert"
)

func TestPlanIsImmutable(t *testing.T) {
	base := NewPlan().OrderBy("-date")
	a := base.Filter(filter.Condition{Field: "session", Op: filter.Exact, Value: "41-1"})
	b := base.OrderBy("number").Slice(10, 5)

	assert.Empty(t, base.Conditions())
	assert.Equal(t, []string{"-date"}, base.Ordering())
	off, lim := base.Window()
	assert.Equal(t, 0, off)
	assert.Equal(t, 0, lim)

	assert.Len(t, a.Conditions(), 1)
	assert.Equal(t, []string{"number"}, b.Ordering())
}

func TestPlanSliceNarrows(t *testing.T) {
	p := NewPlan().Slice(0, 10).Slice(4, 20)
	off, lim := p.Window()
	assert.Equal(t, 4, off)
	assert.Equal(t, 6, lim)

	p = NewPlan().Slice(0, 3).Slice(5, 2)
	_, lim = p.Window()
	assert.Equal(t, -1, lim)
}

func TestPrefetches(t *testing.T) {
	p := NewPlan().Prefetch("member")
	assert.True(t, p.Prefetches("member"))
	assert.False(t, p.Prefetches("politician"))
}

func TestOrderField(t *testing.T) {
	f, desc := OrderField("-introduced")
	assert.Equal(t, "introduced", f)
	assert.True(t, desc)

	f, desc = OrderField("number")
	assert.Equal(t, "number", f)
	assert.False(t, desc)
}
