package query

import (
	"testing"

	"github.com/jjenkins/parliament/internal/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = &Schema{
	Select: "v.id, v.number",
	From:   "bills_votequestion v",
	Joins: []Join{
		{Name: "bill", Clause: "LEFT JOIN bills_bill b ON b.id = v.bill_id"},
	},
	Columns: map[string]Column{
		"session":     {Expr: "v.session_id"},
		"number":      {Expr: "v.number"},
		"date":        {Expr: "v.date"},
		"bill.number": {Expr: "b.number", Join: "bill"},
		"bill.sessions": {Expr: "EXISTS (SELECT 1 FROM bills_billinsession bis " +
			"WHERE bis.bill_id = v.bill_id AND bis.session_id %s)"},
	},
}

func TestCompile(t *testing.T) {
	p := NewPlan().
		Filter(
			filter.Condition{Field: "session", Op: filter.Exact, Value: "41-1"},
			filter.Condition{Field: "number", Op: filter.Gte, Value: int64(10)},
		).
		OrderBy("-date", "number").
		Slice(20, 20)

	sql, args, err := testSchema.Compile(p)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT v.id, v.number FROM bills_votequestion v WHERE v.session_id = $1 AND v.number >= $2 "+
			"ORDER BY v.date DESC NULLS LAST, v.number ASC NULLS LAST LIMIT $3 OFFSET $4",
		sql)
	assert.Equal(t, []any{"41-1", int64(10), 20, 20}, args)
}

func TestCompileAddsJoinOnlyWhenReferenced(t *testing.T) {
	sql, _, err := testSchema.Compile(NewPlan())
	require.NoError(t, err)
	assert.NotContains(t, sql, "JOIN")

	sql, args, err := testSchema.Compile(NewPlan().Filter(
		filter.Condition{Field: "bill.number", Op: filter.Exact, Value: "C-10"}))
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT v.id, v.number FROM bills_votequestion v LEFT JOIN bills_bill b ON b.id = v.bill_id WHERE b.number = $1",
		sql)
	assert.Equal(t, []any{"C-10"}, args)
}

func TestCompileEmbedsComparison(t *testing.T) {
	sql, _, err := testSchema.CompileCount(NewPlan().Filter(
		filter.Condition{Field: "bill.sessions", Op: filter.Exact, Value: "41-1"}))
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT COUNT(*) FROM bills_votequestion v WHERE EXISTS (SELECT 1 FROM bills_billinsession bis "+
			"WHERE bis.bill_id = v.bill_id AND bis.session_id = $1)",
		sql)
}

func TestCompileExhaustedWindow(t *testing.T) {
	sql, args, err := testSchema.Compile(NewPlan().Slice(0, 2).Slice(5, 5))
	require.NoError(t, err)
	assert.Contains(t, sql, "LIMIT 0")
	assert.Equal(t, []any{5}, args)
}

func TestCompileUnknownField(t *testing.T) {
	_, _, err := testSchema.Compile(NewPlan().Filter(
		filter.Condition{Field: "secret", Op: filter.Exact, Value: 1}))
	assert.EqualError(t, err, `query: unknown field "secret"`)

	_, _, err = testSchema.Compile(NewPlan().OrderBy("-secret"))
	assert.EqualError(t, err, `query: unknown order field "secret"`)
}
