package querytest

import (
	"context"
	"testing"
	"time"

	"github.com/jjenkins/parliament/internal/filter"
	"github.com/jjenkins/parliament/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	id       int64
	date     *time.Time
	sessions []string
}

func rowField(r row, field string) (any, bool) {
	switch field {
	case "id":
		return r.id, true
	case "date":
		if r.date == nil {
			return nil, true
		}
		return *r.date, true
	case "sessions":
		return r.sessions, true
	}
	return nil, false
}

func day(d int) *time.Time {
	t := time.Date(2020, 1, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func testRows() []row {
	return []row{
		{id: 1, date: day(3), sessions: []string{"40-3"}},
		{id: 2, date: nil, sessions: []string{"40-3", "41-1"}},
		{id: 3, date: day(1), sessions: []string{"41-1"}},
		{id: 4, date: day(3), sessions: []string{"41-1"}},
	}
}

func ids(rows []row) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.id
	}
	return out
}

func TestOrderingPutsNullsLast(t *testing.T) {
	ctx := context.Background()
	set := NewRunner(testRows(), rowField).Set(query.NewPlan())

	rows, err := set.OrderBy("-date", "id").All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4, 3, 2}, ids(rows))

	rows, err = set.OrderBy("date", "-id").All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4, 1, 2}, ids(rows))
}

func TestListFieldMatchesMembership(t *testing.T) {
	ctx := context.Background()
	set := NewRunner(testRows(), rowField).Set(query.NewPlan())

	rows, err := set.Where("sessions", "41-1").All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 4}, ids(rows))
}

func TestComparisonsSkipNulls(t *testing.T) {
	ctx := context.Background()
	set := NewRunner(testRows(), rowField).Set(query.NewPlan())

	n, err := set.Filter(filter.Condition{Field: "date", Op: filter.Gt, Value: *day(1)}).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSetWindow(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(testRows(), rowField)
	set := runner.Set(query.NewPlan().OrderBy("id"))

	rows, err := set.Slice(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, ids(rows))

	n, err := set.Limit(1).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n, "count ignores the window")

	first, err := set.OrderBy("-id").First(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, int64(4), first.id)

	none, err := set.Where("id", 99).First(ctx)
	require.NoError(t, err)
	assert.Nil(t, none)

	rows, err = set.Slice(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSetIsLazy(t *testing.T) {
	runner := NewRunner(testRows(), rowField)
	_ = runner.Set(query.NewPlan()).Where("id", 1).OrderBy("-id").Limit(2)
	assert.Zero(t, runner.Fetches)
}

func TestUnknownField(t *testing.T) {
	_, err := NewRunner(testRows(), rowField).Set(query.NewPlan()).Where("secret", 1).All(context.Background())
	assert.Error(t, err)
}
