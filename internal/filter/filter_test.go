package filter

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver map[string]int64

func (r stubResolver) ResolvePolitician(ctx context.Context, slug string) (int64, bool, error) {
	id, ok := r[slug]
	return id, ok, nil
}

type failingResolver struct{}

func (failingResolver) ResolvePolitician(context.Context, string) (int64, bool, error) {
	return 0, false, errors.New("connection refused")
}

func testRegistry() *Registry {
	return NewRegistry(map[string]Descriptor{
		"session":    Field("session", KindText, "e.g. 41-1"),
		"introduced": Field("introduced", KindDate, "", NumericOperators...),
		"nay_total":  Field("nay_total", KindInt, "", NumericOperators...),
		"law":        Field("bill.law", KindBool, ""),
		"result": Choices("result", []Choice{
			{"Y", "Passed"}, {"N", "Failed"},
		}),
		"bill": ForeignKey(2, func(u []string) ([]Condition, error) {
			return []Condition{
				{Field: "bill.sessions", Op: Exact, Value: u[len(u)-2]},
				{Field: "bill.number", Op: Exact, Value: u[len(u)-1]},
			}, nil
		}, "e.g. /bills/41-1/C-10/"),
		"politician": Politician("politician"),
	})
}

func parse(t *testing.T, raw string, res Resolver) ([]Condition, Applied, error) {
	t.Helper()
	params, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return testRegistry().Parse(context.Background(), params, res)
}

func TestParseOperators(t *testing.T) {
	conds, applied, err := parse(t, "introduced__gt=2010-01-01&nay_total__lte=10", nil)
	require.NoError(t, err)

	assert.Equal(t, []Condition{
		{Field: "introduced", Op: Gt, Value: time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Field: "nay_total", Op: Lte, Value: int64(10)},
	}, conds)
	assert.Equal(t, Applied{"introduced__gt": "2010-01-01", "nay_total__lte": "10"}, applied)
}

func TestParseIgnoresReservedParameters(t *testing.T) {
	conds, applied, err := parse(t, "page=3&format=json", nil)
	require.NoError(t, err)
	assert.Empty(t, conds)
	assert.Empty(t, applied)
}

func TestParseUsesLastValue(t *testing.T) {
	conds, _, err := parse(t, "session=40-3&session=41-1", nil)
	require.NoError(t, err)
	require.Len(t, conds, 1)
	assert.Equal(t, "41-1", conds[0].Value)
}

func TestParseRejections(t *testing.T) {
	tests := []struct {
		name  string
		query string
		param string
	}{
		{"unknown filter", "colour=red", "colour"},
		{"operator not allowed", "session__gt=41-1", "session__gt"},
		{"unknown operator", "nay_total__between=1", "nay_total__between"},
		{"bad integer", "nay_total=ten", "nay_total"},
		{"bad date", "introduced__gte=01/01/2010", "introduced__gte"},
		{"bad boolean", "law=maybe", "law"},
		{"bad choice", "result=X", "result"},
		{"short url", "bill=/bills/", "bill"},
		{"unknown politician", "politician=nobody-at-all", "politician"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := parse(t, tt.query, stubResolver{})
			fe, ok := AsError(err)
			require.True(t, ok, "expected a filter error, got %v", err)
			assert.Equal(t, tt.param, fe.Param)
			assert.Contains(t, fe.Error(), tt.param)
		})
	}
}

func TestParseErrorNeverNamesStorageField(t *testing.T) {
	_, _, err := parse(t, "law=perhaps", nil)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "bill.law")
}

func TestParseBooleanSpellings(t *testing.T) {
	for _, raw := range []string{"True", "true", "1"} {
		conds, _, err := parse(t, "law="+raw, nil)
		require.NoError(t, err)
		assert.Equal(t, true, conds[0].Value)
	}
	conds, _, err := parse(t, "law=False", nil)
	require.NoError(t, err)
	assert.Equal(t, false, conds[0].Value)
}

func TestParseChoiceAcceptsCodeOrLabel(t *testing.T) {
	conds, _, err := parse(t, "result=Y", nil)
	require.NoError(t, err)
	assert.Equal(t, "Y", conds[0].Value)

	conds, _, err = parse(t, "result=failed", nil)
	require.NoError(t, err)
	assert.Equal(t, "N", conds[0].Value)
}

func TestParseForeignKeyExpandsURL(t *testing.T) {
	for _, raw := range []string{"/bills/41-1/C-10/", "https://openparliament.ca/bills/41-1/C-10/"} {
		conds, applied, err := parse(t, url.Values{"bill": {raw}}.Encode(), nil)
		require.NoError(t, err)
		assert.Equal(t, []Condition{
			{Field: "bill.sessions", Op: Exact, Value: "41-1"},
			{Field: "bill.number", Op: Exact, Value: "C-10"},
		}, conds)
		assert.Equal(t, raw, applied["bill"])
	}
}

func TestParsePolitician(t *testing.T) {
	res := stubResolver{"pierre-poilievre": 42}

	tests := map[string]int64{
		"123":                            123,
		"pierre-poilievre":               42,
		"/politicians/pierre-poilievre/": 42,
		"/politicians/77/":               77,
	}
	for raw, want := range tests {
		conds, _, err := parse(t, url.Values{"politician": {raw}}.Encode(), res)
		require.NoError(t, err, raw)
		assert.Equal(t, []Condition{{Field: "politician", Op: Exact, Value: want}}, conds, raw)
	}
}

func TestParseResolverFailureIsNotAFilterError(t *testing.T) {
	_, _, err := parse(t, "politician=someone", failingResolver{})
	require.Error(t, err)
	_, ok := AsError(err)
	assert.False(t, ok)
}

func TestHelp(t *testing.T) {
	help := testRegistry().Help()

	assert.Equal(t, FieldHelp{Type: "date", Operators: []string{"exact", "gt", "gte", "lt", "lte"}}, help["introduced"])
	assert.Equal(t, []string{"exact"}, help["session"].Operators)
	assert.Equal(t, "One of: Y (Passed), N (Failed)", help["result"].Help)
	assert.Equal(t, "url", help["bill"].Type)
}

func TestNamesSorted(t *testing.T) {
	assert.Equal(t,
		[]string{"bill", "introduced", "law", "nay_total", "politician", "result", "session"},
		testRegistry().Names())
}

func TestPathSegments(t *testing.T) {
	assert.Equal(t, []string{"votes", "41-1", "472"}, PathSegments("/votes/41-1/472/"))
	assert.Equal(t, []string{"bills", "41-1", "C-10"}, PathSegments("http://example.com/bills/41-1/C-10"))
	assert.Empty(t, PathSegments("/"))
}
