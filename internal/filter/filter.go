package filter

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Operator is a comparison permitted on a filter
type Operator string

const (
	Exact Operator = "exact"
	Gt    Operator = "gt"
	Gte   Operator = "gte"
	Lt    Operator = "lt"
	Lte   Operator = "lte"
)

// EqualityOnly and NumericOperators are the two operator whitelists in use
var (
	EqualityOnly     = []Operator{Exact}
	NumericOperators = []Operator{Exact, Gt, Gte, Lt, Lte}
)

// Kind tags the descriptor variant, and with it how raw values are coerced
type Kind int

const (
	KindText Kind = iota
	KindInt
	KindDate
	KindBool
	KindChoice
	KindForeignKey
	KindPolitician
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "integer"
	case KindDate:
		return "date"
	case KindBool:
		return "boolean"
	case KindChoice:
		return "choice"
	case KindForeignKey:
		return "url"
	case KindPolitician:
		return "politician"
	default:
		return "string"
	}
}

const dateLayout = "2006-01-02"

// Condition is one validated predicate against a logical storage field
type Condition struct {
	Field string
	Op    Operator
	Value any
}

// Choice is an accepted value of a choice filter
type Choice struct {
	Code  string
	Label string
}

// Descriptor declares one externally visible filter parameter
type Descriptor struct {
	Kind      Kind
	Field     string
	Operators []Operator
	Choices   []Choice
	// Expand turns the segments of a path value into conditions (KindForeignKey)
	Expand func(segments []string) ([]Condition, error)
	// Segments is the minimum number of path segments Expand needs
	Segments int
	Help     string
}

// Resolver maps public identifiers that are not storage keys onto IDs
type Resolver interface {
	ResolvePolitician(ctx context.Context, slug string) (id int64, ok bool, err error)
}

// Field declares a plain column filter
func Field(field string, kind Kind, help string, ops ...Operator) Descriptor {
	if len(ops) == 0 {
		ops = EqualityOnly
	}
	return Descriptor{Kind: kind, Field: field, Operators: ops, Help: help}
}

// Choices declares a filter restricted to a fixed set of codes
func Choices(field string, choices []Choice) Descriptor {
	labels := make([]string, len(choices))
	for i, c := range choices {
		labels[i] = fmt.Sprintf("%s (%s)", c.Code, c.Label)
	}
	return Descriptor{
		Kind:      KindChoice,
		Field:     field,
		Operators: EqualityOnly,
		Choices:   choices,
		Help:      "One of: " + strings.Join(labels, ", "),
	}
}

// ForeignKey declares a filter whose value is a URL path, expanded to conditions
func ForeignKey(segments int, expand func(segments []string) ([]Condition, error), help string) Descriptor {
	return Descriptor{
		Kind:      KindForeignKey,
		Operators: EqualityOnly,
		Expand:    expand,
		Segments:  segments,
		Help:      help,
	}
}

// Politician declares a filter accepting a politician ID, slug or URL
func Politician(field string) Descriptor {
	return Descriptor{
		Kind:      KindPolitician,
		Field:     field,
		Operators: EqualityOnly,
		Help:      "e.g. /politicians/pierre-poilievre/ or a numeric politician ID",
	}
}

func (d Descriptor) allows(op Operator) bool {
	for _, o := range d.Operators {
		if o == op {
			return true
		}
	}
	return false
}

// Registry is the set of filters declared for one resource
type Registry struct {
	descriptors map[string]Descriptor
}

// NewRegistry builds a registry from parameter name to descriptor
func NewRegistry(descriptors map[string]Descriptor) *Registry {
	return &Registry{descriptors: descriptors}
}

// Reserved query parameters that never name a filter
var Reserved = map[string]bool{
	"page":   true,
	"format": true,
}

// Applied echoes the filters accepted from a request, by parameter
type Applied map[string]string

// Parse validates every non-reserved parameter. Nothing is queried except
// politician slugs through res; the first invalid parameter aborts parsing.
func (r *Registry) Parse(ctx context.Context, params url.Values, res Resolver) ([]Condition, Applied, error) {
	keys := make([]string, 0, len(params))
	for k := range params {
		if !Reserved[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var conds []Condition
	applied := Applied{}
	for _, key := range keys {
		values := params[key]
		if len(values) == 0 {
			continue
		}
		raw := values[len(values)-1]

		name, op := key, Exact
		if i := strings.LastIndex(key, "__"); i >= 0 {
			name, op = key[:i], Operator(key[i+2:])
		}

		d, ok := r.descriptors[name]
		if !ok {
			return nil, nil, invalid(key, "unknown filter")
		}
		if !d.allows(op) {
			return nil, nil, invalid(key, fmt.Sprintf("operator %q is not supported", op))
		}

		cs, err := d.conditions(ctx, key, op, raw, res)
		if err != nil {
			return nil, nil, err
		}
		conds = append(conds, cs...)
		applied[key] = raw
	}
	return conds, applied, nil
}

func (d Descriptor) conditions(ctx context.Context, param string, op Operator, raw string, res Resolver) ([]Condition, error) {
	switch d.Kind {
	case KindForeignKey:
		segs := PathSegments(raw)
		if len(segs) < d.Segments {
			return nil, invalid(param, "not a recognized URL")
		}
		conds, err := d.Expand(segs)
		if err != nil {
			return nil, invalid(param, err.Error())
		}
		return conds, nil
	case KindPolitician:
		id, err := resolvePolitician(ctx, param, raw, res)
		if err != nil {
			return nil, err
		}
		return []Condition{{Field: d.Field, Op: Exact, Value: id}}, nil
	}

	v, err := d.coerce(raw)
	if err != nil {
		return nil, invalid(param, err.Error())
	}
	return []Condition{{Field: d.Field, Op: op, Value: v}}, nil
}

func (d Descriptor) coerce(raw string) (any, error) {
	switch d.Kind {
	case KindInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", raw)
		}
		return n, nil
	case KindDate:
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not a date (YYYY-MM-DD)", raw)
		}
		return t, nil
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not True or False", raw)
		}
		return b, nil
	case KindChoice:
		for _, c := range d.Choices {
			if raw == c.Code || strings.EqualFold(raw, c.Label) {
				return c.Code, nil
			}
		}
		return nil, fmt.Errorf("%q is not an accepted value", raw)
	default:
		return raw, nil
	}
}

func resolvePolitician(ctx context.Context, param, raw string, res Resolver) (int64, error) {
	segs := PathSegments(raw)
	if len(segs) == 0 {
		return 0, invalid(param, "missing politician")
	}
	ident := segs[len(segs)-1]
	if id, err := strconv.ParseInt(ident, 10, 64); err == nil {
		return id, nil
	}
	if res == nil {
		return 0, invalid(param, "unknown politician")
	}
	id, ok, err := res.ResolvePolitician(ctx, ident)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve politician %q: %w", ident, err)
	}
	if !ok {
		return 0, invalid(param, "unknown politician")
	}
	return id, nil
}

// PathSegments splits a URL or path value into its non-empty segments
func PathSegments(raw string) []string {
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		raw = u.Path
	}
	var segs []string
	for _, s := range strings.Split(raw, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// FieldHelp describes one filter for API introspection
type FieldHelp struct {
	Type      string   `json:"type"`
	Operators []string `json:"operators"`
	Help      string   `json:"help,omitempty"`
}

// Help describes every declared filter, keyed by parameter name
func (r *Registry) Help() map[string]FieldHelp {
	help := make(map[string]FieldHelp, len(r.descriptors))
	for name, d := range r.descriptors {
		ops := make([]string, len(d.Operators))
		for i, op := range d.Operators {
			ops[i] = string(op)
		}
		help[name] = FieldHelp{Type: d.Kind.String(), Operators: ops, Help: d.Help}
	}
	return help
}

// Names returns the declared parameter names in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.descriptors))
	for name := range r.descriptors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
