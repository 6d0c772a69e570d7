package paginate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Collection is an ordered collection that can be counted and sliced
type Collection[T any] interface {
	Count(ctx context.Context) (int, error)
	Slice(ctx context.Context, offset, limit int) ([]T, error)
}

// Page is one page of a collection
type Page[T any] struct {
	Items    []T
	Number   int
	NumPages int
	PerPage  int
	Total    int
}

// HasNext reports whether a later page exists
func (p *Page[T]) HasNext() bool { return p.Number < p.NumPages }

// HasPrevious reports whether an earlier page exists
func (p *Page[T]) HasPrevious() bool { return p.Number > 1 }

// NextNumber is the number of the following page
func (p *Page[T]) NextNumber() int { return p.Number + 1 }

// PreviousNumber is the number of the preceding page
func (p *Page[T]) PreviousNumber() int { return p.Number - 1 }

// HasOtherPages reports whether the collection spans more than one page
func (p *Page[T]) HasOtherPages() bool { return p.NumPages > 1 }

// StartIndex is the 1-based position of the first item on the page
func (p *Page[T]) StartIndex() int {
	if p.Total == 0 {
		return 0
	}
	return (p.Number-1)*p.PerPage + 1
}

// ParseNumber reads a requested page number. Anything that is not a
// positive integer is page 1; a positive number too large for an int is
// math.MaxInt, which Bounds clamps to the last page.
func ParseNumber(raw string) int {
	n, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-") {
		return math.MaxInt
	}
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Bounds clamps a requested page into [1, last page] and returns the page
// number, the page count and the offset of its first item. An empty
// collection still has one (empty) page.
func Bounds(total, perPage, requested int) (number, numPages, offset int) {
	numPages = 1
	if total > 0 {
		numPages = (total + perPage - 1) / perPage
	}
	number = requested
	if number < 1 {
		number = 1
	}
	if number > numPages {
		number = numPages
	}
	return number, numPages, (number - 1) * perPage
}

// Fetch returns the requested page of c; out-of-range pages clamp
func Fetch[T any](ctx context.Context, c Collection[T], perPage int, raw string) (*Page[T], error) {
	if perPage < 1 {
		return nil, fmt.Errorf("paginate: invalid page size %d", perPage)
	}
	total, err := c.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count page items: %w", err)
	}

	number, numPages, offset := Bounds(total, perPage, ParseNumber(raw))
	items := []T{}
	if total > 0 {
		items, err = c.Slice(ctx, offset, perPage)
		if err != nil {
			return nil, fmt.Errorf("failed to load page %d: %w", number, err)
		}
	}

	return &Page[T]{
		Items:    items,
		Number:   number,
		NumPages: numPages,
		PerPage:  perPage,
		Total:    total,
	}, nil
}
