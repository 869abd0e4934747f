// Package order resolves an operator-entered order number and year to the
// backend order id that products are created under.
package order

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Resolution errors.
var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderYearMismatch  = errors.New("no order created in the given year")
	ErrAmbiguousOrder     = errors.New("order number and year match more than one order")
	ErrInvalidOrderNumber = errors.New("order number must be an integer")
)

// ID is a backend order identifier.
type ID string

// Order is the read-only view of a backend order returned by search.
type Order struct {
	ID        ID
	Number    int64
	CreatedAt string
}

// Year returns the four-digit year prefix of CreatedAt.
func (o Order) Year() string {
	if len(o.CreatedAt) < 4 {
		return o.CreatedAt
	}
	return o.CreatedAt[:4]
}

// Searcher runs the backend's fuzzy order search.
type Searcher interface {
	SearchOrders(ctx context.Context, number string) ([]Order, error)
}

// SearcherFunc adapts a plain function to Searcher.
type SearcherFunc func(ctx context.Context, number string) ([]Order, error)

// SearchOrders calls f.
func (f SearcherFunc) SearchOrders(ctx context.Context, number string) ([]Order, error) {
	return f(ctx, number)
}

// Resolver narrows a backend search down to a single order.
type Resolver struct {
	searcher Searcher
}

// NewResolver creates a resolver over the given search backend.
func NewResolver(searcher Searcher) *Resolver {
	return &Resolver{searcher: searcher}
}

// Resolve searches for number and picks the one order matching number and year.
func (r *Resolver) Resolve(ctx context.Context, number, year string) (ID, error) {
	candidates, err := r.searcher.SearchOrders(ctx, number)
	if err != nil {
		return "", fmt.Errorf("search order %s: %w", number, err)
	}
	return Pick(candidates, number, year)
}

// Pick applies the exact-number and year filters to a search result.
//
// The backend search matches substrings, so the number filter always runs.
// The year filter only runs when several orders share the number.
func Pick(candidates []Order, number, year string) (ID, error) {
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: %s", ErrOrderNotFound, number)
	}

	want, err := strconv.ParseInt(strings.TrimSpace(number), 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidOrderNumber, number)
	}

	exact := filter(candidates, func(o Order) bool { return o.Number == want })
	if len(exact) == 0 {
		return "", fmt.Errorf("%w: %s", ErrOrderNotFound, number)
	}
	if len(exact) == 1 {
		return exact[0].ID, nil
	}

	year = strings.TrimSpace(year)
	sameYear := filter(exact, func(o Order) bool { return o.Year() == year })
	switch len(sameYear) {
	case 0:
		return "", fmt.Errorf("%w: order %s in %s", ErrOrderYearMismatch, number, year)
	case 1:
		return sameYear[0].ID, nil
	default:
		ids := make([]string, len(sameYear))
		for i, o := range sameYear {
			ids[i] = string(o.ID)
		}
		return "", fmt.Errorf("%w: order %s in %s has ids %s", ErrAmbiguousOrder, number, year, strings.Join(ids, ", "))
	}
}

func filter(orders []Order, keep func(Order) bool) []Order {
	var out []Order
	for _, o := range orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}
