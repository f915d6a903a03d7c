// Package query filters, sorts and truncates a snapshot of records.
//
// The pipeline order is fixed: lower bounds, upper bounds, set membership,
// descending stable sort, limit. Every stage is skipped when its part of the
// Spec is unset. Apply never mutates its input.
package query

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/unifai-network/unifai-toolkits/internal/record"
)

// ErrInvalidSpec is returned when a Spec cannot be applied, e.g. a limit
// outside [1, MaxLimit].
var ErrInvalidSpec = errors.New("invalid query spec")

// Range bounds a numeric field. Missing fields compare as 0.
type Range struct {
	Field string
	Min   *float64
	Max   *float64
}

// Membership keeps records whose Field, compared case-insensitively, is one
// of Values. Records without the field are dropped.
type Membership struct {
	Field  string
	Values []string
}

// Spec describes one query. The zero Spec returns the whole collection
// sorted by the default key and cut to the default limit.
type Spec struct {
	Ranges  []Range
	Members []Membership
	SortBy  string
	Limit   int // 0 means DefaultLimit
}

// Options configure an Engine for a particular collection.
type Options struct {
	// Aliases maps lower-cased caller sort names to record fields.
	Aliases map[string]string
	// DefaultSortKey is used when SortBy is empty or not in Aliases.
	DefaultSortKey string
	DefaultLimit   int
	MaxLimit       int
}

// Engine applies Specs. It holds no state besides its Options and is safe
// for concurrent use.
type Engine struct {
	opts Options
}

// New creates an Engine. DefaultLimit falls back to MaxLimit, and MaxLimit
// to DefaultLimit, when only one is set.
func New(opts Options) *Engine {
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = opts.DefaultLimit
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = opts.MaxLimit
	}
	return &Engine{opts: opts}
}

// Options returns the engine configuration.
func (e *Engine) Options() Options {
	return e.opts
}

// Float is a convenience for building optional Range bounds.
func Float(v float64) *float64 {
	return &v
}

// SortKey resolves a caller-supplied sort name to a record field.
func (e *Engine) SortKey(sortBy string) string {
	if key, ok := e.opts.Aliases[strings.ToLower(sortBy)]; ok {
		return key
	}
	return e.opts.DefaultSortKey
}

// ResolveLimit applies the default and checks the bounds.
func (e *Engine) ResolveLimit(limit int) (int, error) {
	if limit == 0 {
		limit = e.opts.DefaultLimit
	}
	if limit < 1 || limit > e.opts.MaxLimit {
		return 0, fmt.Errorf("%w: limit %d outside [1, %d]", ErrInvalidSpec, limit, e.opts.MaxLimit)
	}
	return limit, nil
}

// Apply runs spec against records and returns a new slice.
func (e *Engine) Apply(records []record.Record, spec Spec) ([]record.Record, error) {
	limit, err := e.ResolveLimit(spec.Limit)
	if err != nil {
		return nil, err
	}

	out := slices.Clone(records)
	if out == nil {
		out = []record.Record{}
	}

	for _, rg := range spec.Ranges {
		if rg.Min == nil {
			continue
		}
		lo, field := *rg.Min, rg.Field
		out = keep(out, func(r record.Record) bool { return r.Number(field) >= lo })
	}
	for _, rg := range spec.Ranges {
		if rg.Max == nil {
			continue
		}
		hi, field := *rg.Max, rg.Field
		out = keep(out, func(r record.Record) bool { return r.Number(field) <= hi })
	}
	for _, m := range spec.Members {
		if len(m.Values) == 0 {
			continue
		}
		set := make(map[string]struct{}, len(m.Values))
		for _, v := range m.Values {
			set[strings.ToLower(v)] = struct{}{}
		}
		field := m.Field
		out = keep(out, func(r record.Record) bool {
			v, ok := r.Lower(field)
			if !ok {
				return false
			}
			_, hit := set[v]
			return hit
		})
	}

	key := e.SortKey(spec.SortBy)
	slices.SortStableFunc(out, func(a, b record.Record) int {
		av, bv := a.Number(key), b.Number(key)
		switch {
		case av > bv:
			return -1
		case av < bv:
			return 1
		default:
			return 0
		}
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// keep filters in place; out is always a private copy.
func keep(rs []record.Record, pred func(record.Record) bool) []record.Record {
	n := 0
	for _, r := range rs {
		if pred(r) {
			rs[n] = r
			n++
		}
	}
	clear(rs[n:])
	return rs[:n]
}
