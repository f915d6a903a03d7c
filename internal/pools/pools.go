// Package pools serves DefiLlama yield pools from a cached collection.
//
// The get_pools action filters by TVL and APY ranges and by symbol, chain
// and project (case-insensitive), sorts descending by tvl, apy or
// apyMean30d, and returns at most limit pools. Unknown sort names fall back
// to apy.
package pools

import (
	"context"
	"fmt"

	"github.com/unifai-network/unifai-toolkits/internal/collection"
	"github.com/unifai-network/unifai-toolkits/internal/query"
	"github.com/unifai-network/unifai-toolkits/internal/record"
)

// Action is the registered action name.
const Action = "get_pools"

const (
	DefaultLimit = 10
	MaxLimit     = 100
	DefaultSort  = "apy"
)

// SortAliases maps caller sort names (lower-cased) to pool fields.
var SortAliases = map[string]string{
	"tvl":        "tvlUsd",
	"apy":        "apy",
	"apymean30d": "apyMean30d",
}

// Payload is the get_pools request. Nil fields are unset.
type Payload struct {
	SortBy   string   `json:"sortBy,omitempty"`
	Symbols  []string `json:"symbols,omitempty"`
	Chains   []string `json:"chains,omitempty"`
	Projects []string `json:"projects,omitempty"`
	MinTvl   *float64 `json:"minTvl,omitempty"`
	MaxTvl   *float64 `json:"maxTvl,omitempty"`
	MinApy   *float64 `json:"minApy,omitempty"`
	MaxApy   *float64 `json:"maxApy,omitempty"`
	Limit    *int     `json:"limit,omitempty"`
}

// Spec converts the payload to a query spec. An explicit limit of 0 is
// rejected rather than treated as unset.
func (p Payload) Spec() (query.Spec, error) {
	spec := query.Spec{
		Ranges: []query.Range{
			{Field: "tvlUsd", Min: p.MinTvl, Max: p.MaxTvl},
			{Field: "apy", Min: p.MinApy, Max: p.MaxApy},
		},
		Members: []query.Membership{
			{Field: "symbol", Values: p.Symbols},
			{Field: "project", Values: p.Projects},
			{Field: "chain", Values: p.Chains},
		},
		SortBy: p.SortBy,
	}
	if p.Limit != nil {
		if *p.Limit == 0 {
			return query.Spec{}, fmt.Errorf("%w: limit must be at least 1", query.ErrInvalidSpec)
		}
		spec.Limit = *p.Limit
	}
	return spec, nil
}

// NewEngine returns the query engine for pools. Non-positive limits use the
// package defaults.
func NewEngine(defaultLimit, maxLimit int) *query.Engine {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	return query.New(query.Options{
		Aliases:        SortAliases,
		DefaultSortKey: DefaultSort,
		DefaultLimit:   defaultLimit,
		MaxLimit:       maxLimit,
	})
}

// Service answers get_pools from a cached pools collection.
type Service struct {
	pools  *collection.Collection
	engine *query.Engine
}

func NewService(pools *collection.Collection, engine *query.Engine) *Service {
	return &Service{pools: pools, engine: engine}
}

// Collection returns the backing collection.
func (s *Service) Collection() *collection.Collection {
	return s.pools
}

// GetPools validates the payload before touching the upstream, so a bad
// request never triggers a fetch.
func (s *Service) GetPools(ctx context.Context, p Payload) ([]record.Record, error) {
	spec, err := p.Spec()
	if err != nil {
		return nil, err
	}
	if _, err := s.engine.ResolveLimit(spec.Limit); err != nil {
		return nil, err
	}

	all, err := s.pools.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.Apply(all, spec)
}
