// Package news serves the latest Web3 headlines from a cached collection of
// RSS entries.
//
// The getWeb3News action takes the first limitPerFeed entries of each feed,
// in the order the feed lists them, and returns them newest first. limitPerFeed defaults to 5; values outside 1..10 are reset
// to the default instead of being rejected.
package news

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"

	"github.com/unifai-network/unifai-toolkits/internal/collection"
	"github.com/unifai-network/unifai-toolkits/internal/query"
	"github.com/unifai-network/unifai-toolkits/internal/record"
)

// Action is the registered action name.
const Action = "getWeb3News"

const DefaultLimitPerFeed = 5

// Count accepts a JSON number or a numeric string; fractions are truncated.
type Count int

func (c *Count) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	if n, err := strconv.Atoi(s); err == nil {
		*c = Count(n)
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid count %s", string(data))
	}
	*c = Count(int(f))
	return nil
}

// Payload is the getWeb3News request.
type Payload struct {
	LimitPerFeed *Count   `json:"limitPerFeed,omitempty"`
	Sources      []string `json:"sources,omitempty"`
}

// DecodePayload parses a raw action payload. An empty body is the zero Payload.
func DecodePayload(data []byte) (Payload, error) {
	var p Payload
	if len(strings.TrimSpace(string(data))) == 0 {
		return p, nil
	}
	if err := gojson.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("decoding payload: %w", err)
	}
	return p, nil
}

// EffectiveLimit applies the default and the 1..MaxPerFeed reset rule.
func (p Payload) EffectiveLimit() int {
	if p.LimitPerFeed == nil {
		return DefaultLimitPerFeed
	}
	n := int(*p.LimitPerFeed)
	if n < 1 || n > MaxPerFeed {
		return DefaultLimitPerFeed
	}
	return n
}

// Service answers getWeb3News from a cached news collection.
type Service struct {
	news   *collection.Collection
	engine *query.Engine
}

// NewService creates a Service for a collection spanning feedCount feeds.
func NewService(news *collection.Collection, feedCount int) *Service {
	if feedCount < 1 {
		feedCount = 1
	}
	return &Service{
		news: news,
		engine: query.New(query.Options{
			Aliases:        map[string]string{"published": "publishedAt"},
			DefaultSortKey: "publishedAt",
			MaxLimit:       feedCount * MaxPerFeed,
		}),
	}
}

// Collection returns the backing collection.
func (s *Service) Collection() *collection.Collection {
	return s.news
}

// Latest returns the first EffectiveLimit entries of each feed, optionally
// restricted to the named feeds, sorted newest first.
func (s *Service) Latest(ctx context.Context, p Payload) ([]record.Record, error) {
	all, err := s.news.Get(ctx)
	if err != nil {
		return nil, err
	}
	capped := capPerFeed(all, p.EffectiveLimit())
	return s.engine.Apply(capped, query.Spec{
		Members: []query.Membership{{Field: "feed", Values: p.Sources}},
		Limit:   s.engine.Options().MaxLimit,
	})
}

// capPerFeed keeps the first limit records of each feed, preserving order.
func capPerFeed(rs []record.Record, limit int) []record.Record {
	seen := make(map[string]int)
	out := make([]record.Record, 0, len(rs))
	for _, r := range rs {
		feed := r.Text("feed")
		if seen[feed] >= limit {
			continue
		}
		seen[feed]++
		out = append(out, r)
	}
	return out
}
