package server

import (
	"bytes"
	"context"
	"fmt"

	gojson "github.com/goccy/go-json"

	"github.com/unifai-network/unifai-toolkits/internal/news"
	"github.com/unifai-network/unifai-toolkits/internal/pools"
)

// PoolsAction answers get_pools with the bare array of matching pools.
func PoolsAction(svc *pools.Service) Action {
	return func(ctx context.Context, payload []byte) (any, error) {
		var p pools.Payload
		if len(bytes.TrimSpace(payload)) > 0 {
			if err := gojson.Unmarshal(payload, &p); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrBadPayload, err)
			}
		}
		return svc.GetPools(ctx, p)
	}
}

// NewsAction answers getWeb3News. Failures are reported in the body as
// {"error": ...} with a 200, so callers always get an object back.
func NewsAction(svc *news.Service) Action {
	return func(ctx context.Context, payload []byte) (any, error) {
		p, err := news.DecodePayload(payload)
		if err != nil {
			return map[string]string{"error": err.Error()}, nil
		}
		items, err := svc.Latest(ctx, p)
		if err != nil {
			return map[string]string{"error": err.Error()}, nil
		}
		return map[string]any{"results": items}, nil
	}
}
