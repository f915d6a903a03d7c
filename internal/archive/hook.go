package archive

import (
	"log/slog"

	"github.com/unifai-network/unifai-toolkits/internal/collection"
)

// RefreshHook returns a collection.Options.OnRefresh hook that records every
// successful refresh. Archive errors are logged and never fail the refresh.
func (a *Archive) RefreshHook(logger *slog.Logger) func(collection.Snapshot) {
	if logger == nil {
		logger = slog.Default()
	}
	return func(s collection.Snapshot) {
		err := a.RecordRefresh(Refresh{
			Collection: s.Name,
			FetchedAt:  s.FetchedAt,
			Records:    len(s.Records),
		})
		if err != nil {
			logger.Warn("archive refresh failed", "collection", s.Name, "err", err)
		}
	}
}
