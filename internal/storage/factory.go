package storage

import (
	"context"
	"fmt"

	"github.com/foliotrack/folio/internal/common"
	"github.com/foliotrack/folio/internal/interfaces"
)

// NewSnapshotStore creates a snapshot store based on the configuration.
// Supported backends: "local" (default), "gcs", "hybrid".
func NewSnapshotStore(ctx context.Context, logger *common.Logger, config *common.StorageConfig) (interfaces.SnapshotStore, error) {
	switch config.Backend {
	case common.BackendLocal, "":
		return NewLocalStore(logger, &config.Local)

	case common.BackendGCS:
		return NewGCSStore(ctx, logger, &config.GCS)

	case common.BackendHybrid:
		local, err := NewLocalStore(logger, &config.Local)
		if err != nil {
			return nil, err
		}

		cloud, err := NewGCSStore(ctx, logger, &config.GCS)
		if err != nil {
			// Hybrid degrades to local-only when the cloud side cannot
			// even be constructed (e.g. missing credentials).
			logger.Warn().Err(err).Msg("Cloud backend initialization failed, running local-only")
			return local, nil
		}

		queue, err := NewSyncQueue(logger, config.Queue.Path)
		if err != nil {
			cloud.Close()
			return nil, err
		}

		return NewHybridStore(logger, local, cloud, queue), nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: local, gcs, hybrid)", config.Backend)
	}
}
