package pipeline

import (
	"log/slog"
	"time"

	"github.com/couchcryptid/parking-schedule-service/internal/domain"
	"github.com/couchcryptid/parking-schedule-service/internal/observability"
)

// SnapshotBuilder parses raw records into a snapshot, reporting every
// malformed time field without dropping the record it came from.
type SnapshotBuilder struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewSnapshotBuilder creates a SnapshotBuilder.
func NewSnapshotBuilder(logger *slog.Logger, metrics *observability.Metrics) *SnapshotBuilder {
	return &SnapshotBuilder{logger: logger, metrics: metrics}
}

// Build parses records into a snapshot stamped with loadedAt.
func (b *SnapshotBuilder) Build(records []domain.RawRecord, loadedAt time.Time) *domain.Snapshot {
	snap, err := domain.NewSnapshot(records, loadedAt)
	defects := domain.TimeFormatDefects(err)
	for _, d := range defects {
		b.logger.Warn("malformed time field, rule part skipped",
			"location_id", d.LocationID,
			"field", d.Field,
			"raw", d.Raw,
		)
	}
	b.metrics.ParseDefects.Add(float64(len(defects)))
	return snap
}
