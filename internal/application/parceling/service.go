// Package parceling serves grid partition previews: it loads a land, runs
// the partitioner and overlays the already-minted parcels.
package parceling

import (
	"context"
	"time"

	"github.com/landwho/landwho/internal/domain/land"
	"github.com/landwho/landwho/internal/domain/mint"
	"github.com/landwho/landwho/internal/domain/parcel"
	"github.com/landwho/landwho/internal/infrastructure/monitoring/logging"
	prommetrics "github.com/landwho/landwho/internal/infrastructure/monitoring/prometheus"
	apperrors "github.com/landwho/landwho/pkg/errors"
	"github.com/landwho/landwho/pkg/types/common"
	"github.com/landwho/landwho/pkg/types/geo"
)

// Grid is a partition preview for one land.
type Grid struct {
	LandID         common.ID          `json:"land_id"`
	CellSizeMeters float64            `json:"cell_size_meters"`
	Candidates     []parcel.Candidate `json:"candidates"`
	MintedCount    int                `json:"minted_count"`
}

// Service builds partition previews.
type Service struct {
	lands   *land.Service
	records mint.Repository
	opts    parcel.PartitionOptions
	metrics *prommetrics.AppMetrics
	logger  logging.Logger
}

// NewService constructs the parceling service.  opts supplies the default
// cell size and grid limits; metrics may be nil.
func NewService(lands *land.Service, records mint.Repository, opts parcel.PartitionOptions,
	metrics *prommetrics.AppMetrics, logger logging.Logger) *Service {
	return &Service{
		lands:   lands,
		records: records,
		opts:    opts,
		metrics: metrics,
		logger:  logger.Named("parceling"),
	}
}

// PartitionLand partitions a land into candidates.  cellSizeMeters <= 0
// selects the configured default.  Minted parcels stay in the result,
// flagged and unselectable.
func (s *Service) PartitionLand(ctx context.Context, landID common.ID, cellSizeMeters float64) (*Grid, error) {
	started := time.Now()

	l, err := s.lands.GetLand(ctx, landID)
	if err != nil {
		s.countGrid("error")
		return nil, err
	}

	opts := s.opts
	if cellSizeMeters > 0 {
		opts.CellSizeMeters = cellSizeMeters
	}

	candidates, err := parcel.Partition(l.Boundary, opts)
	if err != nil {
		s.countGrid("error")
		return nil, err
	}
	candidates = parcel.WithFingerprints(landID.String(), candidates)

	minted, err := s.records.ListByLand(ctx, landID)
	if err != nil {
		s.countGrid("error")
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to load minted parcels")
	}
	mintedRings := make([]geo.Ring, 0, len(minted))
	for _, m := range minted {
		mintedRings = append(mintedRings, m.Boundary)
	}
	candidates = parcel.MarkMinted(candidates, mintedRings)

	var mintedCount int
	for _, c := range candidates {
		if c.Minted {
			mintedCount++
		}
	}

	s.countGrid("ok")
	if s.metrics != nil {
		s.metrics.GridDuration.WithLabelValues().Observe(time.Since(started).Seconds())
		var inside, partial float64
		for _, c := range candidates {
			if c.Classification == parcel.ClassInside {
				inside++
			} else {
				partial++
			}
		}
		s.metrics.GridCells.WithLabelValues(string(parcel.ClassInside)).Observe(inside)
		s.metrics.GridCells.WithLabelValues(string(parcel.ClassPartial)).Observe(partial)
	}

	s.logger.Info("land partitioned",
		logging.String("land_id", landID.String()),
		logging.Int("candidates", len(candidates)),
		logging.Int("minted", mintedCount),
		logging.Duration("took", time.Since(started)))

	return &Grid{
		LandID:         landID,
		CellSizeMeters: opts.CellSizeMeters,
		Candidates:     candidates,
		MintedCount:    mintedCount,
	}, nil
}

func (s *Service) countGrid(status string) {
	if s.metrics != nil {
		s.metrics.GridRequestsTotal.WithLabelValues(status).Inc()
	}
}
