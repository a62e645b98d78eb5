// Package reconciling implements the worker side of the mint lifecycle: it
// consumes the events the coordinator publishes and surfaces parcels whose
// on-chain mint succeeded but whose record-store write failed.
package reconciling

import (
	"context"

	"github.com/landwho/landwho/internal/domain/mint"
	"github.com/landwho/landwho/internal/infrastructure/monitoring/logging"
	prommetrics "github.com/landwho/landwho/internal/infrastructure/monitoring/prometheus"
	apperrors "github.com/landwho/landwho/pkg/errors"
)

// Resolution labels for the reconcile-check metric.
const (
	resolutionResolved = "resolved"
	resolutionPending  = "pending"
)

// Service handles consumed mint lifecycle events.  Succeeded and failed
// events are observed for fleet-wide visibility; reconcile events are
// checked against the record store so operators see which parcels still
// need a manual record repair.
type Service struct {
	records mint.Repository
	metrics *prommetrics.AppMetrics
	logger  logging.Logger
}

// NewService constructs the reconciliation service.  metrics may be nil.
func NewService(records mint.Repository, metrics *prommetrics.AppMetrics, logger logging.Logger) *Service {
	return &Service{
		records: records,
		metrics: metrics,
		logger:  logger.Named("reconciling"),
	}
}

// HandleEvent dispatches one consumed lifecycle event.  Unknown event types
// are logged and dropped; returning an error would only make the consumer
// retry a message that can never be handled.
func (s *Service) HandleEvent(ctx context.Context, ev mint.Event) error {
	switch ev.Type {
	case mint.EventMintSucceeded, mint.EventMintFailed:
		s.observe(ev)
		return nil
	case mint.EventMintReconcile:
		return s.checkReconcile(ctx, ev)
	default:
		s.logger.Warn("unknown lifecycle event type, dropping",
			logging.String("type", string(ev.Type)),
			logging.String("fingerprint", ev.Fingerprint))
		return nil
	}
}

// observe records a terminal outcome event.
func (s *Service) observe(ev mint.Event) {
	fields := []logging.Field{
		logging.String("fingerprint", ev.Fingerprint),
		logging.String("land_id", ev.LandID.String()),
		logging.String("wallet", ev.Wallet),
	}
	if ev.Type == mint.EventMintSucceeded {
		s.logger.Info("mint succeeded", append(fields, logging.String("tx_hash", ev.TxHash))...)
	} else {
		s.logger.Info("mint failed", append(fields,
			logging.String("code", ev.Code), logging.String("message", ev.Message))...)
	}
	if s.metrics != nil {
		s.metrics.EventsConsumed.WithLabelValues(string(ev.Type), "ok").Inc()
	}
}

// checkReconcile verifies whether a flagged parcel has a record by now.  The
// coordinator publishes a reconcile event when the chain mint landed but the
// record-store write failed; an operator repairs the record out of band, so
// the check resolves once the record appears.  A still-missing record is an
// actionable Error log, not a retry: redelivering the event cannot create
// the record.
func (s *Service) checkReconcile(ctx context.Context, ev mint.Event) error {
	_, err := s.records.FindByFingerprint(ctx, ev.Fingerprint)
	switch {
	case err == nil:
		s.logger.Info("reconcile flag resolved, record present",
			logging.String("fingerprint", ev.Fingerprint),
			logging.String("tx_hash", ev.TxHash))
		s.count(resolutionResolved)
		return nil
	case apperrors.IsNotFound(err):
		s.logger.Error("parcel minted on chain but has no record, manual repair needed",
			logging.String("fingerprint", ev.Fingerprint),
			logging.String("land_id", ev.LandID.String()),
			logging.String("wallet", ev.Wallet),
			logging.String("tx_hash", ev.TxHash),
			logging.String("message", ev.Message))
		s.count(resolutionPending)
		return nil
	default:
		// The store itself failed; let the consumer's retry policy decide.
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError,
			"failed to check record store during reconciliation")
	}
}

func (s *Service) count(resolution string) {
	if s.metrics != nil {
		s.metrics.ReconcileChecksTotal.WithLabelValues(resolution).Inc()
	}
}
