// Package minting coordinates mint attempts: synchronous admission against
// the in-flight registry and the record store, then a detached continuation
// that pins metadata, drives the ledger and persists the outcome.
package minting

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/landwho/landwho/internal/domain/mint"
	"github.com/landwho/landwho/internal/domain/notification"
	"github.com/landwho/landwho/internal/infrastructure/monitoring/logging"
	prommetrics "github.com/landwho/landwho/internal/infrastructure/monitoring/prometheus"
	apperrors "github.com/landwho/landwho/pkg/errors"
)

// Outcome labels used in metrics and lifecycle events.
const (
	outcomeSuccess           = "success"
	outcomePinFailure        = "pin_failure"
	outcomeSubmissionFailure = "chain_submission_failure"
	outcomeConfirmFailure    = "chain_confirmation_failure"
	outcomeChainTimeout      = "chain_timeout"
	outcomeReconcileNeeded   = "persistence_after_chain_failure"
)

// Admission is the synchronous reply to an admitted mint request.  Status
// is always "pending": the continuation has been handed off and the caller
// learns the outcome through notifications.
type Admission struct {
	Fingerprint string `json:"fingerprint"`
	Status      string `json:"status"`
}

// StatusPending is the only status an admission reply carries.
const StatusPending = "pending"

// Service is the mint coordinator.
type Service struct {
	registry mint.InFlightRegistry
	records  mint.Repository
	content  mint.ContentStore
	ledger   mint.Ledger
	events   mint.EventPublisher
	notifier notification.Emitter
	metrics  *prommetrics.AppMetrics
	logger   logging.Logger

	attemptTimeout time.Duration
	confirmTimeout time.Duration

	// slots bounds concurrent continuations; acquisition happens at
	// admission so the cap also bounds goroutine count.
	slots chan struct{}
	wg    sync.WaitGroup
}

// Options configure the coordinator.
type Options struct {
	MaxConcurrent  int
	AttemptTimeout time.Duration
	ConfirmTimeout time.Duration
}

// NewService constructs the coordinator.  events and metrics may be nil;
// everything else is required.
func NewService(
	registry mint.InFlightRegistry,
	records mint.Repository,
	content mint.ContentStore,
	ledger mint.Ledger,
	events mint.EventPublisher,
	notifier notification.Emitter,
	metrics *prommetrics.AppMetrics,
	logger logging.Logger,
	opts Options,
) *Service {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 16
	}
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = 5 * time.Minute
	}
	if opts.ConfirmTimeout <= 0 {
		opts.ConfirmTimeout = 2 * time.Minute
	}
	return &Service{
		registry:       registry,
		records:        records,
		content:        content,
		ledger:         ledger,
		events:         events,
		notifier:       notifier,
		metrics:        metrics,
		logger:         logger.Named("minting"),
		attemptTimeout: opts.AttemptTimeout,
		confirmTimeout: opts.ConfirmTimeout,
		slots:          make(chan struct{}, opts.MaxConcurrent),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Admission
// ─────────────────────────────────────────────────────────────────────────────

// Admit decides synchronously whether a mint attempt may start.  On
// admission the continuation runs in a detached goroutine and the caller
// immediately gets a pending status; on any rejection no background work
// starts.
func (s *Service) Admit(ctx context.Context, req mint.Request) (*Admission, error) {
	req, err := req.Validate()
	if err != nil {
		return nil, err
	}
	fp := req.Fingerprint()
	log := s.logger.With(logging.String("fingerprint", fp), logging.String("wallet", req.Wallet))

	acquired, err := s.registry.TryAcquire(ctx, fp)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeCacheError, "in-flight registry unavailable")
	}
	if !acquired {
		s.countAdmission("rejected_in_flight")
		log.Info("mint rejected, attempt already in flight")
		return nil, apperrors.New(apperrors.ErrCodeMintAlreadyMintedOrPending,
			"a mint for this parcel is already pending")
	}

	// From here every exit except successful handoff must release the claim.
	if _, err := s.records.FindByFingerprint(ctx, fp); err == nil {
		s.release(fp)
		s.countAdmission("rejected_minted")
		log.Info("mint rejected, parcel already minted")
		return nil, apperrors.New(apperrors.ErrCodeMintAlreadyMintedOrPending,
			"this parcel is already minted")
	} else if !apperrors.IsNotFound(err) {
		s.release(fp)
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to check minted parcels")
	}

	select {
	case s.slots <- struct{}{}:
	default:
		s.release(fp)
		s.countAdmission("rejected_capacity")
		return nil, apperrors.New(apperrors.ErrCodeServiceUnavailable,
			"mint capacity exhausted, retry shortly")
	}

	s.countAdmission("admitted")
	if s.metrics != nil {
		s.metrics.MintInFlight.WithLabelValues("coordinator").Inc()
	}
	log.Info("mint admitted")

	s.wg.Add(1)
	go s.run(req, fp)

	return &Admission{Fingerprint: fp, Status: StatusPending}, nil
}

// Shutdown waits for running continuations to finish or the context to
// expire.
func (s *Service) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Continuation
// ─────────────────────────────────────────────────────────────────────────────

// run drives one admitted attempt to its terminal outcome.  It owns its
// context and error boundary; nothing escapes to the admitting request.
func (s *Service) run(req mint.Request, fp string) {
	started := time.Now()
	log := s.logger.With(logging.String("fingerprint", fp), logging.String("land_id", req.LandID.String()))

	// finish is the single release point: it runs exactly once on every
	// exit path out of the continuation, panics included.
	defer func() {
		s.release(fp)
		if s.metrics != nil {
			s.metrics.MintInFlight.WithLabelValues("coordinator").Dec()
		}
		<-s.slots
		s.wg.Done()
	}()
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("mint continuation panicked", logging.Any("panic", rec))
			panicCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			s.fail(panicCtx, req, fp, "internal_failure", started,
				apperrors.Newf(apperrors.ErrCodeInternal, "mint continuation panicked: %v", rec))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.attemptTimeout)
	defer cancel()

	// Pinning
	metadata, err := json.Marshal(metadataDocument(req, fp))
	if err != nil {
		s.fail(ctx, req, fp, outcomePinFailure, started,
			apperrors.Wrap(err, apperrors.ErrCodeMintPinFailure, "failed to encode parcel metadata"))
		return
	}
	contentKey, err := s.content.Pin(ctx, metadata)
	if err != nil {
		s.fail(ctx, req, fp, outcomePinFailure, started,
			apperrors.Wrap(err, apperrors.ErrCodeMintPinFailure, "content store rejected the pin"))
		return
	}
	log.Debug("metadata pinned", logging.String("content_key", contentKey))

	// OnChain
	record := mint.NewMintedParcel(req, fp, contentKey, mint.Receipt{})
	sub, err := s.ledger.SubmitMint(ctx, record)
	if err != nil {
		s.fail(ctx, req, fp, outcomeSubmissionFailure, started,
			apperrors.Wrap(err, apperrors.ErrCodeMintChainSubmission, "ledger rejected the transaction"))
		return
	}
	log.Info("mint transaction submitted", logging.String("tx_hash", sub.TxHash))

	confirmCtx, confirmCancel := context.WithTimeout(ctx, s.confirmTimeout)
	receipt, err := s.ledger.AwaitConfirmation(confirmCtx, sub)
	confirmCancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.fail(ctx, req, fp, outcomeChainTimeout, started,
				apperrors.Wrap(err, apperrors.ErrCodeMintChainTimeout,
					"confirmation wait timed out, the transaction may still confirm").
					WithDetail("tx_hash %s", sub.TxHash))
		} else {
			s.fail(ctx, req, fp, outcomeConfirmFailure, started,
				apperrors.Wrap(err, apperrors.ErrCodeMintChainConfirmation, "transaction failed to confirm").
					WithDetail("tx_hash %s", sub.TxHash))
		}
		return
	}
	record.TxHash = receipt.TxHash
	record.TokenID = receipt.TokenID
	record.BlockNumber = receipt.BlockNumber

	// Persisting.  A failure here leaves the ledger and the record store
	// inconsistent: this is never folded into the generic failure bucket.
	if err := s.records.Save(ctx, record); err != nil {
		log.Error("minted on chain but record persistence failed, flagging for reconciliation",
			logging.Err(err), logging.String("tx_hash", record.TxHash))
		s.publish(ctx, mint.Event{
			Type:        mint.EventMintReconcile,
			Fingerprint: fp,
			LandID:      req.LandID,
			Wallet:      req.Wallet,
			TxHash:      record.TxHash,
			Code:        string(apperrors.ErrCodeMintPersistenceAfterChain),
			Message:     err.Error(),
			OccurredAt:  time.Now().UTC(),
		})
		s.notifyFailure(ctx, req, fp, apperrors.Wrap(err,
			apperrors.ErrCodeMintPersistenceAfterChain,
			"parcel minted on chain but the record store write failed"), true, false)
		s.observeOutcome(outcomeReconcileNeeded, started)
		return
	}

	// Notifying
	if err := s.notifier.Emit(ctx, req.Wallet, notification.KindMintSucceeded, record); err != nil {
		log.Warn("success notification failed", logging.Err(err))
	}
	s.publish(ctx, mint.Event{
		Type:        mint.EventMintSucceeded,
		Fingerprint: fp,
		LandID:      req.LandID,
		Wallet:      req.Wallet,
		TxHash:      record.TxHash,
		OccurredAt:  time.Now().UTC(),
	})
	s.observeOutcome(outcomeSuccess, started)
	log.Info("mint completed",
		logging.String("token_id", record.TokenID),
		logging.Duration("took", time.Since(started)))
}

// fail handles every pre-persistence failure path: one failure notification,
// one lifecycle event, one metric observation.
func (s *Service) fail(ctx context.Context, req mint.Request, fp, outcome string, started time.Time, err *apperrors.AppError) {
	s.logger.Error("mint attempt failed",
		logging.Err(err),
		logging.String("fingerprint", fp),
		logging.String("outcome", outcome))

	mayStillConfirm := err.Code == apperrors.ErrCodeMintChainTimeout
	s.notifyFailure(ctx, req, fp, err, false, mayStillConfirm)
	s.publish(ctx, mint.Event{
		Type:        mint.EventMintFailed,
		Fingerprint: fp,
		LandID:      req.LandID,
		Wallet:      req.Wallet,
		Code:        string(err.Code),
		Message:     err.Message,
		OccurredAt:  time.Now().UTC(),
	})
	s.observeOutcome(outcome, started)
}

func (s *Service) notifyFailure(ctx context.Context, req mint.Request, fp string, err *apperrors.AppError, needsReconciliation, mayStillConfirm bool) {
	payload := notification.FailurePayload{
		Fingerprint:         fp,
		LandID:              req.LandID,
		Code:                err.Code,
		Message:             err.Message,
		MayStillConfirm:     mayStillConfirm,
		NeedsReconciliation: needsReconciliation,
	}
	if nerr := s.notifier.Emit(ctx, req.Wallet, notification.KindMintFailed, payload); nerr != nil {
		s.logger.Warn("failure notification could not be emitted", logging.Err(nerr))
	}
}

func (s *Service) publish(ctx context.Context, ev mint.Event) {
	if s.events == nil {
		return
	}
	status := "ok"
	if err := s.events.Publish(ctx, ev); err != nil {
		status = "error"
		s.logger.Warn("lifecycle event publish failed",
			logging.Err(err), logging.String("type", string(ev.Type)))
	}
	if s.metrics != nil {
		s.metrics.EventsPublished.WithLabelValues(string(ev.Type), status).Inc()
	}
}

func (s *Service) release(fp string) {
	// Release gets its own context: the attempt context may already be
	// cancelled and the claim must be freed regardless.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.registry.Release(ctx, fp); err != nil {
		s.logger.Error("failed to release in-flight entry, TTL will reap it",
			logging.Err(err), logging.String("fingerprint", fp))
	}
}

func (s *Service) countAdmission(decision string) {
	if s.metrics != nil {
		s.metrics.MintAdmissionsTotal.WithLabelValues(decision).Inc()
	}
}

func (s *Service) observeOutcome(outcome string, started time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveMintOutcome(outcome, time.Since(started))
	}
}

// metadataDocument is the pinned parcel metadata.
func metadataDocument(req mint.Request, fp string) map[string]interface{} {
	return map[string]interface{}{
		"name":        req.LandName,
		"land_id":     req.LandID,
		"wallet":      req.Wallet,
		"boundary":    req.Boundary,
		"fingerprint": fp,
		"price":       req.Price,
		"royalty_bps": req.RoyaltyBps,
	}
}
