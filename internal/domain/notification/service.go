package notification

import (
	"context"
	"strings"

	"github.com/landwho/landwho/internal/infrastructure/monitoring/logging"
	apperrors "github.com/landwho/landwho/pkg/errors"
	"github.com/landwho/landwho/pkg/types/common"
)

// Service emits and serves notifications.  The mint coordinator depends on
// the Emitter subset only.
type Service struct {
	repo   Repository
	logger logging.Logger
}

// Emitter is the write-side port used by the mint coordinator.
type Emitter interface {
	Emit(ctx context.Context, wallet string, kind Kind, payload interface{}) error
}

// NewService constructs the notification service.
func NewService(repo Repository, logger logging.Logger) *Service {
	return &Service{repo: repo, logger: logger.Named("notification")}
}

// Emit writes one durable notification.  Emission failures are logged and
// returned but must not abort the caller's mint outcome handling; the mint
// record is the source of truth, the notification only announces it.
func (s *Service) Emit(ctx context.Context, wallet string, kind Kind, payload interface{}) error {
	n, err := New(wallet, kind, payload)
	if err != nil {
		return err
	}
	if err := s.repo.Save(ctx, n); err != nil {
		s.logger.Error("failed to persist notification",
			logging.Err(err),
			logging.String("wallet", wallet),
			logging.String("kind", string(kind)))
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to persist notification")
	}
	s.logger.Debug("notification emitted",
		logging.String("wallet", wallet),
		logging.String("kind", string(kind)))
	return nil
}

// List returns a wallet's notifications, optionally unseen entries only.
func (s *Service) List(ctx context.Context, wallet string, unseenOnly bool) ([]*Notification, error) {
	wallet = strings.ToLower(strings.TrimSpace(wallet))
	if wallet == "" {
		return nil, apperrors.New(apperrors.ErrCodeBadRequest, "wallet must not be empty")
	}
	ns, err := s.repo.ListByWallet(ctx, wallet, unseenOnly)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to list notifications")
	}
	return ns, nil
}

// MarkSeen acknowledges a notification.
func (s *Service) MarkSeen(ctx context.Context, id common.ID) error {
	if err := s.repo.MarkSeen(ctx, id); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.Newf(apperrors.ErrCodeNotificationNotFound, "notification %s not found", id)
		}
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to mark notification seen")
	}
	return nil
}
