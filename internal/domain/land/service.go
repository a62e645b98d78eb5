package land

import (
	"context"
	"strings"

	"github.com/landwho/landwho/internal/infrastructure/monitoring/logging"
	apperrors "github.com/landwho/landwho/pkg/errors"
	"github.com/landwho/landwho/pkg/types/common"
	"github.com/landwho/landwho/pkg/types/geo"
)

// ─────────────────────────────────────────────────────────────────────────────
// Owner and land service
// ─────────────────────────────────────────────────────────────────────────────

// Service coordinates the Owner and Land aggregates with their repository
// ports.  Validation lives in the aggregate constructors; Service methods
// retrieve, invoke and persist.
type Service struct {
	owners OwnerRepository
	lands  Repository
	logger logging.Logger
}

// NewService constructs the land domain service.
func NewService(owners OwnerRepository, lands Repository, logger logging.Logger) *Service {
	return &Service{owners: owners, lands: lands, logger: logger.Named("land")}
}

// RegisterOwner records a wallet as an owner.  Registering the same wallet
// twice is a no-op that returns the stored owner.
func (s *Service) RegisterOwner(ctx context.Context, wallet string) (*Owner, error) {
	o, err := NewOwner(wallet)
	if err != nil {
		return nil, err
	}

	if err := s.owners.Save(ctx, o); err != nil {
		s.logger.Error("failed to save owner", logging.Err(err), logging.String("wallet", o.Wallet))
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to persist owner")
	}

	stored, err := s.owners.FindByWallet(ctx, o.Wallet)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to load owner")
	}
	s.logger.Info("owner registered", logging.String("wallet", stored.Wallet))
	return stored, nil
}

// RegisterLand records a polygon for a registered wallet.  Unknown wallets
// are rejected with ErrCodeOwnerNotFound.
func (s *Service) RegisterLand(ctx context.Context, wallet, name string, boundary geo.Ring) (*Land, error) {
	l, err := NewLand(wallet, name, boundary)
	if err != nil {
		return nil, err
	}

	if _, err := s.owners.FindByWallet(ctx, l.Wallet); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Newf(apperrors.ErrCodeOwnerNotFound,
				"wallet %s is not registered", l.Wallet)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to look up owner")
	}

	if err := s.lands.Save(ctx, l); err != nil {
		s.logger.Error("failed to save land", logging.Err(err), logging.String("wallet", l.Wallet))
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to persist land")
	}

	s.logger.Info("land registered",
		logging.String("land_id", l.ID.String()),
		logging.String("wallet", l.Wallet),
		logging.Int("points", len(l.Boundary)))
	return l, nil
}

// GetLand returns a land by id.
func (s *Service) GetLand(ctx context.Context, id common.ID) (*Land, error) {
	l, err := s.lands.FindByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Newf(apperrors.ErrCodeLandNotFound, "land %s not found", id)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to load land")
	}
	return l, nil
}

// ListLands returns a wallet's lands, newest first.
func (s *Service) ListLands(ctx context.Context, wallet string) ([]*Land, error) {
	wallet = strings.ToLower(strings.TrimSpace(wallet))
	if wallet == "" {
		return nil, apperrors.New(apperrors.ErrCodeLandInvalidRequest, "wallet must not be empty")
	}
	ls, err := s.lands.ListByWallet(ctx, wallet)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to list lands")
	}
	return ls, nil
}

// UpdateLand renames and/or redraws a land.  A nil boundary or empty name
// leaves that attribute unchanged.
func (s *Service) UpdateLand(ctx context.Context, id common.ID, name string, boundary geo.Ring) (*Land, error) {
	l, err := s.GetLand(ctx, id)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(name) != "" {
		if err := l.Rename(name); err != nil {
			return nil, err
		}
	}
	if boundary != nil {
		if err := l.Redraw(boundary); err != nil {
			return nil, err
		}
	}

	if err := s.lands.Update(ctx, l); err != nil {
		s.logger.Error("failed to update land", logging.Err(err), logging.String("land_id", id.String()))
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to update land")
	}
	s.logger.Info("land updated", logging.String("land_id", id.String()))
	return l, nil
}

// DeleteLand removes a land.  Minted-parcel display rows cascade in the
// record store.
func (s *Service) DeleteLand(ctx context.Context, id common.ID) error {
	if _, err := s.GetLand(ctx, id); err != nil {
		return err
	}
	if err := s.lands.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete land", logging.Err(err), logging.String("land_id", id.String()))
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to delete land")
	}
	s.logger.Info("land deleted", logging.String("land_id", id.String()))
	return nil
}
