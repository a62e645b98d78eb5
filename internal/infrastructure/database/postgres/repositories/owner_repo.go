package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/landwho/landwho/internal/domain/land"
	"github.com/landwho/landwho/internal/infrastructure/monitoring/logging"
	apperrors "github.com/landwho/landwho/pkg/errors"
)

// OwnerRepository is the PostgreSQL implementation of land.OwnerRepository.
type OwnerRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewOwnerRepository constructs an OwnerRepository.
func NewOwnerRepository(pool *pgxpool.Pool, logger logging.Logger) *OwnerRepository {
	return &OwnerRepository{pool: pool, logger: logger.Named("owner_repo")}
}

// Save inserts the owner.  Re-registering a wallet keeps the existing row.
func (r *OwnerRepository) Save(ctx context.Context, o *land.Owner) error {
	const q = `
		INSERT INTO landowners (id, wallet, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (wallet) DO NOTHING`

	_, err := r.pool.Exec(ctx, q, o.ID.String(), o.Wallet, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "insert owner")
	}
	return nil
}

// FindByWallet returns the owner for a wallet.
func (r *OwnerRepository) FindByWallet(ctx context.Context, wallet string) (*land.Owner, error) {
	const q = `
		SELECT id, wallet, created_at, updated_at
		FROM landowners
		WHERE wallet = $1`

	var o land.Owner
	var id string
	err := r.pool.QueryRow(ctx, q, wallet).Scan(&id, &o.Wallet, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.Newf(apperrors.ErrCodeOwnerNotFound, "owner %s not found", wallet)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "query owner")
	}
	o.ID = commonID(id)
	return &o, nil
}
