package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/landwho/landwho/internal/domain/mint"
	"github.com/landwho/landwho/internal/infrastructure/monitoring/logging"
	apperrors "github.com/landwho/landwho/pkg/errors"
	"github.com/landwho/landwho/pkg/types/common"
)

// MintedParcelRepository is the PostgreSQL implementation of mint.Repository.
// The unique index on the fingerprint column is the durable duplicate-mint
// backstop behind the in-flight registry.
type MintedParcelRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewMintedParcelRepository constructs a MintedParcelRepository.
func NewMintedParcelRepository(pool *pgxpool.Pool, logger logging.Logger) *MintedParcelRepository {
	return &MintedParcelRepository{pool: pool, logger: logger.Named("minted_parcel_repo")}
}

const mintedParcelColumns = `
	id, land_id, land_name, wallet, boundary, fingerprint,
	price, royalty_bps, content_key, token_id, tx_hash, block_number,
	created_at, updated_at`

// Save inserts the record.  A fingerprint collision surfaces as a conflict.
func (r *MintedParcelRepository) Save(ctx context.Context, p *mint.MintedParcel) error {
	boundary, err := encodeRing(p.Boundary)
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO minted_parcels (
			id, land_id, land_name, wallet, boundary, fingerprint,
			price, royalty_bps, content_key, token_id, tx_hash, block_number,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err = r.pool.Exec(ctx, q,
		p.ID.String(), p.LandID.String(), p.LandName, p.Wallet, boundary, p.Fingerprint,
		p.Price, p.RoyaltyBps, p.ContentKey, p.TokenID, p.TxHash, p.BlockNumber,
		p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Newf(apperrors.ErrCodeConflict,
				"parcel %s is already minted", p.Fingerprint)
		}
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "insert minted parcel")
	}
	return nil
}

// FindByFingerprint returns the record for a fingerprint.
func (r *MintedParcelRepository) FindByFingerprint(ctx context.Context, fingerprint string) (*mint.MintedParcel, error) {
	const q = `SELECT ` + mintedParcelColumns + ` FROM minted_parcels WHERE fingerprint = $1`
	return r.scanOne(r.pool.QueryRow(ctx, q, fingerprint))
}

// ListByLand returns a land's minted parcels, oldest first.
func (r *MintedParcelRepository) ListByLand(ctx context.Context, landID common.ID) ([]*mint.MintedParcel, error) {
	const q = `SELECT ` + mintedParcelColumns + ` FROM minted_parcels WHERE land_id = $1 ORDER BY created_at`
	return r.list(ctx, q, landID.String())
}

// ListByWallet returns a wallet's minted parcels, newest first.
func (r *MintedParcelRepository) ListByWallet(ctx context.Context, wallet string) ([]*mint.MintedParcel, error) {
	const q = `SELECT ` + mintedParcelColumns + ` FROM minted_parcels WHERE wallet = $1 ORDER BY created_at DESC`
	return r.list(ctx, q, wallet)
}

// DeleteByLand removes a land's minted-parcel display rows.  The on-chain
// tokens are unaffected; this only clears the overlay state.
func (r *MintedParcelRepository) DeleteByLand(ctx context.Context, landID common.ID) error {
	const q = `DELETE FROM minted_parcels WHERE land_id = $1`
	if _, err := r.pool.Exec(ctx, q, landID.String()); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "delete minted parcels")
	}
	return nil
}

func (r *MintedParcelRepository) list(ctx context.Context, q string, arg interface{}) ([]*mint.MintedParcel, error) {
	rows, err := r.pool.Query(ctx, q, arg)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "query minted parcels")
	}
	defer rows.Close()

	var out []*mint.MintedParcel
	for rows.Next() {
		p, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "iterate minted parcels")
	}
	return out, nil
}

func (r *MintedParcelRepository) scanOne(row rowScanner) (*mint.MintedParcel, error) {
	var p mint.MintedParcel
	var id, landID string
	var boundary []byte
	err := row.Scan(&id, &landID, &p.LandName, &p.Wallet, &boundary, &p.Fingerprint,
		&p.Price, &p.RoyaltyBps, &p.ContentKey, &p.TokenID, &p.TxHash, &p.BlockNumber,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.New(apperrors.ErrCodeNotFound, "minted parcel not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "scan minted parcel")
	}
	ring, err := decodeRing(boundary)
	if err != nil {
		return nil, err
	}
	p.ID = commonID(id)
	p.LandID = commonID(landID)
	p.Boundary = ring
	return &p, nil
}
