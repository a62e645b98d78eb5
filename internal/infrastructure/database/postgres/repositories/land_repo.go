package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/landwho/landwho/internal/domain/land"
	"github.com/landwho/landwho/internal/infrastructure/monitoring/logging"
	apperrors "github.com/landwho/landwho/pkg/errors"
	"github.com/landwho/landwho/pkg/types/common"
)

// LandRepository is the PostgreSQL implementation of land.Repository.
// Boundaries are stored as jsonb in GeoJSON [lng, lat] order.
type LandRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewLandRepository constructs a LandRepository.
func NewLandRepository(pool *pgxpool.Pool, logger logging.Logger) *LandRepository {
	return &LandRepository{pool: pool, logger: logger.Named("land_repo")}
}

// Save inserts a land.
func (r *LandRepository) Save(ctx context.Context, l *land.Land) error {
	boundary, err := encodeRing(l.Boundary)
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO lands (id, wallet, name, boundary, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := r.pool.Exec(ctx, q, l.ID.String(), l.Wallet, l.Name, boundary, l.CreatedAt, l.UpdatedAt); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "insert land")
	}
	return nil
}

// FindByID returns a land by id.
func (r *LandRepository) FindByID(ctx context.Context, id common.ID) (*land.Land, error) {
	const q = `
		SELECT id, wallet, name, boundary, created_at, updated_at
		FROM lands
		WHERE id = $1`

	return r.scanOne(r.pool.QueryRow(ctx, q, id.String()))
}

// ListByWallet returns the wallet's lands, newest first.
func (r *LandRepository) ListByWallet(ctx context.Context, wallet string) ([]*land.Land, error) {
	const q = `
		SELECT id, wallet, name, boundary, created_at, updated_at
		FROM lands
		WHERE wallet = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, q, wallet)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "query lands")
	}
	defer rows.Close()

	var out []*land.Land
	for rows.Next() {
		l, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "iterate lands")
	}
	return out, nil
}

// Update rewrites a land's mutable columns.
func (r *LandRepository) Update(ctx context.Context, l *land.Land) error {
	boundary, err := encodeRing(l.Boundary)
	if err != nil {
		return err
	}

	const q = `
		UPDATE lands
		SET name = $2, boundary = $3, updated_at = $4
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, q, l.ID.String(), l.Name, boundary, l.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "update land")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.Newf(apperrors.ErrCodeNotFound, "land %s not found", l.ID)
	}
	return nil
}

// Delete removes a land.  Minted-parcel rows cascade via their foreign key.
func (r *LandRepository) Delete(ctx context.Context, id common.ID) error {
	const q = `DELETE FROM lands WHERE id = $1`

	tag, err := r.pool.Exec(ctx, q, id.String())
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "delete land")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.Newf(apperrors.ErrCodeNotFound, "land %s not found", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *LandRepository) scanOne(row rowScanner) (*land.Land, error) {
	var l land.Land
	var id string
	var boundary []byte
	if err := row.Scan(&id, &l.Wallet, &l.Name, &boundary, &l.CreatedAt, &l.UpdatedAt); err != nil {
		if isNoRows(err) {
			return nil, apperrors.New(apperrors.ErrCodeNotFound, "land not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "scan land")
	}
	ring, err := decodeRing(boundary)
	if err != nil {
		return nil, err
	}
	l.ID = commonID(id)
	l.Boundary = ring
	return &l, nil
}
