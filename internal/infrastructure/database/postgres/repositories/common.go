// Package repositories provides PostgreSQL implementations of the domain
// repository ports.  All queries are parameterised and accept a context for
// cancellation.
package repositories

import (
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/landwho/landwho/pkg/errors"
	"github.com/landwho/landwho/pkg/types/common"
	"github.com/landwho/landwho/pkg/types/geo"
)

// commonID converts a scanned text column into a typed ID.
func commonID(s string) common.ID {
	return common.ID(s)
}

// uniqueViolation is the PostgreSQL error code for unique index conflicts.
const uniqueViolation = "23505"

// isNoRows reports whether err is pgx's empty-result sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// isUniqueViolation reports whether err is a unique index conflict.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// encodeRing serializes a boundary ring for a jsonb column.
func encodeRing(r geo.Ring) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to encode boundary")
	}
	return data, nil
}

// decodeRing deserializes a jsonb boundary column.
func decodeRing(data []byte) (geo.Ring, error) {
	var r geo.Ring
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to decode boundary")
	}
	return r, nil
}
