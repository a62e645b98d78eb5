package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/landwho/landwho/internal/domain/notification"
	"github.com/landwho/landwho/internal/infrastructure/monitoring/logging"
	apperrors "github.com/landwho/landwho/pkg/errors"
	"github.com/landwho/landwho/pkg/types/common"
)

// NotificationRepository is the PostgreSQL implementation of
// notification.Repository.
type NotificationRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewNotificationRepository constructs a NotificationRepository.
func NewNotificationRepository(pool *pgxpool.Pool, logger logging.Logger) *NotificationRepository {
	return &NotificationRepository{pool: pool, logger: logger.Named("notification_repo")}
}

// Save inserts a notification.
func (r *NotificationRepository) Save(ctx context.Context, n *notification.Notification) error {
	const q = `
		INSERT INTO notifications (id, wallet, kind, payload, seen, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, q,
		n.ID.String(), n.Wallet, string(n.Kind), []byte(n.Payload), n.Seen, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "insert notification")
	}
	return nil
}

// ListByWallet returns the wallet's notifications, newest first.
func (r *NotificationRepository) ListByWallet(ctx context.Context, wallet string, unseenOnly bool) ([]*notification.Notification, error) {
	q := `
		SELECT id, wallet, kind, payload, seen, created_at, updated_at
		FROM notifications
		WHERE wallet = $1`
	if unseenOnly {
		q += ` AND NOT seen`
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, q, wallet)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "query notifications")
	}
	defer rows.Close()

	var out []*notification.Notification
	for rows.Next() {
		var n notification.Notification
		var id, kind string
		var payload []byte
		if err := rows.Scan(&id, &n.Wallet, &kind, &payload, &n.Seen, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "scan notification")
		}
		n.ID = commonID(id)
		n.Kind = notification.Kind(kind)
		n.Payload = payload
		out = append(out, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "iterate notifications")
	}
	return out, nil
}

// MarkSeen acknowledges a notification.  Already-seen rows are not an error.
func (r *NotificationRepository) MarkSeen(ctx context.Context, id common.ID) error {
	const q = `UPDATE notifications SET seen = TRUE, updated_at = NOW() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, q, id.String())
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "mark notification seen")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.Newf(apperrors.ErrCodeNotFound, "notification %s not found", id)
	}
	return nil
}
