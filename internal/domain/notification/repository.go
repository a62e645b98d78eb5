package notification

import (
	"context"

	"github.com/landwho/landwho/pkg/types/common"
)

// Repository is the persistence port for notifications.
type Repository interface {
	Save(ctx context.Context, n *Notification) error

	// ListByWallet returns the wallet's notifications, newest first.  When
	// unseenOnly is set, acknowledged entries are filtered out.
	ListByWallet(ctx context.Context, wallet string, unseenOnly bool) ([]*Notification, error)

	// MarkSeen acknowledges a notification.  Acknowledging an already-seen
	// entry is a no-op.
	MarkSeen(ctx context.Context, id common.ID) error
}
