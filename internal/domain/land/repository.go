package land

import (
	"context"

	"github.com/landwho/landwho/pkg/types/common"
)

// OwnerRepository is the persistence port for owners.
type OwnerRepository interface {
	// Save inserts the owner, silently keeping the existing row when the
	// wallet is already registered.
	Save(ctx context.Context, o *Owner) error

	// FindByWallet returns the owner for a wallet, or a not-found error.
	FindByWallet(ctx context.Context, wallet string) (*Owner, error)
}

// Repository is the persistence port for lands.
type Repository interface {
	Save(ctx context.Context, l *Land) error
	FindByID(ctx context.Context, id common.ID) (*Land, error)

	// ListByWallet returns the wallet's lands, newest first.
	ListByWallet(ctx context.Context, wallet string) ([]*Land, error)

	Update(ctx context.Context, l *Land) error
	Delete(ctx context.Context, id common.ID) error
}
