// Package land holds the owner and land aggregates and their domain service.
// A land is an owner's registered polygon; parcels are carved out of it by
// the partitioner and minted individually.
package land

import (
	"regexp"
	"strings"

	apperrors "github.com/landwho/landwho/pkg/errors"
	"github.com/landwho/landwho/pkg/types/common"
	"github.com/landwho/landwho/pkg/types/geo"
)

// walletPattern matches a 0x-prefixed 20-byte hex address.
var walletPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// Owner is a registered wallet.  Registration is idempotent on the wallet
// address.
type Owner struct {
	common.BaseEntity
	Wallet string `json:"wallet"`
}

// NewOwner validates the wallet address and constructs an Owner.  The wallet
// is stored lowercased so lookups are case-insensitive.
func NewOwner(wallet string) (*Owner, error) {
	wallet = strings.TrimSpace(wallet)
	if !walletPattern.MatchString(wallet) {
		return nil, apperrors.Newf(apperrors.ErrCodeLandInvalidRequest,
			"invalid wallet address %q", wallet)
	}
	return &Owner{
		BaseEntity: common.NewBaseEntity(),
		Wallet:     strings.ToLower(wallet),
	}, nil
}

// Land is a registered polygon belonging to an owner wallet.  The boundary
// is stored closed, in [lng, lat] order.
type Land struct {
	common.BaseEntity
	Wallet   string   `json:"wallet"`
	Name     string   `json:"name"`
	Boundary geo.Ring `json:"boundary"`
}

// NewLand validates inputs and constructs a Land.  The boundary is stored
// as submitted; geometric operations close the ring themselves.
func NewLand(wallet, name string, boundary geo.Ring) (*Land, error) {
	wallet = strings.TrimSpace(wallet)
	if !walletPattern.MatchString(wallet) {
		return nil, apperrors.Newf(apperrors.ErrCodeLandInvalidRequest,
			"invalid wallet address %q", wallet)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.New(apperrors.ErrCodeLandInvalidRequest, "land name must not be empty")
	}
	if err := boundary.Validate(); err != nil {
		return nil, err
	}
	return &Land{
		BaseEntity: common.NewBaseEntity(),
		Wallet:     strings.ToLower(wallet),
		Name:       name,
		Boundary:   boundary,
	}, nil
}

// Rename updates the land's name after validation.
func (l *Land) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.New(apperrors.ErrCodeLandInvalidRequest, "land name must not be empty")
	}
	l.Name = name
	l.Touch()
	return nil
}

// Redraw replaces the land's boundary after validation.
func (l *Land) Redraw(boundary geo.Ring) error {
	if err := boundary.Validate(); err != nil {
		return err
	}
	l.Boundary = boundary
	l.Touch()
	return nil
}
