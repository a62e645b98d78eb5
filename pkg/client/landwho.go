package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Boundary is a polygon ring in [lat, lng] display order, the order map
// front ends use.
type Boundary [][2]float64

// Owner is a registered wallet.
type Owner struct {
	ID        string    `json:"id"`
	Wallet    string    `json:"wallet"`
	CreatedAt time.Time `json:"created_at"`
}

// Land is a registered polygon.
type Land struct {
	ID        string    `json:"id"`
	Wallet    string    `json:"wallet"`
	Name      string    `json:"name"`
	Boundary  Boundary  `json:"boundary"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RegisterLandRequest registers a polygon for a wallet.
type RegisterLandRequest struct {
	Wallet   string   `json:"wallet"`
	Name     string   `json:"name"`
	Boundary Boundary `json:"boundary"`
}

// UpdateLandRequest renames and/or redraws a land.  Empty name or nil
// boundary leaves that attribute unchanged.
type UpdateLandRequest struct {
	Name     string   `json:"name,omitempty"`
	Boundary Boundary `json:"boundary,omitempty"`
}

// Candidate is one grid cell of a partition preview.
type Candidate struct {
	Index          int      `json:"index"`
	Boundary       Boundary `json:"boundary"`
	AreaSqM        float64  `json:"area_sq_m"`
	Classification string   `json:"classification"`
	Fingerprint    string   `json:"fingerprint"`
	Minted         bool     `json:"minted"`
	Selectable     bool     `json:"selectable"`
}

// Grid is a partition preview.
type Grid struct {
	LandID         string      `json:"land_id"`
	CellSizeMeters float64     `json:"cell_size_meters"`
	MintedCount    int         `json:"minted_count"`
	Candidates     []Candidate `json:"candidates"`
}

// MintRequest asks the server to mint one parcel.
type MintRequest struct {
	LandID     string   `json:"land_id"`
	LandName   string   `json:"land_name"`
	Wallet     string   `json:"wallet"`
	Boundary   Boundary `json:"boundary"`
	Price      string   `json:"price"`
	RoyaltyBps int      `json:"royalty_bps"`
}

// Admission is the synchronous mint reply; the outcome arrives later as a
// notification.
type Admission struct {
	Fingerprint string `json:"fingerprint"`
	Status      string `json:"status"`
}

// MintedParcel is a persisted mint record.
type MintedParcel struct {
	ID          string    `json:"id"`
	LandID      string    `json:"land_id"`
	LandName    string    `json:"land_name"`
	Wallet      string    `json:"wallet"`
	Boundary    Boundary  `json:"boundary"`
	Fingerprint string    `json:"fingerprint"`
	Price       string    `json:"price"`
	RoyaltyBps  int       `json:"royalty_bps"`
	ContentKey  string    `json:"content_key"`
	TokenID     string    `json:"token_id"`
	TxHash      string    `json:"tx_hash"`
	BlockNumber uint64    `json:"block_number"`
	CreatedAt   time.Time `json:"created_at"`
}

// Notification is a mint outcome addressed to a wallet.
type Notification struct {
	ID        string          `json:"id"`
	Wallet    string          `json:"wallet"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	Seen      bool            `json:"seen"`
	CreatedAt time.Time       `json:"created_at"`
}

// RegisterOwner registers a wallet.  Registering twice is idempotent.
func (c *Client) RegisterOwner(ctx context.Context, wallet string) (*Owner, error) {
	var out Owner
	err := c.do(ctx, http.MethodPost, "/api/v1/owners",
		map[string]string{"wallet": wallet}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterLand registers a polygon for a previously registered wallet.
func (c *Client) RegisterLand(ctx context.Context, req RegisterLandRequest) (*Land, error) {
	var out Land
	if err := c.do(ctx, http.MethodPost, "/api/v1/lands", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListLands returns the wallet's lands, newest first.
func (c *Client) ListLands(ctx context.Context, wallet string) ([]Land, error) {
	var out []Land
	path := "/api/v1/lands?wallet=" + url.QueryEscape(wallet)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetLand returns one land by id.
func (c *Client) GetLand(ctx context.Context, landID string) (*Land, error) {
	var out Land
	path := "/api/v1/lands/" + url.PathEscape(landID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateLand renames and/or redraws a land.
func (c *Client) UpdateLand(ctx context.Context, landID string, req UpdateLandRequest) (*Land, error) {
	var out Land
	path := "/api/v1/lands/" + url.PathEscape(landID)
	if err := c.do(ctx, http.MethodPut, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteLand removes a land and its minted-parcel display state.
func (c *Client) DeleteLand(ctx context.Context, landID string) error {
	path := "/api/v1/lands/" + url.PathEscape(landID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// PartitionLand builds a partition preview.  cellSizeMeters <= 0 uses the
// server's configured default.
func (c *Client) PartitionLand(ctx context.Context, landID string, cellSizeMeters float64) (*Grid, error) {
	var in interface{}
	if cellSizeMeters > 0 {
		in = map[string]float64{"cell_size_meters": cellSizeMeters}
	}
	var out Grid
	path := fmt.Sprintf("/api/v1/lands/%s/grid", url.PathEscape(landID))
	if err := c.do(ctx, http.MethodPost, path, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MintParcel requests a parcel mint.  A conflict error means the parcel is
// already minted or a mint is pending.
func (c *Client) MintParcel(ctx context.Context, req MintRequest) (*Admission, error) {
	var out Admission
	if err := c.do(ctx, http.MethodPost, "/api/v1/parcels/mint", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListParcels returns the wallet's minted parcels, newest first.
func (c *Client) ListParcels(ctx context.Context, wallet string) ([]MintedParcel, error) {
	var out []MintedParcel
	path := "/api/v1/parcels?wallet=" + url.QueryEscape(wallet)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListNotifications returns the wallet's notifications, newest first.
func (c *Client) ListNotifications(ctx context.Context, wallet string, unseenOnly bool) ([]Notification, error) {
	var out []Notification
	path := "/api/v1/notifications?wallet=" + url.QueryEscape(wallet)
	if unseenOnly {
		path += "&unseen=true"
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkNotificationSeen acknowledges one notification.
func (c *Client) MarkNotificationSeen(ctx context.Context, notificationID string) error {
	path := fmt.Sprintf("/api/v1/notifications/%s/seen", url.PathEscape(notificationID))
	return c.do(ctx, http.MethodPost, path, nil, nil)
}
