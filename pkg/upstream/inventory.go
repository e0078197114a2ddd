package upstream

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// Good is the inventory service's view of a catalog item.
type Good struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Count       int             `json:"count"`
}

// InventoryClient calls the inventory service.
type InventoryClient struct {
	t *transport
}

// NewInventoryClient builds a client rooted at the inventory API base, e.g.
// http://inventory:8000/api/v1.
func NewInventoryClient(baseURL string, opts ...Option) (*InventoryClient, error) {
	t, err := newTransport(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &InventoryClient{t: t}, nil
}

// GetGood reads a good by id.
func (c *InventoryClient) GetGood(ctx context.Context, goodID int64) (*Good, error) {
	resp, err := c.t.do(ctx, request{
		method: http.MethodGet,
		path:   fmt.Sprintf("/inventory/%d", goodID),
		read:   true,
	})
	if err != nil {
		return nil, err
	}

	switch resp.status {
	case http.StatusOK:
		var good Good
		if err := resp.decode(&good); err != nil {
			return nil, err
		}
		return &good, nil
	case http.StatusNotFound:
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("good with id '%d' not found", goodID))
	default:
		return nil, resp.unexpected("fetch good")
	}
}

// DeductStock removes exactly one unit of the good.
func (c *InventoryClient) DeductStock(ctx context.Context, goodID int64) (*Good, error) {
	resp, err := c.t.do(ctx, request{
		method: http.MethodPut,
		path:   fmt.Sprintf("/inventory/deduct/%d", goodID),
	})
	if err != nil {
		return nil, err
	}

	switch resp.status {
	case http.StatusOK:
		var good Good
		if err := resp.decode(&good); err != nil {
			return nil, err
		}
		return &good, nil
	case http.StatusNotFound:
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("good with id '%d' not found", goodID))
	case http.StatusBadRequest:
		if code := resp.errorCode(); code != "" && code != pkgerrors.CodeOutOfStock {
			return nil, resp.unexpected("deduct stock")
		}
		return nil, pkgerrors.New(pkgerrors.CodeOutOfStock, fmt.Sprintf("good with id '%d' is out of stock", goodID))
	default:
		return nil, resp.unexpected("deduct stock")
	}
}
