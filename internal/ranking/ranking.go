// Package ranking produces the top-N clients and sellers by completed
// order revenue. It is a read-only consumer of the store's aggregation
// facility, independent of the order lifecycle.
package ranking

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/salescrm/order-service/internal/model"
)

// Aggregator is the slice of the store the engine consumes.
type Aggregator interface {
	TopClientsByRevenue(ctx context.Context, limit int) ([]model.ClientRevenue, error)
	TopSellersByRevenue(ctx context.Context, limit int) ([]model.SellerRevenue, error)
}

// Engine answers the two ranking reports. Identical concurrent queries
// are collapsed into a single store round trip.
type Engine struct {
	agg            Aggregator
	clientsDefault int
	sellersDefault int
	group          singleflight.Group
}

// New creates an Engine with the given default limits (used when a caller
// passes limit <= 0).
func New(agg Aggregator, clientsDefault, sellersDefault int) *Engine {
	if clientsDefault <= 0 {
		clientsDefault = 10
	}
	if sellersDefault <= 0 {
		sellersDefault = 3
	}
	return &Engine{agg: agg, clientsDefault: clientsDefault, sellersDefault: sellersDefault}
}

// TopClients returns up to limit clients ordered by the summed total of
// their completed orders, highest first.
func (e *Engine) TopClients(ctx context.Context, limit int) ([]model.ClientRevenue, error) {
	if limit <= 0 {
		limit = e.clientsDefault
	}
	v, err, _ := e.group.Do(fmt.Sprintf("clients:%d", limit), func() (any, error) {
		return e.agg.TopClientsByRevenue(ctx, limit)
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.ClientRevenue), nil
}

// TopSellers returns up to limit sellers ordered by the summed total of
// their completed orders, highest first.
func (e *Engine) TopSellers(ctx context.Context, limit int) ([]model.SellerRevenue, error) {
	if limit <= 0 {
		limit = e.sellersDefault
	}
	v, err, _ := e.group.Do(fmt.Sprintf("sellers:%d", limit), func() (any, error) {
		return e.agg.TopSellersByRevenue(ctx, limit)
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.SellerRevenue), nil
}
