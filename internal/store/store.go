// Package store provides persistence for sellers, products, clients, and
// orders, plus the revenue aggregation backing the ranking reports.
//
// Two implementations exist: an in-memory store used by tests and the
// "memory" driver, and a sqlite-backed store used by default. Both offer
// single-record atomicity; multi-record stock consistency is the ledger's
// job, layered on top.
package store

import (
	"context"

	"github.com/salescrm/order-service/internal/model"
)

// Store bundles per-entity CRUD with the grouping/sorting aggregation the
// ranking engine consumes. Implementations return model.ErrNotFound for
// absent records and model.ErrDuplicateEmail for email collisions.
type Store interface {
	// Sellers.
	CreateSeller(ctx context.Context, s model.Seller) (model.Seller, error)
	GetSeller(ctx context.Context, id string) (model.Seller, error)
	ListSellers(ctx context.Context) ([]model.Seller, error)

	// Products.
	CreateProduct(ctx context.Context, p model.Product) (model.Product, error)
	GetProduct(ctx context.Context, id string) (model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	SearchProducts(ctx context.Context, query string) ([]model.Product, error)
	UpdateProduct(ctx context.Context, p model.Product) (model.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	// SetProductStock writes a product's stock level as a single atomic
	// document update. Only the stock ledger calls this, under its locks.
	SetProductStock(ctx context.Context, id string, stock int64) error

	// Clients.
	CreateClient(ctx context.Context, c model.Client) (model.Client, error)
	GetClient(ctx context.Context, id string) (model.Client, error)
	ListClients(ctx context.Context) ([]model.Client, error)
	ListClientsBySeller(ctx context.Context, sellerID string) ([]model.Client, error)
	UpdateClient(ctx context.Context, c model.Client) (model.Client, error)
	DeleteClient(ctx context.Context, id string) error

	// Orders.
	CreateOrder(ctx context.Context, o model.Order) (model.Order, error)
	GetOrder(ctx context.Context, id string) (model.Order, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
	ListOrdersBySeller(ctx context.Context, sellerID string) ([]model.Order, error)
	ListOrdersBySellerAndStatus(ctx context.Context, sellerID string, status model.OrderStatus) ([]model.Order, error)
	UpdateOrder(ctx context.Context, o model.Order) (model.Order, error)
	DeleteOrder(ctx context.Context, id string) error

	// Aggregation: completed orders only, grouped and summed, joined with
	// identity, sorted by total descending with ID ascending as tiebreak.
	TopClientsByRevenue(ctx context.Context, limit int) ([]model.ClientRevenue, error)
	TopSellersByRevenue(ctx context.Context, limit int) ([]model.SellerRevenue, error)

	Close() error
}
