// Package model defines the domain types shared across the service.
package model

import "time"

// OrderStatus tracks where an order sits in its fulfillment lifecycle.
// Stock reconciliation only cares about existence; status is read by the
// ranking reports and set by the fulfillment workflow through updates.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// ValidStatus reports whether s is one of the known order statuses.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Seller is an authenticated actor who owns clients and orders.
type Seller struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Product represents a sellable item with its available stock.
// Stock is mutated only by the stock ledger.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Stock     int64     `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
}

// Client is a customer registered by (and owned by) a single seller.
// SellerID is immutable after creation.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Company   string    `json:"company,omitempty"`
	Email     string    `json:"email"`
	SellerID  string    `json:"seller_id"`
	CreatedAt time.Time `json:"created_at"`
}

// LineItem is a (product, quantity) pair embedded in an order.
type LineItem struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// Order ties a seller, a client, and a set of line items together.
// SellerID is set at creation and never changes.
type Order struct {
	ID        string      `json:"id"`
	SellerID  string      `json:"seller_id"`
	ClientID  string      `json:"client_id"`
	Items     []LineItem  `json:"items"`
	Total     float64     `json:"total"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// ClientRevenue is one row of the top-clients report: a client joined
// with the summed total of its completed orders.
type ClientRevenue struct {
	Client Client  `json:"client"`
	Total  float64 `json:"total"`
}

// SellerRevenue is one row of the top-sellers report.
type SellerRevenue struct {
	Seller Seller  `json:"seller"`
	Total  float64 `json:"total"`
}
