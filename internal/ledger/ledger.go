// Package ledger owns per-product available stock. Debit and credit are
// atomic per product, and the multi-item operations backing order
// create/update/delete run as all-or-nothing transactions: stocks are
// staged in memory under a sorted per-product lock set and written only
// once every precondition holds. No interleaving between validation and
// commit is possible, which closes the check-then-debit race two
// concurrent orders on the same product would otherwise hit.
package ledger

import (
	"context"
	"fmt"

	"github.com/salescrm/order-service/internal/model"
	"github.com/salescrm/order-service/internal/obs"
)

// ProductStore is the slice of the data store the ledger needs: single
// document reads and writes of product records.
type ProductStore interface {
	GetProduct(ctx context.Context, id string) (model.Product, error)
	SetProductStock(ctx context.Context, id string, stock int64) error
}

// Ledger applies stock debits and credits against a product store.
type Ledger struct {
	products ProductStore
	locks    *lockTable
}

// New creates a Ledger over the given product store.
func New(products ProductStore) *Ledger {
	return &Ledger{products: products, locks: newLockTable()}
}

// Peek returns the current stock of a product without mutating it.
func (l *Ledger) Peek(ctx context.Context, productID string) (int64, error) {
	p, err := l.products.GetProduct(ctx, productID)
	if err != nil {
		return 0, err
	}
	return p.Stock, nil
}

// Debit atomically decreases a product's stock and returns the new level.
func (l *Ledger) Debit(ctx context.Context, productID string, qty int64) (int64, error) {
	if err := l.apply(ctx, nil, []model.LineItem{{ProductID: productID, Quantity: qty}}); err != nil {
		return 0, err
	}
	return l.Peek(ctx, productID)
}

// Credit atomically increases a product's stock and returns the new level.
// There is no upper bound on stock.
func (l *Ledger) Credit(ctx context.Context, productID string, qty int64) (int64, error) {
	if err := l.apply(ctx, []model.LineItem{{ProductID: productID, Quantity: qty}}, nil); err != nil {
		return 0, err
	}
	return l.Peek(ctx, productID)
}

// Reserve debits stock for every line item of a new order. Either every
// item is debited or none is.
func (l *Ledger) Reserve(ctx context.Context, items []model.LineItem) error {
	return l.apply(ctx, nil, items)
}

// Release credits back the stock held by an order's line items, as a
// single transaction.
func (l *Ledger) Release(ctx context.Context, items []model.LineItem) error {
	return l.apply(ctx, items, nil)
}

// Rebalance moves an order from its old line items to new ones: the old
// reservation is restored, the new one validated against the restored
// levels and committed. The whole sequence is atomic; if the new items
// cannot be covered, stock is left exactly as it was.
func (l *Ledger) Rebalance(ctx context.Context, prev, next []model.LineItem) error {
	return l.apply(ctx, prev, next)
}

// apply credits first, then debits, against a staged view of the involved
// products, and persists the final levels only if every debit is covered.
// Callers hold no locks; apply owns the sorted lock set for the whole
// read-check-write cycle.
func (l *Ledger) apply(ctx context.Context, credits, debits []model.LineItem) error {
	for _, it := range credits {
		if it.Quantity <= 0 {
			return &model.ValidationError{Field: "quantity", Reason: "must be positive"}
		}
	}
	for _, it := range debits {
		if it.Quantity <= 0 {
			return &model.ValidationError{Field: "quantity", Reason: "must be positive"}
		}
	}

	ids := make([]string, 0, len(credits)+len(debits))
	for _, it := range credits {
		ids = append(ids, it.ProductID)
	}
	for _, it := range debits {
		ids = append(ids, it.ProductID)
	}
	if len(ids) == 0 {
		return nil
	}

	release := l.locks.acquire(ids)
	defer release()

	// Load each involved product once.
	staged := make(map[string]model.Product, len(ids))
	for _, id := range ids {
		if _, ok := staged[id]; ok {
			continue
		}
		p, err := l.products.GetProduct(ctx, id)
		if err != nil {
			return fmt.Errorf("load product %s: %w", id, err)
		}
		staged[id] = p
	}

	for _, it := range credits {
		p := staged[it.ProductID]
		p.Stock += it.Quantity
		staged[it.ProductID] = p
	}
	for _, it := range debits {
		p := staged[it.ProductID]
		if it.Quantity > p.Stock {
			return &model.InsufficientStockError{
				ProductID: p.ID,
				Name:      p.Name,
				Requested: it.Quantity,
				Available: p.Stock,
			}
		}
		p.Stock -= it.Quantity
		staged[it.ProductID] = p
	}

	// All preconditions hold; persist. A store failure here is an
	// infrastructure fault, not a business rejection; earlier writes of
	// this batch may have landed, so it is logged loudly.
	for id, p := range staged {
		if err := l.products.SetProductStock(ctx, id, p.Stock); err != nil {
			obs.Logger.Error("stock_write_failed", "product_id", id, "error", err)
			return fmt.Errorf("write stock for product %s: %w", id, err)
		}
	}
	return nil
}
