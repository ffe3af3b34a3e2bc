// Package orders implements the order lifecycle: create, update, and
// delete, each driving the stock ledger through its validate-then-commit
// transitions and enforcing seller ownership on every mutation.
package orders

import (
	"context"
	"fmt"

	"github.com/salescrm/order-service/internal/authz"
	"github.com/salescrm/order-service/internal/ledger"
	"github.com/salescrm/order-service/internal/model"
	"github.com/salescrm/order-service/internal/obs"
	"github.com/salescrm/order-service/internal/store"
)

// Notifier receives lifecycle notifications after a mutation has been
// committed. Implementations must not block the request path.
type Notifier interface {
	OrderCreated(o model.Order)
	OrderUpdated(o model.Order)
	OrderDeleted(o model.Order)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) OrderCreated(model.Order) {}
func (NopNotifier) OrderUpdated(model.Order) {}
func (NopNotifier) OrderDeleted(model.Order) {}

// Service is the order lifecycle manager.
type Service struct {
	store  store.Store
	ledger *ledger.Ledger
	notify Notifier
}

// NewService wires the lifecycle manager to its store, ledger, and
// notifier. Pass NopNotifier when lifecycle events are not needed.
func NewService(st store.Store, led *ledger.Ledger, n Notifier) *Service {
	if n == nil {
		n = NopNotifier{}
	}
	return &Service{store: st, ledger: led, notify: n}
}

// CreateInput carries the payload of a new order.
type CreateInput struct {
	ClientID string           `json:"client_id"`
	Items    []model.LineItem `json:"items"`
}

// UpdateInput carries an order revision. Nil fields are left unchanged;
// a nil Items slice means the line items (and therefore stock) are not
// touched.
type UpdateInput struct {
	ClientID *string            `json:"client_id,omitempty"`
	Items    []model.LineItem   `json:"items,omitempty"`
	Status   *model.OrderStatus `json:"status,omitempty"`
}

// Confirmation acknowledges a deleted order.
type Confirmation struct {
	OrderID string `json:"order_id"`
	Message string `json:"message"`
}

func validateItems(items []model.LineItem) error {
	if len(items) == 0 {
		return &model.ValidationError{Field: "items", Reason: "at least one line item is required"}
	}
	for _, it := range items {
		if it.ProductID == "" {
			return &model.ValidationError{Field: "items.product_id", Reason: "is required"}
		}
		if it.Quantity <= 0 {
			return &model.ValidationError{Field: "items.quantity", Reason: "must be positive"}
		}
	}
	return nil
}

// priceOut computes the order total from current unit prices, resolving
// every referenced product along the way.
func (s *Service) priceOut(ctx context.Context, items []model.LineItem) (float64, error) {
	total := 0.0
	for _, it := range items {
		p, err := s.store.GetProduct(ctx, it.ProductID)
		if err != nil {
			return 0, fmt.Errorf("product %s: %w", it.ProductID, err)
		}
		total += p.Price * float64(it.Quantity)
	}
	return total, nil
}

// Create places a new order for one of the caller's clients. Stock for
// every line item is validated and debited as one atomic reservation; no
// order record exists unless the reservation committed.
func (s *Service) Create(ctx context.Context, sellerID string, in CreateInput) (model.Order, error) {
	if in.ClientID == "" {
		return model.Order{}, &model.ValidationError{Field: "client_id", Reason: "is required"}
	}
	if err := validateItems(in.Items); err != nil {
		return model.Order{}, err
	}

	client, err := s.store.GetClient(ctx, in.ClientID)
	if err != nil {
		return model.Order{}, fmt.Errorf("client %s: %w", in.ClientID, err)
	}
	if err := authz.Authorize(client.SellerID, sellerID); err != nil {
		return model.Order{}, err
	}

	total, err := s.priceOut(ctx, in.Items)
	if err != nil {
		return model.Order{}, err
	}

	if err := s.ledger.Reserve(ctx, in.Items); err != nil {
		return model.Order{}, err
	}

	order, err := s.store.CreateOrder(ctx, model.Order{
		SellerID: sellerID,
		ClientID: in.ClientID,
		Items:    in.Items,
		Total:    total,
		Status:   model.StatusPending,
	})
	if err != nil {
		// The reservation committed but the record did not; hand the
		// stock back so nothing is held by a phantom order.
		if relErr := s.ledger.Release(ctx, in.Items); relErr != nil {
			obs.Logger.Error("orphaned_reservation", "error", relErr)
		}
		return model.Order{}, fmt.Errorf("persist order: %w", err)
	}

	obs.Logger.Info("order_created", "order_id", order.ID, "seller_id", sellerID, "total", order.Total)
	s.notify.OrderCreated(order)
	return order, nil
}

// Get returns one of the caller's orders.
func (s *Service) Get(ctx context.Context, orderID, sellerID string) (model.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return model.Order{}, fmt.Errorf("order %s: %w", orderID, err)
	}
	if err := authz.Authorize(order.SellerID, sellerID); err != nil {
		return model.Order{}, err
	}
	return order, nil
}

// ListBySeller returns all orders owned by the caller.
func (s *Service) ListBySeller(ctx context.Context, sellerID string) ([]model.Order, error) {
	return s.store.ListOrdersBySeller(ctx, sellerID)
}

// ListByStatus returns the caller's orders in the given status.
func (s *Service) ListByStatus(ctx context.Context, sellerID string, status model.OrderStatus) ([]model.Order, error) {
	if !model.ValidStatus(status) {
		return nil, &model.ValidationError{Field: "status", Reason: "unknown status"}
	}
	return s.store.ListOrdersBySellerAndStatus(ctx, sellerID, status)
}

// Update revises an order. Both the order and its (possibly new) client
// must belong to the caller. When line items change, the old reservation
// is restored and the new one validated against the restored levels and
// committed, all as one atomic stock transition.
func (s *Service) Update(ctx context.Context, orderID, sellerID string, in UpdateInput) (model.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return model.Order{}, fmt.Errorf("order %s: %w", orderID, err)
	}
	if err := authz.Authorize(order.SellerID, sellerID); err != nil {
		return model.Order{}, err
	}

	clientID := order.ClientID
	if in.ClientID != nil {
		clientID = *in.ClientID
	}
	client, err := s.store.GetClient(ctx, clientID)
	if err != nil {
		return model.Order{}, fmt.Errorf("client %s: %w", clientID, err)
	}
	if err := authz.Authorize(client.SellerID, sellerID); err != nil {
		return model.Order{}, err
	}

	if in.Status != nil {
		if !model.ValidStatus(*in.Status) {
			return model.Order{}, &model.ValidationError{Field: "status", Reason: "unknown status"}
		}
		order.Status = *in.Status
	}
	order.ClientID = clientID

	if in.Items != nil {
		if err := validateItems(in.Items); err != nil {
			return model.Order{}, err
		}
		total, err := s.priceOut(ctx, in.Items)
		if err != nil {
			return model.Order{}, err
		}
		if err := s.ledger.Rebalance(ctx, order.Items, in.Items); err != nil {
			return model.Order{}, err
		}
		prevItems := order.Items
		order.Items = in.Items
		order.Total = total

		updated, err := s.store.UpdateOrder(ctx, order)
		if err != nil {
			// Put the stock back the way the stored order still says it is.
			if rbErr := s.ledger.Rebalance(ctx, in.Items, prevItems); rbErr != nil {
				obs.Logger.Error("rebalance_rollback_failed", "order_id", orderID, "error", rbErr)
			}
			return model.Order{}, fmt.Errorf("persist order: %w", err)
		}
		obs.Logger.Info("order_updated", "order_id", updated.ID, "seller_id", sellerID, "total", updated.Total)
		s.notify.OrderUpdated(updated)
		return updated, nil
	}

	updated, err := s.store.UpdateOrder(ctx, order)
	if err != nil {
		return model.Order{}, fmt.Errorf("persist order: %w", err)
	}
	obs.Logger.Info("order_updated", "order_id", updated.ID, "seller_id", sellerID, "status", string(updated.Status))
	s.notify.OrderUpdated(updated)
	return updated, nil
}

// Delete removes an order and returns its reserved stock to the ledger.
func (s *Service) Delete(ctx context.Context, orderID, sellerID string) (Confirmation, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return Confirmation{}, fmt.Errorf("order %s: %w", orderID, err)
	}
	if err := authz.Authorize(order.SellerID, sellerID); err != nil {
		return Confirmation{}, err
	}

	if err := s.ledger.Release(ctx, order.Items); err != nil {
		return Confirmation{}, fmt.Errorf("release stock: %w", err)
	}
	if err := s.store.DeleteOrder(ctx, orderID); err != nil {
		// The credit landed but the record is still there (or was deleted
		// concurrently); take the credit back so stock stays consistent.
		if resErr := s.ledger.Reserve(ctx, order.Items); resErr != nil {
			obs.Logger.Error("release_rollback_failed", "order_id", orderID, "error", resErr)
		}
		return Confirmation{}, fmt.Errorf("delete order %s: %w", orderID, err)
	}

	obs.Logger.Info("order_deleted", "order_id", orderID, "seller_id", sellerID)
	s.notify.OrderDeleted(order)
	return Confirmation{
		OrderID: orderID,
		Message: fmt.Sprintf("order %s was deleted and its stock returned", orderID),
	}, nil
}
