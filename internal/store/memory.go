package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/salescrm/order-service/internal/model"
)

// Memory is a mutex-guarded in-memory Store. It backs unit tests and the
// "memory" driver. Returned slices and orders are copies; callers never
// share memory with the store.
type Memory struct {
	mu       sync.RWMutex
	sellers  map[string]model.Seller
	products map[string]model.Product
	clients  map[string]model.Client
	orders   map[string]model.Order
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		sellers:  make(map[string]model.Seller),
		products: make(map[string]model.Product),
		clients:  make(map[string]model.Client),
		orders:   make(map[string]model.Order),
	}
}

func fillID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func copyItems(items []model.LineItem) []model.LineItem {
	out := make([]model.LineItem, len(items))
	copy(out, items)
	return out
}

// Sellers.

func (m *Memory) CreateSeller(_ context.Context, s model.Seller) (model.Seller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ex := range m.sellers {
		if ex.Email == s.Email {
			return model.Seller{}, model.ErrDuplicateEmail
		}
	}
	s.ID = fillID(s.ID)
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	m.sellers[s.ID] = s
	return s, nil
}

func (m *Memory) GetSeller(_ context.Context, id string) (model.Seller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sellers[id]
	if !ok {
		return model.Seller{}, model.ErrNotFound
	}
	return s, nil
}

func (m *Memory) ListSellers(_ context.Context) ([]model.Seller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Seller, 0, len(m.sellers))
	for _, s := range m.sellers {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Products.

func (m *Memory) CreateProduct(_ context.Context, p model.Product) (model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = fillID(p.ID)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	m.products[p.ID] = p
	return p, nil
}

func (m *Memory) GetProduct(_ context.Context, id string) (model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return model.Product{}, model.ErrNotFound
	}
	return p, nil
}

func (m *Memory) ListProducts(_ context.Context) ([]model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) SearchProducts(_ context.Context, query string) ([]model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q := strings.ToLower(query)
	var out []model.Product
	for _, p := range m.products {
		if strings.Contains(strings.ToLower(p.Name), q) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) UpdateProduct(_ context.Context, p model.Product) (model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ex, ok := m.products[p.ID]
	if !ok {
		return model.Product{}, model.ErrNotFound
	}
	p.CreatedAt = ex.CreatedAt
	m.products[p.ID] = p
	return p, nil
}

func (m *Memory) DeleteProduct(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return model.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *Memory) SetProductStock(_ context.Context, id string, stock int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return model.ErrNotFound
	}
	p.Stock = stock
	m.products[id] = p
	return nil
}

// Clients.

func (m *Memory) CreateClient(_ context.Context, c model.Client) (model.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ex := range m.clients {
		if ex.Email == c.Email {
			return model.Client{}, model.ErrDuplicateEmail
		}
	}
	c.ID = fillID(c.ID)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	m.clients[c.ID] = c
	return c, nil
}

func (m *Memory) GetClient(_ context.Context, id string) (model.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.clients[id]
	if !ok {
		return model.Client{}, model.ErrNotFound
	}
	return c, nil
}

func (m *Memory) ListClients(_ context.Context) ([]model.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Client, 0, len(m.clients))
	for _, c := range m.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) ListClientsBySeller(_ context.Context, sellerID string) ([]model.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Client
	for _, c := range m.clients {
		if c.SellerID == sellerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) UpdateClient(_ context.Context, c model.Client) (model.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ex, ok := m.clients[c.ID]
	if !ok {
		return model.Client{}, model.ErrNotFound
	}
	// Ownership never transfers.
	c.SellerID = ex.SellerID
	c.CreatedAt = ex.CreatedAt
	m.clients[c.ID] = c
	return c, nil
}

func (m *Memory) DeleteClient(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[id]; !ok {
		return model.ErrNotFound
	}
	delete(m.clients, id)
	return nil
}

// Orders.

func (m *Memory) CreateOrder(_ context.Context, o model.Order) (model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = fillID(o.ID)
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	o.Items = copyItems(o.Items)
	m.orders[o.ID] = o
	o.Items = copyItems(o.Items)
	return o, nil
}

func (m *Memory) GetOrder(_ context.Context, id string) (model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return model.Order{}, model.ErrNotFound
	}
	o.Items = copyItems(o.Items)
	return o, nil
}

func (m *Memory) ListOrders(_ context.Context) ([]model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Order, 0, len(m.orders))
	for _, o := range m.orders {
		o.Items = copyItems(o.Items)
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) ListOrdersBySeller(_ context.Context, sellerID string) ([]model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Order
	for _, o := range m.orders {
		if o.SellerID == sellerID {
			o.Items = copyItems(o.Items)
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) ListOrdersBySellerAndStatus(_ context.Context, sellerID string, status model.OrderStatus) ([]model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Order
	for _, o := range m.orders {
		if o.SellerID == sellerID && o.Status == status {
			o.Items = copyItems(o.Items)
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) UpdateOrder(_ context.Context, o model.Order) (model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ex, ok := m.orders[o.ID]
	if !ok {
		return model.Order{}, model.ErrNotFound
	}
	// Seller and creation time are immutable.
	o.SellerID = ex.SellerID
	o.CreatedAt = ex.CreatedAt
	o.Items = copyItems(o.Items)
	m.orders[o.ID] = o
	o.Items = copyItems(o.Items)
	return o, nil
}

func (m *Memory) DeleteOrder(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return model.ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

// Aggregation.

func (m *Memory) TopClientsByRevenue(_ context.Context, limit int) ([]model.ClientRevenue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	totals := make(map[string]float64)
	for _, o := range m.orders {
		if o.Status == model.StatusCompleted {
			totals[o.ClientID] += o.Total
		}
	}
	out := make([]model.ClientRevenue, 0, len(totals))
	for clientID, total := range totals {
		c, ok := m.clients[clientID]
		if !ok {
			continue // dangling reference, skip like a join would
		}
		out = append(out, model.ClientRevenue{Client: c, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Client.ID < out[j].Client.ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) TopSellersByRevenue(_ context.Context, limit int) ([]model.SellerRevenue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	totals := make(map[string]float64)
	for _, o := range m.orders {
		if o.Status == model.StatusCompleted {
			totals[o.SellerID] += o.Total
		}
	}
	out := make([]model.SellerRevenue, 0, len(totals))
	for sellerID, total := range totals {
		s, ok := m.sellers[sellerID]
		if !ok {
			continue
		}
		out = append(out, model.SellerRevenue{Seller: s, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Seller.ID < out[j].Seller.ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }
