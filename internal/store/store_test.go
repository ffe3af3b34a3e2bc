package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/salescrm/order-service/internal/model"
)

// Both implementations must behave identically; run the suite against each.
func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Helper()
	t.Run("memory", func(t *testing.T) {
		s := NewMemory()
		defer func() { _ = s.Close() }()
		fn(t, s)
	})
	t.Run("sqlite", func(t *testing.T) {
		s, err := OpenSQLite(":memory:")
		require.NoError(t, err)
		defer func() { _ = s.Close() }()
		fn(t, s)
	})
}

func TestProductRoundTrip(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		p, err := s.CreateProduct(ctx, model.Product{Name: "Monitor", Price: 250, Stock: 10})
		require.NoError(t, err)
		require.NotEmpty(t, p.ID)
		require.False(t, p.CreatedAt.IsZero())

		got, err := s.GetProduct(ctx, p.ID)
		require.NoError(t, err)
		require.Equal(t, "Monitor", got.Name)
		require.EqualValues(t, 10, got.Stock)

		got.Price = 300
		upd, err := s.UpdateProduct(ctx, got)
		require.NoError(t, err)
		require.Equal(t, 300.0, upd.Price)

		require.NoError(t, s.SetProductStock(ctx, p.ID, 4))
		got, err = s.GetProduct(ctx, p.ID)
		require.NoError(t, err)
		require.EqualValues(t, 4, got.Stock)

		require.NoError(t, s.DeleteProduct(ctx, p.ID))
		_, err = s.GetProduct(ctx, p.ID)
		require.ErrorIs(t, err, model.ErrNotFound)
		require.ErrorIs(t, s.DeleteProduct(ctx, p.ID), model.ErrNotFound)
	})
}

func TestSearchProducts(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for _, name := range []string{"Gaming Laptop", "Office laptop", "Desk Chair"} {
			_, err := s.CreateProduct(ctx, model.Product{Name: name, Price: 1, Stock: 1})
			require.NoError(t, err)
		}
		got, err := s.SearchProducts(ctx, "laptop")
		require.NoError(t, err)
		require.Len(t, got, 2)
		got, err = s.SearchProducts(ctx, "printer")
		require.NoError(t, err)
		require.Empty(t, got)
	})
}

func TestClientOwnershipImmutable(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		c, err := s.CreateClient(ctx, model.Client{Name: "Acme", Email: "acme@example.com", SellerID: "s1"})
		require.NoError(t, err)

		c.Name = "Acme Corp"
		c.SellerID = "s2" // must be ignored
		upd, err := s.UpdateClient(ctx, c)
		require.NoError(t, err)
		require.Equal(t, "Acme Corp", upd.Name)
		require.Equal(t, "s1", upd.SellerID)
	})
}

func TestClientDuplicateEmail(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		_, err := s.CreateClient(ctx, model.Client{Name: "A", Email: "dup@example.com", SellerID: "s1"})
		require.NoError(t, err)
		_, err = s.CreateClient(ctx, model.Client{Name: "B", Email: "dup@example.com", SellerID: "s2"})
		require.ErrorIs(t, err, model.ErrDuplicateEmail)
	})
}

func TestSellerDuplicateEmail(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		_, err := s.CreateSeller(ctx, model.Seller{Name: "S", Email: "s@example.com"})
		require.NoError(t, err)
		_, err = s.CreateSeller(ctx, model.Seller{Name: "S2", Email: "s@example.com"})
		require.ErrorIs(t, err, model.ErrDuplicateEmail)
	})
}

func TestOrderRoundTrip(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		o, err := s.CreateOrder(ctx, model.Order{
			SellerID: "s1",
			ClientID: "c1",
			Items:    []model.LineItem{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 1}},
			Total:    120,
			Status:   model.StatusPending,
		})
		require.NoError(t, err)

		got, err := s.GetOrder(ctx, o.ID)
		require.NoError(t, err)
		require.Equal(t, o.Items, got.Items)
		require.Equal(t, model.StatusPending, got.Status)

		got.Status = model.StatusCompleted
		got.SellerID = "intruder" // immutable, must be ignored
		upd, err := s.UpdateOrder(ctx, got)
		require.NoError(t, err)
		require.Equal(t, model.StatusCompleted, upd.Status)
		require.Equal(t, "s1", upd.SellerID)

		bySeller, err := s.ListOrdersBySeller(ctx, "s1")
		require.NoError(t, err)
		require.Len(t, bySeller, 1)

		byStatus, err := s.ListOrdersBySellerAndStatus(ctx, "s1", model.StatusCompleted)
		require.NoError(t, err)
		require.Len(t, byStatus, 1)
		byStatus, err = s.ListOrdersBySellerAndStatus(ctx, "s1", model.StatusPending)
		require.NoError(t, err)
		require.Empty(t, byStatus)

		require.NoError(t, s.DeleteOrder(ctx, o.ID))
		require.ErrorIs(t, s.DeleteOrder(ctx, o.ID), model.ErrNotFound)
		_, err = s.GetOrder(ctx, o.ID)
		require.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestTopClientsByRevenue(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		sl, err := s.CreateSeller(ctx, model.Seller{Name: "S1", Email: "s1@example.com"})
		require.NoError(t, err)
		c1, err := s.CreateClient(ctx, model.Client{Name: "C1", Email: "c1@example.com", SellerID: sl.ID})
		require.NoError(t, err)
		c2, err := s.CreateClient(ctx, model.Client{Name: "C2", Email: "c2@example.com", SellerID: sl.ID})
		require.NoError(t, err)

		mkOrder := func(clientID string, total float64, status model.OrderStatus) {
			_, err := s.CreateOrder(ctx, model.Order{
				SellerID: sl.ID, ClientID: clientID,
				Items: []model.LineItem{{ProductID: "p", Quantity: 1}},
				Total: total, Status: status,
			})
			require.NoError(t, err)
		}
		mkOrder(c1.ID, 300, model.StatusCompleted)
		mkOrder(c1.ID, 500, model.StatusCompleted)
		mkOrder(c2.ID, 100, model.StatusCompleted)
		mkOrder(c2.ID, 9999, model.StatusPending) // must not count

		top, err := s.TopClientsByRevenue(ctx, 1)
		require.NoError(t, err)
		require.Len(t, top, 1)
		require.Equal(t, c1.ID, top[0].Client.ID)
		require.Equal(t, 800.0, top[0].Total)

		// Limit beyond distinct groups returns all groups, sorted.
		top, err = s.TopClientsByRevenue(ctx, 10)
		require.NoError(t, err)
		require.Len(t, top, 2)
		require.Equal(t, c1.ID, top[0].Client.ID)
		require.Equal(t, c2.ID, top[1].Client.ID)
	})
}

func TestTopSellersByRevenue(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		s1, err := s.CreateSeller(ctx, model.Seller{Name: "S1", Email: "s1@example.com"})
		require.NoError(t, err)
		s2, err := s.CreateSeller(ctx, model.Seller{Name: "S2", Email: "s2@example.com"})
		require.NoError(t, err)
		c, err := s.CreateClient(ctx, model.Client{Name: "C", Email: "c@example.com", SellerID: s1.ID})
		require.NoError(t, err)

		mkOrder := func(sellerID string, total float64, status model.OrderStatus) {
			_, err := s.CreateOrder(ctx, model.Order{
				SellerID: sellerID, ClientID: c.ID,
				Items: []model.LineItem{{ProductID: "p", Quantity: 1}},
				Total: total, Status: status,
			})
			require.NoError(t, err)
		}
		mkOrder(s1.ID, 50, model.StatusCompleted)
		mkOrder(s2.ID, 200, model.StatusCompleted)
		mkOrder(s1.ID, 75, model.StatusCancelled) // must not count

		top, err := s.TopSellersByRevenue(ctx, 3)
		require.NoError(t, err)
		require.Len(t, top, 2)
		require.Equal(t, s2.ID, top[0].Seller.ID)
		require.Equal(t, 200.0, top[0].Total)
		require.Equal(t, s1.ID, top[1].Seller.ID)
		require.Equal(t, 50.0, top[1].Total)
	})
}

func TestGetMissingIsNotFound(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for _, err := range []error{
			func() error { _, e := s.GetSeller(ctx, "nope"); return e }(),
			func() error { _, e := s.GetProduct(ctx, "nope"); return e }(),
			func() error { _, e := s.GetClient(ctx, "nope"); return e }(),
			func() error { _, e := s.GetOrder(ctx, "nope"); return e }(),
		} {
			if !errors.Is(err, model.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		}
	})
}
