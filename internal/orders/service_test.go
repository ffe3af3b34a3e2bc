package orders

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/salescrm/order-service/internal/ledger"
	"github.com/salescrm/order-service/internal/model"
	"github.com/salescrm/order-service/internal/store"
)

type recordingNotifier struct {
	mu      sync.Mutex
	created []string
	updated []string
	deleted []string
}

func (r *recordingNotifier) OrderCreated(o model.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, o.ID)
}

func (r *recordingNotifier) OrderUpdated(o model.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updated = append(r.updated, o.ID)
}

func (r *recordingNotifier) OrderDeleted(o model.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, o.ID)
}

type fixture struct {
	svc      *Service
	store    *store.Memory
	notifier *recordingNotifier
	seller   model.Seller
	other    model.Seller
	client   model.Client
	product  model.Product
}

func newFixture(t *testing.T, stock int64) *fixture {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemory()
	seller, err := st.CreateSeller(ctx, model.Seller{Name: "S1", Email: "s1@example.com"})
	require.NoError(t, err)
	other, err := st.CreateSeller(ctx, model.Seller{Name: "S2", Email: "s2@example.com"})
	require.NoError(t, err)
	client, err := st.CreateClient(ctx, model.Client{Name: "C1", Email: "c1@example.com", SellerID: seller.ID})
	require.NoError(t, err)
	product, err := st.CreateProduct(ctx, model.Product{Name: "P", Price: 50, Stock: stock})
	require.NoError(t, err)
	n := &recordingNotifier{}
	return &fixture{
		svc:      NewService(st, ledger.New(st), n),
		store:    st,
		notifier: n,
		seller:   seller,
		other:    other,
		client:   client,
		product:  product,
	}
}

func (f *fixture) stock(t *testing.T) int64 {
	t.Helper()
	p, err := f.store.GetProduct(context.Background(), f.product.ID)
	require.NoError(t, err)
	return p.Stock
}

func TestCreateDebitsStock(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, f.seller.ID, CreateInput{
		ClientID: f.client.ID,
		Items:    []model.LineItem{{ProductID: f.product.ID, Quantity: 4}},
	})
	require.NoError(t, err)
	require.Equal(t, f.seller.ID, order.SellerID)
	require.Equal(t, model.StatusPending, order.Status)
	require.Equal(t, 200.0, order.Total) // 4 × 50
	require.EqualValues(t, 6, f.stock(t))
	require.Equal(t, []string{order.ID}, f.notifier.created)
}

func TestCreateInsufficientStockLeavesStock(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.seller.ID, CreateInput{
		ClientID: f.client.ID,
		Items:    []model.LineItem{{ProductID: f.product.ID, Quantity: 20}},
	})
	var ise *model.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	require.EqualValues(t, 10, ise.Available)
	require.EqualValues(t, 10, ise.Shortfall())
	require.EqualValues(t, 10, f.stock(t))

	// No order record, no notification.
	list, err := f.svc.ListBySeller(ctx, f.seller.ID)
	require.NoError(t, err)
	require.Empty(t, list)
	require.Empty(t, f.notifier.created)
}

func TestCreateUnknownClient(t *testing.T) {
	f := newFixture(t, 10)
	_, err := f.svc.Create(context.Background(), f.seller.ID, CreateInput{
		ClientID: "missing",
		Items:    []model.LineItem{{ProductID: f.product.ID, Quantity: 1}},
	})
	require.ErrorIs(t, err, model.ErrNotFound)
	require.EqualValues(t, 10, f.stock(t))
}

func TestCreateForeignClientForbidden(t *testing.T) {
	f := newFixture(t, 10)
	_, err := f.svc.Create(context.Background(), f.other.ID, CreateInput{
		ClientID: f.client.ID,
		Items:    []model.LineItem{{ProductID: f.product.ID, Quantity: 1}},
	})
	require.ErrorIs(t, err, model.ErrForbidden)
	require.EqualValues(t, 10, f.stock(t))
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	var ve *model.ValidationError

	_, err := f.svc.Create(ctx, f.seller.ID, CreateInput{ClientID: f.client.ID})
	require.ErrorAs(t, err, &ve)

	_, err = f.svc.Create(ctx, f.seller.ID, CreateInput{
		ClientID: f.client.ID,
		Items:    []model.LineItem{{ProductID: f.product.ID, Quantity: 0}},
	})
	require.ErrorAs(t, err, &ve)
}

func TestUpdateRevalidatesAgainstRestoredStock(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, f.seller.ID, CreateInput{
		ClientID: f.client.ID,
		Items:    []model.LineItem{{ProductID: f.product.ID, Quantity: 4}},
	})
	require.NoError(t, err)
	require.EqualValues(t, 6, f.stock(t))

	// Raising 4 → 6 is judged against the restored 10.
	updated, err := f.svc.Update(ctx, order.ID, f.seller.ID, UpdateInput{
		Items: []model.LineItem{{ProductID: f.product.ID, Quantity: 6}},
	})
	require.NoError(t, err)
	require.EqualValues(t, 4, f.stock(t))
	require.Equal(t, 300.0, updated.Total)
	require.Equal(t, []string{order.ID}, f.notifier.updated)
}

func TestUpdateEquivalentToDeleteAndCreate(t *testing.T) {
	ctx := context.Background()

	// Path A: update in place.
	a := newFixture(t, 10)
	orderA, err := a.svc.Create(ctx, a.seller.ID, CreateInput{
		ClientID: a.client.ID,
		Items:    []model.LineItem{{ProductID: a.product.ID, Quantity: 4}},
	})
	require.NoError(t, err)
	_, err = a.svc.Update(ctx, orderA.ID, a.seller.ID, UpdateInput{
		Items: []model.LineItem{{ProductID: a.product.ID, Quantity: 7}},
	})
	require.NoError(t, err)

	// Path B: delete then recreate with the new items.
	b := newFixture(t, 10)
	orderB, err := b.svc.Create(ctx, b.seller.ID, CreateInput{
		ClientID: b.client.ID,
		Items:    []model.LineItem{{ProductID: b.product.ID, Quantity: 4}},
	})
	require.NoError(t, err)
	_, err = b.svc.Delete(ctx, orderB.ID, b.seller.ID)
	require.NoError(t, err)
	_, err = b.svc.Create(ctx, b.seller.ID, CreateInput{
		ClientID: b.client.ID,
		Items:    []model.LineItem{{ProductID: b.product.ID, Quantity: 7}},
	})
	require.NoError(t, err)

	require.Equal(t, a.stock(t), b.stock(t))
	require.EqualValues(t, 3, a.stock(t))
}

func TestUpdateStatusOnlyKeepsStock(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, f.seller.ID, CreateInput{
		ClientID: f.client.ID,
		Items:    []model.LineItem{{ProductID: f.product.ID, Quantity: 4}},
	})
	require.NoError(t, err)

	completed := model.StatusCompleted
	updated, err := f.svc.Update(ctx, order.ID, f.seller.ID, UpdateInput{Status: &completed})
	require.NoError(t, err)
	require.Equal(t, model.StatusCompleted, updated.Status)
	require.Equal(t, order.Items, updated.Items)
	require.EqualValues(t, 6, f.stock(t))
}

func TestUpdateForeignOrderForbidden(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, f.seller.ID, CreateInput{
		ClientID: f.client.ID,
		Items:    []model.LineItem{{ProductID: f.product.ID, Quantity: 4}},
	})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, order.ID, f.other.ID, UpdateInput{
		Items: []model.LineItem{{ProductID: f.product.ID, Quantity: 1}},
	})
	require.ErrorIs(t, err, model.ErrForbidden)
	require.EqualValues(t, 6, f.stock(t)) // untouched
}

func TestUpdateForeignClientForbidden(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	foreignClient, err := f.store.CreateClient(ctx, model.Client{
		Name: "C2", Email: "c2@example.com", SellerID: f.other.ID,
	})
	require.NoError(t, err)

	order, err := f.svc.Create(ctx, f.seller.ID, CreateInput{
		ClientID: f.client.ID,
		Items:    []model.LineItem{{ProductID: f.product.ID, Quantity: 4}},
	})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, order.ID, f.seller.ID, UpdateInput{ClientID: &foreignClient.ID})
	require.ErrorIs(t, err, model.ErrForbidden)
}

func TestDeleteRestoresStock(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, f.seller.ID, CreateInput{
		ClientID: f.client.ID,
		Items:    []model.LineItem{{ProductID: f.product.ID, Quantity: 4}},
	})
	require.NoError(t, err)
	require.EqualValues(t, 6, f.stock(t))

	conf, err := f.svc.Delete(ctx, order.ID, f.seller.ID)
	require.NoError(t, err)
	require.Equal(t, order.ID, conf.OrderID)
	require.Contains(t, conf.Message, order.ID)
	require.EqualValues(t, 10, f.stock(t)) // conservation
	require.Equal(t, []string{order.ID}, f.notifier.deleted)

	// Deleting again is NotFound, never a silent second success.
	_, err = f.svc.Delete(ctx, order.ID, f.seller.ID)
	require.ErrorIs(t, err, model.ErrNotFound)
	require.EqualValues(t, 10, f.stock(t))
}

func TestDeleteForeignOrderForbidden(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, f.seller.ID, CreateInput{
		ClientID: f.client.ID,
		Items:    []model.LineItem{{ProductID: f.product.ID, Quantity: 4}},
	})
	require.NoError(t, err)

	_, err = f.svc.Delete(ctx, order.ID, f.other.ID)
	require.ErrorIs(t, err, model.ErrForbidden)
	require.EqualValues(t, 6, f.stock(t))
}

func TestGetOwnershipIsolation(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, f.seller.ID, CreateInput{
		ClientID: f.client.ID,
		Items:    []model.LineItem{{ProductID: f.product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, order.ID, f.other.ID)
	require.ErrorIs(t, err, model.ErrForbidden)
	_, err = f.svc.Get(ctx, "missing", f.seller.ID)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestListByStatus(t *testing.T) {
	f := newFixture(t, 100)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, f.seller.ID, CreateInput{
		ClientID: f.client.ID,
		Items:    []model.LineItem{{ProductID: f.product.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	completed := model.StatusCompleted
	_, err = f.svc.Update(ctx, order.ID, f.seller.ID, UpdateInput{Status: &completed})
	require.NoError(t, err)

	got, err := f.svc.ListByStatus(ctx, f.seller.ID, model.StatusCompleted)
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = f.svc.ListByStatus(ctx, f.seller.ID, model.StatusPending)
	require.NoError(t, err)
	require.Empty(t, got)

	var ve *model.ValidationError
	_, err = f.svc.ListByStatus(ctx, f.seller.ID, "SHIPPED")
	require.ErrorAs(t, err, &ve)
}

func TestConcurrentCreatesNeverDriveStockNegative(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	const attempts = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Create(ctx, f.seller.ID, CreateInput{
				ClientID: f.client.ID,
				Items:    []model.LineItem{{ProductID: f.product.ID, Quantity: 3}},
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// 3 orders of 3 fit into 10; the fourth must have been rejected.
	require.Equal(t, 3, succeeded)
	require.EqualValues(t, 1, f.stock(t))
}
