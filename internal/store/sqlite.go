package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/salescrm/order-service/internal/model"
)

// SQLite is the default Store, backed by a single sqlite database file
// (or ":memory:" in tests). Line items are stored as a JSON column on the
// order row, so an order is always one document.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens (creating if needed) the database at path and runs the
// schema migration. The connection pool is capped at one connection, which
// serializes writes the way sqlite wants them.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS sellers (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL UNIQUE,
		created_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS products (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		price      REAL NOT NULL,
		stock      INTEGER NOT NULL CHECK (stock >= 0),
		created_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS clients (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		company    TEXT NOT NULL DEFAULT '',
		email      TEXT NOT NULL UNIQUE,
		seller_id  TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS orders (
		id         TEXT PRIMARY KEY,
		seller_id  TEXT NOT NULL,
		client_id  TEXT NOT NULL,
		items      JSON NOT NULL,
		total      REAL NOT NULL,
		status     TEXT NOT NULL,
		created_at TEXT NOT NULL
	);`
	_, err := s.db.ExecContext(context.Background(), query)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func encodeTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func decodeTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Sellers.

func (s *SQLite) CreateSeller(ctx context.Context, sl model.Seller) (model.Seller, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM sellers WHERE email = ?`, sl.Email).Scan(&exists)
	if err != nil {
		return model.Seller{}, fmt.Errorf("check seller email: %w", err)
	}
	if exists > 0 {
		return model.Seller{}, model.ErrDuplicateEmail
	}
	if sl.ID == "" {
		sl.ID = uuid.NewString()
	}
	if sl.CreatedAt.IsZero() {
		sl.CreatedAt = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sellers (id, name, email, created_at) VALUES (?, ?, ?, ?)`,
		sl.ID, sl.Name, sl.Email, encodeTime(sl.CreatedAt))
	if err != nil {
		return model.Seller{}, fmt.Errorf("insert seller: %w", err)
	}
	return sl, nil
}

func (s *SQLite) GetSeller(ctx context.Context, id string) (model.Seller, error) {
	var sl model.Seller
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, created_at FROM sellers WHERE id = ?`, id).
		Scan(&sl.ID, &sl.Name, &sl.Email, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Seller{}, model.ErrNotFound
	}
	if err != nil {
		return model.Seller{}, fmt.Errorf("get seller: %w", err)
	}
	sl.CreatedAt = decodeTime(created)
	return sl, nil
}

func (s *SQLite) ListSellers(ctx context.Context) ([]model.Seller, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, created_at FROM sellers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list sellers: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []model.Seller
	for rows.Next() {
		var sl model.Seller
		var created string
		if err := rows.Scan(&sl.ID, &sl.Name, &sl.Email, &created); err != nil {
			return nil, err
		}
		sl.CreatedAt = decodeTime(created)
		out = append(out, sl)
	}
	return out, rows.Err()
}

// Products.

func (s *SQLite) CreateProduct(ctx context.Context, p model.Product) (model.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO products (id, name, price, stock, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Price, p.Stock, encodeTime(p.CreatedAt))
	if err != nil {
		return model.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

func (s *SQLite) scanProducts(rows *sql.Rows) ([]model.Product, error) {
	defer func() { _ = rows.Close() }()
	var out []model.Product
	for rows.Next() {
		var p model.Product
		var created string
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &created); err != nil {
			return nil, err
		}
		p.CreatedAt = decodeTime(created)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLite) GetProduct(ctx context.Context, id string) (model.Product, error) {
	var p model.Product
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, price, stock, created_at FROM products WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, model.ErrNotFound
	}
	if err != nil {
		return model.Product{}, fmt.Errorf("get product: %w", err)
	}
	p.CreatedAt = decodeTime(created)
	return p, nil
}

func (s *SQLite) ListProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, price, stock, created_at FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return s.scanProducts(rows)
}

func (s *SQLite) SearchProducts(ctx context.Context, query string) ([]model.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, price, stock, created_at FROM products
		 WHERE name LIKE '%' || ? || '%' COLLATE NOCASE ORDER BY id`, query)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return s.scanProducts(rows)
}

func (s *SQLite) UpdateProduct(ctx context.Context, p model.Product) (model.Product, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET name = ?, price = ?, stock = ? WHERE id = ?`,
		p.Name, p.Price, p.Stock, p.ID)
	if err != nil {
		return model.Product{}, fmt.Errorf("update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Product{}, model.ErrNotFound
	}
	return s.GetProduct(ctx, p.ID)
}

func (s *SQLite) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (s *SQLite) SetProductStock(ctx context.Context, id string, stock int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET stock = ? WHERE id = ?`, stock, id)
	if err != nil {
		return fmt.Errorf("set product stock: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Clients.

func (s *SQLite) CreateClient(ctx context.Context, c model.Client) (model.Client, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM clients WHERE email = ?`, c.Email).Scan(&exists)
	if err != nil {
		return model.Client{}, fmt.Errorf("check client email: %w", err)
	}
	if exists > 0 {
		return model.Client{}, model.ErrDuplicateEmail
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO clients (id, name, company, email, seller_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Company, c.Email, c.SellerID, encodeTime(c.CreatedAt))
	if err != nil {
		return model.Client{}, fmt.Errorf("insert client: %w", err)
	}
	return c, nil
}

func (s *SQLite) GetClient(ctx context.Context, id string) (model.Client, error) {
	var c model.Client
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, company, email, seller_id, created_at FROM clients WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Company, &c.Email, &c.SellerID, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Client{}, model.ErrNotFound
	}
	if err != nil {
		return model.Client{}, fmt.Errorf("get client: %w", err)
	}
	c.CreatedAt = decodeTime(created)
	return c, nil
}

func (s *SQLite) scanClients(rows *sql.Rows) ([]model.Client, error) {
	defer func() { _ = rows.Close() }()
	var out []model.Client
	for rows.Next() {
		var c model.Client
		var created string
		if err := rows.Scan(&c.ID, &c.Name, &c.Company, &c.Email, &c.SellerID, &created); err != nil {
			return nil, err
		}
		c.CreatedAt = decodeTime(created)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLite) ListClients(ctx context.Context) ([]model.Client, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, company, email, seller_id, created_at FROM clients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return s.scanClients(rows)
}

func (s *SQLite) ListClientsBySeller(ctx context.Context, sellerID string) ([]model.Client, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, company, email, seller_id, created_at FROM clients WHERE seller_id = ? ORDER BY id`,
		sellerID)
	if err != nil {
		return nil, fmt.Errorf("list clients by seller: %w", err)
	}
	return s.scanClients(rows)
}

func (s *SQLite) UpdateClient(ctx context.Context, c model.Client) (model.Client, error) {
	// seller_id deliberately not in the SET list: ownership never transfers.
	res, err := s.db.ExecContext(ctx,
		`UPDATE clients SET name = ?, company = ?, email = ? WHERE id = ?`,
		c.Name, c.Company, c.Email, c.ID)
	if err != nil {
		return model.Client{}, fmt.Errorf("update client: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Client{}, model.ErrNotFound
	}
	return s.GetClient(ctx, c.ID)
}

func (s *SQLite) DeleteClient(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Orders.

func (s *SQLite) CreateOrder(ctx context.Context, o model.Order) (model.Order, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	items, err := json.Marshal(o.Items)
	if err != nil {
		return model.Order{}, fmt.Errorf("encode line items: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO orders (id, seller_id, client_id, items, total, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.SellerID, o.ClientID, string(items), o.Total, string(o.Status), encodeTime(o.CreatedAt))
	if err != nil {
		return model.Order{}, fmt.Errorf("insert order: %w", err)
	}
	return o, nil
}

func scanOrder(scan func(...any) error) (model.Order, error) {
	var o model.Order
	var items, status, created string
	if err := scan(&o.ID, &o.SellerID, &o.ClientID, &items, &o.Total, &status, &created); err != nil {
		return model.Order{}, err
	}
	if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
		return model.Order{}, fmt.Errorf("decode line items: %w", err)
	}
	o.Status = model.OrderStatus(status)
	o.CreatedAt = decodeTime(created)
	return o, nil
}

func (s *SQLite) GetOrder(ctx context.Context, id string) (model.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, seller_id, client_id, items, total, status, created_at FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, model.ErrNotFound
	}
	if err != nil {
		return model.Order{}, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (s *SQLite) queryOrders(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []model.Order
	for rows.Next() {
		o, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *SQLite) ListOrders(ctx context.Context) ([]model.Order, error) {
	return s.queryOrders(ctx,
		`SELECT id, seller_id, client_id, items, total, status, created_at FROM orders ORDER BY id`)
}

func (s *SQLite) ListOrdersBySeller(ctx context.Context, sellerID string) ([]model.Order, error) {
	return s.queryOrders(ctx,
		`SELECT id, seller_id, client_id, items, total, status, created_at FROM orders WHERE seller_id = ? ORDER BY id`,
		sellerID)
}

func (s *SQLite) ListOrdersBySellerAndStatus(ctx context.Context, sellerID string, status model.OrderStatus) ([]model.Order, error) {
	return s.queryOrders(ctx,
		`SELECT id, seller_id, client_id, items, total, status, created_at FROM orders WHERE seller_id = ? AND status = ? ORDER BY id`,
		sellerID, string(status))
}

func (s *SQLite) UpdateOrder(ctx context.Context, o model.Order) (model.Order, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return model.Order{}, fmt.Errorf("encode line items: %w", err)
	}
	// seller_id and created_at stay as written at creation.
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET client_id = ?, items = ?, total = ?, status = ? WHERE id = ?`,
		o.ClientID, string(items), o.Total, string(o.Status), o.ID)
	if err != nil {
		return model.Order{}, fmt.Errorf("update order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Order{}, model.ErrNotFound
	}
	return s.GetOrder(ctx, o.ID)
}

func (s *SQLite) DeleteOrder(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Aggregation: filter completed, group+sum, join identity, sort, limit.
// The SQL mirrors the aggregation pipeline shape the ranking engine expects.

func (s *SQLite) TopClientsByRevenue(ctx context.Context, limit int) ([]model.ClientRevenue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.company, c.email, c.seller_id, c.created_at, SUM(o.total) AS revenue
		FROM orders o
		JOIN clients c ON c.id = o.client_id
		WHERE o.status = ?
		GROUP BY c.id
		ORDER BY revenue DESC, c.id ASC
		LIMIT ?`, string(model.StatusCompleted), limit)
	if err != nil {
		return nil, fmt.Errorf("top clients: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []model.ClientRevenue
	for rows.Next() {
		var r model.ClientRevenue
		var created string
		if err := rows.Scan(&r.Client.ID, &r.Client.Name, &r.Client.Company, &r.Client.Email,
			&r.Client.SellerID, &created, &r.Total); err != nil {
			return nil, err
		}
		r.Client.CreatedAt = decodeTime(created)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLite) TopSellersByRevenue(ctx context.Context, limit int) ([]model.SellerRevenue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sl.id, sl.name, sl.email, sl.created_at, SUM(o.total) AS revenue
		FROM orders o
		JOIN sellers sl ON sl.id = o.seller_id
		WHERE o.status = ?
		GROUP BY sl.id
		ORDER BY revenue DESC, sl.id ASC
		LIMIT ?`, string(model.StatusCompleted), limit)
	if err != nil {
		return nil, fmt.Errorf("top sellers: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []model.SellerRevenue
	for rows.Next() {
		var r model.SellerRevenue
		var created string
		if err := rows.Scan(&r.Seller.ID, &r.Seller.Name, &r.Seller.Email, &created, &r.Total); err != nil {
			return nil, err
		}
		r.Seller.CreatedAt = decodeTime(created)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error { return s.db.Close() }
