package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) CreateProduct(ctx context.Context, name string, price float64) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO products (name, price, active)
    VALUES ($1,$2,true)
    RETURNING id
  `, name, price).Scan(&id)
	return id, err
}

func (s *Store) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, price, active, created_at
    FROM products
    WHERE active
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Active, &p.CreatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Store) GetProduct(ctx context.Context, id string) (Product, error) {
	var p Product
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, price, active, created_at
    FROM products
    WHERE id = $1
  `, id).Scan(&p.ID, &p.Name, &p.Price, &p.Active, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

// Price is copied onto the order at creation so later catalog edits do not
// change what was already ordered.
func (s *Store) CreateOrder(ctx context.Context, o Order) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO breakfast_orders (email, product_id, product_name, price, day, quantity)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, o.Email, o.ProductID, o.ProductName, o.Price, o.Day, o.Quantity).Scan(&id)
	return id, err
}

func (s *Store) ListOrdersForDay(ctx context.Context, day string) ([]Order, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, email, product_id, product_name, price, day, quantity, created_at
    FROM breakfast_orders
    WHERE day = $1
    ORDER BY created_at
  `, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.Email, &o.ProductID, &o.ProductName, &o.Price, &o.Day, &o.Quantity, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (s *Store) DeleteOrder(ctx context.Context, id, email string) error {
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM breakfast_orders WHERE id = $1 AND email = $2
  `, id, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
