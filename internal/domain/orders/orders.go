// Package orders coordinates the office breakfast run: a small product
// catalog and per-day orders with a settlement summary.
package orders

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("order not found")

type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

type Order struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName"`
	Price       float64   `json:"price"`
	Day         string    `json:"day"` // YYYY-MM-DD
	Quantity    int       `json:"quantity"`
	CreatedAt   time.Time `json:"createdAt"`
}

// DaySummary totals one day's orders for whoever does the bakery run.
type DaySummary struct {
	Day    string      `json:"day"`
	Orders []Order     `json:"orders"`
	Lines  []TotalLine `json:"lines"`
	Total  float64     `json:"total"`
}

type TotalLine struct {
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Amount      float64 `json:"amount"`
}
