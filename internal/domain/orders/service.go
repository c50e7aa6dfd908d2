package orders

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) Place(ctx context.Context, email, productID, day string, quantity int) (Order, error) {
	if quantity <= 0 {
		quantity = 1
	}
	if _, err := time.Parse("2006-01-02", day); err != nil {
		return Order{}, fmt.Errorf("invalid day %q", day)
	}
	product, err := s.Store.GetProduct(ctx, productID)
	if err != nil {
		return Order{}, err
	}
	o := Order{
		Email:       email,
		ProductID:   product.ID,
		ProductName: product.Name,
		Price:       product.Price,
		Day:         day,
		Quantity:    quantity,
	}
	o.ID, err = s.Store.CreateOrder(ctx, o)
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

// Summarize totals a day's orders per product. Money sums go through
// decimal so the settlement figure matches what people actually pay.
func (s *Service) Summarize(ctx context.Context, day string) (DaySummary, error) {
	dayOrders, err := s.Store.ListOrdersForDay(ctx, day)
	if err != nil {
		return DaySummary{}, err
	}

	summary := DaySummary{Day: day, Orders: dayOrders}
	perProduct := make(map[string]*TotalLine)
	total := decimal.Zero
	for _, o := range dayOrders {
		amount := decimal.NewFromFloat(o.Price).Mul(decimal.NewFromInt(int64(o.Quantity)))
		total = total.Add(amount)

		line, ok := perProduct[o.ProductName]
		if !ok {
			line = &TotalLine{ProductName: o.ProductName}
			perProduct[o.ProductName] = line
		}
		line.Quantity += o.Quantity
		lineAmount, _ := decimal.NewFromFloat(line.Amount).Add(amount).Round(2).Float64()
		line.Amount = lineAmount
	}

	for _, line := range perProduct {
		summary.Lines = append(summary.Lines, *line)
	}
	sort.Slice(summary.Lines, func(i, j int) bool {
		return summary.Lines[i].ProductName < summary.Lines[j].ProductName
	})
	summary.Total, _ = total.Round(2).Float64()
	return summary, nil
}
