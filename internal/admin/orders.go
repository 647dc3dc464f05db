package admin

import (
	"context"

	"storefront/internal/apiclient"
	"storefront/internal/model"

	"github.com/shopspring/decimal"
)

// PageSize is the number of orders per dashboard page.
const PageSize = 5

// OrdersPage is one page of the orders dashboard.
type OrdersPage struct {
	Orders      []model.OrderSummary `json:"orders"`
	Page        int                  `json:"page"`
	TotalPages  int                  `json:"totalPages"`
	TotalOrders int                  `json:"totalOrders"`
	Revenue     float64              `json:"revenue"`
}

// Orders fetches every submitted order. On failure the returned message is
// suitable for display.
func (m *Manager) Orders(ctx context.Context) ([]model.OrderSummary, string, error) {
	orders, err := m.api.ListOrders(ctx)
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to load orders")
		return nil, apiclient.Message(err, fallbackOrders), err
	}
	return orders, "", nil
}

// Revenue sums the order totals.
func Revenue(orders []model.OrderSummary) float64 {
	sum := decimal.Zero
	for _, o := range orders {
		sum = sum.Add(decimal.NewFromFloat(o.Total))
	}
	return sum.Round(2).InexactFloat64()
}

// TotalPages returns the page count for n orders, at least 1.
func TotalPages(n int) int {
	pages := (n + PageSize - 1) / PageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// Paginate returns page (1-based) of orders. Out-of-range pages are clamped.
func Paginate(orders []model.OrderSummary, page int) OrdersPage {
	total := TotalPages(len(orders))
	if page > total {
		page = total
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * PageSize
	end := min(start+PageSize, len(orders))

	out := make([]model.OrderSummary, 0, end-start)
	out = append(out, orders[start:end]...)

	return OrdersPage{
		Orders:      out,
		Page:        page,
		TotalPages:  total,
		TotalOrders: len(orders),
		Revenue:     Revenue(orders),
	}
}
