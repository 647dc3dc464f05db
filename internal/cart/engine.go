// Package cart implements the cart engine and the persisted cart store.
//
// Engine functions are pure: they never modify the cart they are given and
// always return a new slice.
package cart

import (
	"math"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
)

// Add increments the line for id, or appends a new line with quantity 1 when
// the cart has none. The product is looked up in catalog; an id that is not
// in the current catalogue leaves the cart unchanged.
func Add(c model.Cart, catalog []model.Product, id string) model.Cart {
	product, ok := find(catalog, id)
	if !ok {
		return c
	}

	out := clone(c)
	for i := range out {
		if out[i].ID == id {
			out[i].Qty = addQty(out[i].Qty, 1)
			return out
		}
	}
	return append(out, model.NewCartLine(product))
}

// AdjustQty adds delta to the line for id and drops every line whose quantity
// is not positive afterwards. Unknown ids leave quantities unchanged.
func AdjustQty(c model.Cart, id string, delta int) model.Cart {
	out := make(model.Cart, 0, len(c))
	for _, line := range c {
		if line.ID == id {
			line.Qty = addQty(line.Qty, delta)
		}
		if line.Qty > 0 {
			out = append(out, line)
		}
	}
	return out
}

// addQty adds delta to qty, saturating at the int bounds.
func addQty(qty, delta int) int {
	switch {
	case delta > 0 && qty > math.MaxInt-delta:
		return math.MaxInt
	case delta < 0 && qty < math.MinInt-delta:
		return math.MinInt
	}
	return qty + delta
}

// Remove drops the line for id.
func Remove(c model.Cart, id string) model.Cart {
	out := make(model.Cart, 0, len(c))
	for _, line := range c {
		if line.ID != id {
			out = append(out, line)
		}
	}
	return out
}

// Clear returns an empty cart.
func Clear() model.Cart {
	return model.Cart{}
}

// Total is the sum of price × qty over all lines, rounded to cents. Missing,
// non-finite or negative prices and non-positive quantities count as 0.
func Total(c model.Cart) float64 {
	sum := decimal.Zero
	for _, line := range c {
		if line.Qty <= 0 || !validPrice(line.Price) {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(line.Price).Mul(decimal.NewFromInt(int64(line.Qty))))
	}
	return sum.Round(2).InexactFloat64()
}

// Count is the number of items in the cart, summed over line quantities.
func Count(c model.Cart) int {
	n := 0
	for _, line := range c {
		if line.Qty > 0 {
			n = addQty(n, line.Qty)
		}
	}
	return n
}

// Contains reports whether the cart has a line for id.
func Contains(c model.Cart, id string) bool {
	for _, line := range c {
		if line.ID == id {
			return true
		}
	}
	return false
}

func validPrice(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0) && p > 0
}

func find(catalog []model.Product, id string) (model.Product, bool) {
	for _, p := range catalog {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

func clone(c model.Cart) model.Cart {
	out := make(model.Cart, len(c), len(c)+1)
	copy(out, c)
	return out
}
