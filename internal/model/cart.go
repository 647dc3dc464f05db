package model

// CartLine is one product entry in the cart plus its quantity. Product fields
// are copied when the line is created and do not follow later catalogue edits.
type CartLine struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl"`
	Qty         int     `json:"qty"`
}

// Cart is the insertion-ordered list of cart lines.
type Cart []CartLine

// NewCartLine copies the product into a line with quantity 1.
func NewCartLine(p Product) CartLine {
	return CartLine{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Qty:         1,
	}
}

// Product returns the product fields captured by the line.
func (l CartLine) Product() Product {
	return Product{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		Price:       l.Price,
		ImageURL:    l.ImageURL,
	}
}
