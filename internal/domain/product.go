package domain

// Product is a catalog entry as supplied by the store's catalog snapshot.
// Aliases is always the canonical list form; string forms are converted
// by the catalog loader before a Product is built.
type Product struct {
	ID        int64    `json:"id"`
	StoreID   string   `json:"store_id"`
	Name      string   `json:"name"`
	Aliases   []string `json:"aliases,omitempty"`
	Category  string   `json:"category,omitempty"`
	Unit      string   `json:"unit,omitempty"`
	SalePrice float64  `json:"sale_price"`
	Stock     int      `json:"stock"`
	IsActive  bool     `json:"is_active"`
}

// ProductOption is the compact product view shown to the user
type ProductOption struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
	Unit  string  `json:"unit,omitempty"`
}

// Option returns the compact view of the product
func (p Product) Option() ProductOption {
	return ProductOption{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.SalePrice,
		Stock: p.Stock,
		Unit:  p.Unit,
	}
}
