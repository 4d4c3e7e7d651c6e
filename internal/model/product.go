package model

// Product is the catalog view the order workflow needs: identity, the fields
// copied into an order snapshot and the current stock level.
type Product struct {
	ID       string   `json:"id" db:"id"`
	Name     string   `json:"name" db:"name"`
	Image    []string `json:"image" db:"image"`
	Category string   `json:"category" db:"category"`
	Stock    int      `json:"stock" db:"stock"`
}

// Snapshot captures the denormalised product details stored on an order line.
func (p Product) Snapshot() ProductDetails {
	image := make([]string, len(p.Image))
	copy(image, p.Image)
	return ProductDetails{
		Name:     p.Name,
		Image:    image,
		Category: p.Category,
	}
}
