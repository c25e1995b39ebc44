package model

import "time"

// Product is a sellable catalog item.  CategoryID and BrandID reference
// existing records; Image follows the same relative-path convention as
// Category.Image and may be shared with other products or categories.
type Product struct {
	ID          string    `json:"_id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Price       float64   `json:"price" bson:"price"`
	OldPrice    float64   `json:"oldprice" bson:"oldprice"`
	Count       int       `json:"count" bson:"count"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Material    string    `json:"material" bson:"material"`
	CategoryID  string    `json:"category" bson:"category"`
	BrandID     string    `json:"brand" bson:"brand"`
	Image       string    `json:"image,omitempty" bson:"image,omitempty"`
	UpdatedAt   time.Time `json:"updateDate" bson:"updateDate"`
}

// ProductView is a product with its category and brand populated, used by
// the read endpoints.
type ProductView struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	OldPrice    float64   `json:"oldprice"`
	Count       int       `json:"count"`
	Description string    `json:"description,omitempty"`
	Material    string    `json:"material"`
	Category    *Category `json:"category"`
	Brand       *Brand    `json:"brand"`
	Image       string    `json:"image,omitempty"`
	UpdatedAt   time.Time `json:"updateDate"`
}

// View builds a ProductView from p and the referenced records.  Nil
// category or brand is allowed when the reference was removed.
func (p *Product) View(c *Category, b *Brand) ProductView {
	return ProductView{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		OldPrice:    p.OldPrice,
		Count:       p.Count,
		Description: p.Description,
		Material:    p.Material,
		Category:    c,
		Brand:       b,
		Image:       p.Image,
		UpdatedAt:   p.UpdatedAt,
	}
}
