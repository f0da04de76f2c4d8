package model

import (
	"strings"
)

// PlaceholderImage is shown for products submitted without an image.
const PlaceholderImage = "https://i.pravatar.cc"

// DefaultCategory is used for products submitted without a category.
const DefaultCategory = "general"

// Product represents one catalog item as the console sees it.
type Product struct {
	ID          ID      `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Category    string  `json:"category" yaml:"category"`
	Price       float64 `json:"price" yaml:"price"`
	Stock       int     `json:"stock" yaml:"stock"`
	Description string  `json:"description" yaml:"description"`
	Image       string  `json:"image" yaml:"image"`
}

// InventoryValue is price times units in stock.
func (p Product) InventoryValue() float64 {
	return p.Price * float64(p.Stock)
}

// Draft carries the user-editable fields of a product. Stock is not editable.
type Draft struct {
	Name        string  `json:"name" validate:"required"`
	Category    string  `json:"category" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Description string  `json:"description" validate:"required"`
	Image       string  `json:"image" validate:"omitempty,url"`
}

// Payload converts the draft into the wire body, applying the boundary defaults:
// empty image becomes PlaceholderImage and empty category becomes DefaultCategory.
func (d Draft) Payload() ProductPayload {
	p := ProductPayload{
		Title:       strings.TrimSpace(d.Name),
		Price:       d.Price,
		Description: strings.TrimSpace(d.Description),
		Image:       strings.TrimSpace(d.Image),
		Category:    strings.TrimSpace(d.Category),
	}
	if p.Image == "" {
		p.Image = PlaceholderImage
	}
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	return p
}

// Apply overwrites the editable fields of p with the payload and keeps id and stock.
func (pl ProductPayload) Apply(p Product) Product {
	p.Name = pl.Title
	p.Price = pl.Price
	p.Description = pl.Description
	p.Image = pl.Image
	p.Category = pl.Category
	return p
}
