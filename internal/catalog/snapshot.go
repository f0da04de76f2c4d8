package catalog

import (
	"slices"

	"github.com/iyhunko/inventory-console/internal/model"
)

// Snapshot is an immutable ordered view of the catalog.
type Snapshot struct {
	products []model.Product
}

// NewSnapshot builds a snapshot from a copy of products.
func NewSnapshot(products []model.Product) Snapshot {
	return Snapshot{products: slices.Clone(products)}
}

// Products returns a copy of the records in catalog order.
func (s Snapshot) Products() []model.Product {
	return slices.Clone(s.products)
}

// Len returns the number of records.
func (s Snapshot) Len() int {
	return len(s.products)
}

// At returns the record at position i.
func (s Snapshot) At(i int) model.Product {
	return s.products[i]
}

// Get returns the record with the given id.
func (s Snapshot) Get(id model.ID) (model.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

// All iterates the records in catalog order.
func (s Snapshot) All(yield func(int, model.Product) bool) {
	for i, p := range s.products {
		if !yield(i, p) {
			return
		}
	}
}

// Equal reports whether both snapshots hold the same records in the same order.
func (s Snapshot) Equal(other Snapshot) bool {
	return slices.Equal(s.products, other.products)
}
