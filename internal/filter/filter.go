// Package filter narrows a catalog snapshot by search text and category.
package filter

import (
	"strings"

	"github.com/iyhunko/inventory-console/internal/catalog"
	"github.com/iyhunko/inventory-console/internal/model"
)

// Criteria selects products. Empty fields impose no constraint.
type Criteria struct {
	Query    string `form:"q" json:"query,omitempty"`
	Category string `form:"category" json:"category,omitempty"`
}

// Apply returns, in catalog order, the products whose name or category contains the query
// (case-insensitive) and whose category equals Category exactly.
func Apply(snapshot catalog.Snapshot, criteria Criteria) []model.Product {
	query := strings.ToLower(strings.TrimSpace(criteria.Query))

	out := []model.Product{}
	for _, p := range snapshot.All {
		if criteria.Category != "" && p.Category != criteria.Category {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Category), query) {
			continue
		}
		out = append(out, p)
	}
	return out
}
