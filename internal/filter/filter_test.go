package filter_test

import (
	"testing"

	"github.com/iyhunko/inventory-console/internal/catalog"
	"github.com/iyhunko/inventory-console/internal/filter"
	"github.com/iyhunko/inventory-console/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestApply(t *testing.T) {
	snapshot := catalog.NewSnapshot([]model.Product{
		{ID: "1", Name: "Office Chair", Category: "furniture"},
		{ID: "2", Name: "Pen", Category: "office"},
		{ID: "3", Name: "Desk", Category: "furniture"},
		{ID: "4", Name: "Rake", Category: "garden"},
	})

	tests := []struct {
		name     string
		criteria filter.Criteria
		want     []model.ID
	}{
		{name: "empty criteria keeps everything", criteria: filter.Criteria{}, want: []model.ID{"1", "2", "3", "4"}},
		{name: "query matches name or category", criteria: filter.Criteria{Query: "office"}, want: []model.ID{"1", "2"}},
		{name: "query is case-insensitive and trimmed", criteria: filter.Criteria{Query: "  DESK "}, want: []model.ID{"3"}},
		{name: "category is exact", criteria: filter.Criteria{Category: "furniture"}, want: []model.ID{"1", "3"}},
		{name: "category match is case-sensitive", criteria: filter.Criteria{Category: "Furniture"}, want: []model.ID{}},
		{name: "query and category combine", criteria: filter.Criteria{Query: "office", Category: "furniture"}, want: []model.ID{"1"}},
		{name: "blank query is no constraint", criteria: filter.Criteria{Query: "   ", Category: "garden"}, want: []model.ID{"4"}},
		{name: "no match", criteria: filter.Criteria{Query: "lamp"}, want: []model.ID{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filter.Apply(snapshot, tt.criteria)

			ids := []model.ID{}
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}
