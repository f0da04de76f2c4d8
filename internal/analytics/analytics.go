// Package analytics derives inventory figures from a catalog snapshot.
package analytics

import (
	"github.com/iyhunko/inventory-console/internal/catalog"
)

// Summary holds the aggregate figures of one snapshot.
type Summary struct {
	TotalCount          int            `json:"total_count" yaml:"total_count"`
	TotalStock          int            `json:"total_stock" yaml:"total_stock"`
	AveragePrice        float64        `json:"average_price" yaml:"average_price"`
	TotalInventoryValue float64        `json:"total_inventory_value" yaml:"total_inventory_value"`
	PerCategory         []CategoryStat `json:"per_category" yaml:"per_category"`
}

// CategoryStat holds the figures of one category.
type CategoryStat struct {
	Category          string  `json:"category" yaml:"category"`
	Count             int     `json:"count" yaml:"count"`
	PercentageOfTotal float64 `json:"percentage_of_total" yaml:"percentage_of_total"`
	InventoryValue    float64 `json:"inventory_value" yaml:"inventory_value"`
}

// Summarize computes the figures for snapshot. Categories appear in order of first occurrence.
// An empty snapshot yields zeros and no categories.
func Summarize(snapshot catalog.Snapshot) Summary {
	summary := Summary{PerCategory: []CategoryStat{}}
	index := make(map[string]int)
	var priceSum float64

	for _, p := range snapshot.All {
		value := p.InventoryValue()
		summary.TotalCount++
		summary.TotalStock += p.Stock
		summary.TotalInventoryValue += value
		priceSum += p.Price

		i, ok := index[p.Category]
		if !ok {
			i = len(summary.PerCategory)
			index[p.Category] = i
			summary.PerCategory = append(summary.PerCategory, CategoryStat{Category: p.Category})
		}
		summary.PerCategory[i].Count++
		summary.PerCategory[i].InventoryValue += value
	}

	if summary.TotalCount == 0 {
		return summary
	}
	summary.AveragePrice = priceSum / float64(summary.TotalCount)
	for i := range summary.PerCategory {
		stat := &summary.PerCategory[i]
		stat.PercentageOfTotal = float64(stat.Count) / float64(summary.TotalCount) * 100
	}
	return summary
}

// Categories lists the distinct categories of snapshot in order of first occurrence.
func Categories(snapshot catalog.Snapshot) []string {
	seen := make(map[string]struct{})
	categories := []string{}
	for _, p := range snapshot.All {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	return categories
}
