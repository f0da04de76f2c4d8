package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/iyhunko/inventory-console/internal/analytics"
	"github.com/iyhunko/inventory-console/internal/model"
	"github.com/iyhunko/inventory-console/internal/service"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON  = "json"
	formatYAML  = "yaml"
	formatTable = "table"
)

type renderer struct {
	format string
	w      io.Writer
}

func newRenderer(format string, w io.Writer) (*renderer, error) {
	switch format {
	case formatJSON, formatYAML, formatTable:
		return &renderer{format: format, w: w}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want json, yaml or table)", format)
	}
}

func (r *renderer) Render(v any) error {
	switch r.format {
	case formatJSON:
		enc := json.NewEncoder(r.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(r.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return r.table(v)
	}
}

func (r *renderer) table(v any) error {
	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	switch v := v.(type) {
	case []model.Product:
		fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK")
		for _, p := range v {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Category, money(p.Price), p.Stock)
		}
	case []string:
		for _, s := range v {
			fmt.Fprintln(tw, s)
		}
	case analytics.Summary:
		fmt.Fprintf(tw, "Products\t%d\n", v.TotalCount)
		fmt.Fprintf(tw, "Units in stock\t%d\n", v.TotalStock)
		fmt.Fprintf(tw, "Average price\t%s\n", money(v.AveragePrice))
		fmt.Fprintf(tw, "Inventory value\t%s\n", money(v.TotalInventoryValue))
		if len(v.PerCategory) > 0 {
			fmt.Fprintln(tw, "\nCATEGORY\tCOUNT\tSHARE\tVALUE")
			for _, c := range v.PerCategory {
				fmt.Fprintf(tw, "%s\t%d\t%.1f%%\t%s\n", c.Category, c.Count, c.PercentageOfTotal, money(c.InventoryValue))
			}
		}
	case service.MutationInfo:
		fmt.Fprintf(tw, "%s\t%s\t%s\n", v.Kind, v.ProductID, v.Status)
	default:
		return fmt.Errorf("no table layout for %T", v)
	}
	return tw.Flush()
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
