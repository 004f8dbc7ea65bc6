package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ProductCSV represents a product as read from a CSV file
type ProductCSV struct {
	Name        string `csv:"name"`
	Description string `csv:"description"`
	Price       string `csv:"price"`
	Stock       string `csv:"stock"`
	Category    string `csv:"category"`
}

// ToNewProduct converts the raw CSV columns into a create payload.
// Empty optional columns are left nil so defaults apply downstream.
func (c ProductCSV) ToNewProduct() (NewProduct, error) {
	np := NewProduct{Name: strings.TrimSpace(c.Name)}

	if desc := strings.TrimSpace(c.Description); desc != "" {
		np.Description = &desc
	}

	if raw := strings.TrimSpace(c.Price); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return NewProduct{}, fmt.Errorf("invalid price %q: %w", raw, err)
		}
		np.Price = &price
	}

	if raw := strings.TrimSpace(c.Stock); raw != "" {
		stock, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return NewProduct{}, fmt.Errorf("invalid stock %q: %w", raw, err)
		}
		np.Stock = &stock
	}

	if cat := strings.TrimSpace(c.Category); cat != "" {
		np.Category = &cat
	}

	return np, nil
}
