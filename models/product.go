package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCategory is assigned to products created without a category.
const DefaultCategory = "General"

// TimestampLayout is the fixed ISO-8601 form created_at is rendered in.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Product represents a product in the database and cache
type Product struct {
	ID          int64
	Name        string
	Description *string // Pointer for nullable field
	Price       decimal.Decimal
	Stock       int64
	Category    string
	CreatedAt   string
}

// NewProduct is the validated payload for product creation.
// Optional fields are pointers so that "absent" and "zero" stay distinguishable.
type NewProduct struct {
	Name        string           `json:"name" validate:"required,max=255"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price" validate:"required,decimal_gte0"`
	Stock       *int64           `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Category    *string          `json:"category,omitempty" validate:"omitempty,max=100"`
}

// StockValue returns the requested initial stock, 0 when omitted.
func (n NewProduct) StockValue() int64 {
	if n.Stock == nil {
		return 0
	}
	return *n.Stock
}

// CategoryValue returns the requested category, DefaultCategory when omitted or empty.
func (n NewProduct) CategoryValue() string {
	if n.Category == nil || *n.Category == "" {
		return DefaultCategory
	}
	return *n.Category
}

// Stats summarises the catalog.
type Stats struct {
	TotalProducts   int64
	TotalStock      int64
	TotalCategories int64
}

// Origin tags where a read was served from.
type Origin string

const (
	OriginCache    Origin = "cache"
	OriginDatabase Origin = "database"
)

// FormatTimestamp renders t in TimestampLayout, UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
