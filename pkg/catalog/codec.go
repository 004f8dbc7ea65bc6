package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"gitlab.connectwisedev.com/catalog-service/models"
)

// cachedProduct is the cache wire form of a product. Price travels as a decimal
// string so no binary float ever sits between the store and the response.
type cachedProduct struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       string  `json:"price"`
	Stock       int64   `json:"stock"`
	Category    string  `json:"category"`
	CreatedAt   string  `json:"created_at"`
}

var errMalformed = errors.New("malformed cached product")

func toCached(p models.Product) cachedProduct {
	return cachedProduct{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.String(),
		Stock:       p.Stock,
		Category:    p.Category,
		CreatedAt:   p.CreatedAt,
	}
}

func fromCached(c cachedProduct) (models.Product, error) {
	if c.ID <= 0 || c.Name == "" {
		return models.Product{}, errMalformed
	}
	price, err := decimal.NewFromString(c.Price)
	if err != nil {
		return models.Product{}, fmt.Errorf("%w: price %q", errMalformed, c.Price)
	}
	return models.Product{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Price:       price,
		Stock:       c.Stock,
		Category:    c.Category,
		CreatedAt:   c.CreatedAt,
	}, nil
}

func strictUnmarshal(blob []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(blob))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errMalformed
	}
	return nil
}

// EncodeProduct renders p in the cache wire form.
func EncodeProduct(p models.Product) ([]byte, error) {
	return json.Marshal(toCached(p))
}

// DecodeProduct parses a blob written by EncodeProduct. Anything else is an error.
func DecodeProduct(blob []byte) (models.Product, error) {
	var c cachedProduct
	if err := strictUnmarshal(blob, &c); err != nil {
		return models.Product{}, err
	}
	return fromCached(c)
}

// EncodeProducts renders a product list in the cache wire form.
func EncodeProducts(ps []models.Product) ([]byte, error) {
	out := make([]cachedProduct, len(ps))
	for i, p := range ps {
		out[i] = toCached(p)
	}
	return json.Marshal(out)
}

// DecodeProducts parses a blob written by EncodeProducts.
func DecodeProducts(blob []byte) ([]models.Product, error) {
	var cs []cachedProduct
	if err := strictUnmarshal(blob, &cs); err != nil {
		return nil, err
	}
	if cs == nil {
		return nil, errMalformed
	}
	out := make([]models.Product, len(cs))
	for i, c := range cs {
		p, err := fromCached(c)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}
