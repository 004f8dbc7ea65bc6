package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.connectwisedev.com/catalog-service/models"
)

func sampleProduct() models.Product {
	desc := "a small widget"
	return models.Product{
		ID:          7,
		Name:        "Widget",
		Description: &desc,
		Price:       decimal.RequireFromString("1234567890.123456789"),
		Stock:       3,
		Category:    "Tools",
		CreatedAt:   "2024-05-06T07:08:09.010Z",
	}
}

func TestProductCodecPreservesFields(t *testing.T) {
	p := sampleProduct()
	blob, err := EncodeProduct(p)
	require.NoError(t, err)
	assert.Contains(t, string(blob), `"price":"1234567890.123456789"`)

	got, err := DecodeProduct(blob)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, *p.Description, *got.Description)
	assert.True(t, p.Price.Equal(got.Price))
	assert.Equal(t, p.Price.String(), got.Price.String())
	assert.Equal(t, p.CreatedAt, got.CreatedAt)
}

func TestProductCodecNullDescription(t *testing.T) {
	p := sampleProduct()
	p.Description = nil
	blob, err := EncodeProduct(p)
	require.NoError(t, err)
	assert.Contains(t, string(blob), `"description":null`)

	got, err := DecodeProduct(blob)
	require.NoError(t, err)
	assert.Nil(t, got.Description)
}

func TestCodecReencodeIsStable(t *testing.T) {
	plain := sampleProduct()
	noDesc := sampleProduct()
	noDesc.ID = 8
	noDesc.Description = nil
	noDesc.Price = decimal.RequireFromString("10.00")
	zero := sampleProduct()
	zero.ID = 9
	zero.Price = decimal.RequireFromString("0.000")
	zero.Category = ""

	for _, p := range []models.Product{plain, noDesc, zero} {
		first, err := EncodeProduct(p)
		require.NoError(t, err)
		decoded, err := DecodeProduct(first)
		require.NoError(t, err)
		second, err := EncodeProduct(decoded)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(second), "product %d", p.ID)
	}

	first, err := EncodeProducts([]models.Product{plain, noDesc, zero})
	require.NoError(t, err)
	decoded, err := DecodeProducts(first)
	require.NoError(t, err)
	second, err := EncodeProducts(decoded)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestProductsCodec(t *testing.T) {
	p := sampleProduct()
	q := sampleProduct()
	q.ID = 8

	blob, err := EncodeProducts([]models.Product{p, q})
	require.NoError(t, err)
	got, err := DecodeProducts(blob)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(8), got[1].ID)

	blob, err = EncodeProducts([]models.Product{})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(blob))
	got, err = DecodeProducts(blob)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"garbage":        "not json",
		"truncated":      `{"id":1,"name":"x"`,
		"unknown field":  `{"id":1,"name":"x","price":"1","stock":0,"category":"General","created_at":"","extra":true}`,
		"bad price":      `{"id":1,"name":"x","price":"abc","stock":0,"category":"General","created_at":""}`,
		"float price":    `{"id":1,"name":"x","price":9.99,"stock":0,"category":"General","created_at":""}`,
		"missing id":     `{"name":"x","price":"1","stock":0,"category":"General","created_at":""}`,
		"trailing value": `{"id":1,"name":"x","price":"1","stock":0,"category":"General","created_at":""} {}`,
		"list as object": `[{"id":1}]`,
	}
	for name, blob := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeProduct([]byte(blob))
			assert.Error(t, err)
		})
	}

	_, err := DecodeProducts([]byte("null"))
	assert.ErrorIs(t, err, errMalformed)
	_, err = DecodeProducts([]byte(`{"id":1}`))
	assert.Error(t, err)
}
