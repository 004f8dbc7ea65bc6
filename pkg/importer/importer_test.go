package importer

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	input := strings.Join([]string{
		"name,description,price,stock,category",
		"Widget,,9.99,,",
		`Gadget,"shiny, new",1234567890.123456789,5,Tools`,
		"Broken,,abc,1,Tools",
		"Thing,,1.00,-x,",
	}, "\n")

	rows, failures, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "Widget", rows[0].Product.Name)
	assert.Nil(t, rows[0].Product.Description)
	assert.Nil(t, rows[0].Product.Stock)
	assert.Equal(t, "General", rows[0].Product.CategoryValue())

	assert.Equal(t, 3, rows[1].Line)
	require.NotNil(t, rows[1].Product.Description)
	assert.Equal(t, "shiny, new", *rows[1].Product.Description)
	assert.Equal(t, "1234567890.123456789", rows[1].Product.Price.String())
	assert.Equal(t, int64(5), rows[1].Product.StockValue())

	require.Len(t, failures, 2)
	assert.Equal(t, 4, failures[0].Line)
	assert.Contains(t, failures[0].Reason, "invalid price")
	assert.Equal(t, 5, failures[1].Line)
	assert.Contains(t, failures[1].Reason, "invalid stock")
}

func TestParseReorderedColumns(t *testing.T) {
	rows, failures, err := Parse(strings.NewReader("\ufeffPrice,Name\n2.50,Doohickey\n"))
	require.NoError(t, err)
	assert.Empty(t, failures)
	require.Len(t, rows, 1)
	assert.Equal(t, "Doohickey", rows[0].Product.Name)
	assert.Equal(t, "2.5", rows[0].Product.Price.String())
}

func TestParseRejectsBadInput(t *testing.T) {
	_, _, err := Parse(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmpty)

	_, _, err = Parse(strings.NewReader("name,price\n"))
	assert.ErrorIs(t, err, ErrEmpty)

	_, _, err = Parse(strings.NewReader("name,stock\nWidget,1\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)
}

type fakeGetter struct {
	body   string
	err    error
	bucket string
	key    string
}

func (f *fakeGetter) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.bucket = aws.ToString(in.Bucket)
	f.key = aws.ToString(in.Key)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestFetchObject(t *testing.T) {
	g := &fakeGetter{body: "name,price\nWidget,1\n"}
	body, err := FetchObject(context.Background(), g, "uploads", "incoming/new+products.csv")
	require.NoError(t, err)
	assert.Equal(t, "uploads", g.bucket)
	assert.Equal(t, "incoming/new products.csv", g.key)
	assert.Equal(t, "name,price\nWidget,1\n", string(body))

	g = &fakeGetter{err: errors.New("AccessDenied")}
	_, err = FetchObject(context.Background(), g, "uploads", "x.csv")
	assert.ErrorContains(t, err, "AccessDenied")

	g = &fakeGetter{body: strings.Repeat("a", MaxObjectSize+1)}
	_, err = FetchObject(context.Background(), g, "uploads", "big.csv")
	assert.ErrorContains(t, err, "exceeds")
}
