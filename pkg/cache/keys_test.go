package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "products:all", CollectionKey())
	assert.Equal(t, "product:1", ProductKey(1))
	assert.Equal(t, "product:999999", ProductKey(999999))
	assert.NotEqual(t, ProductKey(12), ProductKey(1))
}
