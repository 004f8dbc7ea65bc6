package cache

import "strconv"

const (
	collectionKey = "products:all"
	productPrefix = "product:"
)

// CollectionKey is the key of the cached full product list.
func CollectionKey() string { return collectionKey }

// ProductKey is the key of a single cached product.
func ProductKey(id int64) string {
	return productPrefix + strconv.FormatInt(id, 10)
}

// Category-filtered reads deliberately have no key: they always go to the store.
