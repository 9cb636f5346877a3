package utils

import (
	"sort"

	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/client-go/tools/cache"
)

// NewIndexedStore: thread safe key/value store maintaining the given indexes
func NewIndexedStore(indexers cache.Indexers) cache.ThreadSafeStore {
	if indexers == nil {
		indexers = cache.Indexers{}
	}
	return cache.NewThreadSafeStore(indexers, cache.Indices{})
}

// ListByIndexValues: items matching any of values in the named index, each item at most once.
// Keys are visited in sorted order so the result does not depend on map iteration.
func ListByIndexValues(store cache.ThreadSafeStore, keyFunc func(obj interface{}) string, index string, values ...string) ([]interface{}, error) {
	seen := sets.NewString()
	result := []interface{}{}
	for _, value := range sets.NewString(values...).List() {
		items, err := store.ByIndex(index, value)
		if err != nil {
			return nil, err
		}
		sort.Slice(items, func(i, j int) bool { return keyFunc(items[i]) < keyFunc(items[j]) })
		for _, item := range items {
			key := keyFunc(item)
			if seen.Has(key) {
				continue
			}
			seen.Insert(key)
			result = append(result, item)
		}
	}
	return result, nil
}
