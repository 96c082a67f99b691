package cache

import (
	"fmt"
	"strings"
)

// TypeListKey caches the full type listing; it is a singleton key.
const TypeListKey = "type_list"

// Category labels reported by Stats.
const (
	CategoryList       = "pokemon_list"
	CategoryDetail     = "pokemon_detail"
	CategoryTypeList   = "type_list"
	CategoryTypeDetail = "type_detail"
	CategoryOther      = "other"
)

// ListKey builds the cache key for a paginated Pokémon listing.
func ListKey(limit, offset int) string {
	return fmt.Sprintf("pokemon_list_%d_%d", limit, offset)
}

// DetailKey builds the cache key for a single Pokémon detail payload.
func DetailKey(name string) string {
	return "pokemon_detail_" + name
}

// TypeDetailKey builds the cache key for the normalized by-type listing.
func TypeDetailKey(name string) string {
	return "type_detail_" + name
}

// Category classifies a cache key into one of the reporting buckets.
func Category(key string) string {
	switch {
	case key == TypeListKey:
		return CategoryTypeList
	case strings.HasPrefix(key, "pokemon_list_"):
		return CategoryList
	case strings.HasPrefix(key, "pokemon_detail_"):
		return CategoryDetail
	case strings.HasPrefix(key, "type_detail_"):
		return CategoryTypeDetail
	default:
		return CategoryOther
	}
}
