package cache

import (
	"context" // Context for cache operations
	"strconv" // Key building
	"time"    // Time durations
)

// DefaultTTL is how long read-through responses stay cached
const DefaultTTL = 60 * time.Second

// Cache stores JSON-encoded values by key
type Cache interface {
	// Get unmarshals the value at key into dest and reports whether it was found
	Get(ctx context.Context, key string, dest any) (bool, error)
	// Set stores value at key with the given TTL
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// Delete removes the given keys
	Delete(ctx context.Context, keys ...string) error
	// DeletePrefix removes every key starting with prefix
	DeletePrefix(ctx context.Context, prefix string) error
}

// WalletKey is the cache key of a user's wallet
func WalletKey(userID uint) string {
	return "wallet:user:" + strconv.FormatUint(uint64(userID), 10)
}

// TxHistoryPrefix prefixes every cached history page of a user
func TxHistoryPrefix(userID uint) string {
	return "txhistory:user:" + strconv.FormatUint(uint64(userID), 10) + ":"
}

// TxHistoryKey is the cache key of one history page
func TxHistoryKey(userID uint, page, pageSize int) string {
	return TxHistoryPrefix(userID) + "page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize)
}

// ProductPrefix prefixes every cached storefront response
const ProductPrefix = "products:"

// ProductListPrefix prefixes cached storefront listings
const ProductListPrefix = ProductPrefix + "list:"

// ProductKey is the cache key of a single storefront product
func ProductKey(productID uint) string {
	return ProductPrefix + "item:" + strconv.FormatUint(uint64(productID), 10)
}

// AdminPrefix prefixes cached admin listings
const AdminPrefix = "admin:"
