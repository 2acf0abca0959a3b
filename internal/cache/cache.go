// Package cache stores serialized dashboard state: saved selection
// snapshots, memoised cascade results and downloaded data tables.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// ErrNotFound is returned by Delete when the key does not exist
var ErrNotFound = errors.New("cache: key not found")

// keyPrefix namespaces every key written by sentidash
const keyPrefix = "sentidash:v1:"

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// SessionKey is the key a saved selection is stored under
func SessionKey(id string) string {
	return keyPrefix + "session:" + id
}

// OptionsKey is the key for memoised dimension options. The upstream
// selection is passed already serialized so the key stays stable.
func OptionsKey(dimension string, upstream []byte) string {
	hash := sha256.Sum256(upstream)
	return keyPrefix + "options:" + dimension + ":" + hex.EncodeToString(hash[:8])
}

// FetchKey is the key a downloaded data table is stored under
func FetchKey(rawURL string) string {
	hash := sha256.Sum256([]byte(rawURL))
	return keyPrefix + "fetch:" + hex.EncodeToString(hash[:])
}
