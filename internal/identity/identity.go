// Package identity implements the identity key policy used by zset.New
// when no caller-supplied KeyFunc is available: an object-identity
// cache for pointer-typed records (keyed on the pointer's runtime
// address) and a content-hash cache for value-typed records (keyed on
// xxhash of a canonical JSON encoding). Both are exposed so repeated
// lookups for the same record avoid rehashing it.
package identity

import (
	"encoding/json"
	"reflect"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/streamhouse/dbsp/internal/dbsperrors"
)

// KeyFunc derives a canonical, comparable key from a record. It must be
// pure and total: the same record always yields the same key.
type KeyFunc[T any] func(T) string

// Cache memoizes KeyFunc results. For pointer-typed T it keys the memo on
// the pointer's runtime address (object identity); for everything else it
// recomputes a content hash on every call, since there is no cheaper
// stable identity to memo against without hashing first.
type Cache[T any] struct {
	keyFn KeyFunc[T]
	isPtr bool
	mu    sync.RWMutex
	byPtr map[uintptr]string
}

// NewCache builds a Cache around keyFn. If keyFn is nil, content-hash
// canonicalization via canonicalJSONKey is used instead.
func NewCache[T any](keyFn KeyFunc[T]) *Cache[T] {
	var zero T
	isPtr := reflect.ValueOf(&zero).Elem().Kind() == reflect.Ptr
	if keyFn == nil {
		keyFn = canonicalJSONKey[T]
	}
	return &Cache[T]{
		keyFn: keyFn,
		isPtr: isPtr,
		byPtr: make(map[uintptr]string),
	}
}

// Key returns the canonical key for v, using the object-identity memo
// when T is a pointer type.
func (c *Cache[T]) Key(v T) string {
	if !c.isPtr {
		return c.keyFn(v)
	}

	addr := reflect.ValueOf(v).Pointer()

	c.mu.RLock()
	if k, ok := c.byPtr[addr]; ok {
		c.mu.RUnlock()
		return k
	}
	c.mu.RUnlock()

	k := c.keyFn(v)

	c.mu.Lock()
	c.byPtr[addr] = k
	c.mu.Unlock()

	return k
}

// Forget evicts the memoized key for v, used when a pointer-typed record
// is mutated in place and its identity key must be recomputed.
func (c *Cache[T]) Forget(v T) {
	if !c.isPtr {
		return
	}
	addr := reflect.ValueOf(v).Pointer()
	c.mu.Lock()
	delete(c.byPtr, addr)
	c.mu.Unlock()
}

// canonicalJSONKey hashes the canonical JSON encoding of v with xxhash,
// mirroring the JSON-stringify identity convention found throughout the
// retrieved corpus, but producing a fixed-width hash instead of handing
// the raw JSON string around as the key.
func canonicalJSONKey[T any](v T) string {
	buf, err := json.Marshal(v)
	if err != nil {
		// A value that cannot be marshaled has no canonical form; callers
		// that need a fallback key for such types must supply their own
		// KeyFunc instead of relying on content hashing.
		panic(dbsperrors.Wrap(err, "identity: cannot derive canonical key"))
	}
	h := xxhash.Sum64(buf)
	return formatHash(h)
}

const hexDigits = "0123456789abcdef"

func formatHash(h uint64) string {
	buf := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		buf[i] = hexDigits[h&0xf]
		h >>= 4
	}
	return string(buf)
}
