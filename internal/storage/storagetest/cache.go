package storagetest

import (
	"errors"
	"sync/atomic"

	"github.com/julianstephens/bloomlet/internal/storage"
)

// ErrMediumUnavailable is returned by Cache while it is failing.
var ErrMediumUnavailable = errors.New("local storage unavailable")

// Cache is an in-memory storage.Cache whose reads and writes can be made to
// fail, simulating a broken storage medium.
type Cache struct {
	*storage.MemoryCache
	failing atomic.Bool
}

func NewCache() *Cache {
	return &Cache{MemoryCache: storage.NewMemoryCache()}
}

func (c *Cache) SetFailing(failing bool) {
	c.failing.Store(failing)
}

func (c *Cache) Get(key string) ([]byte, error) {
	if c.failing.Load() {
		return nil, ErrMediumUnavailable
	}
	return c.MemoryCache.Get(key)
}

func (c *Cache) Put(key string, value []byte) error {
	if c.failing.Load() {
		return ErrMediumUnavailable
	}
	return c.MemoryCache.Put(key, value)
}

var _ storage.Cache = (*Cache)(nil)
