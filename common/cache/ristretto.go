package cache

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/ristretto/v2"
)

type Cache struct {
	rc  *ristretto.Cache[string, any]
	ttl time.Duration
}

type Options struct {
	NumCounters int64
	MaxCost     int64
	TTL         time.Duration
}

func New(opts Options) (*Cache, error) {
	rc, err := ristretto.NewCache(&ristretto.Config[string, any]{
		NumCounters: opts.NumCounters,
		MaxCost:     opts.MaxCost,
		BufferItems: 64,
		OnReject: func(item *ristretto.Item[any]) {
			log.Warnf("Cache item rejected: key=%d, value=%v", item.Key, item.Value)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ristretto cache: %w", err)
	}
	return &Cache{rc: rc, ttl: opts.TTL}, nil
}

func (c *Cache) Set(key string, value any) error {
	if !c.rc.SetWithTTL(key, value, 1, c.ttl) {
		return fmt.Errorf("failed to set value in cache")
	}
	c.rc.Wait()
	return nil
}

func (c *Cache) Del(key string) {
	c.rc.Del(key)
	c.rc.Wait()
}

func (c *Cache) Close() {
	c.rc.Close()
}

func Get[T any](c *Cache, key string) (T, bool) {
	var zero T
	v, ok := c.rc.Get(key)
	if !ok {
		return zero, false
	}
	vT, ok := v.(T)
	if !ok {
		return zero, false
	}
	return vT, true
}

var def *Cache

// Init builds the process-wide cache. It panics when called twice.
func Init(opts Options) {
	if def != nil {
		panic("cache already initialized")
	}
	c, err := New(opts)
	if err != nil {
		log.Fatal(err)
	}
	def = c
}

func Default() *Cache {
	return def
}
