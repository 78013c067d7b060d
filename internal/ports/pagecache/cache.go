package pagecache

import (
	"context"
	"time"
)

// Page is a rendered response kept in the cache.
type Page struct {
	Status      int
	ContentType string
	Body        []byte
}

// PageCache stores rendered pages by key. Get returns nil, nil on a miss.
type PageCache interface {
	Get(ctx context.Context, key string) (*Page, error)
	Set(ctx context.Context, key string, page *Page, ttl time.Duration) error
	Clear(ctx context.Context) error
}
