package cache

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	gocache "github.com/patrickmn/go-cache"
)

// Entry is one stored response
type Entry struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Vary        string `json:"vary,omitempty"`
	Body        []byte `json:"body"`
}

// Store keeps entries until their TTL runs out
type Store interface {
	Get(ctx context.Context, key string) (*Entry, bool, error)
	Set(ctx context.Context, key string, e *Entry) error
	Flush(ctx context.Context) error
}

type memoryStore struct {
	c *gocache.Cache
}

// NewMemoryStore keeps entries in process for ttl
func NewMemoryStore(ttl time.Duration) Store {
	return &memoryStore{c: gocache.New(ttl, 2*ttl)}
}

func (s *memoryStore) Get(_ context.Context, key string) (*Entry, bool, error) {
	v, found := s.c.Get(key)
	if !found {
		return nil, false, nil
	}
	return v.(*Entry), true, nil
}

func (s *memoryStore) Set(_ context.Context, key string, e *Entry) error {
	s.c.Set(key, e, gocache.DefaultExpiration)
	return nil
}

func (s *memoryStore) Flush(context.Context) error {
	s.c.Flush()
	return nil
}

// ResponseCache stores rendered GET responses. Entries are keyed by URL and
// by every request header a response varies on, so a fragment and a full
// page for the same URL never share an entry.
type ResponseCache struct {
	store Store
	vary  []string
}

// New creates an in-process cache whose entries live for ttl. vary lists
// the request headers that select between representations.
func New(ttl time.Duration, vary ...string) *ResponseCache {
	return NewWithStore(NewMemoryStore(ttl), vary...)
}

// NewWithStore creates a cache over store
func NewWithStore(store Store, vary ...string) *ResponseCache {
	return &ResponseCache{store: store, vary: vary}
}

// Key derives the cache key of the current request
func (rc *ResponseCache) Key(c *fiber.Ctx) string {
	var b strings.Builder
	b.WriteString(c.Method())
	b.WriteString(" ")
	b.WriteString(c.OriginalURL())
	for _, h := range rc.vary {
		b.WriteString("|")
		b.WriteString(h)
		b.WriteString("=")
		b.WriteString(c.Get(h))
	}
	return b.String()
}

// Middleware serves cached responses and stores successful GET responses.
// A failing store degrades to uncached responses.
func (rc *ResponseCache) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodGet {
			return c.Next()
		}

		ctx := c.UserContext()
		key := rc.Key(c)
		if e, found, err := rc.store.Get(ctx, key); err == nil && found {
			c.Set("X-Cache", "HIT")
			c.Set(fiber.HeaderContentType, e.ContentType)
			if e.Vary != "" {
				c.Set(fiber.HeaderVary, e.Vary)
			}
			return c.Status(e.Status).Send(e.Body)
		}

		if err := c.Next(); err != nil {
			return err
		}

		if c.Response().StatusCode() == fiber.StatusOK {
			_ = rc.store.Set(ctx, key, &Entry{
				Status:      fiber.StatusOK,
				ContentType: string(c.Response().Header.ContentType()),
				Vary:        string(c.Response().Header.Peek(fiber.HeaderVary)),
				Body:        append([]byte(nil), c.Response().Body()...),
			})
		}
		c.Set("X-Cache", "MISS")
		return nil
	}
}

// Flush drops every cached response
func (rc *ResponseCache) Flush(ctx context.Context) error {
	return rc.store.Flush(ctx)
}
