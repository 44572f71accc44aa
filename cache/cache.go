// Package cache memoizes search responses keyed by a request fingerprint.
// Entries live as framed, zstd-compressed blobs in a flat-file backend and
// expire by TTL; a stale entry is treated as absent and deleted on the next
// lookup rather than swept in the background. There is no size bound beyond
// the TTL, so growth is unbounded for a stream of distinct queries; an
// accepted limitation, not an oversight.
package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/klauspost/compress/zstd"
	tmrnasearch "github.com/wolfeidau/tmrna-search"
	"github.com/wolfeidau/tmrna-search/backend"
)

// DefaultTTL matches the original service's one-hour result cache.
const DefaultTTL = time.Hour

const entriesPrefix = "entries"

// Cache is a read-through/write-through result cache. Concurrent writers to
// the same key are safe: the backend's atomic writes give last-writer-wins.
type Cache struct {
	backend backend.Backend
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets the entry time-to-live.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithLogger sets the logger for the cache.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// WithNow sets the time source for testing.
func WithNow(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates a result cache over the given backend.
func New(b backend.Backend, opts ...Option) (*Cache, error) {
	c := &Cache{
		backend: b,
		ttl:     DefaultTTL,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	c.encoder = enc
	c.decoder = dec

	return c, nil
}

// Close releases the compression codecs.
func (c *Cache) Close() {
	c.encoder.Close()
	c.decoder.Close()
}

// Get returns the cached response body for a key, or (nil, false) on a miss.
// An entry older than the TTL counts as a miss and is deleted.
func (c *Cache) Get(ctx context.Context, key tmrnasearch.Hash) ([]byte, bool) {
	rc, err := c.backend.Read(ctx, c.entryKey(key))
	if err != nil {
		if !errors.Is(err, backend.ErrNotFound) {
			c.logger.Warn("cache read failed", "key", key.ShortString(), "error", err)
		}
		return nil, false
	}
	defer func() { _ = rc.Close() }()

	header, compressed, err := ReadFramed(rc)
	if err != nil {
		// Corrupt entry: drop it and treat as a miss.
		c.logger.Warn("dropping unreadable cache entry", "key", key.ShortString(), "error", err)
		_ = c.backend.Delete(ctx, c.entryKey(key))
		return nil, false
	}

	if age := c.now().Sub(header.CreatedAt); age > c.ttl {
		c.logger.Debug("cache entry expired",
			"key", key.ShortString(),
			"age", age,
			"ttl", c.ttl,
		)
		_ = c.backend.Delete(ctx, c.entryKey(key))
		return nil, false
	}

	body, err := c.decoder.DecodeAll(compressed, nil)
	if err != nil {
		c.logger.Warn("dropping undecodable cache entry", "key", key.ShortString(), "error", err)
		_ = c.backend.Delete(ctx, c.entryKey(key))
		return nil, false
	}

	return body, true
}

// Put stores a response body under the key. Callers only cache successful,
// well-formed responses; error responses never reach the cache.
func (c *Cache) Put(ctx context.Context, key tmrnasearch.Hash, op string, body []byte) error {
	header := &EntryHeader{
		Op:        op,
		CreatedAt: c.now(),
		BodySize:  int64(len(body)),
	}
	compressed := c.encoder.EncodeAll(body, nil)

	var buf bytes.Buffer
	if err := WriteFramed(&buf, header, compressed); err != nil {
		return fmt.Errorf("framing cache entry: %w", err)
	}

	if err := c.backend.Write(ctx, c.entryKey(key), &buf); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}

	c.logger.Debug("cached response",
		"key", key.ShortString(),
		"op", op,
		"size", len(body),
		"compressed", len(compressed),
	)
	return nil
}

// TTL returns the configured entry time-to-live.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

func (c *Cache) entryKey(key tmrnasearch.Hash) string {
	return fmt.Sprintf("%s/%s/%s", entriesPrefix, key.Dir(), key.String())
}
