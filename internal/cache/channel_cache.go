// Package cache provides the process-wide read-through cache for channel
// objects. One instance is constructed at startup and handed to every reader
// and writer; tests construct their own isolated instances.
package cache

import (
	"context"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/ryanalexander/backend/internal/models"
)

// DefaultCapacity bounds the cache to a fixed number of channel entries.
const DefaultCapacity = 4_000_000

// Source is the slice of the channel repository the cache fills from.
type Source interface {
	GetByID(ctx context.Context, id string) (*models.Channel, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Channel, error)
}

// ChannelCache is a bounded LRU cache-aside layer in front of the channels
// collection. A single mutex guards the table; it is held only for table
// operations and never across a store round-trip, so unrelated readers are
// not serialized behind network latency. Entries are cloned on the way in
// and out: callers never alias the cache's internal copy.
type ChannelCache struct {
	mu     sync.Mutex
	lru    *simplelru.LRU[string, *models.Channel]
	source Source
}

// New creates a ChannelCache over source. capacity <= 0 selects
// DefaultCapacity.
func New(capacity int, source Source) *ChannelCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	lru, err := simplelru.NewLRU[string, *models.Channel](capacity, nil)
	if err != nil {
		// simplelru only errors on a non-positive size.
		panic(err)
	}
	return &ChannelCache{lru: lru, source: source}
}

// GetOne returns the channel with the given id, filling the cache from the
// store on miss. A (nil, nil) return means the channel does not exist;
// not-found results are never memoized, so a later create of the same id is
// visible immediately. A store error leaves the cache untouched.
func (c *ChannelCache) GetOne(ctx context.Context, id string) (*models.Channel, error) {
	c.mu.Lock()
	if ch, ok := c.lru.Get(id); ok {
		dup := ch.Clone()
		c.mu.Unlock()
		return dup, nil
	}
	c.mu.Unlock()

	ch, err := c.source.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, nil
	}

	c.mu.Lock()
	c.lru.Add(id, ch.Clone())
	c.mu.Unlock()
	return ch, nil
}

// GetMany returns the channels that exist among ids, filling misses with a
// single store query. Hits come first in input-scan order, then misses in
// store-result order; output order is NOT the caller's input order. Callers
// needing a specific order must sort.
func (c *ChannelCache) GetMany(ctx context.Context, ids []string) ([]models.Channel, error) {
	channels := make([]models.Channel, 0, len(ids))
	var missing []string

	c.mu.Lock()
	for _, id := range ids {
		if ch, ok := c.lru.Get(id); ok {
			channels = append(channels, *ch.Clone())
		} else {
			missing = append(missing, id)
		}
	}
	c.mu.Unlock()

	if len(missing) == 0 {
		return channels, nil
	}

	fetched, err := c.source.GetByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	for i := range fetched {
		c.lru.Add(fetched[i].ID, fetched[i].Clone())
		channels = append(channels, fetched[i])
	}
	c.mu.Unlock()
	return channels, nil
}

// Put inserts or replaces a cache entry. Write cascades call this after
// creating a channel so the next read is a hit.
func (c *ChannelCache) Put(ch *models.Channel) {
	c.mu.Lock()
	c.lru.Add(ch.ID, ch.Clone())
	c.mu.Unlock()
}

// Invalidate drops an entry. Write cascades call this after a hard delete so
// the cache never serves a deleted channel indefinitely.
func (c *ChannelCache) Invalidate(id string) {
	c.mu.Lock()
	c.lru.Remove(id)
	c.mu.Unlock()
}

// AddRecipient patches a cached group channel's recipient list in place
// without bumping recency. A miss is a no-op; the next read refills.
func (c *ChannelCache) AddRecipient(id, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.lru.Peek(id)
	if !ok {
		return
	}
	for _, r := range ch.Recipients {
		if r == userID {
			return
		}
	}
	ch.Recipients = append(ch.Recipients, userID)
}

// RemoveRecipient is the inverse of AddRecipient.
func (c *ChannelCache) RemoveRecipient(id, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.lru.Peek(id)
	if !ok {
		return
	}
	for i, r := range ch.Recipients {
		if r == userID {
			ch.Recipients = append(ch.Recipients[:i], ch.Recipients[i+1:]...)
			return
		}
	}
}

// Len reports the number of cached entries.
func (c *ChannelCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
