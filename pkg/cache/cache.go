package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/watchdock/agent/internal/models"
)

const (
	// StatusTTL is how long a last-known status entry stays around without
	// a fresh write.
	StatusTTL = 24 * time.Hour

	// HeartbeatTTL is how long a heartbeat is remembered; heartbeat
	// monitors compare against this before declaring a target gone.
	HeartbeatTTL = 45 * 24 * time.Hour
)

// StatusEntry is the cached last-known state of one monitor.
type StatusEntry struct {
	Status    models.Status
	Latency   float64
	Timestamp int64
}

// StatusFetcher computes a status entry on cache miss, usually from the
// persisted data points.
type StatusFetcher func(tag string) (*StatusEntry, error)

// StatusCache is a read-through TTL cache over monitor state. It is never
// authoritative; everything in it can be rebuilt from the data points.
type StatusCache struct {
	store *gocache.Cache
}

func NewStatusCache() *StatusCache {
	return &StatusCache{
		store: gocache.New(StatusTTL, 10*time.Minute),
	}
}

func (c *StatusCache) SetStatus(tag string, entry *StatusEntry) {
	c.store.Set(statusKey(tag), entry, StatusTTL)
}

// Status returns the cached entry, or runs the fetcher, stores its result
// and returns it. A nil fetcher turns a miss into a nil entry.
func (c *StatusCache) Status(tag string, fetcher StatusFetcher) (*StatusEntry, error) {
	if v, ok := c.store.Get(statusKey(tag)); ok {
		return v.(*StatusEntry), nil
	}

	if fetcher == nil {
		return nil, nil
	}

	entry, err := fetcher(tag)

	if err != nil {
		return nil, err
	}

	if entry != nil {
		c.store.Set(statusKey(tag), entry, StatusTTL)
	}

	return entry, nil
}

func (c *StatusCache) SetHeartbeat(tag string, ts int64) {
	c.store.Set(heartbeatKey(tag), ts, HeartbeatTTL)
}

// LastHeartbeat returns the most recent heartbeat timestamp and whether one
// is known at all.
func (c *StatusCache) LastHeartbeat(tag string) (int64, bool) {
	if v, ok := c.store.Get(heartbeatKey(tag)); ok {
		return v.(int64), true
	}

	return 0, false
}

func statusKey(tag string) string {
	return "status:" + tag
}

func heartbeatKey(tag string) string {
	return "heartbeat:" + tag
}
