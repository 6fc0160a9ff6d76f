// internal/store/cache.go
package store

import (
	"context"
	"encoding/json"
	"time"

	"nexoprec/internal/common/logger"
	"nexoprec/internal/models"

	"github.com/redis/go-redis/v9"
)

// EventCache sits in front of EventStore for the public form endpoint.
// Only published events are cached; mutations invalidate the entry.
type EventCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewEventCache(client *redis.Client, ttl time.Duration, log logger.Logger) *EventCache {
	return &EventCache{
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "event-cache"}),
	}
}

func cacheKey(eventID string) string {
	return "event:" + eventID
}

// Get returns the cached event, or nil on a miss. Cache errors are
// treated as misses.
func (c *EventCache) Get(ctx context.Context, eventID string) *models.Event {
	if c == nil || c.client == nil {
		return nil
	}
	val, err := c.client.Get(ctx, cacheKey(eventID)).Result()
	if err != nil {
		return nil
	}
	var event models.Event
	if err := json.Unmarshal([]byte(val), &event); err != nil {
		return nil
	}
	return &event
}

// Set caches a published event. Other statuses are ignored.
func (c *EventCache) Set(ctx context.Context, event *models.Event) {
	if c == nil || c.client == nil || event.Status != models.EventStatusPublished {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(event.ID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("event cache write failed", map[string]interface{}{
			"eventId": event.ID,
			"error":   err.Error(),
		})
	}
}

// Invalidate drops the cached copy after a mutation.
func (c *EventCache) Invalidate(ctx context.Context, eventID string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, cacheKey(eventID)).Err(); err != nil {
		c.logger.Warn("event cache invalidation failed", map[string]interface{}{
			"eventId": eventID,
			"error":   err.Error(),
		})
	}
}
