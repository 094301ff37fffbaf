// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// listing.go provides a Valkey-backed cache for the formatted public
// catalog listing. The listing is the hottest read path and its
// presentation transform touches every category, so the rendered JSON is
// kept in Valkey until a catalog mutation invalidates it.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// listingKey is the Valkey key for the cached public listing.
	listingKey = "listing:active"

	// DefaultListingTTL is how long the rendered listing stays cached.
	DefaultListingTTL = 5 * time.Minute
)

// ListingCache manages the formatted catalog listing in Valkey.
type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewListingCache creates a listing cache backed by the given Valkey client.
func NewListingCache(client *redis.Client, ttl time.Duration) *ListingCache {
	if ttl == 0 {
		ttl = DefaultListingTTL
	}
	return &ListingCache{client: client, ttl: ttl}
}

// Get retrieves the cached listing JSON. Returns false on miss.
func (lc *ListingCache) Get(ctx context.Context) ([]byte, bool) {
	val, err := lc.client.Get(ctx, listingKey).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("listing cache get error", "error", err)
		return nil, false
	}
	slog.Debug("listing cache hit")
	return val, true
}

// Set stores the rendered listing JSON with the configured TTL.
func (lc *ListingCache) Set(ctx context.Context, payload []byte) {
	if err := lc.client.Set(ctx, listingKey, payload, lc.ttl).Err(); err != nil {
		slog.Warn("listing cache set error", "error", err)
	}
}

// Invalidate drops the cached listing. Called after every catalog
// mutation that changes what the public listing shows.
func (lc *ListingCache) Invalidate(ctx context.Context) {
	if err := lc.client.Del(ctx, listingKey).Err(); err != nil {
		slog.Warn("listing cache invalidate error", "error", err)
	}
	slog.Debug("listing cache invalidated")
}
