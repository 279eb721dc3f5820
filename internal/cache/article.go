// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// article.go provides a Valkey-backed cache of published articles keyed by
// slug. Public slug lookups are the hottest read path; caching the JSON
// form skips the article query and the tag join entirely. Every article
// write invalidates the affected slug, so the cache never serves a stale
// row longer than its TTL.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"maplecms/internal/models"
)

const (
	// articleKeyPrefix namespaces article keys in Valkey.
	articleKeyPrefix = "article:"

	// DefaultArticleTTL is how long a cached article stays valid.
	DefaultArticleTTL = 5 * time.Minute
)

// ArticleCache caches published articles by slug. A nil *ArticleCache is
// a valid no-op cache, so the app runs without Valkey in tests.
type ArticleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewArticleCache creates an article cache backed by the given Valkey client.
func NewArticleCache(client *redis.Client, ttl time.Duration) *ArticleCache {
	if ttl == 0 {
		ttl = DefaultArticleTTL
	}
	return &ArticleCache{client: client, ttl: ttl}
}

// Get retrieves a cached article by slug. Returns nil on miss or error;
// cache failures are logged, never surfaced.
func (ac *ArticleCache) Get(ctx context.Context, slug string) *models.Article {
	if ac == nil {
		return nil
	}
	val, err := ac.client.Get(ctx, articleKeyPrefix+slug).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		slog.Warn("article cache get error", "slug", slug, "error", err)
		return nil
	}

	var a models.Article
	if err := json.Unmarshal(val, &a); err != nil {
		slog.Warn("article cache decode error", "slug", slug, "error", err)
		return nil
	}
	return &a
}

// Set stores an article under its slug with the configured TTL. Only
// published articles belong in the cache; drafts are skipped.
func (ac *ArticleCache) Set(ctx context.Context, a *models.Article) {
	if ac == nil || !a.IsPublished() {
		return
	}
	payload, err := json.Marshal(a)
	if err != nil {
		slog.Warn("article cache encode error", "slug", a.Slug, "error", err)
		return
	}
	if err := ac.client.Set(ctx, articleKeyPrefix+a.Slug, payload, ac.ttl).Err(); err != nil {
		slog.Warn("article cache set error", "slug", a.Slug, "error", err)
	}
}

// Invalidate removes one or more slugs from the cache. Called on every
// article update and delete; a slug change invalidates both old and new.
func (ac *ArticleCache) Invalidate(ctx context.Context, slugs ...string) {
	if ac == nil || len(slugs) == 0 {
		return
	}
	keys := make([]string, len(slugs))
	for i, s := range slugs {
		keys[i] = articleKeyPrefix + s
	}
	if err := ac.client.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("article cache invalidate error", "slugs", slugs, "error", err)
	}
}
