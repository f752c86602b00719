// Package topiccache serves the topic catalog from Redis, reading through to
// the wrapped repository on a miss. User selections bypass the cache.
package topiccache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	apperrors "github.com/jrsteele09/infonow-server/internal/errors"
	"github.com/jrsteele09/infonow-server/topics"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	keyPrefix  = "infonow:topics:"
	allKey     = keyPrefix + "all"
	slugPrefix = keyPrefix + "slug:"

	DefaultTTL = 10 * time.Minute
)

var _ topics.Repo = (*Repo)(nil)

type Repo struct {
	topics.Repo
	client *redis.Client
	ttl    time.Duration
}

func New(next topics.Repo, client *redis.Client, ttl time.Duration) *Repo {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Repo{Repo: next, client: client, ttl: ttl}
}

func (r *Repo) ListAll(ctx context.Context) ([]topics.Topic, error) {
	var cached []topics.Topic
	if r.get(ctx, allKey, &cached) {
		return cached, nil
	}

	list, err := r.Repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	r.set(ctx, allKey, list)
	return list, nil
}

func (r *Repo) GetBySlug(ctx context.Context, slug string) (*topics.Topic, error) {
	var cached topics.Topic
	if r.get(ctx, slugPrefix+slug, &cached) {
		return &cached, nil
	}

	topic, err := r.Repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	r.set(ctx, slugPrefix+slug, topic)
	return topic, nil
}

// Invalidate drops every cached catalog entry.
func (r *Repo) Invalidate(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return apperrors.Wrapf(err, "scan topic cache")
	}
	if len(keys) == 0 {
		return nil
	}
	return apperrors.Wrapf(r.client.Del(ctx, keys...).Err(), "invalidate topic cache")
}

// Ping is the health check for the cache connection.
func (r *Repo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Repo) get(ctx context.Context, key string, dst any) bool {
	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Topic cache read failed")
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Topic cache entry corrupt")
		return false
	}
	return true
}

func (r *Repo) set(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Topic cache encode failed")
		return
	}
	if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Topic cache write failed")
	}
}
