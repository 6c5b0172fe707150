// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package redis implements a cache backend on top of Redis, so that several folio instances
// can share fetched content documents.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wneessen/folio/internal/cache"
)

const (
	DefaultKeyPrefix = "folio:content:"
	scanCount        = 100
)

// Config holds the connection settings of the Redis backend.
type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string

	// Expiry is set on every stored key so that Redis releases documents nobody asks for
	// anymore. Zero disables it.
	Expiry time.Duration
}

type Redis struct {
	client *redis.Client
	prefix string
	expiry time.Duration
}

// New returns a Redis backend for the given config.
func New(conf Config) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
	return NewFromClient(client, conf.KeyPrefix, conf.Expiry)
}

// NewFromClient returns a Redis backend using an existing client.
func NewFromClient(client *redis.Client, prefix string, expiry time.Duration) *Redis {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Redis{
		client: client,
		prefix: prefix,
		expiry: expiry,
	}
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

func (r *Redis) Get(ctx context.Context, key string) (cache.Entry, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cache.Entry{}, cache.ErrNotFound
	}
	if err != nil {
		return cache.Entry{}, fmt.Errorf("failed to get cache item: %w", err)
	}

	var entry cache.Entry
	if err = json.Unmarshal(data, &entry); err != nil {
		return cache.Entry{}, fmt.Errorf("failed to decode cache item: %w", err)
	}
	return entry, nil
}

func (r *Redis) Set(ctx context.Context, key string, entry cache.Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode cache item: %w", err)
	}
	if err = r.client.Set(ctx, r.key(key), data, r.expiry).Err(); err != nil {
		return fmt.Errorf("failed to set cache item: %w", err)
	}
	return nil
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

// Keys returns all keys below the configured prefix, with the prefix removed.
func (r *Redis) Keys(ctx context.Context) ([]string, error) {
	keys, err := r.scan(ctx)
	if err != nil {
		return nil, err
	}
	for i, k := range keys {
		keys[i] = strings.TrimPrefix(k, r.prefix)
	}
	slices.Sort(keys)
	return keys, nil
}

// Clear deletes every key below the configured prefix. Other keys in the database are left alone.
func (r *Redis) Clear(ctx context.Context) error {
	keys, err := r.scan(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err = r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache items: %w", err)
	}
	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) scan(ctx context.Context) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, r.prefix+"*", scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan cache keys: %w", err)
	}
	return keys, nil
}
