package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// Interface guard
var _ Backend = (*RedisBackend)(nil)

// RedisBackend keeps every type key as a field of one Redis hash, with
// msgpack-encoded values. Several bridge replicas may share it.
type RedisBackend struct {
	client *redis.Client
	key    string
}

func NewRedisBackend(client *redis.Client, key string) *RedisBackend {
	return &RedisBackend{client: client, key: key}
}

func (r *RedisBackend) Put(ctx context.Context, field string, value Value) error {
	raw, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", field, err)
	}
	return r.client.HSet(ctx, r.key, field, raw).Err()
}

func (r *RedisBackend) Get(ctx context.Context, field string) (Value, bool, error) {
	raw, err := r.client.HGet(ctx, r.key, field).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	v, err := decodeValue(raw)
	if err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", field, err)
	}
	return v, true, nil
}

func (r *RedisBackend) All(ctx context.Context) (map[string]Value, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, err
	}

	out := make(map[string]Value, len(fields))
	for field, raw := range fields {
		v, err := decodeValue([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", field, err)
		}
		out[field] = v
	}
	return out, nil
}

func (r *RedisBackend) Len(ctx context.Context) (int, error) {
	n, err := r.client.HLen(ctx, r.key).Result()
	return int(n), err
}

func (r *RedisBackend) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}

func decodeValue(raw []byte) (Value, error) {
	var v Value
	if err := msgpack.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	if v == nil {
		v = Value{}
	}
	return v, nil
}
