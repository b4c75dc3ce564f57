package pagecache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// DefaultRedisPrefix namespaces page entries in a shared Redis.
const DefaultRedisPrefix = "yatube:page:"

// RedisStore shares cached pages between server processes. Redis expires
// the keys itself.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore keeps entries under DefaultRedisPrefix for ttl.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: DefaultRedisPrefix, ttl: ttl}
}

// NewRedisClient connects to addr and pings it.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, errors.Wrapf(err, "ping redis at %s", addr)
	}
	return client, nil
}

// Get returns the entry for key; a missing key is a miss, not an error.
func (s *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err == redis.Nil {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, errors.Wrapf(err, "redis get %s", key)
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, false, errors.Wrapf(err, "decode cached page %s", key)
	}
	return entry, true, nil
}

// Set stores entry as JSON with the store's TTL.
func (s *RedisStore) Set(ctx context.Context, key string, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "encode cached page")
	}
	if err := s.client.Set(ctx, s.prefix+key, data, s.ttl).Err(); err != nil {
		return errors.Wrapf(err, "redis set %s", key)
	}
	return nil
}

// Purge drops every page entry under the store's prefix.
func (s *RedisStore) Purge(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return errors.Wrap(err, "scan cached pages")
	}
	if len(keys) == 0 {
		return nil
	}
	return errors.Wrap(s.client.Del(ctx, keys...).Err(), "delete cached pages")
}
