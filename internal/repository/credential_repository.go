package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/abotl/abotl-web/internal/config"
	"github.com/abotl/abotl-web/internal/model"
	"github.com/redis/go-redis/v9"
)

// CredentialRepository keeps the backend cookies of each visitor.
type CredentialRepository interface {
	// Load returns the stored cookies, or none when the visitor is unknown.
	Load(ctx context.Context, visitorID string) ([]model.StoredCookie, error)
	// Save replaces the visitor's cookies. An empty slice deletes them.
	Save(ctx context.Context, visitorID string, cookies []model.StoredCookie, ttl time.Duration) error
	Delete(ctx context.Context, visitorID string) error
}

// RedisCredentialRepository stores cookies in a hash per visitor, one field
// per cookie name.
type RedisCredentialRepository struct {
	rdb *redis.Client
}

// NewRedisCredentialRepository creates a new RedisCredentialRepository.
func NewRedisCredentialRepository(rdb *redis.Client) *RedisCredentialRepository {
	return &RedisCredentialRepository{rdb: rdb}
}

// Load reads every cookie of the visitor. Fields that fail to decode are skipped.
func (r *RedisCredentialRepository) Load(ctx context.Context, visitorID string) ([]model.StoredCookie, error) {
	fields, err := r.rdb.HGetAll(ctx, config.CacheKey.VisitorCookiesKey(visitorID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	cookies := make([]model.StoredCookie, 0, len(fields))
	for _, raw := range fields {
		var c model.StoredCookie
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			continue
		}
		cookies = append(cookies, c)
	}
	return cookies, nil
}

// Save rewrites the hash atomically and sets its expiry.
func (r *RedisCredentialRepository) Save(ctx context.Context, visitorID string, cookies []model.StoredCookie, ttl time.Duration) error {
	key := config.CacheKey.VisitorCookiesKey(visitorID)
	if len(cookies) == 0 || ttl <= 0 {
		return r.Delete(ctx, visitorID)
	}

	values := make(map[string]any, len(cookies))
	for _, c := range cookies {
		b, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("encode cookie %s: %w", c.Name, err)
		}
		values[c.Name] = b
	}

	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, values)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

// Delete drops the visitor's cookies.
func (r *RedisCredentialRepository) Delete(ctx context.Context, visitorID string) error {
	if err := r.rdb.Del(ctx, config.CacheKey.VisitorCookiesKey(visitorID)).Err(); err != nil {
		return fmt.Errorf("delete credentials: %w", err)
	}
	return nil
}

type memoryEntry struct {
	cookies []model.StoredCookie
	expires time.Time
}

// MemoryCredentialRepository is the single-process fallback used when no
// Redis URL is configured.
type MemoryCredentialRepository struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCredentialRepository creates a new MemoryCredentialRepository.
func NewMemoryCredentialRepository() *MemoryCredentialRepository {
	return &MemoryCredentialRepository{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (r *MemoryCredentialRepository) Load(_ context.Context, visitorID string) ([]model.StoredCookie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[visitorID]
	if !ok {
		return nil, nil
	}
	if !e.expires.After(r.now()) {
		delete(r.entries, visitorID)
		return nil, nil
	}
	return append([]model.StoredCookie(nil), e.cookies...), nil
}

func (r *MemoryCredentialRepository) Save(_ context.Context, visitorID string, cookies []model.StoredCookie, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(cookies) == 0 || ttl <= 0 {
		delete(r.entries, visitorID)
		return nil
	}
	r.entries[visitorID] = memoryEntry{
		cookies: append([]model.StoredCookie(nil), cookies...),
		expires: r.now().Add(ttl),
	}
	return nil
}

func (r *MemoryCredentialRepository) Delete(_ context.Context, visitorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, visitorID)
	return nil
}

// Sweep drops expired visitors and reports how many.
func (r *MemoryCredentialRepository) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	n := 0
	for id, e := range r.entries {
		if !e.expires.After(now) {
			delete(r.entries, id)
			n++
		}
	}
	return n
}
