package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/arafat90/clientflow/backend/internal/models"
	"github.com/redis/go-redis/v9"
)

// PresenceTTL is how long a presence write stays valid without a
// refresh. The client heartbeats every 30s; 2x that means a client
// that disappears without its cleanup call decays to offline.
const PresenceTTL = 60 * time.Second

// PresenceRepository defines the interface for presence state.
// Absence of a record always reads as offline.
type PresenceRepository interface {
	SetStatus(ctx context.Context, userID uint, status string) error
	GetStatus(ctx context.Context, userID uint) (string, error)
	GetStatuses(ctx context.Context, userIDs []uint) (map[uint]string, error)
}

// RedisPresenceRepository implements PresenceRepository on Redis keys
// with a TTL, so implicit offline transitions need no sweeper.
type RedisPresenceRepository struct {
	rdb *redis.Client
}

// NewRedisPresenceRepository creates a new RedisPresenceRepository
func NewRedisPresenceRepository(rdb *redis.Client) *RedisPresenceRepository {
	return &RedisPresenceRepository{rdb: rdb}
}

func presenceKey(userID uint) string {
	return fmt.Sprintf("presence:%d", userID)
}

// SetStatus upserts the user's status. Explicit offline deletes the
// key since absence already reads as offline.
func (r *RedisPresenceRepository) SetStatus(ctx context.Context, userID uint, status string) error {
	if !models.ValidPresenceStatus(status) {
		return fmt.Errorf("invalid presence status: %s", status)
	}
	if status == models.PresenceOffline {
		return r.rdb.Del(ctx, presenceKey(userID)).Err()
	}
	return r.rdb.Set(ctx, presenceKey(userID), status, PresenceTTL).Err()
}

// GetStatus retrieves the user's status, defaulting to offline
func (r *RedisPresenceRepository) GetStatus(ctx context.Context, userID uint) (string, error) {
	val, err := r.rdb.Get(ctx, presenceKey(userID)).Result()
	if err == redis.Nil {
		return models.PresenceOffline, nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// GetStatuses retrieves statuses for a set of users in one round trip
func (r *RedisPresenceRepository) GetStatuses(ctx context.Context, userIDs []uint) (map[uint]string, error) {
	statuses := make(map[uint]string, len(userIDs))
	if len(userIDs) == 0 {
		return statuses, nil
	}

	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = presenceKey(id)
	}
	vals, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, id := range userIDs {
		if s, ok := vals[i].(string); ok {
			statuses[id] = s
		} else {
			statuses[id] = models.PresenceOffline
		}
	}
	return statuses, nil
}

// MemoryPresenceRepository implements PresenceRepository in process
// memory with the same TTL semantics. Used when REDIS_ADDR is unset
// and in tests.
type MemoryPresenceRepository struct {
	mu      sync.RWMutex
	entries map[uint]memoryPresence
	now     func() time.Time
}

type memoryPresence struct {
	status    string
	expiresAt time.Time
}

// NewMemoryPresenceRepository creates a new MemoryPresenceRepository
func NewMemoryPresenceRepository() *MemoryPresenceRepository {
	return &MemoryPresenceRepository{
		entries: make(map[uint]memoryPresence),
		now:     time.Now,
	}
}

// SetStatus upserts the user's status with a fresh TTL
func (r *MemoryPresenceRepository) SetStatus(ctx context.Context, userID uint, status string) error {
	if !models.ValidPresenceStatus(status) {
		return fmt.Errorf("invalid presence status: %s", status)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if status == models.PresenceOffline {
		delete(r.entries, userID)
		return nil
	}
	r.entries[userID] = memoryPresence{status: status, expiresAt: r.now().Add(PresenceTTL)}
	return nil
}

// GetStatus retrieves the user's status, defaulting to offline
func (r *MemoryPresenceRepository) GetStatus(ctx context.Context, userID uint) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[userID]
	if !ok || r.now().After(entry.expiresAt) {
		return models.PresenceOffline, nil
	}
	return entry.status, nil
}

// GetStatuses retrieves statuses for a set of users
func (r *MemoryPresenceRepository) GetStatuses(ctx context.Context, userIDs []uint) (map[uint]string, error) {
	statuses := make(map[uint]string, len(userIDs))
	for _, id := range userIDs {
		s, _ := r.GetStatus(ctx, id)
		statuses[id] = s
	}
	return statuses, nil
}
