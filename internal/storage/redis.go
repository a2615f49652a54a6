package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/taleloom/tale-engine/pkg/story"
)

// RedisStorage persists characters and stories as JSON values in Redis.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
}

var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a Redis storage instance.
func NewRedisStorage(redisURL string, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})
	return &RedisStorage{
		client: rdb,
		logger: logger,
	}
}

func characterKey(id uuid.UUID) string { return "character:" + id.String() }
func storyKey(id uuid.UUID) string     { return "story:" + id.String() }

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available during startup.
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

func (r *RedisStorage) CreateCharacter(ctx context.Context, c *story.Character) error {
	c.ID = uuid.New()
	c.CreatedAt = time.Now()

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal character: %w", err)
	}

	if err := r.client.Set(ctx, characterKey(c.ID), data, 0).Err(); err != nil {
		r.logger.Error("Failed to save character", "uuid", c.ID, "error", err)
		return fmt.Errorf("failed to save character: %w", err)
	}
	return nil
}

func (r *RedisStorage) GetCharacter(ctx context.Context, id uuid.UUID) (*story.Character, error) {
	data, err := r.client.Get(ctx, characterKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Warn("Character not found", "uuid", id)
			return nil, nil
		}
		r.logger.Error("Failed to load character", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load character: %w", err)
	}

	var c story.Character
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal character: %w", err)
	}
	return &c, nil
}

func (r *RedisStorage) CreateStory(ctx context.Context, st *story.Story) error {
	st.ID = uuid.New()
	st.Version = 1
	now := time.Now()
	st.CreatedAt = now
	st.UpdatedAt = now

	data, err := marshalStory(st)
	if err != nil {
		return err
	}

	// SetNX guards against the astronomically unlikely UUID collision.
	ok, err := r.client.SetNX(ctx, storyKey(st.ID), data, 0).Result()
	if err != nil {
		r.logger.Error("Failed to save new story", "uuid", st.ID, "error", err)
		return fmt.Errorf("failed to save story: %w", err)
	}
	if !ok {
		return fmt.Errorf("story key already exists: %s", st.ID)
	}
	return nil
}

func (r *RedisStorage) GetStory(ctx context.Context, id uuid.UUID) (*story.Story, error) {
	data, err := r.client.Get(ctx, storyKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Warn("Story not found", "uuid", id)
			return nil, nil
		}
		r.logger.Error("Failed to load story", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load story: %w", err)
	}

	var st story.Story
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return nil, fmt.Errorf("failed to unmarshal story: %w", err)
	}
	return &st, nil
}

// SaveStory replaces the story record under optimistic concurrency: the
// stored version must still equal the version the caller loaded. WATCH
// aborts the transaction if another writer touches the key between the
// version check and the write.
func (r *RedisStorage) SaveStory(ctx context.Context, st *story.Story) error {
	key := storyKey(st.ID)
	next := *st
	next.Version++
	next.UpdatedAt = time.Now()

	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load story for save: %w", err)
		}

		var current story.Story
		if err := json.Unmarshal([]byte(data), &current); err != nil {
			return fmt.Errorf("failed to unmarshal stored story: %w", err)
		}
		if current.Version != st.Version {
			return fmt.Errorf("%w: have %d, stored %d", ErrConflict, st.Version, current.Version)
		}

		payload, err := marshalStory(&next)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		return err
	}

	err := r.client.Watch(ctx, txn, key)
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("%w: concurrent write detected", ErrConflict)
	}
	if err != nil {
		if errors.Is(err, ErrConflict) || errors.Is(err, ErrNotFound) {
			return err
		}
		r.logger.Error("Failed to save story", "uuid", st.ID, "error", err)
		return fmt.Errorf("failed to save story: %w", err)
	}

	// Only a committed save moves the caller's copy forward.
	st.Version = next.Version
	st.UpdatedAt = next.UpdatedAt
	return nil
}

// marshalStory strips the embedded character before writing. The story
// record stores only the character ID; the character is its own record.
func marshalStory(st *story.Story) ([]byte, error) {
	record := *st
	record.Character = nil

	data, err := json.Marshal(&record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal story: %w", err)
	}
	return data, nil
}
