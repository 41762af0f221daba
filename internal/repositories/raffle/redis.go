package raffle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/KirkDiggler/raffled/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	raffleKeyPrefix = "raffle:"
	raffleIndexKey  = "raffles"
)

// Config holds configuration for the Redis raffle repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed raffle repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisRepository{
		client: cfg.RedisClient,
	}, nil
}

func raffleKey(id string) string {
	return fmt.Sprintf("%s%s", raffleKeyPrefix, id)
}

// SaveRaffle persists a raffle to Redis, watching the key so a concurrent
// writer fails the transaction instead of being overwritten
func (r *redisRepository) SaveRaffle(ctx context.Context, input *SaveRaffleInput) error {
	if err := validateSave(input); err != nil {
		return err
	}

	expected := input.Raffle.Version
	saved := *input.Raffle
	saved.Version = expected + 1

	raffleJSON, err := json.Marshal(&saved)
	if err != nil {
		return fmt.Errorf("failed to marshal raffle: %w", err)
	}

	key := raffleKey(saved.ID)

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := r.storedVersion(ctx, tx, key)
		if err != nil {
			return err
		}
		if current != expected {
			return ErrConcurrentModification
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raffleJSON, 0)
			pipe.ZAdd(ctx, raffleIndexKey, redis.Z{
				Score:  float64(saved.CreatedAt.UnixNano()),
				Member: saved.ID,
			})
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return ErrConcurrentModification
	}
	if err != nil {
		if errors.Is(err, ErrConcurrentModification) {
			return err
		}
		return fmt.Errorf("failed to save raffle: %w", err)
	}

	input.Raffle.Version = saved.Version
	return nil
}

// storedVersion returns the version currently stored under key, or 0 if absent
func (r *redisRepository) storedVersion(ctx context.Context, tx *redis.Tx, key string) (int64, error) {
	raffleJSON, err := tx.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read raffle: %w", err)
	}

	var stored struct {
		Version int64
	}
	if err := json.Unmarshal(raffleJSON, &stored); err != nil {
		return 0, fmt.Errorf("failed to unmarshal raffle: %w", err)
	}

	return stored.Version, nil
}

// GetRaffle retrieves a raffle by ID from Redis
func (r *redisRepository) GetRaffle(ctx context.Context, input *GetRaffleInput) (*models.Raffle, error) {
	if input == nil || input.RaffleID == "" {
		return nil, errors.New("input and raffle ID cannot be empty")
	}

	raffleJSON, err := r.client.Get(ctx, raffleKey(input.RaffleID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrRaffleNotFound
		}
		return nil, fmt.Errorf("failed to get raffle: %w", err)
	}

	var raffle models.Raffle
	if err := json.Unmarshal(raffleJSON, &raffle); err != nil {
		return nil, fmt.Errorf("failed to unmarshal raffle: %w", err)
	}

	return &raffle, nil
}

// ListRaffles retrieves all raffles from Redis in creation order
func (r *redisRepository) ListRaffles(ctx context.Context, input *ListRafflesInput) (*ListRafflesOutput, error) {
	raffleIDs, err := r.client.ZRange(ctx, raffleIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle IDs: %w", err)
	}

	if len(raffleIDs) == 0 {
		return &ListRafflesOutput{
			Raffles: []*models.Raffle{},
		}, nil
	}

	// Get all raffles in one round trip
	pipe := r.client.Pipeline()
	commands := make([]*redis.StringCmd, len(raffleIDs))
	for i, raffleID := range raffleIDs {
		commands[i] = pipe.Get(ctx, raffleKey(raffleID))
	}

	// redis.Nil for a raffle deleted in between is handled per command below
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get raffles: %w", err)
	}

	raffles := make([]*models.Raffle, 0, len(raffleIDs))
	for i, cmd := range commands {
		raffleJSON, err := cmd.Bytes()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, fmt.Errorf("failed to get raffle %s: %w", raffleIDs[i], err)
		}

		var raffle models.Raffle
		if err := json.Unmarshal(raffleJSON, &raffle); err != nil {
			return nil, fmt.Errorf("failed to unmarshal raffle %s: %w", raffleIDs[i], err)
		}

		raffles = append(raffles, &raffle)
	}

	return &ListRafflesOutput{
		Raffles: raffles,
	}, nil
}

// DeleteRaffle removes a raffle from Redis
func (r *redisRepository) DeleteRaffle(ctx context.Context, input *DeleteRaffleInput) error {
	if input == nil || input.RaffleID == "" {
		return errors.New("input and raffle ID cannot be empty")
	}

	pipe := r.client.TxPipeline()
	deleted := pipe.Del(ctx, raffleKey(input.RaffleID))
	pipe.ZRem(ctx, raffleIndexKey, input.RaffleID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete raffle: %w", err)
	}

	if deleted.Val() == 0 {
		return ErrRaffleNotFound
	}

	return nil
}
