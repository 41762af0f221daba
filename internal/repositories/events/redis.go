package events

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/KirkDiggler/raffled/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefix for per-raffle event streams
	streamKeyPrefix = "raffle_events:"

	fieldType      = "type"
	fieldUser      = "user"
	fieldTimestamp = "timestamp"
)

// Config holds configuration for the Redis event repository
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// MaxLen approximately caps each raffle's stream. Zero keeps everything.
	MaxLen int64
}

// redisRepository implements the Repository interface on Redis streams
type redisRepository struct {
	client *redis.Client
	maxLen int64
}

// NewRedis creates a new Redis stream backed event repository
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
		maxLen: cfg.MaxLen,
	}, nil
}

func streamKey(raffleID string) string {
	return fmt.Sprintf("%s%s", streamKeyPrefix, raffleID)
}

// AppendEvents adds events to the raffle's stream in a single transaction
func (r *redisRepository) AppendEvents(ctx context.Context, input *AppendEventsInput) (*AppendEventsOutput, error) {
	if input == nil || input.RaffleID == "" {
		return nil, errors.New("input and raffle ID cannot be empty")
	}

	if len(input.Events) == 0 {
		return &AppendEventsOutput{EventIDs: []string{}}, nil
	}

	key := streamKey(input.RaffleID)
	pipe := r.client.TxPipeline()
	commands := make([]*redis.StringCmd, len(input.Events))

	for i, event := range input.Events {
		args := &redis.XAddArgs{
			Stream: key,
			Values: []interface{}{
				fieldType, string(event.Type),
				fieldUser, event.User.String(),
				fieldTimestamp, event.Timestamp.UTC().Format(time.RFC3339Nano),
			},
		}
		if r.maxLen > 0 {
			args.MaxLen = r.maxLen
			args.Approx = true
		}
		commands[i] = pipe.XAdd(ctx, args)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to append events: %w", err)
	}

	ids := make([]string, len(commands))
	for i, cmd := range commands {
		ids[i] = cmd.Val()
	}

	return &AppendEventsOutput{
		EventIDs: ids,
	}, nil
}

// ListEvents reads the raffle's stream
func (r *redisRepository) ListEvents(ctx context.Context, input *ListEventsInput) (*ListEventsOutput, error) {
	if input == nil || input.RaffleID == "" {
		return nil, errors.New("input and raffle ID cannot be empty")
	}

	start := "-"
	if input.AfterID != "" {
		if !validEventID(input.AfterID) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidEventID, input.AfterID)
		}
		start = input.AfterID
	}

	// The start bound is inclusive, so fetch one extra to drop AfterID itself
	count := input.Limit
	if count > 0 && input.AfterID != "" {
		count++
	}

	var (
		messages []redis.XMessage
		err      error
	)
	if count > 0 {
		messages, err = r.client.XRangeN(ctx, streamKey(input.RaffleID), start, "+", count).Result()
	} else {
		messages, err = r.client.XRange(ctx, streamKey(input.RaffleID), start, "+").Result()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	events := make([]models.Event, 0, len(messages))
	for _, msg := range messages {
		if msg.ID == input.AfterID {
			continue
		}

		event, err := decodeEvent(input.RaffleID, msg)
		if err != nil {
			return nil, err
		}
		events = append(events, event)

		if input.Limit > 0 && int64(len(events)) == input.Limit {
			break
		}
	}

	return &ListEventsOutput{
		Events: events,
	}, nil
}

// DeleteEvents removes the raffle's stream
func (r *redisRepository) DeleteEvents(ctx context.Context, input *DeleteEventsInput) error {
	if input == nil || input.RaffleID == "" {
		return errors.New("input and raffle ID cannot be empty")
	}

	if err := r.client.Del(ctx, streamKey(input.RaffleID)).Err(); err != nil {
		return fmt.Errorf("failed to delete events: %w", err)
	}

	return nil
}

// validEventID reports whether id is a full stream ID of the form <ms>-<seq>
func validEventID(id string) bool {
	ms, seq, ok := strings.Cut(id, "-")
	if !ok {
		return false
	}
	if _, err := strconv.ParseUint(ms, 10, 64); err != nil {
		return false
	}
	_, err := strconv.ParseUint(seq, 10, 64)
	return err == nil
}

func decodeEvent(raffleID string, msg redis.XMessage) (models.Event, error) {
	field := func(name string) (string, error) {
		v, ok := msg.Values[name].(string)
		if !ok {
			return "", fmt.Errorf("event %s is missing field %q", msg.ID, name)
		}
		return v, nil
	}

	eventType, err := field(fieldType)
	if err != nil {
		return models.Event{}, err
	}

	userText, err := field(fieldUser)
	if err != nil {
		return models.Event{}, err
	}
	user, err := models.ParseUser(userText)
	if err != nil {
		return models.Event{}, fmt.Errorf("event %s: %w", msg.ID, err)
	}

	timestampText, err := field(fieldTimestamp)
	if err != nil {
		return models.Event{}, err
	}
	timestamp, err := time.Parse(time.RFC3339Nano, timestampText)
	if err != nil {
		return models.Event{}, fmt.Errorf("event %s has invalid timestamp: %w", msg.ID, err)
	}

	return models.Event{
		ID:        msg.ID,
		RaffleID:  raffleID,
		Type:      models.EventType(eventType),
		User:      user,
		Timestamp: timestamp,
	}, nil
}
