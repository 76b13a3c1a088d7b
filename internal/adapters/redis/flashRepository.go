package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"webcourse/internal/core/flash"
)

const flashPrefix = "flash:"

// FlashRepositoryRedis keeps each session's pending messages in a Redis list.
type FlashRepositoryRedis struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewFlashRepositoryRedis(client *redis.Client, ttl time.Duration) *FlashRepositoryRedis {
	return &FlashRepositoryRedis{
		Client: client,
		TTL:    ttl,
	}
}

func flashKey(session string) string {
	return flashPrefix + session
}

// Add appends msg and refreshes the list's expiry.
func (r *FlashRepositoryRedis) Add(ctx context.Context, session string, msg flash.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode flash: %w", err)
	}
	key := flashKey(session)
	_, err = r.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, payload)
		if r.TTL > 0 {
			pipe.Expire(ctx, key, r.TTL)
		}
		return nil
	})
	return err
}

// Pop returns the pending messages in insertion order and forgets them.
func (r *FlashRepositoryRedis) Pop(ctx context.Context, session string) ([]flash.Message, error) {
	key := flashKey(session)
	var items *redis.StringSliceCmd
	_, err := r.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		items = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, err
	}

	raw := items.Val()
	messages := make([]flash.Message, 0, len(raw))
	for _, item := range raw {
		var msg flash.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("decode flash: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
