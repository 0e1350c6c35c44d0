package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"studymate-backend/internal/models"
)

// UserChannel is the pub/sub channel carrying realtime updates for one user.
func UserChannel(userID string) string {
	return "user_updates:" + userID
}

type Publisher interface {
	Publish(ctx context.Context, userID string, msg models.WSMessage) error
}

type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, userID string, msg models.WSMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode update: %w", err)
	}
	return p.client.Publish(ctx, UserChannel(userID), data).Err()
}
