package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"testforge/internal/model"
)

// TurnCache keeps the question/answer turns of a Q&A session in Redis.
// Sessions are ephemeral: the TTL is refreshed on every append and an
// idle session simply expires.
type TurnCache struct {
	client  *redisv9.Client
	turnTTL time.Duration
}

func NewTurnCache(client *redisv9.Client, turnTTL time.Duration) *TurnCache {
	if turnTTL <= 0 {
		turnTTL = time.Hour
	}
	return &TurnCache{
		client:  client,
		turnTTL: turnTTL,
	}
}

// GetTurns returns the stored turns for a session. The second return
// value is false when the session is unknown or has expired.
func (c *TurnCache) GetTurns(ctx context.Context, sessionID string) ([]model.ConversationTurn, bool, error) {
	raw, err := c.client.Get(ctx, c.turnKey(sessionID)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get turns failed: %w", err)
	}

	var turns []model.ConversationTurn
	if err := json.Unmarshal([]byte(raw), &turns); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached turns failed: %w", err)
	}
	return turns, true, nil
}

// AppendTurn adds one turn to the session and refreshes the TTL.
func (c *TurnCache) AppendTurn(ctx context.Context, sessionID string, turn model.ConversationTurn) error {
	turns, _, err := c.GetTurns(ctx, sessionID)
	if err != nil {
		return err
	}
	turns = append(turns, turn)
	return c.SetTurns(ctx, sessionID, turns)
}

func (c *TurnCache) SetTurns(ctx context.Context, sessionID string, turns []model.ConversationTurn) error {
	payload, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("marshal turns failed: %w", err)
	}
	if err := c.client.Set(ctx, c.turnKey(sessionID), payload, c.turnTTL).Err(); err != nil {
		return fmt.Errorf("redis set turns failed: %w", err)
	}
	return nil
}

func (c *TurnCache) DeleteTurns(ctx context.Context, sessionID string) error {
	if err := c.client.Del(ctx, c.turnKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete turns failed: %w", err)
	}
	return nil
}

func (c *TurnCache) turnKey(sessionID string) string {
	return fmt.Sprintf("qa:turns:%s", sessionID)
}
