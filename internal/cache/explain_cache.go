package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"reverselearn/internal/model"
)

// ExplainStateCache holds the per-session Explain-mode memory: the current
// round of audience questions and the teacher's answers so far. State is
// keyed by session id and expires with the session.
type ExplainStateCache interface {
	Get(ctx context.Context, sessionID string) (*model.ExplainState, error)
	Set(ctx context.Context, sessionID string, state *model.ExplainState) error
	Delete(ctx context.Context, sessionID string) error
}

type explainStateCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewExplainStateCache creates a new Redis-backed explain state cache
func NewExplainStateCache(client *redis.Client) ExplainStateCache {
	return &explainStateCache{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (c *explainStateCache) key(sessionID string) string {
	return "session:" + sessionID + ":explain"
}

func (c *explainStateCache) Get(ctx context.Context, sessionID string) (*model.ExplainState, error) {
	data, err := c.client.Get(ctx, c.key(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state model.ExplainState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *explainStateCache) Set(ctx context.Context, sessionID string, state *model.ExplainState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(sessionID), data, c.ttl).Err()
}

func (c *explainStateCache) Delete(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, c.key(sessionID)).Err()
}
