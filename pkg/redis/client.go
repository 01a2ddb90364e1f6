// Package redis provides optional distributed state for running several
// server pods against one nickname namespace. When disabled, the server runs
// single-instance and never touches this package.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps the Redis connection and the pod identity.
type Client struct {
	rdb   *redis.Client
	podID string
}

// Event is a cross-pod notification published on the events channel.
type Event struct {
	Type string                 `json:"type"` // REGISTER, NICK, QUIT
	Data map[string]interface{} `json:"data"`
}

const eventsChannel = "ircd:events"

// NewClient connects to Redis and verifies the connection.
func NewClient(redisURL, podID string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb, podID: podID}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// IsNickAvailable reports whether no pod currently holds the nickname.
func (c *Client) IsNickAvailable(ctx context.Context, nick string) (bool, error) {
	n, err := c.rdb.Exists(ctx, nickKey(nick)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check nick: %w", err)
	}
	return n == 0, nil
}

// ReserveNick claims the nickname for a client of this pod. Returns false
// when another client holds it already.
func (c *Client) ReserveNick(ctx context.Context, nick, clientID string) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, nickKey(nick), clientID, 0).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve nick: %w", err)
	}
	if ok {
		if err := c.rdb.SAdd(ctx, podNicksKey(c.podID), nick).Err(); err != nil {
			return true, fmt.Errorf("failed to track nick: %w", err)
		}
	}
	return ok, nil
}

// ReleaseNick frees a nickname held by this pod.
func (c *Client) ReleaseNick(ctx context.Context, nick string) error {
	pipe := c.rdb.Pipeline()
	pipe.Del(ctx, nickKey(nick))
	pipe.SRem(ctx, podNicksKey(c.podID), nick)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to release nick: %w", err)
	}
	return nil
}

// PublishEvent broadcasts a lifecycle event to the other pods.
func (c *Client) PublishEvent(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := c.rdb.Publish(ctx, eventsChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func nickKey(nick string) string {
	return "nick:" + nick
}

func podNicksKey(podID string) string {
	return fmt.Sprintf("pod:%s:nicks", podID)
}
