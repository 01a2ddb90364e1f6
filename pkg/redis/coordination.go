package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Pod registry. Pods announce themselves with a TTL'd info record and keep
// it alive with heartbeats; a pod whose record expires is considered dead
// and its nicknames are reclaimable.

// PodInfo is the metadata stored for each running pod.
type PodInfo struct {
	PodID         string    `json:"pod_id"`
	StartTime     time.Time `json:"start_time"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
	ClientCount   int       `json:"client_count"`
	Version       string    `json:"version"`
}

const podInfoTTL = 30 * time.Second

// RegisterPod announces this pod in the registry.
func (c *Client) RegisterPod(ctx context.Context, version string) error {
	info := PodInfo{
		PodID:         c.podID,
		StartTime:     time.Now(),
		LastHeartbeat: time.Now(),
		Version:       version,
	}

	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal pod info: %w", err)
	}
	if err := c.rdb.Set(ctx, podInfoKey(c.podID), data, podInfoTTL).Err(); err != nil {
		return fmt.Errorf("failed to register pod: %w", err)
	}
	if err := c.rdb.SAdd(ctx, "pods:active", c.podID).Err(); err != nil {
		return fmt.Errorf("failed to add pod to active set: %w", err)
	}
	return nil
}

// Heartbeat refreshes the pod record's TTL. Call it every ten seconds or so.
func (c *Client) Heartbeat(ctx context.Context, clientCount int, version string) error {
	info := PodInfo{
		PodID:         c.podID,
		LastHeartbeat: time.Now(),
		ClientCount:   clientCount,
		Version:       version,
	}

	// Preserve the original start time across refreshes.
	if existing, err := c.rdb.Get(ctx, podInfoKey(c.podID)).Result(); err == nil {
		var prev PodInfo
		if err := json.Unmarshal([]byte(existing), &prev); err == nil {
			info.StartTime = prev.StartTime
		}
	}

	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal pod info: %w", err)
	}
	if err := c.rdb.Set(ctx, podInfoKey(c.podID), data, podInfoTTL).Err(); err != nil {
		return fmt.Errorf("failed to send heartbeat: %w", err)
	}
	return nil
}

// GracefulShutdown withdraws this pod and frees every nickname it held.
func (c *Client) GracefulShutdown(ctx context.Context) error {
	nicks, err := c.rdb.SMembers(ctx, podNicksKey(c.podID)).Result()
	if err != nil {
		return fmt.Errorf("failed to list pod nicks: %w", err)
	}

	pipe := c.rdb.Pipeline()
	for _, nick := range nicks {
		pipe.Del(ctx, nickKey(nick))
	}
	pipe.Del(ctx, podNicksKey(c.podID))
	pipe.Del(ctx, podInfoKey(c.podID))
	pipe.SRem(ctx, "pods:active", c.podID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clean up pod state: %w", err)
	}
	return nil
}

func podInfoKey(podID string) string {
	return fmt.Sprintf("pod:%s:info", podID)
}
