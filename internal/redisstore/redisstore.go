// Package redisstore mirrors call presence into Redis sets so occupancy
// can be inspected from outside the process. The in-memory registry stays
// the source of truth: every operation here is best-effort, and failures
// are logged without affecting signaling.
package redisstore

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/parley-chat/parley/config"
	"github.com/parley-chat/parley/internal/signaling"
)

// presenceTTL bounds how long a mirrored set can outlive the process. A
// crashed server loses its in-memory state; the mirror must not advertise
// those peers forever.
const presenceTTL = 24 * time.Hour

// Mirror implements signaling.PresenceMirror on top of a Redis client.
type Mirror struct {
	client *redis.Client
	ctx    context.Context
}

// Connect opens a Redis connection and verifies it with a ping.
func Connect(cfg config.RedisConfig) (*Mirror, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Mirror{client: client, ctx: ctx}, nil
}

func (m *Mirror) Close() error {
	return m.client.Close()
}

func presenceKey(roomID string, kind signaling.CallKind) string {
	return "room:" + roomID + ":" + string(kind) + ":peers"
}

// AddPeer records connID in the mirrored presence set for (roomID, kind).
func (m *Mirror) AddPeer(roomID string, kind signaling.CallKind, connID string) {
	key := presenceKey(roomID, kind)
	if err := m.client.SAdd(m.ctx, key, connID).Err(); err != nil {
		log.Printf("redis mirror: SADD %s failed: %v", key, err)
		return
	}
	m.client.Expire(m.ctx, key, presenceTTL)
}

// RemovePeer removes connID from the mirrored presence set.
func (m *Mirror) RemovePeer(roomID string, kind signaling.CallKind, connID string) {
	key := presenceKey(roomID, kind)
	if err := m.client.SRem(m.ctx, key, connID).Err(); err != nil {
		log.Printf("redis mirror: SREM %s failed: %v", key, err)
	}
}
