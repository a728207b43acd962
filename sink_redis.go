package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// redisSink mirrors snapshots to Redis: each one is published on a channel
// and the latest is kept under "<channel>:latest".
type redisSink struct {
	client  *redis.Client
	channel string
	ttl     time.Duration
}

// newRedisSink connects to redisURL. It returns a nil sink when redisURL is
// empty.
func newRedisSink(ctx context.Context, redisURL, channel string, ttl time.Duration, log *zap.Logger) (*redisSink, error) {
	if redisURL == "" {
		log.Info("redis url not provided, snapshot mirror disabled")
		return nil, nil
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	log.Info("redis snapshot mirror enabled", zap.String("addr", opt.Addr), zap.String("channel", channel))
	return &redisSink{client: client, channel: channel, ttl: ttl}, nil
}

func (r *redisSink) latestKey() string {
	return r.channel + ":latest"
}

func (r *redisSink) Publish(ctx context.Context, vehicles []Vehicle) error {
	data, err := json.Marshal(vehicles)
	if err != nil {
		return err
	}
	pipe := r.client.Pipeline()
	pipe.Publish(ctx, r.channel, data)
	pipe.Set(ctx, r.latestKey(), data, r.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *redisSink) Close() error {
	return r.client.Close()
}
