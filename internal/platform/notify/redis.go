package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"
)

// RedisSink publishes each event as JSON on a pub/sub channel.
type RedisSink struct {
	rdb     *goredis.Client
	channel string
}

func NewRedisSink(rdb *goredis.Client, channel string) (*RedisSink, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = "studypath.events"
	}
	return &RedisSink{rdb: rdb, channel: channel}, nil
}

func (r *RedisSink) Name() string { return "redis" }

func (r *RedisSink) Deliver(ctx context.Context, msg Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return r.rdb.Publish(ctx, r.channel, raw).Err()
}
