package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultChannel is the Redis channel match notifications are published on
const DefaultChannel = "EVENT_JOB_MATCH"

// LogTransport writes notifications to the logger instead of delivering them
type LogTransport struct {
	logger *zap.Logger
}

// NewLogTransport creates a LogTransport
func NewLogTransport(logger *zap.Logger) *LogTransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogTransport{logger: logger}
}

func (t *LogTransport) Name() string { return "log" }

func (t *LogTransport) Send(ctx context.Context, req Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.logger.Info("job match notification",
		zap.String("request_id", req.ID),
		zap.String("profile_id", req.ProfileID),
		zap.String("posting_id", req.PostingID),
		zap.String("title", req.Title),
		zap.String("company", req.Company),
		zap.Float64("match_score", req.Score),
		zap.Strings("matching_skills", req.MatchingSkills))
	return nil
}

// Publisher is the subset of the Redis client used for publishing
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisTransport publishes each notification as a JSON event on a Redis channel
type RedisTransport struct {
	client  Publisher
	channel string
}

// NewRedisTransport creates a RedisTransport. An empty channel uses DefaultChannel.
func NewRedisTransport(client Publisher, channel string) *RedisTransport {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisTransport{client: client, channel: channel}
}

func (t *RedisTransport) Name() string { return "redis" }

func (t *RedisTransport) Send(ctx context.Context, req Request) error {
	payload, err := EncodeEvent(req)
	if err != nil {
		return err
	}
	if err := t.client.Publish(ctx, t.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish %s: %w", t.channel, err)
	}
	return nil
}

// Event is the message published for a notification
type Event struct {
	Type string `json:"type"`
	Request
}

// EncodeEvent serializes a request as a job match event
func EncodeEvent(req Request) ([]byte, error) {
	data, err := json.Marshal(Event{Type: DefaultChannel, Request: req})
	if err != nil {
		return nil, fmt.Errorf("failed to encode notification: %w", err)
	}
	return data, nil
}

// NewRedisClient creates a Redis client from a URL and verifies the connection
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return rdb, nil
}
