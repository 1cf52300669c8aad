package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dharmasatrya/flybulgarien/internal/models"
)

// Sink receives every rendered search response.
type Sink interface {
	Publish(ctx context.Context, resp models.SearchResponse) error
	Close() error
}

type RedisSink struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
	TTL      time.Duration
}

func NewRedisSink(cfg RedisConfig) (*RedisSink, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	return &RedisSink{
		client: client,
		key:    cfg.Key,
		ttl:    cfg.TTL,
	}, nil
}

// Publish appends resp to the result list and refreshes the list TTL.
func (s *RedisSink) Publish(ctx context.Context, resp models.SearchResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, s.key, data)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish %s: %w", resp.Metadata.SearchID, err)
	}
	return nil
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}

type NoOpSink struct{}

func NewNoOpSink() *NoOpSink {
	return &NoOpSink{}
}

func (s *NoOpSink) Publish(ctx context.Context, resp models.SearchResponse) error {
	return nil
}

func (s *NoOpSink) Close() error {
	return nil
}
