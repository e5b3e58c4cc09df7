package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

// Options tune the client beyond what the URL carries.
type Options struct {
	PoolSize    int
	DialTimeout time.Duration
	ReadTimeout time.Duration
	// ConnectTimeout bounds retries of the initial ping. Zero means a
	// single attempt.
	ConnectTimeout time.Duration
}

// NewClient parses redisURL, applies opts and verifies the connection.
func NewClient(ctx context.Context, redisURL string, opts ...Options) (*redis.Client, error) {
	parsed, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	var connectTimeout time.Duration
	for _, o := range opts {
		if o.PoolSize > 0 {
			parsed.PoolSize = o.PoolSize
		}
		if o.DialTimeout > 0 {
			parsed.DialTimeout = o.DialTimeout
		}
		if o.ReadTimeout > 0 {
			parsed.ReadTimeout = o.ReadTimeout
		}
		if o.ConnectTimeout > 0 {
			connectTimeout = o.ConnectTimeout
		}
	}

	client := redis.NewClient(parsed)

	if err := pingWithRetry(ctx, client, connectTimeout); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// Pinger adapts a client to the health handler's dependency check.
type Pinger struct {
	client *redis.Client
}

// NewPinger creates a Pinger.
func NewPinger(client *redis.Client) *Pinger {
	return &Pinger{client: client}
}

// Ping reports whether redis answers.
func (p *Pinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func pingWithRetry(ctx context.Context, client *redis.Client, timeout time.Duration) error {
	if timeout <= 0 {
		return client.Ping(ctx).Err()
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = time.Second
	b.MaxElapsedTime = timeout

	return backoff.Retry(func() error {
		return client.Ping(ctx).Err()
	}, backoff.WithContext(b, ctx))
}
