// Package redis opens the Redis connection used by the redis record store.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// urgentWindow is how close to the deadline retries start logging at error level.
const urgentWindow = 10 * time.Second

// ConnectOptions describes the client and the startup retry policy.
type ConnectOptions struct {
	Addr         string // ex: "localhost:6379"
	User         string // optional
	Password     string // optional
	RedisDB      int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int

	ConnectTimeout time.Duration // total budget for startup attempts (ex: 30s)
	RetryInterval  time.Duration // first wait, doubled after each failure (ex: 2s)
	MaxWait        time.Duration // cap on the wait between attempts (ex: 10s)
	PingTimeout    time.Duration // per-attempt PING deadline (ex: 5s)
	WarnThreshold  int           // failures logged at warn level before switching to error
}

// Validate reports every invalid retry setting at once.
func (o ConnectOptions) Validate() error {
	var errs []error
	positive := []struct {
		name string
		d    time.Duration
	}{
		{"ConnectTimeout", o.ConnectTimeout},
		{"RetryInterval", o.RetryInterval},
		{"MaxWait", o.MaxWait},
		{"PingTimeout", o.PingTimeout},
	}
	for _, p := range positive {
		if p.d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be > 0, got %v", p.name, p.d))
		}
	}
	if o.WarnThreshold < 0 {
		errs = append(errs, fmt.Errorf("WarnThreshold must be >= 0, got %d", o.WarnThreshold))
	}
	return errors.Join(errs...)
}

func (o ConnectOptions) client() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         o.Addr,
		Username:     o.User,
		Password:     o.Password,
		DB:           o.RedisDB,
		DialTimeout:  o.DialTimeout,
		ReadTimeout:  o.ReadTimeout,
		WriteTimeout: o.WriteTimeout,
		PoolSize:     o.PoolSize,
	})
}

// backoff doubles the wait up to a ceiling.
type backoff struct {
	wait, ceiling time.Duration
}

func (b *backoff) next() time.Duration {
	w := b.wait
	b.wait = min(b.wait*2, b.ceiling)
	return w
}

// New creates a Redis client and blocks until it answers PING, retrying with
// exponential backoff until ConnectTimeout elapses or ctx is done.
// On failure the client is closed and nil is returned.
func New(ctx context.Context, opts ConnectOptions, log logger.Logger) (*redis.Client, error) {
	if err := opts.Validate(); err != nil {
		log.Error("invalid redis connect options", logger.Error(err))
		return nil, fmt.Errorf("invalid redis connect options: %w", err)
	}

	client := opts.client()
	if err := waitForPing(ctx, client, opts, log.With(logger.String("addr", opts.Addr))); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func waitForPing(parent context.Context, client *redis.Client, opts ConnectOptions, log logger.Logger) error {
	ctx, cancel := context.WithTimeout(parent, opts.ConnectTimeout)
	defer cancel()

	log.Info("connecting to redis store", logger.Duration("timeout", opts.ConnectTimeout))

	start := time.Now()
	delay := backoff{wait: opts.RetryInterval, ceiling: opts.MaxWait}

	for attempt := 1; ; attempt++ {
		pingCtx, pingCancel := context.WithTimeout(ctx, opts.PingTimeout)
		err := client.Ping(pingCtx).Err()
		pingCancel()

		if err == nil {
			if attempt > 1 {
				log.Warn("connected to redis after retry",
					logger.Int("attempts", attempt),
					logger.Duration("elapsed", time.Since(start)))
			} else {
				log.Info("connected to redis")
			}
			return nil
		}

		wait := delay.next()
		select {
		case <-ctx.Done():
			log.Error("redis store unavailable, giving up",
				logger.Int("attempts", attempt),
				logger.Error(err))
			return fmt.Errorf("redis unavailable at %s after %d attempts (timeout: %v): %w",
				opts.Addr, attempt, opts.ConnectTimeout, err)
		case <-time.After(wait):
			logAttempt(log, attempt, opts.WarnThreshold, remaining(ctx), wait, err)
		}
	}
}

// logAttempt escalates to error once the threshold is passed or the deadline is near.
func logAttempt(log logger.Logger, attempt, warnThreshold int, left, wait time.Duration, err error) {
	fields := []logger.Field{
		logger.Int("attempt", attempt),
		logger.Duration("remaining", left),
		logger.Duration("next_retry_in", wait),
		logger.Error(err),
	}
	if left >= urgentWindow && attempt <= warnThreshold {
		log.Warn("redis connection failed, retrying", fields...)
		return
	}
	log.Error("redis still unavailable, retrying", fields...)
}

func remaining(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0
	}
	return time.Until(deadline)
}
