package locks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/HienH/smas-vibing/internal/shared"
	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

const (
	defaultLockTTL = 30 * time.Second
	retryInterval  = 25 * time.Millisecond
)

// releaseScript deletes the lock only while it still carries the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript resets the lock's TTL only while it still carries the caller's token.
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisLocker is a [Locker] shared by every process talking to the same Redis.
//
// A held lock is extended every TTL/3 until released. It expires after its TTL
// once the holder stops extending it, so a crashed holder cannot wedge a key.
type RedisLocker struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	logger *log.Logger
}

// RedisOpts configures a [RedisLocker].
type RedisOpts struct {
	Prefix string
	TTL    time.Duration
	Logger *log.Logger
}

// NewRedisLocker wraps an existing client.
func NewRedisLocker(client redis.UniversalClient, opts RedisOpts) *RedisLocker {
	if opts.TTL <= 0 {
		opts.TTL = defaultLockTTL
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &RedisLocker{client: client, prefix: opts.Prefix, ttl: opts.TTL, logger: opts.Logger}
}

// NewRedisClient connects to the configured Redis and pings it.
func NewRedisClient(ctx context.Context, cfg shared.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: redis at %s: %v", shared.ErrServiceUnavailable, cfg.Addr, err)
	}
	return client, nil
}

// Lock polls SET NX until key is acquired or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	token := shared.GenerateID()
	fullKey := l.prefix + "lock:" + key

	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go l.watch(key, fullKey, token, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			err := releaseScript.Run(ctx, l.client, []string{fullKey}, token).Err()
			if err != nil && !errors.Is(err, redis.Nil) {
				l.logger.Warn("failed to release lock", "key", key, "error", err)
			}
		})
	}, nil
}

// extend resets the TTL of a lock still held under token. It reports false once the lock is gone.
func (l *RedisLocker) extend(ctx context.Context, fullKey, token string) (bool, error) {
	n, err := extendScript.Run(ctx, l.client, []string{fullKey}, token, l.ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// watch extends the lock until stop is closed or the lock is lost.
func (l *RedisLocker) watch(key, fullKey, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	interval := l.ttl / 3
	if interval <= 0 {
		<-stop
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), interval)
		ok, err := l.extend(ctx, fullKey, token)
		cancel()
		switch {
		case err != nil:
			l.logger.Warn("failed to extend lock", "key", key, "error", err)
		case !ok:
			l.logger.Warn("lock expired before release", "key", key)
			return
		}
	}
}
