package lock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/trendlens/backend/internal/domain"
	"github.com/trendlens/backend/internal/platform/logger"
)

// releaseScript deletes the key only while it still holds our token
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Options configures the redis run lock
type Options struct {
	Addr     string
	Password string
	Key      string
	TTL      time.Duration
}

// RedisLock is a single-holder lease stored under one redis key
type RedisLock struct {
	rdb *goredis.Client
	key string
	ttl time.Duration
	log *logger.Logger
}

// NewRedisLock connects to redis and verifies it answers
func NewRedisLock(ctx context.Context, opts Options, log *logger.Logger) (*RedisLock, error) {
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	key := opts.Key
	if key == "" {
		key = "trendlens:run-lock"
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    opts.Password,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisLock{
		rdb: rdb,
		key: key,
		ttl: ttl,
		log: log.With("component", "RunLock", "key", key),
	}, nil
}

// Acquire takes the lease or returns ErrRunInProgress when another holder has it.
// The returned release is safe to call more than once.
func (l *RedisLock) Acquire(ctx context.Context) (func(), error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquiring run lock: %w", err)
	}
	if !ok {
		return nil, domain.ErrRunInProgress
	}
	l.log.Debug("run lock acquired", "ttl", l.ttl.String())

	var once sync.Once
	return func() {
		once.Do(func() { l.release(token) })
	}, nil
}

func (l *RedisLock) release(token string) {
	relCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := releaseScript.Run(relCtx, l.rdb, []string{l.key}, token).Err(); err != nil {
		l.log.Warn("failed to release run lock", "error", err)
	}
}

// Close closes the redis connection
func (l *RedisLock) Close() error {
	return l.rdb.Close()
}
