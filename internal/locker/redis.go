package locker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hireflow/interviewd/pkg/errors"
	"github.com/hireflow/interviewd/pkg/logger"
)

type Config struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	LeaseTTL time.Duration `yaml:"lease_ttl"`
}

const defaultLeaseTTL = 10 * time.Second

// releaseScript deletes a key only when it still holds our token, so an
// expired lease reacquired by somebody else is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

func NewRedis(ctx context.Context, cfg Config, log logger.Logger) (*redisLocker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	err := client.Ping(ctx).Err()
	if err != nil {
		return nil, errors.WrapFail(err, "connect to redis")
	}

	ttl := cfg.LeaseTTL
	if ttl <= 0 {
		ttl = defaultLeaseTTL
	}

	return &redisLocker{
		client: client,
		ttl:    ttl,
		log:    log.With("redis_locker"),
	}, nil
}

type redisLocker struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

// Acquire takes a short lease on every key in order. The lease bounds how
// long a crashed holder can block others; live holders release explicitly.
func (l *redisLocker) Acquire(ctx context.Context, keys []string) (func(), error) {
	token := uuid.NewString()

	taken := make([]string, 0, len(keys))
	for _, key := range keys {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			l.releaseAll(taken, token)
			return nil, errors.WrapFail(err, "set lock key")
		}
		if !ok {
			l.releaseAll(taken, token)
			return nil, ErrNotAcquired
		}
		taken = append(taken, key)
	}

	return func() { l.releaseAll(taken, token) }, nil
}

func (l *redisLocker) releaseAll(keys []string, token string) {
	if len(keys) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for _, key := range keys {
		err := releaseScript.Run(ctx, l.client, []string{key}, token).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			l.log.Warn(errors.WrapFailf(err, " release lock %q", key))
		}
	}
}

func (l *redisLocker) Close() error {
	return l.client.Close()
}
