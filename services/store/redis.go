package store

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

const (
	redisHostFlag     = "redis-host"
	redisPortFlag     = "redis-port"
	redisPasswordFlag = "redis-password"
	redisDBFlag       = "redis-db"
	redisPrefixFlag   = "redis-prefix"
)

func RegisterRedisFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   redisHostFlag,
			Usage:  "redis host",
			Value:  "localhost",
			EnvVar: "REDIS_HOST",
		},
		cli.IntFlag{
			Name:   redisPortFlag,
			Usage:  "redis port",
			Value:  6379,
			EnvVar: "REDIS_PORT",
		},
		cli.StringFlag{
			Name:   redisPasswordFlag,
			Usage:  "redis password",
			EnvVar: "REDIS_PASSWORD",
		},
		cli.IntFlag{
			Name:   redisDBFlag,
			Usage:  "redis db",
			Value:  0,
			EnvVar: "REDIS_DB",
		},
		cli.StringFlag{
			Name:   redisPrefixFlag,
			Usage:  "prefix of all store keys",
			Value:  "cinebuzz:",
			EnvVar: "REDIS_PREFIX",
		},
	)
}

type RedisBackend struct {
	cl     *redis.Client
	prefix string
}

var _ Backend = (*RedisBackend)(nil)

func NewRedisBackendFromFlags(c *cli.Context) (*RedisBackend, error) {
	addr := fmt.Sprintf("%v:%v", c.String(redisHostFlag), c.Int(redisPortFlag))
	cl := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     c.String(redisPasswordFlag),
		DB:           c.Int(redisDBFlag),
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cl.Ping(ctx).Err(); err != nil {
		_ = cl.Close()
		return nil, errors.Wrapf(err, "redis connection to %v failed", addr)
	}
	log.WithField("addr", addr).Info("connected to redis store")
	return NewRedisBackend(cl, c.String(redisPrefixFlag)), nil
}

func NewRedisBackend(cl *redis.Client, prefix string) *RedisBackend {
	return &RedisBackend{
		cl:     cl,
		prefix: prefix,
	}
}

func (s *RedisBackend) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.cl.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get %v", key)
	}
	return data, nil
}

func (s *RedisBackend) Save(ctx context.Context, key string, data []byte) error {
	if err := s.cl.Set(ctx, s.prefix+key, data, 0).Err(); err != nil {
		return errors.Wrapf(err, "failed to set %v", key)
	}
	return nil
}

func (s *RedisBackend) Close() error {
	return s.cl.Close()
}
