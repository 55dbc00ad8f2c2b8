package store

import (
	"context"

	"github.com/pkg/errors"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"
)

const (
	backendFlag = "store-backend"
	dirFlag     = "store-dir"
)

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendPG     = "pg"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	f = append(f,
		cli.StringFlag{
			Name:   backendFlag,
			Usage:  "store backend (memory, file, redis, pg)",
			Value:  BackendFile,
			EnvVar: "STORE_BACKEND",
		},
		cli.StringFlag{
			Name:   dirFlag,
			Usage:  "directory of the file store backend",
			Value:  "data",
			EnvVar: "STORE_DIR",
		},
	)
	return RegisterRedisFlags(f)
}

// Backend persists whole serialized collections under string keys.
// Load returns nil data when nothing was saved under key.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Close() error
}

// NewBackend builds the configured backend. pg is only required by the pg backend.
func NewBackend(c *cli.Context, pg *cs.PG) (Backend, error) {
	switch b := c.String(backendFlag); b {
	case BackendMemory:
		return NewMemoryBackend(), nil
	case BackendFile:
		return NewFileBackend(c.String(dirFlag))
	case BackendRedis:
		return NewRedisBackendFromFlags(c)
	case BackendPG:
		if pg == nil {
			return nil, errors.New("pg store backend requires database configuration")
		}
		return NewPGBackend(pg), nil
	default:
		return nil, errors.Errorf("unknown store backend %q", b)
	}
}

// NeedsPG reports whether the configured backend stores data in Postgres.
func NeedsPG(c *cli.Context) bool {
	return c.String(backendFlag) == BackendPG
}

// NewFileBackendFromFlags opens the file store directory regardless of the
// selected backend.
func NewFileBackendFromFlags(c *cli.Context) (*FileBackend, error) {
	return NewFileBackend(c.String(dirFlag))
}
