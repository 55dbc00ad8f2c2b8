package store

import (
	"context"

	"github.com/cinebuzz/discovery/models"
	"github.com/pkg/errors"
	cs "github.com/webtor-io/common-services"
)

// PGBackend stores every collection as one jsonb row of the collection table.
type PGBackend struct {
	pg *cs.PG
}

var _ Backend = (*PGBackend)(nil)

func NewPGBackend(pg *cs.PG) *PGBackend {
	return &PGBackend{pg: pg}
}

func (s *PGBackend) Load(ctx context.Context, key string) ([]byte, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errors.New("database connection not available")
	}
	col, err := models.GetCollection(ctx, db, key)
	if err != nil {
		return nil, err
	}
	if col == nil {
		return nil, nil
	}
	return []byte(col.Data), nil
}

func (s *PGBackend) Save(ctx context.Context, key string, data []byte) error {
	db := s.pg.Get()
	if db == nil {
		return errors.New("database connection not available")
	}
	return models.UpsertCollection(ctx, db, key, data)
}

// Close is a no-op, the connection pool is owned by the caller.
func (s *PGBackend) Close() error {
	return nil
}
