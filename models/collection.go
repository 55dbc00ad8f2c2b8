package models

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/pkg/errors"
)

// Collection holds one serialized store collection per key.
type Collection struct {
	tableName struct{} `pg:"collection"`

	Key       string    `pg:"key,pk"`
	Data      string    `pg:"data,type:jsonb,notnull"`
	UpdatedAt time.Time `pg:"updated_at,default:now()"`
}

func GetCollection(ctx context.Context, db *pg.DB, key string) (*Collection, error) {
	var col Collection
	err := db.Model(&col).
		Context(ctx).
		Where("key = ?", key).
		Limit(1).
		Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch collection %v", key)
	}
	return &col, nil
}

func UpsertCollection(ctx context.Context, db *pg.DB, key string, data []byte) error {
	col := &Collection{
		Key:       key,
		Data:      string(data),
		UpdatedAt: time.Now(),
	}
	_, err := db.Model(col).
		Context(ctx).
		OnConflict("(key) DO UPDATE").
		Set("data = EXCLUDED.data, updated_at = EXCLUDED.updated_at").
		Insert()
	if err != nil {
		return errors.Wrapf(err, "failed to upsert collection %v", key)
	}
	return nil
}
