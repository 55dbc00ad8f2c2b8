package migrations

import (
	"context"

	"github.com/cinebuzz/discovery/models"
	"github.com/cinebuzz/discovery/services/store"
	"github.com/go-pg/migrations/v8"
	log "github.com/sirupsen/logrus"
)

// ImportFileStore copies collections kept by the file backend into the
// collection table. Keys already present in the table are left untouched.
func ImportFileStore(col *migrations.Collection, fb *store.FileBackend) {
	col.MustRegisterTx(func(db migrations.DB) error {
		if fb == nil {
			return nil
		}
		ctx := context.Background()
		keys, err := fb.Keys()
		if err != nil {
			return err
		}
		for _, k := range keys {
			data, err := fb.Load(ctx, k)
			if err != nil {
				return err
			}
			if data == nil {
				continue
			}
			c := &models.Collection{
				Key:  k,
				Data: string(data),
			}
			res, err := db.Model(c).
				OnConflict("(key) DO NOTHING").
				Insert()
			if err != nil {
				return err
			}
			if res.RowsAffected() > 0 {
				log.WithField("key", k).Info("imported collection from file store")
			}
		}
		return nil
	}, func(db migrations.DB) error {
		return nil
	})
}
