package migration

import (
	"github.com/go-pg/migrations/v8"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"
)

const (
	migrationsDirFlag = "sql-migrations-dir"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   migrationsDirFlag,
			Usage:  "directory of sql migrations",
			Value:  "migrations",
			EnvVar: "SQL_MIGRATIONS_DIR",
		},
	)
}

// PGMigration runs sql migrations found in dir together with the Go
// migrations registered on col.
type PGMigration struct {
	db  *cs.PG
	col *migrations.Collection
	dir string
}

func New(c *cli.Context, db *cs.PG, col *migrations.Collection) *PGMigration {
	return NewPGMigration(db, col, c.String(migrationsDirFlag))
}

func NewPGMigration(db *cs.PG, col *migrations.Collection, dir string) *PGMigration {
	return &PGMigration{
		db:  db,
		col: col,
		dir: dir,
	}
}

func (s *PGMigration) Run(a ...string) error {
	db := s.db.Get()
	if db == nil {
		log.Info("DB not initialized, skipping migration")
		return nil
	}
	if err := s.col.DiscoverSQLMigrations(s.dir); err != nil {
		return errors.Wrapf(err, "failed to discover migrations in %v", s.dir)
	}
	_, _, err := s.col.Run(db, "init")
	if err != nil {
		return errors.Wrap(err, "failed to init DB migrations")
	}
	oldVersion, newVersion, err := s.col.Run(db, a...)
	if err != nil {
		return errors.Wrapf(err, "failed to migrate DB from version %v to %v", oldVersion, newVersion)
	}
	log.WithFields(log.Fields{
		"old": oldVersion,
		"new": newVersion,
	}).Info("DB migration done")
	return nil
}
