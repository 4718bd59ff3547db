package sqlstore

import (
	"database/sql"

	"github.com/pkg/errors"
)

type migration struct {
	version    int
	statements []string
}

// migrations run in order, each inside its own transaction. Statements must work on
// both sqlite and postgres.
var migrations = []migration{
	{
		version: 1,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS channel_limits (
				channel_id TEXT NOT NULL PRIMARY KEY,
				channel_limit INTEGER NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS channel_limit_edits (
				actor_id TEXT NULL,
				channel_id TEXT NOT NULL,
				new_limit INTEGER NOT NULL,
				timestamp_ms BIGINT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_channel_limit_edits_channel_id ON channel_limit_edits (channel_id, timestamp_ms)`,
		},
	},
}

func (sqlStore *SQLStore) currentSchemaVersion() (int, error) {
	if _, err := sqlStore.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return 0, errors.Wrap(err, "failed to create schema_version table")
	}

	var version int
	query := sqlStore.builder.Select("COALESCE(MAX(version), 0)").From("schema_version")
	sqlString, args, err := query.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "failed to build sql")
	}
	if err := sqlStore.db.Get(&version, sqlString, args...); err != nil && err != sql.ErrNoRows {
		return 0, errors.Wrap(err, "failed to read schema version")
	}

	return version, nil
}

func (sqlStore *SQLStore) migrate() error {
	current, err := sqlStore.currentSchemaVersion()
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := sqlStore.db.Beginx()
		if err != nil {
			return errors.Wrap(err, "could not begin transaction")
		}

		for _, statement := range m.statements {
			if _, err := tx.Exec(statement); err != nil {
				_ = tx.Rollback()
				return errors.Wrapf(err, "failed to apply migration %d", m.version)
			}
		}

		if _, err := sqlStore.execBuilder(tx, sqlStore.builder.Insert("schema_version").Columns("version").Values(m.version)); err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "failed to record migration %d", m.version)
		}

		if err := tx.Commit(); err != nil {
			return errors.Wrapf(err, "could not commit migration %d", m.version)
		}
		sqlStore.log.Debugf("Applied schema migration %d", m.version)
	}

	return nil
}
