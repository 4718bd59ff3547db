package sqlstore

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/ericzzh/mattermost-autodelete/server/bot"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// SQLStore wraps the database connection and the statement builder matching its placeholders.
type SQLStore struct {
	log     bot.Logger
	db      *sqlx.DB
	driver  string
	builder sq.StatementBuilderType
}

type builder interface {
	ToSql() (string, []interface{}, error)
}

// New opens the database, checks the connection and brings the schema up to date.
func New(driver, dataSource string, log bot.Logger) (*SQLStore, error) {
	dataSource = strings.TrimSpace(dataSource)
	if dataSource == "" {
		return nil, errors.New("empty data source")
	}

	var (
		db  *sqlx.DB
		err error
	)
	switch driver {
	case DriverSQLite:
		db, err = openSQLite(dataSource)
	case DriverPostgres:
		db, err = openPostgres(dataSource)
	default:
		return nil, errors.Errorf("unknown database driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	var placeholder sq.PlaceholderFormat = sq.Question
	if driver == DriverPostgres {
		placeholder = sq.Dollar
	}

	sqlStore := &SQLStore{
		log:     log,
		db:      db,
		driver:  driver,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
	}

	if err := sqlStore.migrate(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to migrate database")
	}

	log.Infof("Connected to %s database", driver)
	return sqlStore, nil
}

func openSQLite(path string) (*sqlx.DB, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "failed to create database directory %s", dir)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sqlite database")
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to set sqlite busy_timeout")
	}

	return sqlx.NewDb(db, "sqlite3"), nil
}

func openPostgres(dsn string) (*sqlx.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open postgres database")
	}
	db.SetMaxOpenConns(8)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to reach postgres database")
	}

	return sqlx.NewDb(db, "pgx"), nil
}

// Close releases the connection pool.
func (sqlStore *SQLStore) Close() error {
	return sqlStore.db.Close()
}

func (sqlStore *SQLStore) selectBuilder(q sqlx.Queryer, dest interface{}, b builder) error {
	sqlString, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "failed to build sql")
	}

	return sqlx.Select(q, dest, sqlString, args...)
}

func (sqlStore *SQLStore) execBuilder(e sqlx.Execer, b builder) (sql.Result, error) {
	sqlString, args, err := b.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build sql")
	}

	return e.Exec(sqlString, args...)
}
