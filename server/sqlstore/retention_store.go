package sqlstore

import (
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/ericzzh/mattermost-autodelete/server/app"
	"github.com/ericzzh/mattermost-autodelete/server/bot"
	"github.com/pkg/errors"
)

type retentionStore struct {
	log          bot.Logger
	store        *SQLStore
	queryBuilder sq.StatementBuilderType
}

type auditRow struct {
	ActorID     sql.NullString `db:"actor_id"`
	ChannelID   string         `db:"channel_id"`
	NewLimit    int            `db:"new_limit"`
	TimestampMs int64          `db:"timestamp_ms"`
}

// NewRetentionStore creates the persistent store of channel limits and their edits.
func NewRetentionStore(log bot.Logger, sqlStore *SQLStore) app.RetentionStore {
	return &retentionStore{
		log:          log,
		store:        sqlStore,
		queryBuilder: sqlStore.builder,
	}
}

func (rs *retentionStore) GetChannelLimits() ([]app.ChannelLimit, error) {
	limits := []app.ChannelLimit{}

	query := rs.queryBuilder.
		Select("channel_id", "channel_limit").
		From("channel_limits").
		OrderBy("channel_id")

	if err := rs.store.selectBuilder(rs.store.db, &limits, query); err != nil {
		return nil, errors.Wrap(err, "failed to get channel limits")
	}

	return limits, nil
}

func (rs *retentionStore) UpsertChannelLimit(channelID string, limit int) error {
	query := rs.queryBuilder.
		Insert("channel_limits").
		Columns("channel_id", "channel_limit").
		Values(channelID, limit).
		Suffix("ON CONFLICT (channel_id) DO UPDATE SET channel_limit = excluded.channel_limit")

	if _, err := rs.store.execBuilder(rs.store.db, query); err != nil {
		return errors.Wrapf(err, "failed to save limit for channel %s", channelID)
	}

	return nil
}

func (rs *retentionStore) DeleteChannelLimit(channelID string) error {
	query := rs.queryBuilder.
		Delete("channel_limits").
		Where(sq.Eq{"channel_id": channelID})

	if _, err := rs.store.execBuilder(rs.store.db, query); err != nil {
		return errors.Wrapf(err, "failed to delete limit for channel %s", channelID)
	}

	return nil
}

func (rs *retentionStore) AppendAuditRecord(record app.AuditRecord) error {
	actorID := sql.NullString{String: record.ActorID, Valid: record.ActorID != ""}

	query := rs.queryBuilder.
		Insert("channel_limit_edits").
		Columns("actor_id", "channel_id", "new_limit", "timestamp_ms").
		Values(actorID, record.ChannelID, record.NewLimit, record.Timestamp)

	if _, err := rs.store.execBuilder(rs.store.db, query); err != nil {
		return errors.Wrapf(err, "failed to save audit record for channel %s", record.ChannelID)
	}

	return nil
}

func (rs *retentionStore) GetAuditRecords(channelID string) ([]app.AuditRecord, error) {
	rows := []auditRow{}

	query := rs.queryBuilder.
		Select("actor_id", "channel_id", "new_limit", "timestamp_ms").
		From("channel_limit_edits").
		Where(sq.Eq{"channel_id": channelID}).
		OrderBy("timestamp_ms DESC")

	if err := rs.store.selectBuilder(rs.store.db, &rows, query); err != nil {
		return nil, errors.Wrapf(err, "failed to get audit records for channel %s", channelID)
	}

	records := make([]app.AuditRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, app.AuditRecord{
			ActorID:   row.ActorID.String,
			ChannelID: row.ChannelID,
			NewLimit:  row.NewLimit,
			Timestamp: row.TimestampMs,
		})
	}

	return records, nil
}
