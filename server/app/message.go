package app

import (
	"context"

	"github.com/pkg/errors"
)

//go:generate mockgen -destination=mocks/mock_message_store.go -package=mock_app github.com/ericzzh/mattermost-autodelete/server/app MessageStore
//go:generate mockgen -destination=mocks/mock_retention_store.go -package=mock_app github.com/ericzzh/mattermost-autodelete/server/app RetentionStore
//go:generate mockgen -destination=mocks/mock_sender.go -package=mock_app github.com/ericzzh/mattermost-autodelete/server/app Sender

const (
	LimitMin = 5
	LimitMax = 500
)

// ErrInvalidLimit is returned for a requested limit outside [LimitMin, LimitMax].
var ErrInvalidLimit = errors.New("invalid limit")

// Message is a post as far as retention is concerned. CreateAt is in milliseconds.
type Message struct {
	ID        string
	ChannelID string
	CreateAt  int64
	Pinned    bool
}

// MessageStore is the chat platform: history, pins and deletion.
type MessageStore interface {
	// ForEachMessage walks the channel history newest first. It stops when fn returns
	// false or the history is exhausted.
	ForEachMessage(ctx context.Context, channelID string, fn func(Message) bool) error
	// GetPinnedMessages lists the currently pinned messages, oldest first.
	GetPinnedMessages(ctx context.Context, channelID string) ([]Message, error)
	DeleteMessage(ctx context.Context, messageID string) error
}

// ChannelLimit is a persisted limit row.
type ChannelLimit struct {
	ChannelID string `db:"channel_id"`
	Limit     int    `db:"channel_limit"`
}

// AuditRecord is an entry of the limit edit log. An empty ActorID marks a system change,
// a zero NewLimit a removal.
type AuditRecord struct {
	ActorID   string
	ChannelID string
	NewLimit  int
	Timestamp int64
}

// RetentionStore persists the channel limits and their audit log.
type RetentionStore interface {
	GetChannelLimits() ([]ChannelLimit, error)
	UpsertChannelLimit(channelID string, limit int) error
	DeleteChannelLimit(channelID string) error
	AppendAuditRecord(record AuditRecord) error
	// GetAuditRecords returns a channel's audit log, newest first.
	GetAuditRecords(channelID string) ([]AuditRecord, error)
}

// ValidateLimit checks a limit requested by a user.
func ValidateLimit(limit int) error {
	if limit < LimitMin || limit > LimitMax {
		return errors.Wrapf(ErrInvalidLimit, "the limit should be between %d and %d", LimitMin, LimitMax)
	}
	return nil
}
