package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ericzzh/mattermost-autodelete/server/bot"
	"github.com/pkg/errors"
)

// RetentionService enforces the per channel limits. It is not safe for concurrent use:
// the Actor is its only caller.
type RetentionService interface {
	// Initialize replays every persisted limit.
	Initialize(ctx context.Context) error
	// InsertMessage retains a freshly posted message, evicting the oldest ones over the limit.
	InsertMessage(ctx context.Context, msg Message)
	// RemoveMessage forgets a message deleted on the platform.
	RemoveMessage(channelID, messageID string)
	// UpdateMessage reconciles the channel pins when an edit changed the message's pin state.
	UpdateMessage(ctx context.Context, msg Message)
	// UpdatePins reconciles the channel pins with the platform.
	UpdatePins(ctx context.Context, channelID string)
	// SetLimit creates or resizes a channel's retention and returns the reply for the user.
	SetLimit(ctx context.Context, channelID string, limit int, isReplay bool, actorID string) string
	// RemoveLimit stops retaining a channel and returns the reply for the user.
	RemoveLimit(channelID, actorID string) string
	// Status summarizes every monitored channel.
	Status() string
	// Channel returns a snapshot of a monitored channel.
	Channel(channelID string) (ChannelState, bool)
}

// ChannelState is a read-only copy of a channel's queue.
type ChannelState struct {
	Messages []Message
	Pins     []Message
	Limit    int
}

type retentionService struct {
	logger   bot.Logger
	messages MessageStore
	store    RetentionStore
	channels map[string]*CappedQueue
	now      func() time.Time
}

// NewRetentionService creates a retention service with an empty registry.
func NewRetentionService(messages MessageStore, store RetentionStore, logger bot.Logger) RetentionService {
	return &retentionService{
		logger:   logger,
		messages: messages,
		store:    store,
		channels: map[string]*CappedQueue{},
		now:      time.Now,
	}
}

func (s *retentionService) Initialize(ctx context.Context) error {
	rows, err := s.store.GetChannelLimits()
	if err != nil {
		return errors.Wrap(err, "failed to load channel limits")
	}

	s.logger.Debugf("Initializing %d queues from database", len(rows))
	for _, row := range rows {
		if row.ChannelID == "" || row.Limit <= 0 {
			s.logger.Errorf("Skipping invalid channel limit row channel=%q limit=%d", row.ChannelID, row.Limit)
			continue
		}
		s.logger.Debugf("%s", s.SetLimit(ctx, row.ChannelID, row.Limit, true, ""))
	}
	s.logger.Infof("Finished initializing queues from database")

	return nil
}

func (s *retentionService) InsertMessage(ctx context.Context, msg Message) {
	cq, ok := s.channels[msg.ChannelID]
	if !ok {
		return
	}

	evicted := cq.Push(msg, false)
	s.purge(ctx, "insert", evicted)
	s.logger.Debugf("Pushed message %s (now %d vs %d)", msg.ID, cq.Len(), cq.Limit())
}

func (s *retentionService) RemoveMessage(channelID, messageID string) {
	cq, ok := s.channels[channelID]
	if !ok {
		return
	}

	if cq.Remove(messageID) {
		s.logger.Debugf("Removed message %s from channel %s (queue=%d pins=%d)", messageID, channelID, cq.Len(), len(cq.pins))
	}
}

func (s *retentionService) UpdateMessage(ctx context.Context, msg Message) {
	cq, ok := s.channels[msg.ChannelID]
	if !ok {
		return
	}

	if msg.Pinned != cq.IsPinned(msg.ID) {
		s.UpdatePins(ctx, msg.ChannelID)
	}
}

func (s *retentionService) UpdatePins(ctx context.Context, channelID string) {
	cq, ok := s.channels[channelID]
	if !ok {
		return
	}

	snapshot, err := s.messages.GetPinnedMessages(ctx, channelID)
	if err != nil {
		s.logger.Errorf("Failed to get pinned messages of channel %s: %v", channelID, err)
		return
	}

	diff := DiffPins(cq.pins, snapshot)
	s.logger.Debugf("Channel %s pins: %d added, %d removed", channelID, len(diff.Added), len(diff.Removed))

	evicted := cq.ApplyPins(diff)
	s.purge(ctx, "pins", evicted)
	s.logger.Debugf("Channel %s now has %d pins and %d of %d messages", channelID, len(cq.pins), cq.Len(), cq.Limit())
}

func (s *retentionService) SetLimit(ctx context.Context, channelID string, limit int, isReplay bool, actorID string) string {
	cq, ok := s.channels[channelID]
	if !ok {
		return s.createLimit(ctx, channelID, limit, isReplay, actorID)
	}

	s.persist(channelID, limit, actorID)

	oldLimit := cq.Limit()
	if oldLimit == limit {
		return fmt.Sprintf("%d already is the limit for %s!", limit, mention(channelID))
	}

	if limit > oldLimit {
		cq.SetLimit(limit)
		return fmt.Sprintf("Okay, I increased the limit of %s from %d to %d!", mention(channelID), oldLimit, limit)
	}

	evicted := cq.SetLimit(limit)
	s.logger.Debugf("Have to delete %d messages from channel %s", len(evicted), channelID)
	s.purge(ctx, "limit", evicted)
	return fmt.Sprintf("Okay, I decreased the limit of %s from %d to %d, and I'm already purging older messages!", mention(channelID), oldLimit, limit)
}

// createLimit registers a channel and backfills its queue from history. History comes
// newest first: the first limit non-pinned messages are kept, the rest is deleted.
func (s *retentionService) createLimit(ctx context.Context, channelID string, limit int, isReplay bool, actorID string) string {
	cq := NewCappedQueue(limit)
	s.channels[channelID] = cq

	var seen int
	err := s.messages.ForEachMessage(ctx, channelID, func(msg Message) bool {
		if msg.Pinned {
			return true
		}
		if seen < limit {
			cq.Push(msg, true)
		} else {
			s.deleteMessage(ctx, "backfill", msg)
		}
		seen++
		return true
	})
	if err != nil {
		s.logger.Errorf("Failed to scan history of channel %s: %v", channelID, err)
		return err.Error()
	}

	pins, err := s.messages.GetPinnedMessages(ctx, channelID)
	if err != nil {
		s.logger.Errorf("Failed to get pinned messages of channel %s: %v", channelID, err)
	}
	for _, pin := range pins {
		cq.InsertPin(pin)
	}

	s.logger.Debugf("Set queue limit of channel %s to %d (seen=%d pins=%d)", channelID, limit, seen, len(cq.pins))

	if isReplay {
		return fmt.Sprintf("Initialized channel %s limit to %d", channelID, limit)
	}

	s.persist(channelID, limit, actorID)
	return fmt.Sprintf("Created limit %d for channel %s, and I'm already purging older messages!", limit, mention(channelID))
}

func (s *retentionService) RemoveLimit(channelID, actorID string) string {
	cq, ok := s.channels[channelID]
	if !ok {
		return fmt.Sprintf("%s doesn't have a limit!", mention(channelID))
	}
	delete(s.channels, channelID)

	if err := s.store.DeleteChannelLimit(channelID); err != nil {
		s.logger.Errorf("Failed to delete limit of channel %s: %v", channelID, err)
	}
	s.audit(channelID, 0, actorID)

	return fmt.Sprintf("Removed limit (%d) from %s", cq.Limit(), mention(channelID))
}

func (s *retentionService) Status() string {
	if len(s.channels) == 0 {
		return "There are no channels being autodeleted"
	}

	ids := make([]string, 0, len(s.channels))
	for id := range s.channels {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	b.WriteString("The following channels are being autodeleted:\n")
	for _, id := range ids {
		cq := s.channels[id]
		var usage float64
		if cq.Limit() > 0 {
			usage = float64(cq.Len()) / float64(cq.Limit()) * 100
		}
		fmt.Fprintf(&b, "- %s | %d / %d (%.0f%% full)\n", mention(id), cq.Len(), cq.Limit(), usage)
	}
	return b.String()
}

func (s *retentionService) Channel(channelID string) (ChannelState, bool) {
	cq, ok := s.channels[channelID]
	if !ok {
		return ChannelState{}, false
	}
	return ChannelState{
		Messages: cq.Messages(),
		Pins:     cq.Pins(),
		Limit:    cq.Limit(),
	}, true
}

// persist writes the limit row and its audit record. Failures only get logged, the in
// memory state stays authoritative until the next successful write.
func (s *retentionService) persist(channelID string, limit int, actorID string) {
	if err := s.store.UpsertChannelLimit(channelID, limit); err != nil {
		s.logger.Errorf("Failed to save limit %d of channel %s: %v", limit, channelID, err)
	}
	s.audit(channelID, limit, actorID)
}

func (s *retentionService) audit(channelID string, limit int, actorID string) {
	record := AuditRecord{
		ActorID:   actorID,
		ChannelID: channelID,
		NewLimit:  limit,
		Timestamp: s.now().UnixMilli(),
	}
	if err := s.store.AppendAuditRecord(record); err != nil {
		s.logger.Errorf("Failed to save audit record for channel %s: %v", channelID, err)
	}
}

func (s *retentionService) purge(ctx context.Context, op string, evicted []Message) {
	for _, msg := range evicted {
		s.deleteMessage(ctx, op, msg)
	}
}

// deleteMessage is best effort: the message already left the local state.
func (s *retentionService) deleteMessage(ctx context.Context, op string, msg Message) {
	s.logger.Debugf("%s: deleting message %s (channel=%s create_at=%d)", op, msg.ID, msg.ChannelID, msg.CreateAt)
	if err := s.messages.DeleteMessage(ctx, msg.ID); err != nil {
		s.logger.Errorf("Failed to delete message %s: %v", msg.ID, err)
	}
}

func mention(channelID string) string {
	return "`" + channelID + "`"
}
