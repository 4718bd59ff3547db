package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/ericzzh/mattermost-autodelete/server/app"
	mock_app "github.com/ericzzh/mattermost-autodelete/server/app/mocks"
	gomock "github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startActor(t *testing.T, queueSize int) (*app.Actor, *mock_app.MockMessageStore, *mock_app.MockRetentionStore) {
	ctrl := gomock.NewController(t)
	messages := mock_app.NewMockMessageStore(ctrl)
	store := mock_app.NewMockRetentionStore(ctrl)
	logger := newLoggerMock(ctrl)

	actor := app.NewActor(app.NewRetentionService(messages, store, logger), logger, queueSize)
	go actor.Run(context.Background())
	t.Cleanup(actor.Stop)

	return actor, messages, store
}

func waitReply(t *testing.T, replies <-chan string) string {
	select {
	case text := <-replies:
		return text
	case <-time.After(5 * time.Second):
		require.FailNow(t, "no reply")
		return ""
	}
}

func TestActor(t *testing.T) {
	t.Run("commands are applied in arrival order", func(t *testing.T) {
		actor, messages, store := startActor(t, 4)
		ctx := context.Background()

		messages.EXPECT().ForEachMessage(gomock.Any(), "ch1", gomock.Any()).Return(nil)
		messages.EXPECT().GetPinnedMessages(gomock.Any(), "ch1").Return(nil, nil)
		store.EXPECT().UpsertChannelLimit("ch1", 5).Return(nil)
		store.EXPECT().AppendAuditRecord(auditRecord("user1", "ch1", 5)).Return(nil)
		messages.EXPECT().DeleteMessage(gomock.Any(), "m1").Return(nil)

		replies := make(chan string, 2)
		reply := func(text string) { replies <- text }

		require.NoError(t, actor.Send(ctx, app.SetLimitCommand{ChannelID: "ch1", Limit: 5, ActorID: "user1", Reply: reply}))
		for i := 1; i <= 6; i++ {
			require.NoError(t, actor.Send(ctx, app.MessageReceivedCommand{Message: msg(i)}))
		}
		require.NoError(t, actor.Send(ctx, app.MessageDeletedCommand{ChannelID: "ch1", MessageID: "m6"}))
		require.NoError(t, actor.Send(ctx, app.GetStatusCommand{Reply: reply}))

		assert.Contains(t, waitReply(t, replies), "Created limit 5")
		assert.Contains(t, waitReply(t, replies), "- `ch1` | 4 / 5 (80% full)")
	})

	t.Run("initialize failure is logged and the actor keeps running", func(t *testing.T) {
		actor, _, store := startActor(t, 1)
		ctx := context.Background()

		store.EXPECT().GetChannelLimits().Return(nil, errors.New("no database"))

		replies := make(chan string, 1)
		require.NoError(t, actor.Send(ctx, app.InitializeCommand{}))
		require.NoError(t, actor.Send(ctx, app.RemoveLimitCommand{ChannelID: "ch1", ActorID: "user1", Reply: func(text string) { replies <- text }}))

		assert.Equal(t, "`ch1` doesn't have a limit!", waitReply(t, replies))
	})

	t.Run("nil reply is ignored", func(t *testing.T) {
		actor, _, _ := startActor(t, 1)
		ctx := context.Background()

		replies := make(chan string, 1)
		require.NoError(t, actor.Send(ctx, app.GetStatusCommand{}))
		require.NoError(t, actor.Send(ctx, app.GetStatusCommand{Reply: func(text string) { replies <- text }}))

		assert.Equal(t, "There are no channels being autodeleted", waitReply(t, replies))
	})

	t.Run("send after stop fails", func(t *testing.T) {
		actor, _, _ := startActor(t, 1)

		actor.Stop()
		actor.Stop()

		err := actor.Send(context.Background(), app.GetStatusCommand{})
		assert.Equal(t, app.ErrActorStopped, err)
	})

	t.Run("send gives up when the context is done", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		logger := newLoggerMock(ctrl)
		service := app.NewRetentionService(mock_app.NewMockMessageStore(ctrl), mock_app.NewMockRetentionStore(ctrl), logger)
		// never started, so the queue fills up
		actor := app.NewActor(service, logger, 1)
		require.NoError(t, actor.Send(context.Background(), app.GetStatusCommand{}))

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		err := actor.Send(ctx, app.GetStatusCommand{})

		require.Error(t, err)
		assert.Equal(t, context.DeadlineExceeded, errors.Cause(err))
	})

	t.Run("run returns when its context is cancelled", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		logger := newLoggerMock(ctrl)
		service := app.NewRetentionService(mock_app.NewMockMessageStore(ctrl), mock_app.NewMockRetentionStore(ctrl), logger)
		actor := app.NewActor(service, logger, 1)

		ctx, cancel := context.WithCancel(context.Background())
		finished := make(chan struct{})
		go func() {
			actor.Run(ctx)
			close(finished)
		}()
		cancel()

		select {
		case <-finished:
		case <-time.After(5 * time.Second):
			require.FailNow(t, "actor did not stop")
		}
		assert.Equal(t, app.ErrActorStopped, actor.Send(context.Background(), app.GetStatusCommand{}))
	})
}
