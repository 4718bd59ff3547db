package mattermost_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ericzzh/mattermost-autodelete/server/app"
	mock_app "github.com/ericzzh/mattermost-autodelete/server/app/mocks"
	mock_bot "github.com/ericzzh/mattermost-autodelete/server/bot/mocks"
	"github.com/ericzzh/mattermost-autodelete/server/mattermost"
	gomock "github.com/golang/mock/gomock"
	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postData(t *testing.T, post *model.Post, extra map[string]interface{}) map[string]interface{} {
	raw, err := json.Marshal(post)
	require.NoError(t, err)

	data := map[string]interface{}{"post": string(raw)}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

func setupListener(t *testing.T) (*mattermost.Listener, *mock_app.MockSender) {
	ctrl := gomock.NewController(t)
	sender := mock_app.NewMockSender(ctrl)
	logger := mock_bot.NewMockLogger(ctrl)
	logger.EXPECT().Debugf(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Infof(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Warnf(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Errorf(gomock.Any(), gomock.Any()).AnyTimes()

	return mattermost.NewListener("http://localhost:8065", "token", "team1", sender, logger), sender
}

func TestListenerHandle(t *testing.T) {
	ctx := context.Background()

	t.Run("posted", func(t *testing.T) {
		listener, sender := setupListener(t)
		sender.EXPECT().Send(gomock.Any(), app.MessageReceivedCommand{
			Message: app.Message{ID: "p1", ChannelID: "ch1", CreateAt: 1000},
		}).Return(nil)

		listener.Handle(ctx, mattermost.Event{
			Type: model.WebsocketEventPosted,
			Data: postData(t, newPost(1, false), map[string]interface{}{"team_id": "team1"}),
		})
	})

	t.Run("direct messages are ignored", func(t *testing.T) {
		listener, _ := setupListener(t)

		listener.Handle(ctx, mattermost.Event{
			Type: model.WebsocketEventPosted,
			Data: postData(t, newPost(1, false), map[string]interface{}{"team_id": ""}),
		})
	})

	t.Run("posts of other teams are ignored", func(t *testing.T) {
		listener, _ := setupListener(t)

		listener.Handle(ctx, mattermost.Event{
			Type: model.WebsocketEventPosted,
			Data: postData(t, newPost(1, false), map[string]interface{}{"team_id": "team2"}),
		})
	})

	t.Run("edited", func(t *testing.T) {
		listener, sender := setupListener(t)
		sender.EXPECT().Send(gomock.Any(), app.MessageUpdatedCommand{
			Message: app.Message{ID: "p1", ChannelID: "ch1", CreateAt: 1000, Pinned: true},
		}).Return(nil)

		listener.Handle(ctx, mattermost.Event{
			Type: model.WebsocketEventPostEdited,
			Data: postData(t, newPost(1, true), nil),
		})
	})

	t.Run("deleted falls back to the broadcast channel", func(t *testing.T) {
		listener, sender := setupListener(t)
		sender.EXPECT().Send(gomock.Any(), app.MessageDeletedCommand{ChannelID: "ch9", MessageID: "p1"}).Return(nil)

		post := newPost(1, false)
		post.ChannelId = ""
		listener.Handle(ctx, mattermost.Event{
			Type:      model.WebsocketEventPostDeleted,
			ChannelID: "ch9",
			Data:      postData(t, post, nil),
		})
	})

	t.Run("malformed and unrelated events are dropped", func(t *testing.T) {
		listener, _ := setupListener(t)

		listener.Handle(ctx, mattermost.Event{Type: model.WebsocketEventPosted, Data: map[string]interface{}{}})
		listener.Handle(ctx, mattermost.Event{Type: model.WebsocketEventPosted, Data: map[string]interface{}{"post": "{"}})
		listener.Handle(ctx, mattermost.Event{Type: model.WebsocketEventPostEdited, Data: map[string]interface{}{"post": "{}"}})
		listener.Handle(ctx, mattermost.Event{Type: model.WebsocketEventTyping, Data: map[string]interface{}{}})
	})

	t.Run("send failure is logged", func(t *testing.T) {
		listener, sender := setupListener(t)
		sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(app.ErrActorStopped)

		listener.Handle(ctx, mattermost.Event{
			Type: model.WebsocketEventPostEdited,
			Data: postData(t, newPost(1, false), nil),
		})
	})
}

func TestWebSocketURL(t *testing.T) {
	assert.Equal(t, "ws://localhost:8065", mattermost.WebSocketURL("http://localhost:8065"))
	assert.Equal(t, "wss://chat.example.com", mattermost.WebSocketURL("https://chat.example.com"))
	assert.Equal(t, "ws://already", mattermost.WebSocketURL("ws://already"))
}
