package mattermost

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/ericzzh/mattermost-autodelete/server/app"
	"github.com/ericzzh/mattermost-autodelete/server/bot"
	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/pkg/errors"
)

const defaultReconnectDelay = 5 * time.Second

// Event is the part of a websocket event the listener looks at.
type Event struct {
	Type      string
	ChannelID string
	Data      map[string]interface{}
}

// Listener turns the server's websocket events into actor commands.
type Listener struct {
	name           string
	url            string
	token          string
	teamID         string
	sender         app.Sender
	logger         bot.Logger
	reconnectDelay time.Duration
}

// NewListener creates a listener for the server at serverURL. Posts outside teamID,
// direct messages included, are ignored.
func NewListener(serverURL, token, teamID string, sender app.Sender, logger bot.Logger) *Listener {
	return &Listener{
		name:           "websocket",
		url:            WebSocketURL(serverURL),
		token:          token,
		teamID:         teamID,
		sender:         sender,
		logger:         logger,
		reconnectDelay: defaultReconnectDelay,
	}
}

// WebSocketURL maps http(s)://host to ws(s)://host.
func WebSocketURL(serverURL string) string {
	switch {
	case strings.HasPrefix(serverURL, "https://"):
		return "wss://" + strings.TrimPrefix(serverURL, "https://")
	case strings.HasPrefix(serverURL, "http://"):
		return "ws://" + strings.TrimPrefix(serverURL, "http://")
	}
	return serverURL
}

// Run listens until ctx is done, reconnecting after every disconnect.
func (l *Listener) Run(ctx context.Context) {
	l.logger.Debugf("Listener %s started", l.name)
	defer l.logger.Debugf("Listener %s finished", l.name)

	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return
		}
		l.logger.Warnf("Websocket disconnected, reconnecting in %s: %v", l.reconnectDelay, err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(l.reconnectDelay):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	ws, err := model.NewWebSocketClient4(l.url, l.token)
	if err != nil {
		return errors.Wrap(err, "failed to connect websocket")
	}
	defer ws.Close()

	ws.Listen()
	l.logger.Infof("Listening to %s", l.url)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ws.PingTimeoutChannel:
			return errors.New("websocket ping timeout")
		case ev, ok := <-ws.EventChannel:
			if !ok {
				if ws.ListenError != nil {
					return ws.ListenError
				}
				return errors.New("websocket closed")
			}
			event := Event{Type: ev.EventType(), Data: ev.GetData()}
			if b := ev.GetBroadcast(); b != nil {
				event.ChannelID = b.ChannelId
			}
			l.Handle(ctx, event)
		}
	}
}

// Handle forwards a post event to the actor. Other events are dropped.
func (l *Listener) Handle(ctx context.Context, ev Event) {
	var cmd app.Command

	switch ev.Type {
	case model.WebsocketEventPosted:
		if teamID, _ := ev.Data["team_id"].(string); teamID != l.teamID {
			return
		}
		post, err := decodePost(ev.Data)
		if err != nil {
			l.logger.Warnf("Dropping %s event: %v", ev.Type, err)
			return
		}
		cmd = app.MessageReceivedCommand{Message: ToMessage(post)}
	case model.WebsocketEventPostEdited:
		post, err := decodePost(ev.Data)
		if err != nil {
			l.logger.Warnf("Dropping %s event: %v", ev.Type, err)
			return
		}
		cmd = app.MessageUpdatedCommand{Message: ToMessage(post)}
	case model.WebsocketEventPostDeleted:
		post, err := decodePost(ev.Data)
		if err != nil {
			l.logger.Warnf("Dropping %s event: %v", ev.Type, err)
			return
		}
		channelID := post.ChannelId
		if channelID == "" {
			channelID = ev.ChannelID
		}
		cmd = app.MessageDeletedCommand{ChannelID: channelID, MessageID: post.Id}
	default:
		return
	}

	if err := l.sender.Send(ctx, cmd); err != nil {
		l.logger.Errorf("Failed to enqueue %s event: %v", ev.Type, err)
	}
}

func decodePost(data map[string]interface{}) (*model.Post, error) {
	raw, ok := data["post"].(string)
	if !ok {
		return nil, errors.New("missing post")
	}

	var post model.Post
	if err := json.Unmarshal([]byte(raw), &post); err != nil {
		return nil, errors.Wrap(err, "malformed post")
	}
	if post.Id == "" {
		return nil, errors.New("post without id")
	}
	return &post, nil
}
