package app

import (
	"context"

	"github.com/ericzzh/mattermost-autodelete/server/bot"
	"github.com/pkg/errors"
)

// ErrActorStopped is returned when sending to an actor that no longer runs.
var ErrActorStopped = errors.New("actor stopped")

// Command is a unit of work for the Actor.
type Command interface {
	apply(ctx context.Context, a *Actor)
}

// Reply receives the text to show the user who issued a command.
type Reply func(text string)

// InitializeCommand replays the persisted limits.
type InitializeCommand struct{}

// MessageReceivedCommand is sent for every new post.
type MessageReceivedCommand struct {
	Message Message
}

// MessageDeletedCommand is sent for every deleted post.
type MessageDeletedCommand struct {
	ChannelID string
	MessageID string
}

// MessageUpdatedCommand is sent for every edited post, pinning and unpinning included.
type MessageUpdatedCommand struct {
	Message Message
}

// PinsUpdatedCommand asks for a full pin reconciliation of a channel.
type PinsUpdatedCommand struct {
	ChannelID string
}

// SetLimitCommand is the configure slash command.
type SetLimitCommand struct {
	ChannelID string
	Limit     int
	ActorID   string
	Reply     Reply
}

// RemoveLimitCommand is the remove slash command.
type RemoveLimitCommand struct {
	ChannelID string
	ActorID   string
	Reply     Reply
}

// GetStatusCommand is the status slash command.
type GetStatusCommand struct {
	Reply Reply
}

// Sender enqueues commands for the actor.
type Sender interface {
	Send(ctx context.Context, cmd Command) error
}

// Actor owns the RetentionService and applies commands one at a time, in arrival order,
// whatever channel they target. A slow platform call stalls every channel.
type Actor struct {
	name     string
	service  RetentionService
	logger   bot.Logger
	commands chan Command
	stop     chan bool
	stopped  chan bool
	done     chan struct{}
}

// NewActor creates an actor with a command queue of the given capacity.
func NewActor(service RetentionService, logger bot.Logger, queueSize int) *Actor {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Actor{
		name:     "retention",
		service:  service,
		logger:   logger,
		commands: make(chan Command, queueSize),
		stop:     make(chan bool, 1),
		stopped:  make(chan bool, 1),
		done:     make(chan struct{}),
	}
}

// Send enqueues cmd. It blocks while the queue is full.
func (a *Actor) Send(ctx context.Context, cmd Command) error {
	select {
	case <-a.done:
		return ErrActorStopped
	default:
	}

	select {
	case a.commands <- cmd:
		return nil
	case <-a.done:
		return ErrActorStopped
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "failed to enqueue command")
	}
}

// Run processes commands until Stop is called or ctx is done. The command in progress
// is always completed first.
func (a *Actor) Run(ctx context.Context) {
	a.logger.Debugf("Actor %s started", a.name)

	defer func() {
		close(a.done)
		a.logger.Debugf("Actor %s finished", a.name)
		a.stopped <- true
	}()

	for {
		select {
		case <-a.stop:
			a.logger.Debugf("Actor %s received stop signal", a.name)
			return
		case <-ctx.Done():
			a.logger.Debugf("Actor %s context done", a.name)
			return
		case cmd := <-a.commands:
			cmd.apply(ctx, a)
		}
	}
}

// Stop asks Run to return and waits for it. Run must have been started.
func (a *Actor) Stop() {
	a.logger.Debugf("Actor %s stopping", a.name)
	select {
	case <-a.done:
		return
	default:
	}
	a.stop <- true
	<-a.stopped
}

func (c InitializeCommand) apply(ctx context.Context, a *Actor) {
	if err := a.service.Initialize(ctx); err != nil {
		a.logger.Errorf("Failed to initialize retention: %v", err)
	}
}

func (c MessageReceivedCommand) apply(ctx context.Context, a *Actor) {
	a.service.InsertMessage(ctx, c.Message)
}

func (c MessageDeletedCommand) apply(_ context.Context, a *Actor) {
	a.service.RemoveMessage(c.ChannelID, c.MessageID)
}

func (c MessageUpdatedCommand) apply(ctx context.Context, a *Actor) {
	a.service.UpdateMessage(ctx, c.Message)
}

func (c PinsUpdatedCommand) apply(ctx context.Context, a *Actor) {
	a.service.UpdatePins(ctx, c.ChannelID)
}

func (c SetLimitCommand) apply(ctx context.Context, a *Actor) {
	c.Reply.send(a.service.SetLimit(ctx, c.ChannelID, c.Limit, false, c.ActorID))
}

func (c RemoveLimitCommand) apply(_ context.Context, a *Actor) {
	c.Reply.send(a.service.RemoveLimit(c.ChannelID, c.ActorID))
}

func (c GetStatusCommand) apply(_ context.Context, a *Actor) {
	c.Reply.send(a.service.Status())
}

func (r Reply) send(text string) {
	if r != nil {
		r(text)
	}
}
