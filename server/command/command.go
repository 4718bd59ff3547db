package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mattermost/mattermost-server/v6/model"

	"github.com/ericzzh/mattermost-autodelete/server/app"
	"github.com/ericzzh/mattermost-autodelete/server/bot"
	"github.com/pkg/errors"
)

// Trigger is the slash command keyword.
const Trigger = "autodelete"

const helpText = "######  Autodelete - Slash Command Help\n" +
	"* `/autodelete configure <messages>` - Keep only the newest messages of this channel (5 to 500). Pinned messages don't count.\n" +
	"* `/autodelete remove` - Stop autodeleting this channel.\n" +
	"* `/autodelete status` - Collect data about managed channels.\n" +
	"* `/autodelete killswitch` - Kill this bot if it starts behaving unexpectedly.\n" +
	""

const workingText = "Working on it..."

// GetCommand describes the custom slash command to create on the server. url is where
// the server will post invocations.
func GetCommand(teamID, url string) *model.Command {
	return &model.Command{
		TeamId:           teamID,
		Trigger:          Trigger,
		Method:           model.CommandMethodPost,
		URL:              url,
		DisplayName:      "Autodelete",
		Description:      "Keep only the newest messages of a channel",
		AutoComplete:     true,
		AutoCompleteDesc: "Available commands: configure, remove, status, killswitch, help",
		AutoCompleteHint: "[command]",
		Username:         "autodelete",
	}
}

// Runner handles commands.
type Runner struct {
	args        *model.CommandArgs
	responseURL string
	teamID      string
	logger      bot.Logger
	poster      bot.Poster
	sender      app.Sender
	killed      bool
}

// NewCommandRunner creates a command runner for one invocation.
func NewCommandRunner(args *model.CommandArgs,
	responseURL string,
	teamID string,
	logger bot.Logger,
	poster bot.Poster,
	sender app.Sender,
) *Runner {
	return &Runner{
		args:        args,
		responseURL: responseURL,
		teamID:      teamID,
		logger:      logger,
		poster:      poster,
		sender:      sender,
	}
}

func (r *Runner) isValid() error {
	if r.args == nil || r.sender == nil || r.poster == nil {
		return errors.New("invalid arguments to command.Runner")
	}
	return nil
}

// Killed reports whether the invocation flipped the killswitch. The caller must terminate
// the process once the response is delivered.
func (r *Runner) Killed() bool {
	return r.killed
}

// Execute runs the invocation and returns the inline response. Work handed to the actor
// answers later through the response URL.
func (r *Runner) Execute(ctx context.Context) (*model.CommandResponse, error) {
	if err := r.isValid(); err != nil {
		return nil, err
	}

	split := strings.Fields(r.args.Command)
	if len(split) == 0 {
		return r.commandResponse(helpText), nil
	}
	command := split[0]
	parameters := []string{}
	cmd := ""
	if len(split) > 1 {
		cmd = split[1]
	}
	if len(split) > 2 {
		parameters = split[2:]
	}

	if command != "/"+Trigger {
		return r.commandResponse(fmt.Sprintf("Unknown command: %s", command)), nil
	}

	if r.args.TeamId != r.teamID {
		r.logger.Warnf("Rejected /%s %s from user %s of team %s", Trigger, cmd, r.args.UserId, r.args.TeamId)
		return r.commandResponse("This bot doesn't manage this team."), nil
	}

	r.logger.Infof("Received /%s %s from %s in %s", Trigger, cmd, r.args.UserId, r.args.ChannelId)

	switch cmd {
	case "configure":
		return r.actionConfigure(ctx, parameters)
	case "remove":
		return r.deferToActor(ctx, app.RemoveLimitCommand{
			ChannelID: r.args.ChannelId,
			ActorID:   r.args.UserId,
			Reply:     r.reply,
		})
	case "status":
		return r.deferToActor(ctx, app.GetStatusCommand{Reply: r.reply})
	case "killswitch":
		return r.actionKillswitch(), nil
	default:
		return r.commandResponse(helpText), nil
	}
}

func (r *Runner) actionConfigure(ctx context.Context, args []string) (*model.CommandResponse, error) {
	if len(args) != 1 {
		return r.commandResponse("Please choose a valid number"), nil
	}

	limit, err := strconv.Atoi(args[0])
	if err != nil {
		return r.commandResponse("Please choose a valid number"), nil
	}

	if err := app.ValidateLimit(limit); err != nil {
		return r.commandResponse(fmt.Sprintf("The limit should be between %d and %d", app.LimitMin, app.LimitMax)), nil
	}

	return r.deferToActor(ctx, app.SetLimitCommand{
		ChannelID: r.args.ChannelId,
		Limit:     limit,
		ActorID:   r.args.UserId,
		Reply:     r.reply,
	})
}

// actionKillswitch stops the bot without draining the actor.
func (r *Runner) actionKillswitch() *model.CommandResponse {
	r.logger.Errorf("User %s flipped the killswitch!", r.args.UserId)
	r.killed = true
	return r.commandResponse("Killswitch flipped, bye bye~")
}

func (r *Runner) deferToActor(ctx context.Context, cmd app.Command) (*model.CommandResponse, error) {
	if err := r.sender.Send(ctx, cmd); err != nil {
		return nil, errors.Wrap(err, "failed to send command")
	}
	return r.commandResponse(workingText), nil
}

func (r *Runner) reply(text string) {
	if err := r.poster.EphemeralPost(r.responseURL, text); err != nil {
		r.logger.Warnf("Cannot respond to slash command: %v", err)
	}
}

func (r *Runner) commandResponse(text string) *model.CommandResponse {
	return &model.CommandResponse{
		ResponseType: model.CommandResponseTypeEphemeral,
		Text:         text,
	}
}
