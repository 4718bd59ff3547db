package bot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/mattermost/mattermost-server/v6/shared/mlog"
	"github.com/pkg/errors"
)

//go:generate mockgen -destination=mocks/mock_logger.go -package=mock_bot github.com/ericzzh/mattermost-autodelete/server/bot Logger
//go:generate mockgen -destination=mocks/mock_poster.go -package=mock_bot github.com/ericzzh/mattermost-autodelete/server/bot Poster

// Logger interface - the leveled, printf style logging used across the service.
type Logger interface {
	Debugf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Infof(format string, args ...interface{})
}

// Poster interface - a small subset of the posting capabilities the bot needs.
type Poster interface {
	// EphemeralPost answers a slash command asynchronously through its response URL.
	// Only the user who issued the command sees the text.
	EphemeralPost(responseURL, text string) error
}

// Bot logs through mlog and answers slash commands over their response URL.
type Bot struct {
	log        *mlog.Logger
	httpClient *http.Client
}

// New creates a new bot.
func New(log *mlog.Logger, httpClient *http.Client) *Bot {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Bot{
		log:        log,
		httpClient: httpClient,
	}
}

// NewLogger creates a mlog logger writing plain text to stdout for the given level and above.
func NewLogger(level string) (*mlog.Logger, error) {
	levels, err := levelsFrom(level)
	if err != nil {
		return nil, err
	}

	logger, err := mlog.NewLogger()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create logger")
	}

	cfg, err := json.Marshal(map[string]interface{}{
		"console": map[string]interface{}{
			"type":           "console",
			"format":         "plain",
			"format_options": map[string]interface{}{"delim": " "},
			"options":        map[string]interface{}{"out": "stdout"},
			"levels":         levels,
			"maxqueuesize":   1000,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode logger configuration")
	}

	if err := logger.Configure("", string(cfg), nil); err != nil {
		return nil, errors.Wrap(err, "failed to configure logger")
	}
	return logger, nil
}

type levelCfg struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Stacktrace bool   `json:"stacktrace,omitempty"`
}

// levelsFrom lists the mlog standard levels enabled for a minimum level name.
func levelsFrom(level string) ([]levelCfg, error) {
	all := []levelCfg{
		{ID: 0, Name: "panic", Stacktrace: true},
		{ID: 1, Name: "fatal", Stacktrace: true},
		{ID: 2, Name: "error"},
		{ID: 3, Name: "warn"},
		{ID: 4, Name: "info"},
		{ID: 5, Name: "debug"},
	}

	name := strings.ToLower(strings.TrimSpace(level))
	if name == "" {
		name = "info"
	}
	if name == "warning" {
		name = "warn"
	}
	for i, l := range all {
		if l.Name == name && i >= 2 {
			return all[:i+1], nil
		}
	}
	return nil, errors.Errorf("invalid log level %q (use: debug|info|warn|error)", level)
}

// Flush blocks until queued log records are written.
func (b *Bot) Flush() error {
	return b.log.Flush()
}

func (b *Bot) Debugf(format string, args ...interface{}) {
	b.log.Debug(fmt.Sprintf(format, args...))
}

func (b *Bot) Errorf(format string, args ...interface{}) {
	b.log.Error(fmt.Sprintf(format, args...))
}

func (b *Bot) Warnf(format string, args ...interface{}) {
	b.log.Warn(fmt.Sprintf(format, args...))
}

func (b *Bot) Infof(format string, args ...interface{}) {
	b.log.Info(fmt.Sprintf(format, args...))
}

// EphemeralPost posts a command response to the response URL handed out with the slash command.
func (b *Bot) EphemeralPost(responseURL, text string) error {
	if responseURL == "" {
		return errors.New("missing response url")
	}

	body, err := json.Marshal(&model.CommandResponse{
		ResponseType: model.CommandResponseTypeEphemeral,
		Text:         text,
	})
	if err != nil {
		return errors.Wrap(err, "failed to encode command response")
	}

	resp, err := b.httpClient.Post(responseURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return errors.Wrapf(err, "failed to post command response")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return errors.Errorf("command response rejected with status %d", resp.StatusCode)
	}
	return nil
}
