package command

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mattermost/mattermost-server/v6/model"

	"github.com/ericzzh/mattermost-autodelete/server/app"
	"github.com/ericzzh/mattermost-autodelete/server/bot"
)

// Handler receives slash command invocations from the Mattermost server.
type Handler struct {
	token  string
	teamID string
	logger bot.Logger
	poster bot.Poster
	sender app.Sender
	exit   func(code int)
}

// NewHandler creates the slash command endpoint. Requests must carry token, the
// verification token the server generated for the command. exit is called after the
// killswitch answered.
func NewHandler(token, teamID string, logger bot.Logger, poster bot.Poster, sender app.Sender, exit func(code int)) *Handler {
	return &Handler{
		token:  token,
		teamID: teamID,
		logger: logger,
		poster: poster,
		sender: sender,
		exit:   exit,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}

	token := r.PostForm.Get("token")
	if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.token)) != 1 {
		h.logger.Warnf("Rejected slash command with an invalid token from %s", r.RemoteAddr)
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	args := &model.CommandArgs{
		UserId:    r.PostForm.Get("user_id"),
		ChannelId: r.PostForm.Get("channel_id"),
		TeamId:    r.PostForm.Get("team_id"),
		Command:   strings.TrimSpace(r.PostForm.Get("command") + " " + r.PostForm.Get("text")),
	}

	runner := NewCommandRunner(args, r.PostForm.Get("response_url"), h.teamID, h.logger, h.poster, h.sender)
	resp, err := runner.Execute(r.Context())
	if err != nil {
		h.logger.Errorf("Failed to execute %q: %v", args.Command, err)
		http.Error(w, "failed to execute command", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Warnf("Cannot respond to slash command: %v", err)
	}

	if runner.Killed() {
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		h.exit(1)
	}
}
