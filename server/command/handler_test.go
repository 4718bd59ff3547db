package command_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/ericzzh/mattermost-autodelete/server/app"
	"github.com/ericzzh/mattermost-autodelete/server/command"
	gomock "github.com/golang/mock/gomock"
	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commandForm(token, text string) url.Values {
	return url.Values{
		"token":        {token},
		"team_id":      {"team1"},
		"channel_id":   {"ch1"},
		"user_id":      {"user1"},
		"command":      {"/autodelete"},
		"text":         {text},
		"response_url": {"http://mm/hooks/response"},
	}
}

func post(h http.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/command", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) *model.CommandResponse {
	var resp model.CommandResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return &resp
}

func TestHandler(t *testing.T) {
	noExit := func(t *testing.T) func(int) {
		return func(code int) { t.Fatalf("unexpected exit %d", code) }
	}

	t.Run("configure", func(t *testing.T) {
		m := setupMocks(t)
		m.sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, cmd app.Command) error {
			c, ok := cmd.(app.SetLimitCommand)
			require.True(t, ok)
			assert.Equal(t, 42, c.Limit)
			assert.Equal(t, "ch1", c.ChannelID)
			return nil
		})
		h := command.NewHandler("secret", "team1", m.logger, m.poster, m.sender, noExit(t))

		rec := post(h, commandForm("secret", "configure 42"))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, "Working on it...", decode(t, rec).Text)
	})

	t.Run("invalid token", func(t *testing.T) {
		m := setupMocks(t)
		h := command.NewHandler("secret", "team1", m.logger, m.poster, m.sender, noExit(t))

		assert.Equal(t, http.StatusUnauthorized, post(h, commandForm("wrong", "status")).Code)
		assert.Equal(t, http.StatusUnauthorized, post(h, commandForm("", "status")).Code)
	})

	t.Run("only post", func(t *testing.T) {
		m := setupMocks(t)
		h := command.NewHandler("secret", "team1", m.logger, m.poster, m.sender, noExit(t))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/command", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("actor gone", func(t *testing.T) {
		m := setupMocks(t)
		m.sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(app.ErrActorStopped)
		h := command.NewHandler("secret", "team1", m.logger, m.poster, m.sender, noExit(t))

		assert.Equal(t, http.StatusInternalServerError, post(h, commandForm("secret", "status")).Code)
	})

	t.Run("killswitch answers then exits", func(t *testing.T) {
		m := setupMocks(t)
		var exitCode int
		var answered bool
		var rec *httptest.ResponseRecorder
		h := command.NewHandler("secret", "team1", m.logger, m.poster, m.sender, func(code int) {
			exitCode = code
			answered = rec.Body.Len() > 0
		})

		rec = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/command", strings.NewReader(commandForm("secret", "killswitch").Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		h.ServeHTTP(rec, req)

		assert.Equal(t, 1, exitCode)
		assert.True(t, answered)
		assert.True(t, rec.Flushed)
		assert.Equal(t, "Killswitch flipped, bye bye~", decode(t, rec).Text)
	})
}
