package bot

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelsFrom(t *testing.T) {
	t.Run("debug enables everything", func(t *testing.T) {
		levels, err := levelsFrom("debug")
		require.NoError(t, err)
		assert.Len(t, levels, 6)
	})

	t.Run("empty means info", func(t *testing.T) {
		levels, err := levelsFrom("")
		require.NoError(t, err)
		require.Len(t, levels, 5)
		assert.Equal(t, "info", levels[4].Name)
	})

	t.Run("warning alias", func(t *testing.T) {
		levels, err := levelsFrom("WARNING")
		require.NoError(t, err)
		assert.Equal(t, "warn", levels[len(levels)-1].Name)
	})

	t.Run("error", func(t *testing.T) {
		levels, err := levelsFrom("error")
		require.NoError(t, err)
		assert.Len(t, levels, 3)
	})

	t.Run("unknown level", func(t *testing.T) {
		_, err := levelsFrom("verbose")
		assert.Error(t, err)
	})

	t.Run("fatal is not selectable", func(t *testing.T) {
		_, err := levelsFrom("fatal")
		assert.Error(t, err)
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("configures the console target", func(t *testing.T) {
		logger, err := NewLogger("debug")
		require.NoError(t, err)
		defer logger.Shutdown()

		b := New(logger, nil)
		b.Infof("hello %s", "world")
		assert.NoError(t, b.Flush())
	})

	t.Run("rejects an unknown level", func(t *testing.T) {
		_, err := NewLogger("verbose")
		assert.Error(t, err)
	})
}

func TestEphemeralPost(t *testing.T) {
	t.Run("posts an ephemeral command response", func(t *testing.T) {
		var got model.CommandResponse
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		b := New(nil, srv.Client())
		require.NoError(t, b.EphemeralPost(srv.URL, "hello"))
		assert.Equal(t, model.CommandResponseTypeEphemeral, got.ResponseType)
		assert.Equal(t, "hello", got.Text)
	})

	t.Run("rejected response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		b := New(nil, srv.Client())
		assert.Error(t, b.EphemeralPost(srv.URL, "hello"))
	})

	t.Run("missing response url", func(t *testing.T) {
		b := New(nil, nil)
		assert.Error(t, b.EphemeralPost("", "hello"))
	})
}
