package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/streampay/sdk-go/core/types"
	"go.uber.org/zap"
)

func TestClient(t *testing.T) {
	ctx := context.Background()

	t.Run("get decodes the response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/streams/42", r.URL.Path)
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "42"})
		}))
		defer srv.Close()

		c := NewClient(srv.URL, WithLogger(zap.NewNop()))
		var out struct {
			ID string `json:"id"`
		}
		require.NoError(t, c.Get(ctx, "/streams/42", &out))
		assert.Equal(t, "42", out.ID)
	})

	t.Run("post sends a json body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "lobby", body["roomId"])
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, WithLogger(zap.NewNop()))
		require.NoError(t, c.Post(ctx, "/rooms", map[string]string{"roomId": "lobby"}, nil))
	})

	t.Run("bearer token attaches once set", func(t *testing.T) {
		var auth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
		}))
		defer srv.Close()

		c := NewClient(srv.URL, WithLogger(zap.NewNop()))
		require.NoError(t, c.Get(ctx, "/me", nil))
		assert.Empty(t, auth, "no token, no header")

		c.SetAuthToken("secret")
		require.NoError(t, c.Get(ctx, "/me", nil))
		assert.Equal(t, "Bearer secret", auth)
	})

	t.Run("error status becomes a typed api error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "stream not found"})
		}))
		defer srv.Close()

		c := NewClient(srv.URL, WithLogger(zap.NewNop()))
		err := c.Get(ctx, "/streams/404", nil)
		require.True(t, types.IsKind(err, types.ErrAPI))

		e, ok := types.AsError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, e.HTTPStatus)
		assert.Equal(t, "stream not found", e.Message)
	})

	t.Run("error body without a message falls back", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("<html>oops</html>"))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, WithLogger(zap.NewNop()))
		err := c.Get(ctx, "/broken", nil)
		e, ok := types.AsError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusInternalServerError, e.HTTPStatus)
		assert.Equal(t, "API request failed", e.Message)
	})

	t.Run("context deadline maps to timeout", func(t *testing.T) {
		blocked := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-blocked
		}))
		defer srv.Close()
		defer close(blocked)

		c := NewClient(srv.URL, WithLogger(zap.NewNop()))
		deadlineCtx, cancel := context.WithTimeout(ctx, 0)
		defer cancel()

		err := c.Get(deadlineCtx, "/slow", nil)
		assert.True(t, types.IsKind(err, types.ErrTimeout))
	})

	t.Run("trailing slash in base url", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/streams", r.URL.Path)
		}))
		defer srv.Close()

		c := NewClient(srv.URL+"/", WithLogger(zap.NewNop()))
		require.NoError(t, c.Get(ctx, "/streams", nil))
	})
}
