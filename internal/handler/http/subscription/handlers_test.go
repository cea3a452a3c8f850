package subscription

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdigest/internal/infra/adapter/persistence/file"
	subUC "newsdigest/internal/usecase/subscription"
)

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()

	repo := file.NewRecipientRepo(filepath.Join(t.TempDir(), "recipients.json"))
	mux := http.NewServeMux()
	Register(mux, subUC.NewService(repo))
	return mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func TestSubscribe(t *testing.T) {
	t.Run("new subscriber created", func(t *testing.T) {
		mux := newTestMux(t)

		rr := doJSON(t, mux, "POST", "/subscribe", `{"email":"alice@example.com"}`)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp subscribeResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "alice@example.com", resp.Email)
		assert.True(t, resp.Changed)
	})

	t.Run("duplicate subscribe is a no-op", func(t *testing.T) {
		mux := newTestMux(t)
		doJSON(t, mux, "POST", "/subscribe", `{"email":"alice@example.com"}`)

		rr := doJSON(t, mux, "POST", "/subscribe", `{"email":"ALICE@example.com"}`)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp subscribeResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.False(t, resp.Changed)
	})

	t.Run("invalid email rejected", func(t *testing.T) {
		mux := newTestMux(t)

		rr := doJSON(t, mux, "POST", "/subscribe", `{"email":"not-an-address"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "invalid")
	})

	t.Run("missing email rejected", func(t *testing.T) {
		mux := newTestMux(t)

		rr := doJSON(t, mux, "POST", "/subscribe", `{}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("malformed body rejected", func(t *testing.T) {
		mux := newTestMux(t)

		rr := doJSON(t, mux, "POST", "/subscribe", `{"email":`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestUnsubscribe(t *testing.T) {
	t.Run("removes subscriber", func(t *testing.T) {
		mux := newTestMux(t)
		doJSON(t, mux, "POST", "/subscribe", `{"email":"alice@example.com"}`)

		rr := doJSON(t, mux, "POST", "/unsubscribe", `{"email":"alice@example.com"}`)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp subscribeResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.True(t, resp.Changed)
	})

	t.Run("absent subscriber is a no-op", func(t *testing.T) {
		mux := newTestMux(t)

		rr := doJSON(t, mux, "POST", "/unsubscribe", `{"email":"ghost@example.com"}`)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp subscribeResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.False(t, resp.Changed)
	})
}

func TestListSubscribers(t *testing.T) {
	t.Run("returns subscribers in order", func(t *testing.T) {
		mux := newTestMux(t)
		doJSON(t, mux, "POST", "/subscribe", `{"email":"a@example.com"}`)
		doJSON(t, mux, "POST", "/subscribe", `{"email":"b@example.com"}`)

		rr := doJSON(t, mux, "GET", "/subscribers", "")

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp listResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Count)
		assert.Equal(t, []string{"a@example.com", "b@example.com"}, resp.Recipients)
	})

	t.Run("empty list is an empty array", func(t *testing.T) {
		mux := newTestMux(t)

		rr := doJSON(t, mux, "GET", "/subscribers", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"recipients":[]`)
	})
}
