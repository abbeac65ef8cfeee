package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/budget/internal/metrics"
	"github.com/MrJamesThe3rd/budget/internal/session"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
	"github.com/MrJamesThe3rd/budget/internal/transaction/memory"
)

func TestCreate(t *testing.T) {
	manager := session.NewManager(func(string) transaction.Repository { return memory.New() })
	tokens := session.NewTokens("secret", time.Hour)
	m := metrics.New(prometheus.NewRegistry())

	r := chi.NewRouter()
	NewHandler(manager, tokens, m, zap.NewNop()).Routes(r)

	var ids []string

	for range 2 {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var resp sessionResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.NotEmpty(t, resp.SessionID)
		assert.WithinDuration(t, time.Now().Add(time.Hour), resp.ExpiresAt, time.Minute)

		id, err := tokens.Verify(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, resp.SessionID, id)

		ids = append(ids, id)
	}

	assert.NotEqual(t, ids[0], ids[1])
	assert.Equal(t, 2, manager.Len())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ActiveSessions))
}
