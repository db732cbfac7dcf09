package sentiment

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeutral(t *testing.T) {
	score, err := Neutral{}.Score("SPY", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestHTTPProvider_Score(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/sentiment", r.URL.Path)
		assert.Equal(t, "SPY", r.URL.Query().Get("symbol"))
		assert.Equal(t, "2024-01-02", r.URL.Query().Get("date"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"score": 0.4}`)
	}))
	defer server.Close()

	provider := NewHTTPProvider(server.URL)
	day := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)

	score, err := provider.Score("SPY", day)
	require.NoError(t, err)
	assert.Equal(t, 0.4, score)

	// The second lookup for the same symbol and day is served from cache.
	score, err = provider.Score("SPY", day)
	require.NoError(t, err)
	assert.Equal(t, 0.4, score)
	assert.Equal(t, int64(1), hits.Load())
}

func TestHTTPProvider_ClampsOutOfRangeScores(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"score": 3.7}`)
	}))
	defer server.Close()

	provider := NewHTTPProvider(server.URL)
	score, err := provider.Score("SPY", time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)
}

func TestHTTPProvider_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := NewHTTPProvider(server.URL)
	_, err := provider.Score("SPY", time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC))
	assert.Error(t, err)
}
