// Package sentiment provides advisory sentiment scores for entry filtering.
// Scores are strictly advisory: they may veto or de-weight an entry but the
// engine runs unchanged without a provider.
package sentiment

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// Provider returns a sentiment score in [-1, 1] for a symbol at a point in
// time: -1 is maximally bearish, +1 maximally bullish.
type Provider interface {
	Score(symbol string, ts time.Time) (float64, error)
}

// Neutral always returns zero, the identity overlay.
type Neutral struct{}

func (Neutral) Score(string, time.Time) (float64, error) { return 0, nil }

// HTTPProvider fetches scores from a sentiment service over HTTP and caches
// them per symbol and day. Safe for concurrent use across parallel runs.
type HTTPProvider struct {
	client  *resty.Client
	baseURL string

	mu    sync.Mutex
	cache map[string]float64
}

type scoreResponse struct {
	Score float64 `json:"score"`
}

// NewHTTPProvider creates a provider for the service at baseURL. The service
// is expected to answer GET {baseURL}/sentiment?symbol=X&date=YYYY-MM-DD with
// a JSON body {"score": s}.
func NewHTTPProvider(baseURL string) *HTTPProvider {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &HTTPProvider{
		client:  client,
		baseURL: baseURL,
		cache:   make(map[string]float64),
	}
}

func (p *HTTPProvider) Score(symbol string, ts time.Time) (float64, error) {
	key := symbol + "_" + ts.Format("2006-01-02")

	p.mu.Lock()
	if score, ok := p.cache[key]; ok {
		p.mu.Unlock()
		return score, nil
	}
	p.mu.Unlock()

	var body scoreResponse
	resp, err := p.client.R().
		SetQueryParam("symbol", symbol).
		SetQueryParam("date", ts.Format("2006-01-02")).
		SetResult(&body).
		Get(p.baseURL + "/sentiment")
	if err != nil {
		return 0, fmt.Errorf("sentiment request for %s: %w", symbol, err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("sentiment request for %s: status %s", symbol, resp.Status())
	}

	score := clamp(body.Score, -1, 1)

	p.mu.Lock()
	p.cache[key] = score
	p.mu.Unlock()

	return score, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
