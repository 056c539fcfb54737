package delta

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 1, 1, 2, 30, 0, 0, time.UTC)

func newTestManager(t *testing.T, handler http.HandlerFunc) *Manager {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	m, err := NewManager(Options{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		APISecret:  "test-secret",
		HTTPClient: server.Client(),
	})
	require.NoError(t, err)
	m.Market.now = func() time.Time { return fixedNow }
	return m
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestNewManagerRejectsMissingCredentials(t *testing.T) {
	_, err := NewManager(Options{APIKey: "key"})
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestGetCurrentPrice(t *testing.T) {
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v2/tickers/BTCUSDT", r.URL.Path)
		assert.Empty(t, r.Header.Get("signature"))
		writeJSON(w, http.StatusOK, `{"success":true,"result":{"symbol":"BTCUSDT","close":"50000.50","change_24h":"1.2"}}`)
	})

	q, err := m.Market.GetCurrentPrice(context.Background(), "btcusdt")
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", q.Symbol)
	assert.True(t, q.Price.Equal(decimal.RequireFromString("50000.50")))
	assert.Equal(t, fixedNow, q.AsOf)
}

func TestGetCurrentPriceNumericClose(t *testing.T) {
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"result":{"close":50000}}`)
	})

	q, err := m.Market.GetCurrentPrice(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.True(t, q.Price.Equal(decimal.NewFromInt(50000)))
}

func TestGetCurrentPriceMalformed(t *testing.T) {
	bodies := map[string]string{
		"success false":  `{"success":false,"result":{"close":"50000"}}`,
		"missing result": `{"success":true}`,
		"missing close":  `{"success":true,"result":{"symbol":"BTCUSDT"}}`,
		"null close":     `{"success":true,"result":{"close":null}}`,
		"non numeric":    `{"success":true,"result":{"close":"abc"}}`,
		"zero close":     `{"success":true,"result":{"close":"0"}}`,
		"not json":       `<html>oops</html>`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, body)
			})
			_, err := m.Market.GetCurrentPrice(context.Background(), "BTCUSDT")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestGetCurrentPriceHTTPError(t *testing.T) {
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"success":false}`)
	})

	_, err := m.Market.GetCurrentPrice(context.Background(), "BTCUSDT")
	assert.ErrorIs(t, err, ErrRequest)
	assert.NotErrorIs(t, err, ErrNotFound)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
}

const threeCandles = `{"success":true,"result":[
	{"time":1704067020,"open":"48900","high":"49100","low":"48800","close":"48950"},
	{"time":1704067080,"open":"48950","high":"49050","low":"48900","close":"49010"},
	{"time":1704067140,"open":"49010","high":"49020","low":"48990","close":"49000"}
]}`

func TestGetCandleCloseReturnsLastCandle(t *testing.T) {
	start := time.Unix(1704067139, 0).UTC()
	end := time.Unix(1704067199, 0).UTC()

	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/v2/history/candles", r.URL.Path)
		assert.Equal(t, "BTCUSDT", q.Get("symbol"))
		assert.Equal(t, "1m", q.Get("resolution"))
		assert.Equal(t, "1704067139", q.Get("start"))
		assert.Equal(t, "1704067199", q.Get("end"))
		writeJSON(w, http.StatusOK, threeCandles)
	})

	px, err := m.Market.GetCandleClose(context.Background(), "BTCUSDT", start, end, "1m")
	require.NoError(t, err)
	assert.True(t, px.Equal(decimal.NewFromInt(49000)), px.String())
}

func TestGetCandlesNormalizesWindow(t *testing.T) {
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, threeCandles)
	})

	candles, err := m.Market.GetCandles(context.Background(), "BTCUSDT", fixedNow.Add(-time.Hour), fixedNow, "1m")
	require.NoError(t, err)
	require.Len(t, candles, 3)
	assert.Equal(t, time.Unix(1704067020, 0).UTC(), candles[0].Start)
	assert.Equal(t, time.Unix(1704067080, 0).UTC(), candles[0].End)
	assert.True(t, candles[0].High.Equal(decimal.NewFromInt(49100)))
	assert.Equal(t, "1m", candles[2].Resolution)
}

func TestGetCandleCloseEmpty(t *testing.T) {
	for name, body := range map[string]string{
		"empty": `{"success":true,"result":[]}`,
		"null":  `{"success":true,"result":null}`,
	} {
		t.Run(name, func(t *testing.T) {
			m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, body)
			})
			_, err := m.Market.GetCandleClose(context.Background(), "BTCUSDT", fixedNow.Add(-time.Minute), fixedNow, "1m")
			assert.ErrorIs(t, err, ErrNoData)
			assert.NotErrorIs(t, err, ErrRequest)
		})
	}
}

func TestGetCandlesSignsPathWithQuery(t *testing.T) {
	creds, err := NewCredentials("test-key", "test-secret")
	require.NoError(t, err)

	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		ts := r.Header.Get("timestamp")
		assert.Equal(t, Timestamp(fixedNow), ts)
		want := creds.Sign(r.Method, r.URL.RequestURI(), ts, "")
		assert.Equal(t, want, r.Header.Get("signature"))
		writeJSON(w, http.StatusOK, threeCandles)
	})

	_, err = m.Market.GetCandles(context.Background(), "BTCUSDT", fixedNow.Add(-time.Minute), fixedNow, "1m")
	require.NoError(t, err)
}

func TestSignedRequestsUseFreshTimestamps(t *testing.T) {
	var seen []string
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("timestamp")+"/"+r.Header.Get("signature"))
		writeJSON(w, http.StatusOK, threeCandles)
	})

	tick := fixedNow
	m.Market.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	for i := 0; i < 2; i++ {
		_, err := m.Market.GetCandles(context.Background(), "BTCUSDT", fixedNow.Add(-time.Minute), fixedNow, "1m")
		require.NoError(t, err)
	}
	require.Len(t, seen, 2)
	assert.NotEqual(t, seen[0], seen[1])
}

func TestRequestTimeoutIsRequestError(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	m, err := NewManager(Options{
		BaseURL:    server.URL,
		APIKey:     "k",
		APISecret:  "s",
		HTTPClient: &http.Client{Timeout: 50 * time.Millisecond},
	})
	require.NoError(t, err)

	_, err = m.Market.GetCurrentPrice(context.Background(), "BTCUSDT")
	assert.ErrorIs(t, err, ErrRequest)
}
