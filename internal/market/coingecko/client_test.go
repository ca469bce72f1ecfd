package coingecko

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinbt/internal/market"
)

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *http.Request) {
	t.Helper()
	var captured http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = *r
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func TestClient_MarketChartURL(t *testing.T) {
	c := New(Config{})
	assert.Equal(t,
		"https://api.coingecko.com/api/v3/coins/bitcoin/market_chart?vs_currency=jpy&days=max",
		c.MarketChartURL("bitcoin", "max"))

	c = New(Config{BaseURL: "http://localhost:1/api/", Currency: "USD"})
	assert.Equal(t,
		"http://localhost:1/api/coins/ethereum/market_chart?vs_currency=usd&days=14",
		c.MarketChartURL("ethereum", "14"))
}

func TestClient_FetchSeries(t *testing.T) {
	srv, captured := newTestServer(t, http.StatusOK, `{"prices": [[0,100],[1000,110],[2000,99]], "market_caps": [], "total_volumes": []}`)
	c := New(Config{BaseURL: srv.URL})

	series, err := c.FetchSeries(context.Background(), market.FetchRequest{Symbol: "bitcoin", Days: "max"})
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 110, 99}, series.Prices())
	assert.Equal(t, "/coins/bitcoin/market_chart", captured.URL.Path)
	assert.Equal(t, "jpy", captured.URL.Query().Get("vs_currency"))
	assert.Equal(t, "max", captured.URL.Query().Get("days"))
}

func TestClient_FetchMarketChart_InvalidJSON(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `not-json`)
	_, err := New(Config{BaseURL: srv.URL}).FetchMarketChart(context.Background(), "bitcoin", "max")
	var invalid *market.InvalidResponseError
	require.True(t, errors.As(err, &invalid), "got %v", err)
	assert.Contains(t, invalid.Reason, "JSON")
}

func TestClient_FetchMarketChart_MissingPrices(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"market_caps": []}`)
	_, err := New(Config{BaseURL: srv.URL}).FetchMarketChart(context.Background(), "bitcoin", "max")
	var invalid *market.InvalidResponseError
	require.True(t, errors.As(err, &invalid), "got %v", err)
	assert.Contains(t, invalid.Reason, "prices")
}

func TestClient_FetchMarketChart_StatusError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusTooManyRequests, `{"status":{"error_code":429}}`)
	_, err := New(Config{BaseURL: srv.URL}).FetchMarketChart(context.Background(), "bitcoin", "max")
	var netErr *market.NetworkError
	require.True(t, errors.As(err, &netErr), "got %v", err)
	assert.Equal(t, http.StatusTooManyRequests, netErr.StatusCode)
}

func TestClient_FetchMarketChart_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := New(Config{BaseURL: base}).FetchMarketChart(context.Background(), "bitcoin", "max")
	var netErr *market.NetworkError
	require.True(t, errors.As(err, &netErr), "got %v", err)
	assert.Zero(t, netErr.StatusCode)
	assert.Error(t, errors.Unwrap(err))
}

func TestClient_FetchMarketChart_RequiresArgs(t *testing.T) {
	c := New(Config{})
	_, err := c.FetchMarketChart(context.Background(), "", "max")
	assert.Error(t, err)
	_, err = c.FetchMarketChart(context.Background(), "bitcoin", " ")
	assert.Error(t, err)
}

func TestClient_FetchSeries_MalformedRecord(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"prices": [[0,100],[1000]]}`)
	_, err := New(Config{BaseURL: srv.URL}).FetchSeries(context.Background(), market.FetchRequest{Symbol: "bitcoin", Days: "1"})
	var recErr *market.MalformedRecordError
	require.True(t, errors.As(err, &recErr), "got %v", err)
	assert.Equal(t, 1, recErr.Index)
}
