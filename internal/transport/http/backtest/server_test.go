package backtesthttp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"coinbt/internal/backtest"
	"coinbt/internal/store"
	storemodel "coinbt/internal/store/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReader struct {
	mock.Mock
}

func (m *mockReader) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	args := m.Called(limit)
	runs, _ := args.Get(0).([]store.Run)
	return runs, args.Error(1)
}

func (m *mockReader) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	args := m.Called(id)
	return args.Get(0).(store.Run), args.Bool(1), args.Error(2)
}

func (m *mockReader) TopResults(ctx context.Context, runID string, order store.ResultOrder, limit int) ([]store.ResultRow, error) {
	args := m.Called(runID, order, limit)
	rows, _ := args.Get(0).([]store.ResultRow)
	return rows, args.Error(1)
}

func newTestServer(t *testing.T, reader store.RunReader) http.Handler {
	t.Helper()
	srv, err := NewServer(Config{Runs: reader})
	require.NoError(t, err)
	return srv.Handler()
}

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestNewServer_RequiresReader(t *testing.T) {
	_, err := NewServer(Config{})
	assert.Error(t, err)
}

func TestHealthz(t *testing.T) {
	rec, body := get(t, newTestServer(t, &mockReader{}), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `"ok"`, string(body["status"]))
}

func TestRunList(t *testing.T) {
	reader := &mockReader{}
	reader.On("ListRuns", 5).Return([]store.Run{{ID: "a", Ticker: "bitcoin", Status: storemodel.RunStatusDone}}, nil)
	rec, body := get(t, newTestServer(t, reader), "/api/runs?limit=5")
	assert.Equal(t, http.StatusOK, rec.Code)

	var runs []store.Run
	require.NoError(t, json.Unmarshal(body["runs"], &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "bitcoin", runs[0].Ticker)
	reader.AssertExpectations(t)

	rec, _ = get(t, newTestServer(t, reader), "/api/runs?limit=x")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunDetail(t *testing.T) {
	reader := &mockReader{}
	reader.On("GetRun", "a").Return(store.Run{ID: "a"}, true, nil)
	reader.On("GetRun", "missing").Return(store.Run{}, false, nil)
	reader.On("GetRun", "broken").Return(store.Run{}, false, errors.New("disk"))
	h := newTestServer(t, reader)

	rec, _ := get(t, h, "/api/runs/a")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = get(t, h, "/api/runs/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = get(t, h, "/api/runs/broken")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRunResults(t *testing.T) {
	reader := &mockReader{}
	reader.On("GetRun", "a").Return(store.Run{ID: "a"}, true, nil)
	reader.On("GetRun", "missing").Return(store.Run{}, false, nil)
	rows := []store.ResultRow{{Index: 7, Summary: backtest.Summary{Params: backtest.DefaultParams(), FinalTrade: 3.5}}}
	reader.On("TopResults", "a", store.OrderByExcess, 3).Return(rows, nil)
	reader.On("TopResults", "a", store.OrderByTrade, 20).Return(rows, nil)
	h := newTestServer(t, reader)

	rec, body := get(t, h, "/api/runs/a/results?limit=3&order=EXCESS")
	assert.Equal(t, http.StatusOK, rec.Code)
	var got []store.ResultRow
	require.NoError(t, json.Unmarshal(body["results"], &got))
	require.Len(t, got, 1)
	assert.Equal(t, 7, got[0].Index)
	assert.Equal(t, 3.5, got[0].FinalTrade)

	rec, _ = get(t, h, "/api/runs/a/results")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = get(t, h, "/api/runs/a/results?order=sharpe")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = get(t, h, "/api/runs/missing/results")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	reader.AssertExpectations(t)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, err := NewServer(Config{Runs: &mockReader{}, Metrics: true})
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")

	off := newTestServer(t, &mockReader{})
	rec = httptest.NewRecorder()
	off.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
