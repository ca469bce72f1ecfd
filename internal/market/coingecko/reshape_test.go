package coingecko

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinbt/internal/market"
)

func TestParsePrices_RoundTrip(t *testing.T) {
	body := []byte(`{"prices": [[0,100],[1000,110],[2000,99]]}`)
	series, err := ParsePrices(body)
	require.NoError(t, err)
	require.Len(t, series, 3)

	assert.Equal(t, time.Unix(0, 0).UTC(), series[0].Time)
	assert.Equal(t, time.Unix(1, 0).UTC(), series[1].Time)
	assert.Equal(t, time.Unix(2, 0).UTC(), series[2].Time)
	assert.Equal(t, []float64{100, 110, 99}, series.Prices())
	assert.Equal(t, time.UTC, series[0].Time.Location())
}

func TestParsePrices_TruncatesMilliseconds(t *testing.T) {
	series, err := ParsePrices([]byte(`{"prices": [[1367107200999, 135.3]]}`))
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, int64(1367107200), series[0].Time.Unix())
	assert.InDelta(t, 135.3, series[0].Price, 1e-12)
}

func TestParsePrices_KeepsReceivedOrder(t *testing.T) {
	series, err := ParsePrices([]byte(`{"prices": [[3000,1],[1000,2]],"total_volumes":[]}`))
	require.NoError(t, err)
	assert.Equal(t, int64(3), series[0].Time.Unix())
	assert.Equal(t, int64(1), series[1].Time.Unix())
}

func TestParsePrices_EmptyArray(t *testing.T) {
	series, err := ParsePrices([]byte(`{"prices": []}`))
	require.NoError(t, err)
	assert.Empty(t, series)
}

func TestParsePrices_Malformed(t *testing.T) {
	cases := map[string]struct {
		body  string
		index int
	}{
		"single element":   {`{"prices": [[0,1],[1000]]}`, 1},
		"three elements":   {`{"prices": [[0,1,2]]}`, 0},
		"string price":     {`{"prices": [[0,1],[1000,2],[2000,"3"]]}`, 2},
		"null price":       {`{"prices": [[0,null]]}`, 0},
		"object entry":     {`{"prices": [{"t":0,"p":1}]}`, 0},
		"bare number":      {`{"prices": [5]}`, 0},
		"string timestamp": {`{"prices": [["0",1]]}`, 0},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePrices([]byte(tc.body))
			var recErr *market.MalformedRecordError
			require.True(t, errors.As(err, &recErr), "got %v", err)
			assert.Equal(t, tc.index, recErr.Index)
		})
	}
}

func TestParsePrices_InvalidResponse(t *testing.T) {
	for name, body := range map[string]string{
		"not json":        `<html>rate limited</html>`,
		"missing prices":  `{"error":"coin not found"}`,
		"prices not list": `{"prices": {"a": 1}}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePrices([]byte(body))
			var invalid *market.InvalidResponseError
			assert.True(t, errors.As(err, &invalid), "got %v", err)
		})
	}
}
