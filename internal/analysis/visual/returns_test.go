package visual

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInput() ReturnsInput {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return ReturnsInput{
		Title: "bitcoin",
		Times: []time.Time{base, base.AddDate(0, 0, 1), base.AddDate(0, 0, 2)},
		Hold:  []float64{1, 1.1, 0.99},
		Trade: []float64{1, 1, math.NaN()},
	}
}

func TestBuildReturnsHTML(t *testing.T) {
	html, err := BuildReturnsHTML(sampleInput())
	require.NoError(t, err)
	body := string(html)
	assert.Contains(t, body, "hold")
	assert.Contains(t, body, "trade")
	assert.Contains(t, body, "multiple")
	assert.Contains(t, body, "2024-01-03")
	assert.Contains(t, body, "1500px")
}

func TestBuildReturnsHTML_InvalidInput(t *testing.T) {
	_, err := BuildReturnsHTML(ReturnsInput{})
	assert.Error(t, err)

	in := sampleInput()
	in.Trade = in.Trade[:2]
	_, err = BuildReturnsHTML(in)
	assert.Error(t, err)
}

func TestToLineData_NaNBecomesGap(t *testing.T) {
	data := toLineData([]float64{1.23456, math.NaN(), math.Inf(1)})
	require.Len(t, data, 3)
	assert.Equal(t, 1.2346, data[0].Value)
	assert.Nil(t, data[1].Value)
	assert.Nil(t, data[2].Value)
}

func TestRenderReturns_HTMLOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "returns.html")
	require.NoError(t, RenderReturns(context.Background(), sampleInput(), path, ""))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "trade")
}

func TestWriteHTML_EmptyPath(t *testing.T) {
	assert.Error(t, WriteHTML(" ", []byte("x")))
}
