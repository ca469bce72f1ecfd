package app

import (
	"bytes"
	"strings"
	"testing"

	"coinbt/internal/backtest"
	"coinbt/internal/sweep"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintHeadTail_ShortSeriesPrintsAll(t *testing.T) {
	res := backtest.Evaluate(wavySeries(4), backtest.DefaultParams())
	var buf bytes.Buffer
	require.NoError(t, PrintHeadTail(&buf, res, 5))
	text := buf.String()
	assert.NotContains(t, text, "...")
	assert.Contains(t, text, "[4 rows]")
	assert.Equal(t, 6, strings.Count(text, "\n"))
}

func TestPrintHeadTail_LongSeries(t *testing.T) {
	res := backtest.Evaluate(wavySeries(30), backtest.DefaultParams())
	var buf bytes.Buffer
	require.NoError(t, PrintHeadTail(&buf, res, 5))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 1+5+1+5+1)
	assert.Contains(t, lines[1], "1970-01-01")
	assert.Contains(t, lines[1], "1.0000")
}

func TestDrawdownSignMatchesBetweenSweepLineAndSummary(t *testing.T) {
	res := backtest.Result{
		Params: backtest.DefaultParams(),
		Hold:   backtest.ReturnSeries{1, 1.1, 1.2},
		Trade:  backtest.ReturnSeries{1, 1.25, 1.0},
	}
	var line bytes.Buffer
	require.NoError(t, sweep.NewPrinter(&line, 0, 1).Consume(sweep.Entry{Index: 0, Result: res}))
	var summary bytes.Buffer
	require.NoError(t, PrintSummary(&summary, res.Summary()))

	assert.Contains(t, line.String(), "mdd=-20.00%")
	assert.Contains(t, summary.String(), "mdd=-20.00%")
}
