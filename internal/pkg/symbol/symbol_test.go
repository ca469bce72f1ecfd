package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	cases := map[string]Symbol{
		"BTC/USDT":      {Base: "BTC", Quote: "USDT"},
		" eth-usdt ":    {Base: "ETH", Quote: "USDT"},
		"sol_usdc":      {Base: "SOL", Quote: "USDC"},
		"BTC/USDT:USDT": {Base: "BTC", Quote: "USDT"},
		"BNBBTC":        {Base: "BNB", Quote: "BTC"},
		"USDT":          {},
		"/USDT":         {},
		"":              {},
	}
	for in, want := range cases {
		assert.Equal(t, want, Parse(in), in)
	}
}

func TestToBinance(t *testing.T) {
	assert.Equal(t, "BTCUSDT", ToBinance("btc/usdt"))
	assert.Equal(t, "ETHUSDT", ToBinance("ETHUSDT"))
	assert.Equal(t, "XYZ", ToBinance(" xyz "))
	assert.Equal(t, "", ToBinance(" "))
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("ETH/USDT"))
	assert.False(t, IsValid("bitcoin"))
}
