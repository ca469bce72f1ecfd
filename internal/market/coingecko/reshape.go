package coingecko

import (
	"github.com/tidwall/gjson"

	"coinbt/internal/market"
)

// ParsePrices 把 market_chart 响应中的 prices 数组转换为价格序列，保持接收顺序。
func ParsePrices(body []byte) (market.PriceSeries, error) {
	if !gjson.ValidBytes(body) {
		return nil, &market.InvalidResponseError{Source: sourceName, Reason: "body is not valid JSON"}
	}
	prices := gjson.GetBytes(body, "prices")
	if !prices.Exists() || !prices.IsArray() {
		return nil, &market.InvalidResponseError{Source: sourceName, Reason: "missing prices array"}
	}
	out := make(market.PriceSeries, 0, 256)
	var recErr error
	idx := 0
	prices.ForEach(func(_, rec gjson.Result) bool {
		point, ok := parseRecord(rec)
		if !ok {
			recErr = &market.MalformedRecordError{Index: idx, Raw: rec.Raw}
			return false
		}
		out = append(out, point)
		idx++
		return true
	})
	if recErr != nil {
		return nil, recErr
	}
	return out, nil
}

func parseRecord(rec gjson.Result) (market.PricePoint, bool) {
	if !rec.IsArray() {
		return market.PricePoint{}, false
	}
	pair := rec.Array()
	if len(pair) != 2 {
		return market.PricePoint{}, false
	}
	ts, price := pair[0], pair[1]
	if ts.Type != gjson.Number || price.Type != gjson.Number {
		return market.PricePoint{}, false
	}
	return market.PricePoint{
		Time:  market.FromUnixMilli(ts.Int()),
		Price: price.Float(),
	}, true
}
