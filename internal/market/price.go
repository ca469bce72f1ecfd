package market

import "time"

// PricePoint 是单个时间点的报价，拉取后不再修改。
type PricePoint struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// PriceSeries 按时间升序排列的价格序列，按位置索引做回看窗口。
type PriceSeries []PricePoint

func (s PriceSeries) Len() int { return len(s) }

// Prices 返回纯价格切片，供指标库计算。
func (s PriceSeries) Prices() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Price
	}
	return out
}

func (s PriceSeries) Times() []time.Time {
	out := make([]time.Time, len(s))
	for i, p := range s {
		out[i] = p.Time
	}
	return out
}

// First/Last 在空序列时返回零值。
func (s PriceSeries) First() PricePoint {
	if len(s) == 0 {
		return PricePoint{}
	}
	return s[0]
}

func (s PriceSeries) Last() PricePoint {
	if len(s) == 0 {
		return PricePoint{}
	}
	return s[len(s)-1]
}

// FromUnixMilli 将毫秒时间戳截断到整秒并转换为 UTC。
func FromUnixMilli(ms int64) time.Time {
	return time.Unix(ms/1000, 0).UTC()
}
