package binance

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"coinbt/internal/logger"
	"coinbt/internal/market"
	symbolpkg "coinbt/internal/pkg/symbol"

	"github.com/adshao/go-binance/v2/futures"
)

const (
	maxHistoryLimit = 1500
	sourceName      = "binance"
)

// Source 基于 go-binance SDK 的 U 本位合约 K 线实现 market.HistorySource，
// 取收盘价组成价格序列。
type Source struct {
	cfg    Config
	client *futures.Client
	now    func() time.Time
}

var _ market.HistorySource = (*Source)(nil)

func New(cfg Config) (*Source, error) {
	final := cfg.withDefaults()
	client := futures.NewClient("", "")
	client.BaseURL = final.RESTBaseURL
	httpClient := &http.Client{Timeout: final.HTTPTimeout}
	if final.ProxyEnabled && final.RESTProxyURL != "" {
		proxyURL, err := url.Parse(final.RESTProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REST proxy url: %w", err)
		}
		baseTransport, ok := http.DefaultTransport.(*http.Transport)
		if !ok || baseTransport == nil {
			return nil, fmt.Errorf("http DefaultTransport is not *http.Transport")
		}
		transport := baseTransport.Clone()
		transport.Proxy = http.ProxyURL(proxyURL)
		httpClient.Transport = transport
	}
	client.HTTPClient = httpClient
	return &Source{cfg: final, client: client, now: time.Now}, nil
}

func (s *Source) Name() string { return sourceName }

// FetchSeries 拉取 req.Symbol 的历史 K 线。Interval/Limit 为空时使用配置值；
// 尚未收盘的最后一根 K 线会被丢弃。
func (s *Source) FetchSeries(ctx context.Context, req market.FetchRequest) (market.PriceSeries, error) {
	symbol := symbolpkg.ToBinance(req.Symbol)
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	interval := strings.TrimSpace(req.Interval)
	if interval == "" {
		interval = s.cfg.Interval
	}
	limit := req.Limit
	if limit <= 0 || limit > maxHistoryLimit {
		limit = s.cfg.Limit
	}
	kls, err := s.client.NewKlinesService().Symbol(symbol).Interval(interval).Limit(limit).Do(ctx)
	if err != nil {
		return nil, &market.NetworkError{Source: sourceName, URL: s.cfg.RESTBaseURL, Err: err}
	}
	nowMs := s.now().UnixMilli()
	out := make(market.PriceSeries, 0, len(kls))
	for i, kl := range kls {
		if kl == nil {
			continue
		}
		if kl.CloseTime > nowMs {
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(kl.Close), 64)
		if err != nil {
			return nil, &market.MalformedRecordError{Index: i, Raw: kl.Close}
		}
		out = append(out, market.PricePoint{Time: market.FromUnixMilli(kl.OpenTime), Price: price})
	}
	logger.Debugf("binance: %s %s 获取 %d 根 K 线", symbol, interval, len(out))
	return out, nil
}
