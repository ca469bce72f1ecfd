package coingecko

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"coinbt/internal/logger"
	"coinbt/internal/market"
)

const (
	DefaultBaseURL  = "https://api.coingecko.com/api/v3"
	DefaultCurrency = "jpy"

	sourceName = "coingecko"
)

// Config 描述 CoinGecko 客户端参数；Timeout 为 0 时沿用 http.Client 的无超时默认行为。
type Config struct {
	BaseURL    string
	Currency   string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client 通过 /coins/{id}/market_chart 拉取历史价格。
type Client struct {
	baseURL  string
	currency string
	http     *http.Client
}

func New(cfg Config) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	currency := strings.ToLower(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{baseURL: base, currency: currency, http: client}
}

func (c *Client) Name() string { return sourceName }

func (c *Client) Currency() string { return c.currency }

// MarketChartURL 拼接请求地址，参数顺序与官方文档一致。
func (c *Client) MarketChartURL(ticker, days string) string {
	return fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=%s&days=%s",
		c.baseURL,
		url.PathEscape(strings.TrimSpace(ticker)),
		url.QueryEscape(c.currency),
		url.QueryEscape(strings.TrimSpace(days)),
	)
}

// FetchMarketChart 发起一次 GET 并返回校验过的原始 JSON，不做重试。
func (c *Client) FetchMarketChart(ctx context.Context, ticker, days string) ([]byte, error) {
	if strings.TrimSpace(ticker) == "" {
		return nil, fmt.Errorf("coingecko: ticker is required")
	}
	if strings.TrimSpace(days) == "" {
		return nil, fmt.Errorf("coingecko: days is required")
	}
	target := c.MarketChartURL(ticker, days)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &market.NetworkError{Source: sourceName, URL: target, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &market.NetworkError{Source: sourceName, URL: target, Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &market.NetworkError{Source: sourceName, URL: target, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &market.NetworkError{
			Source:     sourceName,
			URL:        target,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", snippet(body)),
		}
	}
	if err := validateBody(body); err != nil {
		return nil, err
	}
	logger.Debugf("coingecko: %s days=%s 返回 %d 字节", ticker, days, len(body))
	return body, nil
}

// FetchSeries 实现 market.HistorySource。
func (c *Client) FetchSeries(ctx context.Context, req market.FetchRequest) (market.PriceSeries, error) {
	body, err := c.FetchMarketChart(ctx, req.Symbol, req.Days)
	if err != nil {
		return nil, err
	}
	return ParsePrices(body)
}

func snippet(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		s = s[:max] + "..."
	}
	if s == "" {
		s = "empty body"
	}
	return s
}

var _ market.HistorySource = (*Client)(nil)
