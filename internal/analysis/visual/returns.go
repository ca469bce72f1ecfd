package visual

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	defaultWidthPx  = 1500
	defaultHeightPx = 500

	colorBackground    = "#ffffff"
	colorTextPrimary   = "#1f2937"
	colorTextSecondary = "#6b7280"
	colorHold          = "#3b82f6"
	colorTrade         = "#f97316"
)

// ReturnsInput 是“持有 vs 策略”累计收益对比图的输入，三组序列按下标对齐。
type ReturnsInput struct {
	Title    string
	Subtitle string
	Width    int
	Height   int
	Times    []time.Time
	Hold     []float64
	Trade    []float64
}

func (in ReturnsInput) size() (int, int) {
	w, h := in.Width, in.Height
	if w <= 0 {
		w = defaultWidthPx
	}
	if h <= 0 {
		h = defaultHeightPx
	}
	return w, h
}

func (in ReturnsInput) check() error {
	n := len(in.Times)
	if n == 0 {
		return fmt.Errorf("returns chart requires at least one point")
	}
	if len(in.Hold) != n || len(in.Trade) != n {
		return fmt.Errorf("returns chart length mismatch: times=%d hold=%d trade=%d", n, len(in.Hold), len(in.Trade))
	}
	return nil
}

// BuildReturnsHTML 生成折线图 HTML：hold 细线半透明，trade 粗线，纵轴为倍数。
func BuildReturnsHTML(in ReturnsInput) ([]byte, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	width, height := in.size()
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       in.Title,
			Width:           fmt.Sprintf("%dpx", width),
			Height:          fmt.Sprintf("%dpx", height),
			BackgroundColor: colorBackground,
			Theme:           types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:         in.Title,
			Subtitle:      in.Subtitle,
			Left:          "left",
			TitleStyle:    &opts.TextStyle{Color: colorTextPrimary, FontSize: 18},
			SubtitleStyle: &opts.TextStyle{Color: colorTextSecondary},
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "10"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", XAxisIndex: []int{0}}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextSecondary, Opacity: opts.Float(0.2)}},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      "multiple",
			Scale:     opts.Bool(true),
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextSecondary, Opacity: opts.Float(0.2)}},
		}),
	)
	line.SetXAxis(buildXAxis(in.Times)).
		AddSeries("hold", toLineData(in.Hold),
			charts.WithLineStyleOpts(opts.LineStyle{Color: colorHold, Width: 1, Opacity: opts.Float(0.5)})).
		AddSeries("trade", toLineData(in.Trade),
			charts.WithLineStyleOpts(opts.LineStyle{Color: colorTrade, Width: 2.5}))
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteHTML 写出 HTML 文件，必要时创建目录。
func WriteHTML(path string, html []byte) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("html path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, html, 0o644)
}

// RenderReturns 生成 HTML 并写到 htmlPath；pngPath 非空时再用无头 Chrome 截图。
func RenderReturns(ctx context.Context, in ReturnsInput, htmlPath, pngPath string) error {
	html, err := BuildReturnsHTML(in)
	if err != nil {
		return err
	}
	if strings.TrimSpace(htmlPath) != "" {
		if err := WriteHTML(htmlPath, html); err != nil {
			return fmt.Errorf("write chart html: %w", err)
		}
	}
	if strings.TrimSpace(pngPath) == "" {
		return nil
	}
	if err := EnsureHeadlessAvailable(ctx); err != nil {
		return fmt.Errorf("headless chrome unavailable: %w", err)
	}
	width, height := in.size()
	png, err := renderHTMLToPNG(ctx, html, width, height)
	if err != nil {
		return fmt.Errorf("render chart png: %w", err)
	}
	return WriteHTML(pngPath, png)
}

var (
	headlessOnce sync.Once
	headlessErr  error
)

func EnsureHeadlessAvailable(ctx context.Context) error {
	headlessOnce.Do(func() {
		targetCtx := ctx
		if targetCtx == nil {
			targetCtx = context.Background()
		}
		parent, cancel := chromedp.NewContext(targetCtx)
		defer cancel()
		headlessErr = chromedp.Run(parent)
	})
	return headlessErr
}

func buildXAxis(times []time.Time) []string {
	x := make([]string, len(times))
	for i, t := range times {
		x[i] = t.UTC().Format("2006-01-02")
	}
	return x
}

func toLineData(series []float64) []opts.LineData {
	out := make([]opts.LineData, len(series))
	for i, val := range series {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			out[i] = opts.LineData{Value: nil}
			continue
		}
		out[i] = opts.LineData{Value: round(val, 4)}
	}
	return out
}

func round(val float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(val)
	}
	scale := math.Pow10(decimals)
	return math.Round(val*scale) / scale
}

func renderHTMLToPNG(ctx context.Context, html []byte, width, height int) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	parent, cancel := chromedp.NewContext(ctx)
	defer cancel()

	timeoutCtx, cancelTimeout := context.WithTimeout(parent, 20*time.Second)
	defer cancelTimeout()

	dataURI := "data:text/html;base64," + base64.StdEncoding.EncodeToString(html)
	var screenshot []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(dataURI),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1500 * time.Millisecond),
		chromedp.FullScreenshot(&screenshot, 0),
	}
	if err := chromedp.Run(timeoutCtx, tasks...); err != nil {
		return nil, err
	}
	return screenshot, nil
}
