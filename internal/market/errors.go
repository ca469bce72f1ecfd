package market

import (
	"fmt"
	"strings"
)

// NetworkError 表示访问行情 API 时的传输层失败（含非 2xx 状态码）。
type NetworkError struct {
	Source     string
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: request %s failed", e.Source, e.URL)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *NetworkError) Unwrap() error { return e.Err }

// InvalidResponseError 表示响应体不是 JSON 或缺少 prices 字段。
type InvalidResponseError struct {
	Source string
	Reason string
	Err    error
}

func (e *InvalidResponseError) Error() string {
	msg := fmt.Sprintf("%s: invalid response: %s", e.Source, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }

// MalformedRecordError 表示某条价格记录不是 [timestamp, price] 数值对。
type MalformedRecordError struct {
	Index int
	Raw   string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed price record #%d: %s", e.Index, e.Raw)
}
