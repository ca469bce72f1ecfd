package app

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"coinbt/internal/backtest"

	"gopkg.in/yaml.v3"
)

type bestParamsFile struct {
	Strategy backtest.Params `yaml:"strategy"`
}

// WriteBestParams 把最优参数写成可被配置 include 的 YAML 片段。
func WriteBestParams(path string, best backtest.Summary) error {
	body, err := yaml.Marshal(bestParamsFile{Strategy: best.Params})
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# generated by coinbt sweep at %s\n", time.Now().UTC().Format(time.RFC3339))
	fmt.Fprintf(&buf, "# final trade=%.4f hold=%.4f\n", best.FinalTrade, best.FinalHold)
	buf.Write(body)
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
