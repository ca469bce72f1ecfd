package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	// EnvConfigPath 在未指定 --config 时提供配置路径。
	EnvConfigPath = "COINBT_CONFIG"
	// DefaultPath 是默认配置文件位置。
	DefaultPath = "configs/config.yaml"
)

// ResolvePath 按 flag > 环境变量 > 默认路径 的顺序选择配置文件。
// 返回值 explicit 表示路径是否由调用方显式给出。
func ResolvePath(flagPath string) (path string, explicit bool) {
	if p := strings.TrimSpace(flagPath); p != "" {
		return p, true
	}
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, true
	}
	return DefaultPath, false
}

// Default 返回只包含默认值的配置。
func Default() *Config {
	var cfg Config
	cfg.applyDefaults(make(keySet))
	return &cfg
}

// LoadOrDefault 加载配置；默认路径不存在时退回纯默认值，显式路径缺失仍报错。
func LoadOrDefault(flagPath string) (*Config, string, error) {
	path, explicit := ResolvePath(flagPath)
	if !explicit {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return Default(), "", nil
		}
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Load 读取 path 及其 include 链，按顺序合并后解析、补默认值并校验。
// include 通常指向 sweep 导出的最优参数文件，后读的文件覆盖先读的同名键，
// 因此主文件里的显式设置优先于被 include 的片段。
func Load(path string) (*Config, error) {
	layers, err := readLayers(path)
	if err != nil {
		return nil, err
	}
	v := viper.New()
	for _, l := range layers {
		if err := v.MergeConfigMap(l.settings); err != nil {
			return nil, fmt.Errorf("merge config %s: %w", l.path, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "toml"
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	setKeys := make(keySet)
	markKeys("", v.AllSettings(), setKeys)
	cfg.applyDefaults(setKeys)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// layer 是单个配置文件去掉 include 键后的内容。
type layer struct {
	path     string
	settings map[string]any
}

// readLayers 深度优先展开 include，被引入的文件排在引用者之前；每个文件只读一次。
func readLayers(path string) ([]layer, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	r := layerReader{done: map[string]bool{}, open: map[string]bool{}}
	if err := r.visit(abs); err != nil {
		return nil, err
	}
	return r.layers, nil
}

// configFiles 返回 include 链上的全部文件路径，供 Watch 使用。
func configFiles(path string) ([]string, error) {
	layers, err := readLayers(path)
	if err != nil {
		return nil, err
	}
	files := make([]string, len(layers))
	for i, l := range layers {
		files[i] = l.path
	}
	return files, nil
}

type layerReader struct {
	done   map[string]bool
	open   map[string]bool
	layers []layer
}

func (r *layerReader) visit(path string) error {
	path = filepath.Clean(path)
	if r.open[path] {
		return fmt.Errorf("include cycle detected: %s", path)
	}
	if r.done[path] {
		return nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file failed (%s): %w", path, err)
	}
	includes, err := includeList(v.Get("include"))
	if err != nil {
		return fmt.Errorf("parsing include failed (%s): %w", path, err)
	}
	r.open[path] = true
	for _, inc := range includes {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(filepath.Dir(path), inc)
		}
		if err := r.visit(inc); err != nil {
			return err
		}
	}
	delete(r.open, path)
	r.done[path] = true

	settings := v.AllSettings()
	delete(settings, "include")
	r.layers = append(r.layers, layer{path: path, settings: settings})
	return nil
}

// includeList 接受单个文件名（include: best.yaml）或文件名列表。
func includeList(raw any) ([]string, error) {
	var items []any
	switch val := raw.(type) {
	case nil:
		return nil, nil
	case string:
		items = []any{val}
	case []any:
		items = val
	default:
		return nil, fmt.Errorf("include must be a file name or a list of file names")
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		name, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("include only supports strings, got %T", item)
		}
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out, nil
}

// markKeys 记录配置里出现过的全部键（点分路径），applyDefaults 不会覆盖它们。
func markKeys(prefix string, node any, dest keySet) {
	m, ok := node.(map[string]any)
	if !ok {
		if prefix != "" {
			dest.mark(prefix)
		}
		return
	}
	for k, v := range m {
		key := strings.ToLower(strings.TrimSpace(k))
		if key == "" {
			continue
		}
		if prefix != "" {
			key = prefix + "." + key
		}
		markKeys(key, v, dest)
	}
}
