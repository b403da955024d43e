package config

import (
	"strings"
	"time"
)

// Config is the root of config.yaml.
type Config struct {
	App      AppConfig      `toml:"app"`
	Data     DataConfig     `toml:"data"`
	Story    StoryConfig    `toml:"story"`
	Selector SelectorConfig `toml:"selector"`
	Engine   EngineConfig   `toml:"engine"`
	Chart    ChartConfig    `toml:"chart"`
	Journal  JournalConfig  `toml:"journal"`
	Export   ExportConfig   `toml:"export"`
}

type AppConfig struct {
	Env       string `toml:"env" env:"SCROLLY_ENV"`
	LogLevel  string `toml:"log_level" env:"SCROLLY_LOG_LEVEL"`
	LogFormat string `toml:"log_format" env:"SCROLLY_LOG_FORMAT"`
	LogPath   string `toml:"log_path" env:"SCROLLY_LOG_PATH"`
	HTTPAddr  string `toml:"http_addr" env:"SCROLLY_HTTP_ADDR"`
}

// DataConfig selects where records come from.
type DataConfig struct {
	Source              string `toml:"source" env:"SCROLLY_DATA_SOURCE"`
	Path                string `toml:"path" env:"SCROLLY_DATA_PATH"`
	URL                 string `toml:"url" env:"SCROLLY_DATA_URL"`
	Format              string `toml:"format" env:"SCROLLY_DATA_FORMAT"`
	Table               string `toml:"table" env:"SCROLLY_DATA_TABLE"`
	FetchTimeoutSeconds int    `toml:"fetch_timeout_seconds" env:"SCROLLY_DATA_FETCH_TIMEOUT_SECONDS"`
	Watch               bool   `toml:"watch" env:"SCROLLY_DATA_WATCH"`
	WatchDebounceMS     int    `toml:"watch_debounce_ms" env:"SCROLLY_DATA_WATCH_DEBOUNCE_MS"`
}

func (d DataConfig) FetchTimeout() time.Duration {
	return time.Duration(d.FetchTimeoutSeconds) * time.Second
}

func (d DataConfig) WatchDebounce() time.Duration {
	return time.Duration(d.WatchDebounceMS) * time.Millisecond
}

type StoryConfig struct {
	Path string `toml:"path" env:"SCROLLY_STORY_PATH"`
	// Offset is the viewport fraction where a step counts as entered.
	Offset float64 `toml:"offset" env:"SCROLLY_STORY_OFFSET"`
}

type SelectorConfig struct {
	DefaultLevel     string   `toml:"default_level" env:"SCROLLY_SELECTOR_DEFAULT_LEVEL"`
	PreferredMetrics []string `toml:"preferred_metrics" env:"SCROLLY_SELECTOR_PREFERRED_METRICS" envSeparator:","`
}

const (
	ArbitrationLastWriterWins = "last_writer_wins"
	ArbitrationExclusive      = "exclusive"
)

type EngineConfig struct {
	Arbitration string `toml:"arbitration" env:"SCROLLY_ENGINE_ARBITRATION"`
}

type ChartConfig struct {
	Width        int     `toml:"width" env:"SCROLLY_CHART_WIDTH"`
	Height       int     `toml:"height" env:"SCROLLY_CHART_HEIGHT"`
	MarginTop    float64 `toml:"margin_top"`
	MarginRight  float64 `toml:"margin_right"`
	MarginBottom float64 `toml:"margin_bottom"`
	MarginLeft   float64 `toml:"margin_left"`
	PadFraction  float64 `toml:"pad_fraction"`
	ZeroPad      float64 `toml:"zero_pad"`
	NiceTicks    int     `toml:"nice_ticks"`
	EmptyMessage string  `toml:"empty_message"`
}

type JournalConfig struct {
	Enabled bool   `toml:"enabled" env:"SCROLLY_JOURNAL_ENABLED"`
	Path    string `toml:"path" env:"SCROLLY_JOURNAL_PATH"`
}

type ExportConfig struct {
	Headless               bool `toml:"headless" env:"SCROLLY_EXPORT_HEADLESS"`
	SnapshotTimeoutSeconds int  `toml:"snapshot_timeout_seconds"`
}

func (e ExportConfig) SnapshotTimeout() time.Duration {
	return time.Duration(e.SnapshotTimeoutSeconds) * time.Second
}

// keySet tracks the field paths set explicitly in the config files.
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
