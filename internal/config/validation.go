package config

import (
	"fmt"
	"strings"
)

func validate(c *Config) error {
	if err := c.App.validate(); err != nil {
		return err
	}
	if err := c.Data.validate(); err != nil {
		return err
	}
	if err := c.Story.validate(); err != nil {
		return err
	}
	if err := c.Engine.validate(); err != nil {
		return err
	}
	if err := c.Chart.validate(); err != nil {
		return err
	}
	if err := c.Journal.validate(); err != nil {
		return err
	}
	return nil
}

func (a *AppConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(a.LogFormat)) {
	case "text", "json":
	default:
		return fmt.Errorf("app.log_format must be text or json, got %q", a.LogFormat)
	}
	if strings.TrimSpace(a.HTTPAddr) == "" {
		return fmt.Errorf("app.http_addr cannot be empty")
	}
	return nil
}

func (d *DataConfig) validate() error {
	switch d.Source {
	case "file":
		if strings.TrimSpace(d.Path) == "" {
			return fmt.Errorf("data.path is required when data.source=file")
		}
	case "sqlite":
		if strings.TrimSpace(d.Path) == "" {
			return fmt.Errorf("data.path is required when data.source=sqlite")
		}
		if strings.TrimSpace(d.Table) == "" {
			return fmt.Errorf("data.table is required when data.source=sqlite")
		}
	case "http":
		if strings.TrimSpace(d.URL) == "" {
			return fmt.Errorf("data.url is required when data.source=http")
		}
		if d.Watch {
			return fmt.Errorf("data.watch only applies to file sources")
		}
	default:
		return fmt.Errorf("data.source must be file, http or sqlite, got %q", d.Source)
	}
	switch d.Format {
	case "", "json", "csv", "xlsx":
	default:
		return fmt.Errorf("data.format must be json, csv or xlsx, got %q", d.Format)
	}
	if d.FetchTimeoutSeconds <= 0 {
		return fmt.Errorf("data.fetch_timeout_seconds must be > 0")
	}
	if d.WatchDebounceMS < 0 {
		return fmt.Errorf("data.watch_debounce_ms must be >= 0")
	}
	return nil
}

func (s *StoryConfig) validate() error {
	if strings.TrimSpace(s.Path) == "" {
		return fmt.Errorf("story.path cannot be empty")
	}
	if s.Offset <= 0 || s.Offset > 1 {
		return fmt.Errorf("story.offset must be in (0, 1], got %v", s.Offset)
	}
	return nil
}

func (e *EngineConfig) validate() error {
	switch e.Arbitration {
	case ArbitrationLastWriterWins, ArbitrationExclusive:
		return nil
	default:
		return fmt.Errorf("engine.arbitration must be %s or %s, got %q",
			ArbitrationLastWriterWins, ArbitrationExclusive, e.Arbitration)
	}
}

func (c *ChartConfig) validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("chart.width and chart.height must be > 0")
	}
	for name, m := range map[string]float64{
		"margin_top":    c.MarginTop,
		"margin_right":  c.MarginRight,
		"margin_bottom": c.MarginBottom,
		"margin_left":   c.MarginLeft,
	} {
		if m < 0 {
			return fmt.Errorf("chart.%s must be >= 0", name)
		}
	}
	if c.PadFraction <= 0 {
		return fmt.Errorf("chart.pad_fraction must be > 0")
	}
	if c.ZeroPad <= 0 {
		return fmt.Errorf("chart.zero_pad must be > 0")
	}
	if c.NiceTicks <= 0 {
		return fmt.Errorf("chart.nice_ticks must be > 0")
	}
	return nil
}

func (j *JournalConfig) validate() error {
	if j.Enabled && strings.TrimSpace(j.Path) == "" {
		return fmt.Errorf("journal.path is required when journal.enabled=true")
	}
	return nil
}
