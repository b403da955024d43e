package config

import "strings"

const (
	defaultAppEnv          = "dev"
	defaultAppLogLevel     = "info"
	defaultAppLogFormat    = "text"
	defaultAppHTTPAddr     = ":8080"
	defaultDataSource      = "file"
	defaultDataPath        = "data/colonies.json"
	defaultDataTable       = "records"
	defaultFetchTimeout    = 15
	defaultWatchDebounceMS = 250
	defaultStoryPath       = "configs/story.yaml"
	defaultStoryOffset     = 0.6
	defaultSelectorLevel   = "national"
	defaultArbitration     = ArbitrationLastWriterWins
	defaultChartWidth      = 820
	defaultChartHeight     = 420
	defaultMarginTop       = 24
	defaultMarginRight     = 24
	defaultMarginBottom    = 40
	defaultMarginLeft      = 56
	defaultPadFraction     = 0.05
	defaultZeroPad         = 1
	defaultNiceTicks       = 10
	defaultEmptyMessage    = "No data available for this selection."
	defaultJournalPath     = "data/journal.db"
	defaultSnapshotTimeout = 20
)

func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Data.applyDefaults(keys)
	c.Story.applyDefaults(keys)
	c.Selector.applyDefaults(keys)
	c.Engine.applyDefaults(keys)
	c.Chart.applyDefaults(keys)
	c.Journal.applyDefaults(keys)
	c.Export.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.log_format", &a.LogFormat, defaultAppLogFormat),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
	)
}

func (d *DataConfig) applyDefaults(keys keySet) {
	if d == nil {
		return
	}
	d.Source = strings.ToLower(strings.TrimSpace(d.Source))
	d.Format = strings.ToLower(strings.TrimSpace(d.Format))
	applyFieldDefaults(keys,
		stringFieldDefault("data.source", &d.Source, defaultDataSource),
		fieldDefault{
			key: "data.path",
			need: func() bool {
				return strings.TrimSpace(d.Path) == "" && d.Source == defaultDataSource
			},
			apply: func() { d.Path = defaultDataPath },
		},
		stringFieldDefault("data.table", &d.Table, defaultDataTable),
		intFieldDefault("data.fetch_timeout_seconds", &d.FetchTimeoutSeconds, defaultFetchTimeout),
		intFieldDefault("data.watch_debounce_ms", &d.WatchDebounceMS, defaultWatchDebounceMS),
	)
}

func (s *StoryConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("story.path", &s.Path, defaultStoryPath),
		fieldDefault{
			key:   "story.offset",
			need:  func() bool { return s.Offset == 0 },
			apply: func() { s.Offset = defaultStoryOffset },
		},
	)
}

func (s *SelectorConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("selector.default_level", &s.DefaultLevel, defaultSelectorLevel),
	)
	s.PreferredMetrics = normalizePreferenceList(s.PreferredMetrics)
}

func (e *EngineConfig) applyDefaults(keys keySet) {
	if e == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("engine.arbitration", &e.Arbitration, defaultArbitration),
	)
	e.Arbitration = strings.ToLower(strings.TrimSpace(e.Arbitration))
}

func (c *ChartConfig) applyDefaults(keys keySet) {
	if c == nil {
		return
	}
	applyFieldDefaults(keys,
		intFieldDefault("chart.width", &c.Width, defaultChartWidth),
		intFieldDefault("chart.height", &c.Height, defaultChartHeight),
		floatFieldDefault("chart.margin_top", &c.MarginTop, defaultMarginTop),
		floatFieldDefault("chart.margin_right", &c.MarginRight, defaultMarginRight),
		floatFieldDefault("chart.margin_bottom", &c.MarginBottom, defaultMarginBottom),
		floatFieldDefault("chart.margin_left", &c.MarginLeft, defaultMarginLeft),
		floatFieldDefault("chart.pad_fraction", &c.PadFraction, defaultPadFraction),
		floatFieldDefault("chart.zero_pad", &c.ZeroPad, defaultZeroPad),
		intFieldDefault("chart.nice_ticks", &c.NiceTicks, defaultNiceTicks),
		stringFieldDefault("chart.empty_message", &c.EmptyMessage, defaultEmptyMessage),
	)
}

func (j *JournalConfig) applyDefaults(keys keySet) {
	if j == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("journal.path", &j.Path, defaultJournalPath),
	)
}

func (e *ExportConfig) applyDefaults(keys keySet) {
	if e == nil {
		return
	}
	applyFieldDefaults(keys,
		intFieldDefault("export.snapshot_timeout_seconds", &e.SnapshotTimeoutSeconds, defaultSnapshotTimeout),
	)
}

// Helper functions

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func intFieldDefault(key string, target *int, def int) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil && *target <= 0 },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func floatFieldDefault(key string, target *float64, def float64) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil && *target == 0 },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func normalizePreferenceList(pref []string) []string {
	if len(pref) == 0 {
		return nil
	}
	out := make([]string, 0, len(pref))
	seen := make(map[string]struct{}, len(pref))
	for _, p := range pref {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
