package app

import (
	"context"
	"fmt"
	"strings"

	"scrolly/internal/chart"
	"scrolly/internal/config"
	"scrolly/internal/dataset"
	"scrolly/internal/engine"
	"scrolly/internal/journal"
	"scrolly/internal/logger"
	"scrolly/internal/narrative"
	"scrolly/internal/selector"
	apihttp "scrolly/internal/transport/http/api"
)

type AppBuilder struct {
	cfg *config.Config

	sourceFn  func(config.DataConfig) (engine.Source, error)
	storyFn   func(string) (narrative.Story, error)
	journalFn func(string) (*journal.Journal, error)
	httpFn    func(apihttp.ServerConfig) (*apihttp.Server, error)
}

type AppBuilderOption func(*AppBuilder)

// WithSource replaces the configured dataset source.
func WithSource(src engine.Source) AppBuilderOption {
	return func(b *AppBuilder) {
		b.sourceFn = func(config.DataConfig) (engine.Source, error) { return src, nil }
	}
}

// WithStory replaces the story file.
func WithStory(story narrative.Story) AppBuilderOption {
	return func(b *AppBuilder) {
		b.storyFn = func(string) (narrative.Story, error) { return story, nil }
	}
}

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:       cfg,
		sourceFn:  openSource,
		storyFn:   narrative.Load,
		journalFn: journal.Open,
		httpFn:    apihttp.NewServer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func openSource(cfg config.DataConfig) (engine.Source, error) {
	return dataset.Open(dataset.Config{
		Kind:         cfg.Source,
		Path:         cfg.Path,
		URL:          cfg.URL,
		Format:       cfg.Format,
		Table:        cfg.Table,
		FetchTimeout: cfg.FetchTimeout(),
	})
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if b == nil || b.cfg == nil {
		return nil, fmt.Errorf("app builder requires config")
	}
	cfg := b.cfg

	src, err := b.sourceFn(cfg.Data)
	if err != nil {
		return nil, fmt.Errorf("data source: %w", err)
	}
	story, err := b.storyFn(cfg.Story.Path)
	if err != nil {
		return nil, fmt.Errorf("story: %w", err)
	}

	eng := engine.New(src, engine.Options{
		Story:       story,
		Selector:    selector.New(cfg.Selector.DefaultLevel, cfg.Selector.PreferredMetrics),
		Renderer:    buildRenderer(cfg.Chart),
		Surface:     chart.NewRecorder(),
		Size:        chart.Size{Width: float64(cfg.Chart.Width), Height: float64(cfg.Chart.Height)},
		Arbitration: engine.Arbitration(cfg.Engine.Arbitration),
	})
	selLog := logger.With("selection")
	eng.OnChange(func(s engine.ViewState) {
		selLog.Debugf("mode=%s level=%s metric=%s step=%d", s.Mode, s.Level, s.Metric, s.ActiveStep)
	})

	reloader := dataset.NewReloader(eng.Reload)

	a := &App{cfg: cfg, engine: eng}

	if cfg.Journal.Enabled {
		j, err := b.journalFn(cfg.Journal.Path)
		if err != nil {
			return nil, fmt.Errorf("journal: %w", err)
		}
		eng.OnRender(j.Observe)
		a.journal = j
	}

	if cfg.Data.Watch {
		fs, ok := src.(*dataset.FileSource)
		if !ok {
			return nil, fmt.Errorf("data.watch requires a file source, got %s", cfg.Data.Source)
		}
		a.watcher = dataset.NewWatcher(fs.Path(), cfg.Data.WatchDebounce(), reloader)
	}

	srvCfg := apihttp.ServerConfig{
		Addr:        cfg.App.HTTPAddr,
		Engine:      eng,
		Reloader:    reloader,
		StoryOffset: cfg.Story.Offset,
	}
	if a.journal != nil {
		srvCfg.Journal = a.journal
	}
	if cfg.Export.Headless {
		srvCfg.Snapshotter = chart.NewSnapshotter(cfg.Export.SnapshotTimeout())
	}
	srv, err := b.httpFn(srvCfg)
	if err != nil {
		return nil, fmt.Errorf("http server: %w", err)
	}
	a.server = srv
	a.Summary = buildSummary(cfg, src.Name(), story)
	return a, nil
}

func buildRenderer(c config.ChartConfig) *chart.Renderer {
	return chart.NewRenderer(chart.Options{
		Margin: chart.Margins{
			Top:    c.MarginTop,
			Right:  c.MarginRight,
			Bottom: c.MarginBottom,
			Left:   c.MarginLeft,
		},
		PadFraction:  c.PadFraction,
		ZeroPad:      c.ZeroPad,
		NiceTicks:    c.NiceTicks,
		EmptyMessage: c.EmptyMessage,
	})
}

func buildSummary(cfg *config.Config, source string, story narrative.Story) *StartupSummary {
	steps := make([]string, 0, story.Len())
	for _, s := range story.Steps() {
		steps = append(steps, fmt.Sprintf("%d %s/%s", s.Index, s.Level, s.Metric))
	}
	return &StartupSummary{
		HTTPAddr:    cfg.App.HTTPAddr,
		Source:      source,
		Format:      strings.ToUpper(orDefault(cfg.Data.Format, "auto")),
		Watch:       cfg.Data.Watch,
		StoryTitle:  story.Title(),
		Steps:       steps,
		Offset:      cfg.Story.Offset,
		Arbitration: cfg.Engine.Arbitration,
		Journal:     journalLabel(cfg.Journal),
		Headless:    cfg.Export.Headless,
	}
}

func journalLabel(j config.JournalConfig) string {
	if !j.Enabled {
		return "off"
	}
	return j.Path
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
