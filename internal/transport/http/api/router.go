package apihttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"scrolly/internal/chart"
	"scrolly/internal/dataset"
	"scrolly/internal/engine"
	"scrolly/internal/journal"
	"scrolly/internal/narrative"
	"scrolly/internal/record"
	"scrolly/internal/series"

	"github.com/gin-gonic/gin"
)

// ViewEngine is the part of engine.Engine the API drives.
type ViewEngine interface {
	Report() engine.Report
	Story() narrative.Story
	Levels() ([]string, error)
	Metrics(level string) ([]string, error)
	Series(level, metric string) (series.Series, error)
	Snapshot() (engine.Snapshot, error)
	Dispatch(ev engine.Event) (engine.ViewState, error)
}

type Reloader interface {
	Reload(ctx context.Context) error
}

type JournalReader interface {
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
}

type Snapshotter interface {
	Snapshot(ctx context.Context, plan chart.Plan) ([]byte, error)
}

type Router struct {
	engine      ViewEngine
	reloader    Reloader
	journal     JournalReader
	snapshotter Snapshotter
	offset      float64
}

func NewRouter(cfg ServerConfig) *Router {
	return &Router{
		engine:      cfg.Engine,
		reloader:    cfg.Reloader,
		journal:     cfg.Journal,
		snapshotter: cfg.Snapshotter,
		offset:      cfg.StoryOffset,
	}
}

// Register mounts the JSON API under group.
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("/status", r.handleStatus)
	group.GET("/levels", r.handleLevels)
	group.GET("/levels/:level/metrics", r.handleMetrics)
	group.GET("/series", r.handleSeries)
	group.GET("/steps", r.handleSteps)
	group.GET("/state", r.handleState)
	group.GET("/journal", r.handleJournal)
	group.GET("/export.xlsx", r.handleExportXLSX)

	events := group.Group("/events")
	events.POST("/scroll", r.handleScroll)
	events.POST("/level", r.handleLevel)
	events.POST("/metric", r.handleMetric)
	events.POST("/resize", r.handleResize)
	events.POST("/mode", r.handleMode)

	if r.reloader != nil {
		group.POST("/reload", r.handleReload)
	}
}

// RegisterCharts mounts the HTML and snapshot exports under group.
func (r *Router) RegisterCharts(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("", r.handleChartHTML)
	group.GET("/snapshot.png", r.handleSnapshot)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrNotReady):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "data not ready"})
	case errors.Is(err, engine.ErrLoadFailed):
		c.JSON(http.StatusInternalServerError, gin.H{"error": engine.StatusFailed.Caption(), "detail": loadDetail(err)})
	case errors.Is(err, engine.ErrModeLocked):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func loadDetail(err error) string {
	var le *dataset.LoadError
	if errors.As(err, &le) {
		return le.Detail()
	}
	return strings.TrimPrefix(err.Error(), engine.ErrLoadFailed.Error()+": ")
}

func (r *Router) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, r.engine.Report())
}

func (r *Router) handleLevels(c *gin.Context) {
	levels, err := r.engine.Levels()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"levels": levels})
}

func (r *Router) handleMetrics(c *gin.Context) {
	level := record.CanonicalKey(c.Param("level"))
	metrics, err := r.engine.Metrics(level)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"level": level, "metrics": metrics})
}

func (r *Router) handleSeries(c *gin.Context) {
	level, metric, err := r.selection(c)
	if err != nil {
		writeError(c, err)
		return
	}
	points, err := r.engine.Series(level, metric)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"level": level, "metric": metric, "points": points})
}

// selection reads level/metric from the query, falling back to the current view.
func (r *Router) selection(c *gin.Context) (string, string, error) {
	level := record.CanonicalKey(c.Query("level"))
	metric := record.CanonicalKey(c.Query("metric"))
	if level != "" && metric != "" {
		return level, metric, nil
	}
	snap, err := r.engine.Snapshot()
	if err != nil {
		return "", "", err
	}
	if level == "" {
		level = snap.State.Level
	}
	if metric == "" {
		metric = snap.State.Metric
	}
	return level, metric, nil
}

func (r *Router) handleSteps(c *gin.Context) {
	story := r.engine.Story()
	c.JSON(http.StatusOK, gin.H{
		"title":  story.Title(),
		"offset": r.offset,
		"steps":  story.Steps(),
	})
}

func (r *Router) handleState(c *gin.Context) {
	snap, err := r.engine.Snapshot()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (r *Router) dispatch(c *gin.Context, ev engine.Event) {
	if _, err := r.engine.Dispatch(ev); err != nil {
		writeError(c, err)
		return
	}
	r.handleState(c)
}

type scrollRequest struct {
	Signals []narrative.Signal `json:"signals"`
}

func (r *Router) handleScroll(c *gin.Context) {
	var req scrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("invalid scroll payload: %w", err))
		return
	}
	r.dispatch(c, engine.ScrollUpdate{Signals: req.Signals})
}

type levelRequest struct {
	Level string `json:"level"`
}

func (r *Router) handleLevel(c *gin.Context) {
	var req levelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("invalid level payload: %w", err))
		return
	}
	r.dispatch(c, engine.LevelChanged{Level: req.Level})
}

type metricRequest struct {
	Metric string `json:"metric"`
}

func (r *Router) handleMetric(c *gin.Context) {
	var req metricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("invalid metric payload: %w", err))
		return
	}
	r.dispatch(c, engine.MetricChanged{Metric: req.Metric})
}

func (r *Router) handleResize(c *gin.Context) {
	var size chart.Size
	if err := c.ShouldBindJSON(&size); err != nil {
		writeError(c, fmt.Errorf("invalid resize payload: %w", err))
		return
	}
	r.dispatch(c, engine.Resized{Size: size})
}

type modeRequest struct {
	Mode string `json:"mode"`
}

func (r *Router) handleMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("invalid mode payload: %w", err))
		return
	}
	r.dispatch(c, engine.ModeSwitched{Mode: engine.Mode(strings.ToLower(strings.TrimSpace(req.Mode)))})
}

func (r *Router) handleReload(c *gin.Context) {
	err := r.reloader.Reload(c.Request.Context())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, r.engine.Report())
	case errors.Is(err, engine.ErrNotReady), errors.Is(err, engine.ErrLoadFailed):
		writeError(c, err)
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "reload failed", "detail": loadDetail(err)})
	}
}

func (r *Router) handleJournal(c *gin.Context) {
	if r.journal == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "journal disabled"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := r.journal.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (r *Router) handleExportXLSX(c *gin.Context) {
	level, metric, err := r.selection(c)
	if err != nil {
		writeError(c, err)
		return
	}
	points, err := r.engine.Series(level, metric)
	if err != nil {
		writeError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := dataset.WriteSeriesXLSX(&buf, level, metric, points); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	name := fmt.Sprintf("%s_%s.xlsx", orDash(level), orDash(metric))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// currentPlan returns the presented plan, or writes the failure response.
// A failed load renders the diagnostic panel.
func (r *Router) currentPlan(c *gin.Context, panel bool) (chart.Plan, bool) {
	snap, err := r.engine.Snapshot()
	if err != nil {
		if panel && errors.Is(err, engine.ErrLoadFailed) {
			rep := r.engine.Report()
			c.HTML(http.StatusInternalServerError, "panel", rep)
			return chart.Plan{}, false
		}
		writeError(c, err)
		return chart.Plan{}, false
	}
	if !snap.HasPlan {
		writeError(c, engine.ErrNotReady)
		return chart.Plan{}, false
	}
	return snap.Plan, true
}

func (r *Router) handleChartHTML(c *gin.Context) {
	plan, ok := r.currentPlan(c, true)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := chart.WriteHTML(&buf, plan); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (r *Router) handleChartPNG(c *gin.Context) {
	plan, ok := r.currentPlan(c, false)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := chart.WritePNG(&buf, plan); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (r *Router) handleSnapshot(c *gin.Context) {
	if r.snapshotter == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "headless export disabled"})
		return
	}
	plan, ok := r.currentPlan(c, false)
	if !ok {
		return
	}
	png, err := r.snapshotter.Snapshot(c.Request.Context(), plan)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
