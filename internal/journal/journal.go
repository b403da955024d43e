// Package journal appends every presented plan to a SQLite table.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"scrolly/internal/engine"
	applog "scrolly/internal/logger"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	queueSize    = 256
	defaultLimit = 50
	maxLimit     = 500
)

var log = applog.With("journal")

type Journal struct {
	db    *gorm.DB
	queue chan renderModel
	now   func() time.Time
}

func Open(path string) (*Journal, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("journal path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	return newJournal(db)
}

func newJournal(db *gorm.DB) (*Journal, error) {
	if err := db.AutoMigrate(&renderModel{}); err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(2)
		sqlDB.SetMaxIdleConns(2)
	}
	return &Journal{db: db, queue: make(chan renderModel, queueSize), now: time.Now}, nil
}

// Observe queues r for Run to write. It never blocks; when the queue is full
// the entry is dropped and logged.
func (j *Journal) Observe(r engine.Render) {
	select {
	case j.queue <- j.model(r):
	default:
		log.Warnf("queue full, dropping render of %s/%s", r.State.Level, r.State.Metric)
	}
}

// Run writes queued entries until ctx is done, then drains what is left.
func (j *Journal) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case m := <-j.queue:
					j.write(context.Background(), m)
				default:
					return nil
				}
			}
		case m := <-j.queue:
			j.write(context.WithoutCancel(ctx), m)
		}
	}
}

func (j *Journal) write(ctx context.Context, m renderModel) {
	if err := j.db.WithContext(ctx).Create(&m).Error; err != nil {
		log.Errorf("write %s failed: %v", m.ID, err)
	}
}

// Record writes r synchronously.
func (j *Journal) Record(ctx context.Context, r engine.Render) error {
	m := j.model(r)
	return j.db.WithContext(ctx).Create(&m).Error
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	var rows []renderModel
	if err := j.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(rows))
	for _, m := range rows {
		e := Entry{
			ID:     m.ID,
			At:     m.CreatedAt,
			Mode:   m.Mode,
			Level:  m.Level,
			Metric: m.Metric,
			Step:   m.Step,
			Title:  m.Title,
			Empty:  m.Empty,
			Points: m.Points,
		}
		if len(m.Domains) > 0 {
			var d DomainPair
			if err := json.Unmarshal(m.Domains, &d); err == nil {
				e.Domains = &d
			}
		}
		out = append(out, e)
	}
	return out, nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (j *Journal) model(r engine.Render) renderModel {
	m := renderModel{
		ID:        uuid.NewString(),
		CreatedAt: j.now(),
		Mode:      string(r.State.Mode),
		Level:     r.State.Level,
		Metric:    r.State.Metric,
		Step:      r.State.ActiveStep,
		Title:     r.Plan.Title,
		Empty:     r.Plan.Empty,
		Points:    len(r.Plan.Points),
	}
	if r.Plan.X != nil && r.Plan.Y != nil {
		raw, err := json.Marshal(DomainPair{X: r.Plan.X.Domain, Y: r.Plan.Y.Domain})
		if err == nil {
			m.Domains = datatypes.JSON(raw)
		}
	}
	return m
}
