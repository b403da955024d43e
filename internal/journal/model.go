package journal

import (
	"time"

	"gorm.io/datatypes"
)

// renderModel maps to the 'render_journal' table.
type renderModel struct {
	ID        string         `gorm:"column:id;primaryKey;size:36"`
	CreatedAt time.Time      `gorm:"column:created_at;index"`
	Mode      string         `gorm:"column:mode;size:16"`
	Level     string         `gorm:"column:level"`
	Metric    string         `gorm:"column:metric"`
	Step      int            `gorm:"column:step"`
	Title     string         `gorm:"column:title"`
	Empty     bool           `gorm:"column:empty"`
	Points    int            `gorm:"column:points"`
	Domains   datatypes.JSON `gorm:"column:domains"`
}

func (renderModel) TableName() string { return "render_journal" }

// Entry is one presented plan as served by the journal endpoint.
type Entry struct {
	ID      string      `json:"id"`
	At      time.Time   `json:"at"`
	Mode    string      `json:"mode"`
	Level   string      `json:"level"`
	Metric  string      `json:"metric"`
	Step    int         `json:"step"`
	Title   string      `json:"title"`
	Empty   bool        `json:"empty"`
	Points  int         `json:"points"`
	Domains *DomainPair `json:"domains,omitempty"`
}

// DomainPair holds the x and y scale domains of a non-empty plan.
type DomainPair struct {
	X [2]float64 `json:"x"`
	Y [2]float64 `json:"y"`
}
