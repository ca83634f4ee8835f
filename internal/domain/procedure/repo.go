package procedure

import (
	"context"
	"time"
)

// MonthStat is one month's aggregate for the monthly trend chart.
type MonthStat struct {
	Month time.Time `json:"month"`
	Count int       `json:"count"`
	Cost  float64   `json:"cost"`
}

// NameCount pairs a label with a count for grouped charts.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// YearCount is one calendar year's case count.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

type Repository interface {
	Create(ctx context.Context, p *Log) error
	GetByID(ctx context.Context, id int) (*Log, error)
	List(ctx context.Context) ([]*Log, error)
	Update(ctx context.Context, p *Log) error
	Delete(ctx context.Context, id int) error
	ProcedureNames(ctx context.Context) ([]string, error)

	MonthlyStats(ctx context.Context, from, to time.Time, modality string) ([]MonthStat, error)
	ModalityCounts(ctx context.Context, from, to time.Time) (map[string]int, error)
	RefPhysicianCounts(ctx context.Context, from, to time.Time) ([]NameCount, error)
	YearlyCounts(ctx context.Context, modality string) ([]YearCount, error)
}
