package ports

import (
	"context"
	"time"

	"adinsight/domain/report"
)

// ReportMeta is a listing row for stored reports.
type ReportMeta struct {
	ReportID    string    `json:"report_id" db:"id"`
	Query       string    `json:"query" db:"query"`
	SuccessRate float64   `json:"validation_success_rate" db:"success_rate"`
	Iterations  int       `json:"total_iterations" db:"iterations"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ReportRepository persists final reports.
type ReportRepository interface {
	Save(ctx context.Context, rep *report.FinalReport) error
	Get(ctx context.Context, reportID string) (*report.FinalReport, error)
	List(ctx context.Context, limit int) ([]ReportMeta, error)
}
