package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"adinsight/domain/report"
	apperrors "adinsight/internal/errors"
	"adinsight/ports"
)

const reportsSchema = `
CREATE TABLE IF NOT EXISTS final_reports (
	id TEXT PRIMARY KEY,
	query TEXT NOT NULL,
	success_rate DOUBLE PRECISION NOT NULL,
	iterations INTEGER NOT NULL,
	payload JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// reportRepository implements ports.ReportRepository on PostgreSQL.
type reportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a report repository backed by db.
func NewReportRepository(db *sqlx.DB) ports.ReportRepository {
	return &reportRepository{db: db}
}

// EnsureSchema creates the reports table when absent.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, reportsSchema); err != nil {
		return apperrors.DatabaseError("create final_reports table", err)
	}
	return nil
}

// Save upserts a final report keyed by report ID.
func (r *reportRepository) Save(ctx context.Context, rep *report.FinalReport) error {
	payload, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	query := `INSERT INTO final_reports (id, query, success_rate, iterations, payload, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE SET
		query = EXCLUDED.query,
		success_rate = EXCLUDED.success_rate,
		iterations = EXCLUDED.iterations,
		payload = EXCLUDED.payload`

	_, err = r.db.ExecContext(ctx, query,
		rep.ReportID, rep.OriginalQuery, rep.ValidationSuccessRate, rep.TotalIterations, payload, rep.GeneratedAt)
	if err != nil {
		return apperrors.DatabaseError("save report", err)
	}
	return nil
}

// Get loads a stored report by ID.
func (r *reportRepository) Get(ctx context.Context, reportID string) (*report.FinalReport, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM final_reports WHERE id = $1`, reportID).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound(fmt.Sprintf("report %s", reportID))
		}
		return nil, apperrors.DatabaseError("get report", err)
	}

	var rep report.FinalReport
	if err := json.Unmarshal(payload, &rep); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &rep, nil
}

// List returns recent report metadata, newest first.
func (r *reportRepository) List(ctx context.Context, limit int) ([]ports.ReportMeta, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, query, success_rate, iterations, created_at
	FROM final_reports ORDER BY created_at DESC LIMIT $1`

	var metas []ports.ReportMeta
	if err := r.db.SelectContext(ctx, &metas, query, limit); err != nil {
		return nil, apperrors.DatabaseError("list reports", err)
	}
	return metas, nil
}
