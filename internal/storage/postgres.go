package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/dashboard-scraper/internal/domain"
)

// PostgresStore handles interactions with the PostgreSQL database.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// SetStatus records the lifecycle state of a scrape (processing, failed)
// without touching any previously stored report content.
func (s *PostgresStore) SetStatus(ctx context.Context, url, status, failReason string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO dashboard_reports (url, status, fail_reason)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (url) DO UPDATE SET
		   status = EXCLUDED.status, fail_reason = EXCLUDED.fail_reason, updated_at = NOW()`,
		url, status, failReason,
	)
	return err
}

// SaveReport saves a completed dashboard report within a single
// transaction: the report row, its flattened summary, and one row per
// OCR extraction.
func (s *PostgresStore) SaveReport(ctx context.Context, url string, report *domain.DashboardReport) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var reportID int
	err = tx.QueryRow(ctx,
		`INSERT INTO dashboard_reports
		   (url, title, dashboard_title, status, fail_reason, tables_found, metrics_found, charts_found, filters_found, ocr_characters)
		 VALUES ($1, $2, $3, 'completed', '', $4, $5, $6, $7, $8)
		 ON CONFLICT (url) DO UPDATE SET
		   title = EXCLUDED.title, dashboard_title = EXCLUDED.dashboard_title,
		   status = EXCLUDED.status, fail_reason = EXCLUDED.fail_reason,
		   tables_found = EXCLUDED.tables_found, metrics_found = EXCLUDED.metrics_found,
		   charts_found = EXCLUDED.charts_found, filters_found = EXCLUDED.filters_found,
		   ocr_characters = EXCLUDED.ocr_characters, updated_at = NOW()
		 RETURNING id`,
		url, report.Metadata.Title, report.Metadata.DashboardTitle,
		report.Summary.TotalTables, report.Summary.TotalMetrics,
		report.Summary.TotalCharts, report.Summary.TotalFilters,
		report.Summary.TotalOcrCharacters,
	).Scan(&reportID)
	if err != nil {
		return err
	}

	if report.SummaryText != "" {
		_, err = tx.Exec(ctx,
			`INSERT INTO report_summaries (report_id, summary) VALUES ($1, $2)
			 ON CONFLICT (report_id) DO UPDATE SET summary = EXCLUDED.summary`,
			reportID, report.SummaryText)
		if err != nil {
			return err
		}
	}

	// Re-scrapes replace the previous run's OCR rows wholesale.
	if _, err := tx.Exec(ctx, `DELETE FROM ocr_extractions WHERE report_id = $1`, reportID); err != nil {
		return err
	}
	if len(report.OcrExtractions) > 0 {
		batch := &pgx.Batch{}
		for _, o := range report.OcrExtractions {
			batch.Queue(
				`INSERT INTO ocr_extractions (report_id, source_tab, char_count, extracted_text)
				 VALUES ($1, $2, $3, $4)`,
				reportID, o.SourceTab, o.CharCount, o.Text)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetScrapeStatus retrieves the current status of a URL.
func (s *PostgresStore) GetScrapeStatus(ctx context.Context, url string) (*domain.ScrapeStatusResponse, error) {
	var status domain.ScrapeStatusResponse
	err := s.db.QueryRow(ctx,
		`SELECT url, status, fail_reason, updated_at FROM dashboard_reports WHERE url = $1`,
		url,
	).Scan(&status.URL, &status.Status, &status.FailReason, &status.UpdatedAt)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("not_found")
	}
	return &status, err
}

// GetReportSummary retrieves the flattened text summary of a completed
// scrape, the blob handed to the downstream language model.
func (s *PostgresStore) GetReportSummary(ctx context.Context, url string) (string, error) {
	var summary string
	err := s.db.QueryRow(ctx,
		`SELECT rs.summary FROM report_summaries rs
		 JOIN dashboard_reports dr ON dr.id = rs.report_id
		 WHERE dr.url = $1`,
		url,
	).Scan(&summary)

	if err == pgx.ErrNoRows {
		return "", fmt.Errorf("not_found")
	}
	return summary, err
}
