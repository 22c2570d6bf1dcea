package reports

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"teaps/internal/domain/fault"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) AppraisalCountsByStatus(ctx context.Context, year int) (map[string]int, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT status, COUNT(1)
    FROM appraisals
    WHERE year = $1
    GROUP BY status
  `, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		out[status] = count
	}
	return out, rows.Err()
}

func (s *Store) PendingDisputeCount(ctx context.Context) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM dispute_requests WHERE status = 'pending'").Scan(&count)
	return count, err
}

func (s *Store) PendingKpiRequestCount(ctx context.Context) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM kpi_requests WHERE status = 'pending'").Scan(&count)
	return count, err
}

func (s *Store) ActiveKpiCount(ctx context.Context) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM kpis WHERE status = 'active'").Scan(&count)
	return count, err
}

func (s *Store) AverageFinalScore(ctx context.Context, year int) (float64, error) {
	var avg *float64
	if err := s.DB.QueryRow(ctx, `
    SELECT AVG(final_weighted_score)
    FROM appraisals
    WHERE year = $1 AND final_weighted_score IS NOT NULL
  `, year).Scan(&avg); err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}

// AppraisalReportRow is everything the PDF export needs for one appraisal.
type AppraisalReportRow struct {
	TeacherName        string
	Department         string
	Year               int
	Status             string
	FinalWeightedScore *float64
	OriginalFinalScore *float64
	PrincipalComment   string
	HRComment          string
}

func (s *Store) AppraisalReport(ctx context.Context, appraisalID string) (AppraisalReportRow, error) {
	var row AppraisalReportRow
	var principalComment, hrComment *string
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(t.first_name || ' ' || t.last_name, a.teacher_id::text), COALESCE(t.department, ''),
      a.year, a.status, a.final_weighted_score, a.original_final_score,
      a.principal_comment, a.hr_comment
    FROM appraisals a
    LEFT JOIN teachers t ON t.id = a.teacher_id
    WHERE a.id = $1
  `, appraisalID).Scan(&row.TeacherName, &row.Department, &row.Year, &row.Status,
		&row.FinalWeightedScore, &row.OriginalFinalScore, &principalComment, &hrComment)
	if errors.Is(err, pgx.ErrNoRows) {
		return AppraisalReportRow{}, fault.NotFound("appraisal", appraisalID)
	}
	if err != nil {
		return AppraisalReportRow{}, err
	}
	if principalComment != nil {
		row.PrincipalComment = *principalComment
	}
	if hrComment != nil {
		row.HRComment = *hrComment
	}
	return row, nil
}
