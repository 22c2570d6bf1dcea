package kpi

import (
	"context"
	"errors"
	"fmt"

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

const requestColumns = `
  id, teacher_id, title, description, justification, category,
  target_value, measurement_criteria, status, reviewer_comments,
  reviewed_by, reviewed_at, created_at`

const kpiColumns = `
  id, teacher_id, request_id, title, description, category,
  target_value, measurement_criteria, status, progress, created_at`

func (s *Store) InsertRequest(ctx context.Context, r KpiRequest) (KpiRequest, error) {
	err := s.DB.QueryRow(ctx, `
    INSERT INTO kpi_requests (teacher_id, title, description, justification, category, target_value, measurement_criteria, status)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    RETURNING id, created_at
  `, r.TeacherID, r.Title, r.Description, r.Justification, r.Category, r.TargetValue, r.MeasurementCriteria, r.Status).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return KpiRequest{}, err
	}
	return r, nil
}

func (s *Store) GetRequest(ctx context.Context, id string) (KpiRequest, error) {
	row := s.DB.QueryRow(ctx, `SELECT `+requestColumns+` FROM kpi_requests WHERE id = $1`, id)
	r, err := scanRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return KpiRequest{}, fault.NotFound("kpi request", id)
	}
	return r, err
}

func (s *Store) ListRequests(ctx context.Context, filter RequestFilter) ([]KpiRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM kpi_requests WHERE 1=1`
	var args []any
	if filter.TeacherID != "" {
		args = append(args, filter.TeacherID)
		query += fmt.Sprintf(" AND teacher_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []KpiRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ApproveRequest(ctx context.Context, id, reviewerID, comments string) (KpiRequest, Kpi, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return KpiRequest{}, Kpi{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
    UPDATE kpi_requests SET
      status = $2, reviewer_comments = $3, reviewed_by = $4, reviewed_at = now()
    WHERE id = $1 AND status = $5
    RETURNING `+requestColumns+`
  `, id, RequestStatusApproved, nullIfEmpty(comments), reviewerID, RequestStatusPending)
	r, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return KpiRequest{}, Kpi{}, s.notPendingErr(ctx, id, "approve")
		}
		return KpiRequest{}, Kpi{}, err
	}

	k := Kpi{
		TeacherID:           r.TeacherID,
		RequestID:           r.ID,
		Title:               r.Title,
		Description:         r.Description,
		Category:            r.Category,
		TargetValue:         r.TargetValue,
		MeasurementCriteria: r.MeasurementCriteria,
		Status:              KpiStatusActive,
	}
	if err := tx.QueryRow(ctx, `
    INSERT INTO kpis (teacher_id, request_id, title, description, category, target_value, measurement_criteria, status, progress)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0)
    RETURNING id, created_at
  `, k.TeacherID, k.RequestID, k.Title, k.Description, k.Category, k.TargetValue, k.MeasurementCriteria, k.Status).Scan(&k.ID, &k.CreatedAt); err != nil {
		return KpiRequest{}, Kpi{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return KpiRequest{}, Kpi{}, err
	}
	return r, k, nil
}

func (s *Store) RejectRequest(ctx context.Context, id, reviewerID, comments string) (KpiRequest, error) {
	row := s.DB.QueryRow(ctx, `
    UPDATE kpi_requests SET
      status = $2, reviewer_comments = $3, reviewed_by = $4, reviewed_at = now()
    WHERE id = $1 AND status = $5
    RETURNING `+requestColumns+`
  `, id, RequestStatusRejected, comments, reviewerID, RequestStatusPending)
	r, err := scanRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return KpiRequest{}, s.notPendingErr(ctx, id, "reject")
	}
	return r, err
}

// notPendingErr classifies a review update that matched no row: the
// request either does not exist or was already reviewed.
func (s *Store) notPendingErr(ctx context.Context, id, attempted string) error {
	current, err := s.GetRequest(ctx, id)
	if err != nil {
		return err
	}
	return fault.StateConflict("kpi request", id, current.Status, attempted)
}

func (s *Store) ListKpis(ctx context.Context, teacherID string) ([]Kpi, error) {
	query := `SELECT ` + kpiColumns + ` FROM kpis WHERE 1=1`
	var args []any
	if teacherID != "" {
		args = append(args, teacherID)
		query += " AND teacher_id = $1"
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Kpi
	for rows.Next() {
		k, err := scanKpi(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (s *Store) GetKpi(ctx context.Context, id string) (Kpi, error) {
	row := s.DB.QueryRow(ctx, `SELECT `+kpiColumns+` FROM kpis WHERE id = $1`, id)
	k, err := scanKpi(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Kpi{}, fault.NotFound("kpi", id)
	}
	return k, err
}

func (s *Store) UpdateKpiProgress(ctx context.Context, id string, progress float64, status string) (Kpi, error) {
	row := s.DB.QueryRow(ctx, `
    UPDATE kpis SET progress = $2, status = $3 WHERE id = $1
    RETURNING `+kpiColumns+`
  `, id, progress, status)
	k, err := scanKpi(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Kpi{}, fault.NotFound("kpi", id)
	}
	return k, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (KpiRequest, error) {
	var r KpiRequest
	var comments, reviewedBy *string
	if err := row.Scan(
		&r.ID, &r.TeacherID, &r.Title, &r.Description, &r.Justification, &r.Category,
		&r.TargetValue, &r.MeasurementCriteria, &r.Status, &comments,
		&reviewedBy, &r.ReviewedAt, &r.CreatedAt,
	); err != nil {
		return KpiRequest{}, err
	}
	if comments != nil {
		r.ReviewerComments = *comments
	}
	if reviewedBy != nil {
		r.ReviewedBy = *reviewedBy
	}
	return r, nil
}

func scanKpi(row rowScanner) (Kpi, error) {
	var k Kpi
	if err := row.Scan(
		&k.ID, &k.TeacherID, &k.RequestID, &k.Title, &k.Description, &k.Category,
		&k.TargetValue, &k.MeasurementCriteria, &k.Status, &k.Progress, &k.CreatedAt,
	); err != nil {
		return Kpi{}, err
	}
	return k, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
