package cpe

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

const activityColumns = `
  id, teacher_id, title, provider, hours, points, activity_date, status, reviewed_by, created_at`

func (s *Store) InsertActivity(ctx context.Context, a Activity) (Activity, error) {
	err := s.DB.QueryRow(ctx, `
    INSERT INTO cpe_activities (teacher_id, title, provider, hours, points, activity_date, status)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    RETURNING id, created_at
  `, a.TeacherID, a.Title, nullIfEmpty(a.Provider), a.Hours, a.Points, a.ActivityDate, a.Status).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return Activity{}, err
	}
	return a, nil
}

func (s *Store) GetActivity(ctx context.Context, id string) (Activity, error) {
	row := s.DB.QueryRow(ctx, `SELECT `+activityColumns+` FROM cpe_activities WHERE id = $1`, id)
	a, err := scanActivity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Activity{}, fault.NotFound("cpe activity", id)
	}
	return a, err
}

func (s *Store) UpdateActivityStatus(ctx context.Context, id, status, reviewerID string) (Activity, error) {
	row := s.DB.QueryRow(ctx, `
    UPDATE cpe_activities SET status = $2, reviewed_by = $3 WHERE id = $1 AND status = $4
    RETURNING `+activityColumns+`
  `, id, status, reviewerID, ActivityStatusPending)
	a, err := scanActivity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		current, getErr := s.GetActivity(ctx, id)
		if getErr != nil {
			return Activity{}, getErr
		}
		return Activity{}, fault.StateConflict("cpe activity", id, current.Status, status)
	}
	return a, err
}

func (s *Store) ListActivities(ctx context.Context, teacherID string, year int) ([]Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM cpe_activities WHERE teacher_id = $1`
	args := []any{teacherID}
	if year != 0 {
		args = append(args, year)
		query += fmt.Sprintf(" AND EXTRACT(YEAR FROM activity_date) = $%d", len(args))
	}
	query += " ORDER BY activity_date DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) ListTeacherIDs(ctx context.Context, department string) ([]string, error) {
	query := `SELECT id FROM teachers WHERE status = 'active'`
	var args []any
	if department != "" {
		args = append(args, department)
		query += " AND department = $1"
	}
	query += " ORDER BY last_name, first_name"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner) (Activity, error) {
	var a Activity
	var provider, reviewedBy *string
	if err := row.Scan(
		&a.ID, &a.TeacherID, &a.Title, &provider, &a.Hours, &a.Points,
		&a.ActivityDate, &a.Status, &reviewedBy, &a.CreatedAt,
	); err != nil {
		return Activity{}, err
	}
	if provider != nil {
		a.Provider = *provider
	}
	if reviewedBy != nil {
		a.ReviewedBy = *reviewedBy
	}
	return a, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
