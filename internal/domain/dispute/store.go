package dispute

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

const disputeColumns = `
  id, teacher_id, appraisal_id, reason, evidence, status,
  resolution, review_comment, revised_score, resolved_by, resolved_at, created_at`

func (s *Store) Insert(ctx context.Context, d DisputeRequest) (DisputeRequest, error) {
	err := s.DB.QueryRow(ctx, `
    INSERT INTO dispute_requests (teacher_id, appraisal_id, reason, evidence, status)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id, created_at
  `, d.TeacherID, d.AppraisalID, d.Reason, nullIfEmpty(d.Evidence), d.Status).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return DisputeRequest{}, err
	}
	return d, nil
}

func (s *Store) Get(ctx context.Context, id string) (DisputeRequest, error) {
	row := s.DB.QueryRow(ctx, `SELECT `+disputeColumns+` FROM dispute_requests WHERE id = $1`, id)
	d, err := scanDispute(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return DisputeRequest{}, fault.NotFound("dispute", id)
	}
	return d, err
}

func (s *Store) HasPendingForAppraisal(ctx context.Context, appraisalID string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM dispute_requests WHERE appraisal_id = $1 AND status = $2
  `, appraisalID, StatusPending).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) ResolveUphold(ctx context.Context, id, comment, resolvedBy string) (DisputeRequest, error) {
	row := s.DB.QueryRow(ctx, `
    UPDATE dispute_requests SET
      status = $2, resolution = $3, review_comment = $4, resolved_by = $5, resolved_at = now()
    WHERE id = $1 AND status = $6
    RETURNING `+disputeColumns+`
  `, id, StatusRejected, ResolutionUphold, comment, resolvedBy, StatusPending)
	d, err := scanDispute(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return DisputeRequest{}, s.notPendingErr(ctx, id)
	}
	return d, err
}

// notPendingErr classifies a resolve update that matched no row: the
// dispute either does not exist or was resolved concurrently.
func (s *Store) notPendingErr(ctx context.Context, id string) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return fault.StateConflict("dispute", id, current.Status, "resolve")
}

func (s *Store) ResolveRevise(ctx context.Context, id, comment string, revisedScore float64, resolvedBy string) (DisputeRequest, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return DisputeRequest{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
    UPDATE dispute_requests SET
      status = $2, resolution = $3, review_comment = $4, revised_score = $5, resolved_by = $6, resolved_at = now()
    WHERE id = $1 AND status = $7
    RETURNING `+disputeColumns+`
  `, id, StatusApproved, ResolutionRevise, comment, revisedScore, resolvedBy, StatusPending)
	d, err := scanDispute(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DisputeRequest{}, s.notPendingErr(ctx, id)
		}
		return DisputeRequest{}, err
	}

	// Preserve the pre-override score, then overwrite it. Both writes
	// commit or roll back with the dispute update.
	tag, err := tx.Exec(ctx, `
    UPDATE appraisals SET
      original_final_score = final_weighted_score,
      final_weighted_score = $2,
      score_override_justification = $3,
      updated_at = now()
    WHERE id = $1
  `, d.AppraisalID, revisedScore, comment)
	if err != nil {
		return DisputeRequest{}, err
	}
	if tag.RowsAffected() == 0 {
		return DisputeRequest{}, fault.NotFound("appraisal", d.AppraisalID)
	}

	if err := tx.Commit(ctx); err != nil {
		return DisputeRequest{}, err
	}
	return d, nil
}

func (s *Store) ListPending(ctx context.Context, filter DashboardFilter) ([]DashboardEntry, error) {
	query := `
    SELECT d.id, d.teacher_id, d.appraisal_id, d.reason, d.evidence, d.status, d.created_at,
      COALESCE(t.first_name || ' ' || t.last_name, ''), COALESCE(t.department, ''), a.year
    FROM dispute_requests d
    JOIN appraisals a ON a.id = d.appraisal_id
    LEFT JOIN teachers t ON t.id = d.teacher_id
    WHERE d.status = $1
  `
	args := []any{StatusPending}
	if filter.TeacherID != "" {
		args = append(args, filter.TeacherID)
		query += fmt.Sprintf(" AND d.teacher_id = $%d", len(args))
	}
	if filter.Department != "" {
		args = append(args, filter.Department)
		query += fmt.Sprintf(" AND t.department = $%d", len(args))
	}
	query += " ORDER BY d.created_at"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DashboardEntry
	for rows.Next() {
		var entry DashboardEntry
		var evidence *string
		if err := rows.Scan(
			&entry.ID, &entry.TeacherID, &entry.AppraisalID, &entry.Reason, &evidence, &entry.Status,
			&entry.CreatedAt, &entry.TeacherName, &entry.Department, &entry.Year,
		); err != nil {
			return nil, err
		}
		if evidence != nil {
			entry.Evidence = *evidence
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDispute(row rowScanner) (DisputeRequest, error) {
	var d DisputeRequest
	var evidence, resolution, reviewComment, resolvedBy *string
	if err := row.Scan(
		&d.ID, &d.TeacherID, &d.AppraisalID, &d.Reason, &evidence, &d.Status,
		&resolution, &reviewComment, &d.RevisedScore, &resolvedBy, &d.ResolvedAt, &d.CreatedAt,
	); err != nil {
		return DisputeRequest{}, err
	}
	if evidence != nil {
		d.Evidence = *evidence
	}
	if resolution != nil {
		d.Resolution = *resolution
	}
	if reviewComment != nil {
		d.ReviewComment = *reviewComment
	}
	if resolvedBy != nil {
		d.ResolvedBy = *resolvedBy
	}
	return d, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
