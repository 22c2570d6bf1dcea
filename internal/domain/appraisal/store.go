package appraisal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"teaps/internal/domain/fault"
)

const uniqueViolation = "23505"

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const appraisalColumns = `
  id, teacher_id, year, raw_scores, final_weighted_score, status,
  self_strengths, self_improvements, self_goals,
  principal_comment, hr_comment, career_advancement,
  revision_reason, revision_comments,
  original_final_score, score_override_justification,
  created_at, updated_at`

func (s *Store) Insert(ctx context.Context, a Appraisal) (Appraisal, error) {
	scores, err := json.Marshal(a.RawScores)
	if err != nil {
		return Appraisal{}, err
	}

	err = s.DB.QueryRow(ctx, `
    INSERT INTO appraisals (teacher_id, year, raw_scores, status)
    VALUES ($1, $2, $3, $4)
    RETURNING id, created_at, updated_at
  `, a.TeacherID, a.Year, scores, a.Status).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Appraisal{}, fault.StateConflict("appraisal", fmt.Sprintf("%s/%d", a.TeacherID, a.Year), "exists", "create")
		}
		return Appraisal{}, err
	}
	return a, nil
}

func (s *Store) Get(ctx context.Context, id string) (Appraisal, error) {
	row := s.DB.QueryRow(ctx, `SELECT `+appraisalColumns+` FROM appraisals WHERE id = $1`, id)
	a, err := scanAppraisal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Appraisal{}, fault.NotFound("appraisal", id)
	}
	return a, err
}

func (s *Store) SaveTransition(ctx context.Context, a Appraisal, change StatusChange) (Appraisal, error) {
	scores, err := json.Marshal(a.RawScores)
	if err != nil {
		return Appraisal{}, err
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Appraisal{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.QueryRow(ctx, `
    UPDATE appraisals SET
      raw_scores = $2,
      final_weighted_score = $3,
      status = $4,
      self_strengths = $5,
      self_improvements = $6,
      self_goals = $7,
      principal_comment = $8,
      hr_comment = $9,
      career_advancement = $10,
      revision_reason = $11,
      revision_comments = $12,
      original_final_score = $13,
      score_override_justification = $14,
      updated_at = now()
    WHERE id = $1
    RETURNING updated_at
  `, a.ID, scores, a.FinalWeightedScore, a.Status,
		a.SelfStrengths, a.SelfImprovements, a.SelfGoals,
		a.PrincipalComment, a.HRComment, a.CareerAdvancement,
		a.RevisionReason, a.RevisionComments,
		a.OriginalFinalScore, a.ScoreOverrideJustification).Scan(&a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Appraisal{}, fault.NotFound("appraisal", a.ID)
		}
		return Appraisal{}, err
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO appraisal_status_history (appraisal_id, from_status, to_status, actor_id, actor_role, comment)
    VALUES ($1, $2, $3, $4, $5, $6)
  `, change.AppraisalID, change.FromStatus, change.ToStatus, change.ActorID, change.ActorRole, change.Comment); err != nil {
		return Appraisal{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Appraisal{}, err
	}
	return a, nil
}

func (s *Store) List(ctx context.Context, filter ListFilter) ([]Appraisal, error) {
	query := `SELECT ` + appraisalColumns + ` FROM appraisals WHERE 1=1`
	var args []any
	if filter.TeacherID != "" {
		args = append(args, filter.TeacherID)
		query += fmt.Sprintf(" AND teacher_id = $%d", len(args))
	}
	if filter.Year != 0 {
		args = append(args, filter.Year)
		query += fmt.Sprintf(" AND year = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY year DESC, created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Appraisal
	for rows.Next() {
		a, err := scanAppraisal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) StatusHistory(ctx context.Context, appraisalID string) ([]StatusChange, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, appraisal_id, from_status, to_status, actor_id, actor_role, comment, created_at
    FROM appraisal_status_history
    WHERE appraisal_id = $1
    ORDER BY created_at
  `, appraisalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatusChange
	for rows.Next() {
		var change StatusChange
		var comment *string
		if err := rows.Scan(&change.ID, &change.AppraisalID, &change.FromStatus, &change.ToStatus, &change.ActorID, &change.ActorRole, &comment, &change.CreatedAt); err != nil {
			return nil, err
		}
		if comment != nil {
			change.Comment = *comment
		}
		out = append(out, change)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppraisal(row rowScanner) (Appraisal, error) {
	var a Appraisal
	var scores []byte
	var selfStrengths, selfImprovements, selfGoals *string
	var principalComment, hrComment, careerAdvancement *string
	var revisionReason, revisionComments, overrideJustification *string
	if err := row.Scan(
		&a.ID, &a.TeacherID, &a.Year, &scores, &a.FinalWeightedScore, &a.Status,
		&selfStrengths, &selfImprovements, &selfGoals,
		&principalComment, &hrComment, &careerAdvancement,
		&revisionReason, &revisionComments,
		&a.OriginalFinalScore, &overrideJustification,
		&a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return Appraisal{}, err
	}
	if len(scores) > 0 {
		if err := json.Unmarshal(scores, &a.RawScores); err != nil {
			return Appraisal{}, err
		}
	}
	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	assign(&a.SelfStrengths, selfStrengths)
	assign(&a.SelfImprovements, selfImprovements)
	assign(&a.SelfGoals, selfGoals)
	assign(&a.PrincipalComment, principalComment)
	assign(&a.HRComment, hrComment)
	assign(&a.CareerAdvancement, careerAdvancement)
	assign(&a.RevisionReason, revisionReason)
	assign(&a.RevisionComments, revisionComments)
	assign(&a.ScoreOverrideJustification, overrideJustification)
	return a, nil
}
