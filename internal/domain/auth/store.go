package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"teaps/internal/domain/fault"
)

type AuthUser struct {
	ID           string
	Email        string
	PasswordHash string
	RoleName     string
	TeacherID    string
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (AuthUser, error) {
	var user AuthUser
	var teacherID *string
	err := s.DB.QueryRow(ctx, `
    SELECT u.id, u.email, u.password_hash, u.role, t.id
    FROM users u
    LEFT JOIN teachers t ON t.user_id = u.id
    WHERE u.email = $1 AND u.status = 'active'
  `, email).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.RoleName, &teacherID)
	if errors.Is(err, pgx.ErrNoRows) {
		return AuthUser{}, fault.NotFound("user", email)
	}
	if err != nil {
		return AuthUser{}, err
	}
	if teacherID != nil {
		user.TeacherID = *teacherID
	}
	return user, nil
}

func (s *Store) TeacherIDByUserID(ctx context.Context, userID string) (string, error) {
	var teacherID string
	err := s.DB.QueryRow(ctx, "SELECT id FROM teachers WHERE user_id = $1", userID).Scan(&teacherID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return teacherID, err
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login_at = now() WHERE id = $1", userID)
	return err
}
