package config

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

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

func (s *Store) GetActive(ctx context.Context, key string) (Configuration, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT id, key, version, value, is_active, description, created_by, created_at
    FROM configurations
    WHERE key = $1 AND is_active = true
  `, key)
	return scanConfiguration(row, key)
}

func (s *Store) GetVersion(ctx context.Context, key string, version int) (Configuration, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT id, key, version, value, is_active, description, created_by, created_at
    FROM configurations
    WHERE key = $1 AND version = $2
  `, key, version)
	return scanConfiguration(row, key+"@"+strconv.Itoa(version))
}

func (s *Store) InsertVersion(ctx context.Context, key string, value map[string]any, actorID, description string) (Configuration, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return Configuration{}, err
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Configuration{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Lock the active row so concurrent writers serialize and the
	// at-most-one-active invariant holds.
	var previous int
	err = tx.QueryRow(ctx, `
    SELECT version FROM configurations
    WHERE key = $1 AND is_active = true
    FOR UPDATE
  `, key).Scan(&previous)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return Configuration{}, err
	}

	if _, err := tx.Exec(ctx, `
    UPDATE configurations SET is_active = false WHERE key = $1 AND is_active = true
  `, key); err != nil {
		return Configuration{}, err
	}

	out := Configuration{Key: key, Version: previous + 1, Value: value, IsActive: true, Description: description, CreatedBy: actorID}
	if err := tx.QueryRow(ctx, `
    INSERT INTO configurations (key, version, value, is_active, description, created_by)
    VALUES ($1, $2, $3, true, $4, $5)
    RETURNING id, created_at
  `, key, previous+1, payload, description, nullIfEmpty(actorID)).Scan(&out.ID, &out.CreatedAt); err != nil {
		return Configuration{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Configuration{}, err
	}
	return out, nil
}

func (s *Store) History(ctx context.Context, key string) ([]Configuration, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, key, version, value, is_active, description, created_by, created_at
    FROM configurations
    WHERE key = $1
    ORDER BY version DESC
  `, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Configuration
	for rows.Next() {
		cfg, err := scanConfigurationRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConfiguration(row rowScanner, ref string) (Configuration, error) {
	cfg, err := scanConfigurationRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Configuration{}, fault.NotFound("configuration", ref)
	}
	return cfg, err
}

func scanConfigurationRow(row rowScanner) (Configuration, error) {
	var cfg Configuration
	var payload []byte
	var description, createdBy *string
	if err := row.Scan(&cfg.ID, &cfg.Key, &cfg.Version, &payload, &cfg.IsActive, &description, &createdBy, &cfg.CreatedAt); err != nil {
		return Configuration{}, err
	}
	if description != nil {
		cfg.Description = *description
	}
	if createdBy != nil {
		cfg.CreatedBy = *createdBy
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &cfg.Value); err != nil {
			return Configuration{}, err
		}
	}
	return cfg, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
