package config

import (
	"context"
	"errors"
	"fmt"

	"teaps/internal/domain/fault"
	"teaps/internal/domain/scoring"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

// Get returns the active value for key. Known keys with no stored version
// are seeded with their documented defaults on first read.
func (s *Service) Get(ctx context.Context, key string) (Configuration, error) {
	cfg, err := s.store.GetActive(ctx, key)
	if err == nil {
		return cfg, nil
	}

	var nf *fault.NotFoundError
	if !errors.As(err, &nf) {
		return Configuration{}, err
	}

	value, known := DefaultValue(key)
	if !known {
		return Configuration{}, err
	}
	return s.store.InsertVersion(ctx, key, value, "", "Seeded default")
}

func (s *Service) Update(ctx context.Context, key string, value map[string]any, actorID, description string) (Configuration, error) {
	if key == "" {
		return Configuration{}, fault.Invalid("key", "key is required")
	}
	if len(value) == 0 {
		return Configuration{}, fault.Invalid("value", "value is required")
	}
	if err := validateValue(key, value); err != nil {
		return Configuration{}, err
	}
	return s.store.InsertVersion(ctx, key, value, actorID, description)
}

func (s *Service) History(ctx context.Context, key string) ([]Configuration, error) {
	return s.store.History(ctx, key)
}

// Restore re-applies an old version's value as a new version. The old row
// itself is never reactivated.
func (s *Service) Restore(ctx context.Context, key string, version int, actorID string) (Configuration, error) {
	target, err := s.store.GetVersion(ctx, key, version)
	if err != nil {
		return Configuration{}, err
	}
	description := fmt.Sprintf("Restored from version %d", version)
	return s.store.InsertVersion(ctx, key, target.Value, actorID, description)
}

// Rubric returns the active appraisal rubric, seeding the default if needed.
func (s *Service) Rubric(ctx context.Context) (scoring.Rubric, error) {
	cfg, err := s.Get(ctx, KeyAppraisalRubric)
	if err != nil {
		return nil, err
	}
	return scoring.ParseRubric(cfg.Value)
}

// RequiredCPEHours returns the active annual CPE hours requirement.
func (s *Service) RequiredCPEHours(ctx context.Context) (float64, error) {
	cfg, err := s.Get(ctx, KeyCPERequiredHours)
	if err != nil {
		return 0, err
	}
	hours, ok := cfg.Value["hours"].(float64)
	if !ok || hours <= 0 {
		return DefaultCPERequiredHours, nil
	}
	return hours, nil
}

func validateValue(key string, value map[string]any) error {
	switch key {
	case KeyAppraisalRubric:
		_, err := scoring.ParseRubric(value)
		return err
	case KeyCPERequiredHours:
		hours, ok := value["hours"].(float64)
		if !ok {
			return fault.Invalid("value.hours", "hours must be a number")
		}
		if hours <= 0 {
			return fault.Invalid("value.hours", "hours must be positive")
		}
	}
	return nil
}
