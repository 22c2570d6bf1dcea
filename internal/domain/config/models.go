package config

import "time"

type Configuration struct {
	ID          string         `json:"id"`
	Key         string         `json:"key"`
	Version     int            `json:"version"`
	Value       map[string]any `json:"value"`
	IsActive    bool           `json:"isActive"`
	Description string         `json:"description,omitempty"`
	CreatedBy   string         `json:"createdBy,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}
