package config

import "context"

type StoreAPI interface {
	GetActive(ctx context.Context, key string) (Configuration, error)
	GetVersion(ctx context.Context, key string, version int) (Configuration, error)
	// InsertVersion deactivates the current active row for key and inserts
	// the next version as active, in a single transaction.
	InsertVersion(ctx context.Context, key string, value map[string]any, actorID, description string) (Configuration, error)
	History(ctx context.Context, key string) ([]Configuration, error)
}
