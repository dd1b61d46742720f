package history

import "context"

// Repository port for the persisted history snapshot. Entries are ordered newest first.
type Repository interface {
	// Load returns at most limit entries, newest first. limit <= 0 means no bound.
	Load(ctx context.Context, limit int) ([]*Entry, error)
	// Replace overwrites the persisted snapshot with entries.
	Replace(ctx context.Context, entries []*Entry) error
}
