package marketplace

import "context"

// Repository port for persisted (non-demo) listings, newest first.
type Repository interface {
	Load(ctx context.Context, limit int) ([]*Listing, error)
	Replace(ctx context.Context, listings []*Listing) error
}
