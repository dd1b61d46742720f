package storage

import "context"

// ArtifactStore keeps opaque blobs (chat transcripts, batch reports) and returns a URL to them.
type ArtifactStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
