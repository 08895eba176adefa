package adapter

import "context"

// ObjectStore is the black-box file/CDN service. Deletes are best-effort:
// callers log failures and never roll back local state.
type ObjectStore interface {
	DeleteObject(ctx context.Context, objectID string) error
}

// VideoStore is the black-box remote video platform, keyed by opaque ids.
type VideoStore interface {
	DeleteVideo(ctx context.Context, videoID string) error
}
