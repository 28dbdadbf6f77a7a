package port

import (
	"context"
	"io"
)

// PreviewObject is a selected file copied to object storage for the viewer.
type PreviewObject struct {
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
}

// PreviewStorage keeps viewer previews outside the session store.
type PreviewStorage interface {
	Put(ctx context.Context, obj PreviewObject) error
	PresignedURL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}
