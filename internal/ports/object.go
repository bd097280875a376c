package ports

import (
	"context"
	"fmt"
	"io"
)

type Meta struct {
	Source      string
	ContentType string
	Size        int64
	Bucket      string
	Key         string
}

// Path renders the URL callers use to locate an uploaded object.
func (m Meta) Path() string {
	return fmt.Sprintf("%s://%s/%s", m.Source, m.Bucket, m.Key)
}

type ObjectUploader interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (Meta, error)
}
