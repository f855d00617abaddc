// Package media provides the remote object store used for user attachments.
package media

import (
	"context"
	"errors"
	"io"
)

// ErrUploadFailed indicates the remote store rejected or failed an upload.
var ErrUploadFailed = errors.New("media upload failed")

// Object describes a stored attachment on the remote host.
type Object struct {
	// URL is the stable public URL clients are redirected to.
	URL string
	// Key is the object key inside the bucket; it is the deletion handle.
	Key string
}

// Store uploads and deletes attachment objects on a remote media host.
type Store interface {
	// Upload stores the content and returns its public URL and key.
	// filename is the client's original name, kept for key derivation
	// and content-disposition; size must be the exact content length.
	Upload(ctx context.Context, filename, contentType string, size int64, content io.Reader) (*Object, error)

	// Delete removes the object with the given key.
	Delete(ctx context.Context, key string) error
}
