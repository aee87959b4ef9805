package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var ErrFileNotFound = errors.New("file not found")

// FileStorage keeps uploaded files (door QR codes, profile pictures) under
// slash-separated keys and serves them from a public URL.
type FileStorage interface {
	// Put writes r under key, replacing any previous file, and returns the
	// normalized key.
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	URL(key string) (string, error)
}

// QRImageKey is where a door's QR code image lives.
func QRImageKey(companyID, doorID string) string {
	return fmt.Sprintf("qr/%s/%s.png", companyID, doorID)
}

// ProfilePictureKey is where a user's profile picture version lives.
func ProfilePictureKey(userID, version string) string {
	return fmt.Sprintf("profiles/%s/%s.jpg", userID, version)
}
