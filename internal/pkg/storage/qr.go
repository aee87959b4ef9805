package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"strings"
)

var ErrInvalidImage = errors.New("image is not a base64 encoded PNG")

const maxQRImageBytes = 2 << 20

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// DecodePNG accepts raw base64 or a data:image/png;base64 URL and returns the image bytes.
func DecodePNG(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if strings.HasPrefix(encoded, "data:") {
		const prefix = "data:image/png;base64,"
		if !strings.HasPrefix(encoded, prefix) {
			return nil, ErrInvalidImage
		}
		encoded = encoded[len(prefix):]
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidImage
	}
	if len(raw) > maxQRImageBytes || !bytes.HasPrefix(raw, pngSignature) {
		return nil, ErrInvalidImage
	}
	return raw, nil
}

// SaveQRImage stores a door's QR code image and returns its public URL.
func SaveQRImage(ctx context.Context, fs FileStorage, companyID, doorID, encoded string) (string, error) {
	raw, err := DecodePNG(encoded)
	if err != nil {
		return "", err
	}

	key, err := fs.Put(ctx, QRImageKey(companyID, doorID), bytes.NewReader(raw), "image/png")
	if err != nil {
		return "", err
	}
	return fs.URL(key)
}
