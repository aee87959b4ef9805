package file

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // Import for PNG decoding support
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/apperror"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/storage"
	"golang.org/x/image/draw"
)

var ErrInvalidFileType = apperror.Validation("invalid file type: only jpg, jpeg, png allowed")

type FileService interface {
	// UploadProfilePicture stores a compressed JPEG copy of a user's photo.
	UploadProfilePicture(ctx context.Context, userID string, file io.Reader, filename string) (string, error)

	// SaveDoorQR stores a base64 PNG QR code for a door.
	SaveDoorQR(ctx context.Context, companyID, doorID, encoded string) (string, error)

	// DeleteDoorQR removes a door's QR image. A missing image is not an error.
	DeleteDoorQR(ctx context.Context, companyID, doorID string) error
}

type fileServiceImpl struct {
	storage storage.FileStorage
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
	}
}

// UploadProfilePicture compresses the photo to at most 150KB and returns its URL.
func (s *fileServiceImpl) UploadProfilePicture(ctx context.Context, userID string, file io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return "", ErrInvalidFileType
	}

	buffer, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	compressed, err := compressImage(buffer, 150*1024)
	if err != nil {
		return "", fmt.Errorf("failed to compress image: %w", err)
	}

	// a fresh key per upload so cached copies of the old picture go stale
	key, err := s.storage.Put(ctx, storage.ProfilePictureKey(userID, uuid.NewString()), bytes.NewReader(compressed), "image/jpeg")
	if err != nil {
		return "", fmt.Errorf("failed to upload profile picture: %w", err)
	}

	return s.storage.URL(key)
}

func (s *fileServiceImpl) SaveDoorQR(ctx context.Context, companyID, doorID, encoded string) (string, error) {
	return storage.SaveQRImage(ctx, s.storage, companyID, doorID, encoded)
}

func (s *fileServiceImpl) DeleteDoorQR(ctx context.Context, companyID, doorID string) error {
	return s.storage.Delete(ctx, storage.QRImageKey(companyID, doorID))
}

// ==================== HELPER FUNCTIONS ====================

// compressImage re-encodes an image as JPEG, lowering quality and then size
// until it fits in maxSize bytes.
func compressImage(buffer []byte, maxSize int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(buffer))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	originalWidth := bounds.Dx()
	originalHeight := bounds.Dy()

	quality := 85
	var compressed []byte

	for quality >= 50 {
		buf := new(bytes.Buffer)
		if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
		compressed = buf.Bytes()

		if len(compressed) <= maxSize {
			return compressed, nil
		}
		quality -= 5
	}

	// Still too large, scale down towards 100KB
	targetSize := 100 * 1024
	ratio := math.Sqrt(float64(targetSize) / float64(len(compressed)))
	newWidth := max(int(float64(originalWidth)*ratio), 1)
	newHeight := max(int(float64(originalHeight)*ratio), 1)

	resized := resizeImage(img, newWidth, newHeight)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, resized, &jpeg.Options{Quality: 70}); err != nil {
		return nil, fmt.Errorf("failed to encode resized image: %w", err)
	}

	return buf.Bytes(), nil
}

// resizeImage resizes an image to the specified dimensions using high-quality interpolation
func resizeImage(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	// Use CatmullRom for high-quality downscaling
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
