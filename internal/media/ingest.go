package media

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/gameskins-co/intake/internal/leads"
	"github.com/gameskins-co/intake/pkg/logging"
)

var (
	// ErrEmptyUpload is returned for a zero-byte image part
	ErrEmptyUpload = errors.New("image is empty")

	// ErrTooLarge is returned when an image exceeds the configured ceiling
	ErrTooLarge = errors.New("image exceeds the size limit")

	// ErrUnsupportedType is returned for content types outside the allow-list
	ErrUnsupportedType = errors.New("unsupported image type")

	// ErrUploadFailed wraps blob-store failures
	ErrUploadFailed = errors.New("image upload failed")
)

// extensions maps the allowed content types to their storage extension.
var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9.\-_]+`)

const maxFilenameLen = 80

// Upload is one submitted image part.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
	Details     string
}

// Ingestor validates uploads and forwards them to the blob store, producing
// the LeadImage row for persistence.
type Ingestor struct {
	store         BlobStore
	bucket        string
	publicBaseURL string
	maxBytes      int64
	logger        *logging.Logger
}

// NewIngestor creates the media ingestion pipeline.
func NewIngestor(store BlobStore, bucket, publicBaseURL string, maxBytes int64, logger *logging.Logger) *Ingestor {
	if logger == nil {
		logger = logging.Default()
	}
	return &Ingestor{
		store:         store,
		bucket:        bucket,
		publicBaseURL: publicBaseURL,
		maxBytes:      maxBytes,
		logger:        logger,
	}
}

// MaxBytes returns the configured size ceiling.
func (i *Ingestor) MaxBytes() int64 {
	return i.maxBytes
}

// Validate runs the pre-upload checks without touching the store. The size
// ceiling is inclusive: an image of exactly maxBytes passes.
func (i *Ingestor) Validate(up Upload) error {
	size := int64(len(up.Data))
	if size == 0 {
		return ErrEmptyUpload
	}
	if size > i.maxBytes {
		return fmt.Errorf("%w: %d bytes over %d", ErrTooLarge, size, i.maxBytes)
	}
	ct := strings.ToLower(strings.TrimSpace(up.ContentType))
	if _, ok := extensions[ct]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, ct)
	}
	return nil
}

// Ingest validates one upload, stores the bytes under a fresh storage path
// and returns the image row ready to attach to the lead. The storage path
// token carries 128 bits of randomness, so no collision check is made
// against existing paths.
func (i *Ingestor) Ingest(ctx context.Context, leadID string, up Upload) (*leads.LeadImage, error) {
	if err := i.Validate(up); err != nil {
		return nil, err
	}

	ct := strings.ToLower(strings.TrimSpace(up.ContentType))
	path := leadID + "/" + randomToken() + extensions[ct]

	if err := i.store.Put(ctx, i.bucket, path, ct, up.Data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	img := &leads.LeadImage{
		LeadID:           leadID,
		StorageBucket:    i.bucket,
		StoragePath:      path,
		PublicURL:        PublicURL(i.publicBaseURL, i.bucket, path),
		OriginalFilename: SanitizeFilename(up.Filename),
		ContentType:      ct,
		SizeBytes:        int64(len(up.Data)),
		Details:          up.Details,
	}

	i.logger.Info("image ingested",
		"lead_id", leadID,
		"path", path,
		"content_type", ct,
		"bytes", img.SizeBytes,
	)
	return img, nil
}

// SanitizeFilename strips unsafe characters from the client filename and
// bounds its length. The result is display-only and never used as the
// storage path.
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "image"
	}
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	if len(name) > maxFilenameLen {
		name = name[:maxFilenameLen]
	}
	return name
}

func randomToken() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}
