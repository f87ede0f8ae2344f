package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dutyroster/schedule-backend/internal/config"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// UploadURLPrefix is where stored images are served from
const UploadURLPrefix = "/uploads/"

var dataURLRegex = regexp.MustCompile(`^data:(image/[A-Za-z0-9.+-]+);base64,(.+)$`)

// imageExts maps the accepted image types to the stored file extension. SVG is not accepted:
// uploads are served from the API origin and SVG can carry script.
var imageExts = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// UploadService stores base64 images sent by the admin editor
type UploadService struct {
	cfg    config.UploadConfig
	logger *logrus.Logger
}

// NewUploadService creates a new UploadService
func NewUploadService(cfg config.UploadConfig, logger *logrus.Logger) *UploadService {
	return &UploadService{cfg: cfg, logger: logger}
}

// SaveDataURL decodes a data:image/...;base64 URL, writes it under a random name with the
// extension of its MIME type and returns the public URL of the file. The client's filename
// is only logged.
func (s *UploadService) SaveDataURL(ctx context.Context, dataURL, filename string) (string, error) {
	m := dataURLRegex.FindStringSubmatch(strings.TrimSpace(dataURL))
	if m == nil {
		return "", validationError("Invalid base64 string")
	}
	mime := strings.ToLower(m[1])
	ext, ok := imageExts[mime]
	if !ok {
		return "", validationError("unsupported image type %q", mime)
	}

	if s.cfg.MaxBytes > 0 && int64(base64.StdEncoding.DecodedLen(len(m[2]))) > s.cfg.MaxBytes+2 {
		return "", validationError("image exceeds %d bytes", s.cfg.MaxBytes)
	}

	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return "", validationError("Invalid base64 string")
	}
	if s.cfg.MaxBytes > 0 && int64(len(data)) > s.cfg.MaxBytes {
		return "", validationError("image exceeds %d bytes", s.cfg.MaxBytes)
	}

	name := uuid.NewString() + ext

	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.cfg.Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"file": name, "original": filename, "bytes": len(data), "mime": mime}).Info("Image uploaded")
	return UploadURLPrefix + name, nil
}
