// Package storage persists uploaded source images and cropped parts as
// flat files under deterministic names, so each workflow step and the
// results view can re-load them by {session, category} alone.
package storage

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/figmatch/figmatch/pkg/imaging"
	"github.com/figmatch/figmatch/pkg/parts"
)

// ErrNoUpload is returned when a session's source image is missing.
var ErrNoUpload = errors.New("upload not found")

// allowedExtensions is the upload extension allow-list.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// Store owns the upload and crop directories.
type Store struct {
	uploadDir string
	cropDir   string
	logger    *zap.Logger
}

// NewStore creates both directories if needed and returns the store.
func NewStore(uploadDir, cropDir string, logger *zap.Logger) (*Store, error) {
	for _, dir := range []string{uploadDir, cropDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return &Store{
		uploadDir: uploadDir,
		cropDir:   cropDir,
		logger:    logger,
	}, nil
}

// AllowedExtension reports whether the filename carries an accepted
// raster-image extension.
func AllowedExtension(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// SanitizeFilename reduces an uploaded filename to a form safe as a path
// component: base name only, restricted charset, no leading dots. Returns
// an error when nothing safe remains.
func SanitizeFilename(filename string) (string, error) {
	name := filepath.Base(filepath.ToSlash(filename))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	clean := strings.TrimLeft(b.String(), ".")
	if clean == "" || strings.Trim(clean, "._-") == "" {
		return "", fmt.Errorf("filename %q has no usable characters", filename)
	}
	return clean, nil
}

// SessionName derives the session key from a sanitized upload filename:
// the filename stem.
func SessionName(sanitized string) string {
	return strings.TrimSuffix(sanitized, filepath.Ext(sanitized))
}

// SaveUpload persists the original upload under its sanitized filename and
// returns that filename.
func (s *Store) SaveUpload(filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}

	if err := s.writeAtomic(filepath.Join(s.uploadDir, filename), data); err != nil {
		return "", err
	}

	s.logger.Debug("saved upload",
		zap.String("filename", filename),
		zap.Int("bytes", len(data)),
	)

	return filename, nil
}

// OpenUpload decodes a previously saved upload.
func (s *Store) OpenUpload(filename string) (image.Image, error) {
	f, err := os.Open(filepath.Join(s.uploadDir, filename))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoUpload, filename)
		}
		return nil, fmt.Errorf("opening upload %s: %w", filename, err)
	}
	defer f.Close()

	return imaging.Decode(f)
}

// CropName is the deterministic crop filename for {category, session}.
func CropName(category parts.Category, session string) string {
	return fmt.Sprintf("%s_%s.png", category, session)
}

// SaveCrop persists a cropped part as PNG (lossless, alpha preserved)
// under the deterministic {category, session} name.
func (s *Store) SaveCrop(category parts.Category, session string, img image.Image) error {
	data, err := imaging.EncodePNG(img)
	if err != nil {
		return err
	}
	return s.writeAtomic(filepath.Join(s.cropDir, CropName(category, session)), data)
}

// OpenCrop decodes a previously saved cropped part.
func (s *Store) OpenCrop(category parts.Category, session string) (image.Image, error) {
	f, err := os.Open(filepath.Join(s.cropDir, CropName(category, session)))
	if err != nil {
		return nil, fmt.Errorf("opening %s crop for session %s: %w", category, session, err)
	}
	defer f.Close()

	return imaging.Decode(f)
}

// UploadDir returns the upload directory path.
func (s *Store) UploadDir() string {
	return s.uploadDir
}

// CropDir returns the crop directory path.
func (s *Store) CropDir() string {
	return s.cropDir
}

// writeAtomic writes data to path via a uuid-named temp file and rename,
// so a crash never leaves a half-written image behind.
func (s *Store) writeAtomic(path string, data []byte) error {
	tmp := filepath.Join(filepath.Dir(path), ".tmp-"+uuid.NewString())

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming %s into place: %w", path, err)
	}
	return nil
}
