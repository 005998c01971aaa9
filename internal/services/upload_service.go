package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/homevista/brokerage-backend/internal/config"
)

var (
	// ErrFileTooLarge is returned when an uploaded file exceeds the configured size ceiling.
	ErrFileTooLarge = errors.New("file exceeds the maximum allowed size")
	// ErrUnsupportedFileType is returned when an uploaded file is not an accepted image format.
	ErrUnsupportedFileType = errors.New("file type not allowed, only JPEG, PNG and GIF images are accepted")
)

// allowedImageTypes maps accepted content types (detected from file bytes,
// never from the client-supplied filename or header) to the extension stored
// on disk.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// StagedFile is an uploaded file sitting in the staging area. It is not
// visible at any served path until Commit moves it into place.
type StagedFile struct {
	tempPath string
	Filename string // unique basename the file will have once committed
	Size     int64
}

// UploadService validates uploaded images and manages their lifecycle on
// disk. Files are staged first and only moved to their final location after
// the corresponding database transaction has committed, so a failed request
// never leaves orphaned files at served paths.
type UploadService struct {
	rootDir     string
	stagingDir  string
	maxFileSize int64
	logger      *logrus.Logger
}

// NewUploadService creates a new upload service
func NewUploadService(cfg config.UploadConfig, logger *logrus.Logger) (*UploadService, error) {
	stagingDir := filepath.Join(cfg.RootDir, ".staging")
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	return &UploadService{
		rootDir:     cfg.RootDir,
		stagingDir:  stagingDir,
		maxFileSize: cfg.MaxFileSize,
		logger:      logger,
	}, nil
}

// Stage validates an uploaded file and writes it to the staging area. The
// size ceiling is inclusive: a file of exactly the configured maximum is
// accepted. The content type is detected from the bytes themselves.
func (s *UploadService) Stage(fileHeader *multipart.FileHeader) (*StagedFile, error) {
	if fileHeader.Size > s.maxFileSize {
		return nil, ErrFileTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to detect file type: %w", err)
	}

	ext, ok := allowedImageTypes[mtype.String()]
	if !ok {
		return nil, ErrUnsupportedFileType
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind uploaded file: %w", err)
	}

	filename := uuid.New().String() + ext
	tempPath := filepath.Join(s.stagingDir, filename)

	dst, err := os.Create(tempPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create staged file: %w", err)
	}

	written, err := io.Copy(dst, file)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempPath)
		return nil, fmt.Errorf("failed to write staged file: %w", err)
	}

	return &StagedFile{
		tempPath: tempPath,
		Filename: filename,
		Size:     written,
	}, nil
}

// StageAll stages every file in the batch, discarding the whole batch if any
// single file fails validation.
func (s *UploadService) StageAll(fileHeaders []*multipart.FileHeader) ([]*StagedFile, error) {
	staged := make([]*StagedFile, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		sf, err := s.Stage(fh)
		if err != nil {
			s.Discard(staged...)
			return nil, err
		}
		staged = append(staged, sf)
	}
	return staged, nil
}

// CommitProperty moves staged files into the property's image directory.
// Call this only after the database transaction that references the files
// has committed.
func (s *UploadService) CommitProperty(propertyID int64, staged ...*StagedFile) error {
	dir := filepath.Join(s.rootDir, "properties", fmt.Sprintf("%d", propertyID))
	return s.commit(dir, staged)
}

// CommitProfile moves a staged profile photo into place and returns the
// path stored on the user record.
func (s *UploadService) CommitProfile(staged *StagedFile) (string, error) {
	dir := filepath.Join(s.rootDir, "profiles")
	if err := s.commit(dir, []*StagedFile{staged}); err != nil {
		return "", err
	}
	return "profiles/" + staged.Filename, nil
}

func (s *UploadService) commit(dir string, staged []*StagedFile) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	for _, sf := range staged {
		finalPath := filepath.Join(dir, sf.Filename)
		if err := os.Rename(sf.tempPath, finalPath); err != nil {
			return fmt.Errorf("failed to move staged file into place: %w", err)
		}
	}
	return nil
}

// Discard removes staged files that will not be committed, typically because
// the surrounding database transaction rolled back. Removal failures are
// logged rather than returned since the request outcome is already decided.
func (s *UploadService) Discard(staged ...*StagedFile) {
	for _, sf := range staged {
		if err := os.Remove(sf.tempPath); err != nil && !os.IsNotExist(err) {
			s.logger.WithError(err).WithField("file", sf.tempPath).Warn("Failed to remove staged file")
		}
	}
}

// Remove deletes a committed file given its stored relative path. Paths that
// escape the upload root are rejected.
func (s *UploadService) Remove(relPath string) error {
	cleaned := filepath.Clean(relPath)
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return fmt.Errorf("invalid file path: %s", relPath)
	}
	if err := os.Remove(filepath.Join(s.rootDir, cleaned)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

// RemoveAll deletes committed files, logging failures instead of aborting so
// a single missing file does not stop cleanup of the rest.
func (s *UploadService) RemoveAll(relPaths []string) {
	for _, p := range relPaths {
		if err := s.Remove(p); err != nil {
			s.logger.WithError(err).WithField("file", p).Warn("Failed to remove uploaded file")
		}
	}
}
