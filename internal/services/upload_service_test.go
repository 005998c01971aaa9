package services

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homevista/brokerage-backend/internal/config"
)

var (
	pngBytes  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}
	jpegBytes = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	gifBytes  = []byte("GIF89a\x01\x00\x01\x00")
)

func newTestUploadService(t *testing.T, maxFileSize int64) *UploadService {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc, err := NewUploadService(config.UploadConfig{
		RootDir:     t.TempDir(),
		MaxFileSize: maxFileSize,
	}, logger)
	require.NoError(t, err)
	return svc
}

// makeFileHeader builds a real multipart.FileHeader by round-tripping the
// content through an HTTP multipart form.
func makeFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))

	return req.MultipartForm.File["image"][0]
}

func TestStageAcceptedImageTypes(t *testing.T) {
	svc := newTestUploadService(t, 5*1024*1024)

	tests := []struct {
		name    string
		content []byte
		wantExt string
	}{
		{"png", pngBytes, ".png"},
		{"jpeg", jpegBytes, ".jpg"},
		{"gif", gifBytes, ".gif"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			staged, err := svc.Stage(makeFileHeader(t, "photo.bin", tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.wantExt, filepath.Ext(staged.Filename))
			assert.Equal(t, int64(len(tt.content)), staged.Size)

			written, err := os.ReadFile(staged.tempPath)
			require.NoError(t, err)
			assert.Equal(t, tt.content, written)
		})
	}
}

func TestStageRejectsUnsupportedType(t *testing.T) {
	svc := newTestUploadService(t, 5*1024*1024)

	_, err := svc.Stage(makeFileHeader(t, "notes.txt", []byte("just some text")))
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestStageRejectsSpoofedExtension(t *testing.T) {
	svc := newTestUploadService(t, 5*1024*1024)

	// Extension says image, bytes say otherwise
	_, err := svc.Stage(makeFileHeader(t, "photo.jpg", []byte("<?php echo 'hi'; ?>")))
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestStageSizeCeiling(t *testing.T) {
	const limit = 1024
	svc := newTestUploadService(t, limit)

	atLimit := make([]byte, limit)
	copy(atLimit, pngBytes)

	t.Run("exactly at the limit is accepted", func(t *testing.T) {
		staged, err := svc.Stage(makeFileHeader(t, "photo.png", atLimit))
		require.NoError(t, err)
		assert.Equal(t, int64(limit), staged.Size)
	})

	t.Run("one byte over the limit is rejected", func(t *testing.T) {
		overLimit := append(append([]byte{}, atLimit...), 0x00)
		_, err := svc.Stage(makeFileHeader(t, "photo.png", overLimit))
		assert.ErrorIs(t, err, ErrFileTooLarge)
	})
}

func TestStageAllIsAllOrNothing(t *testing.T) {
	svc := newTestUploadService(t, 5*1024*1024)

	headers := []*multipart.FileHeader{
		makeFileHeader(t, "one.png", pngBytes),
		makeFileHeader(t, "two.jpg", jpegBytes),
		makeFileHeader(t, "bad.txt", []byte("not an image")),
	}

	staged, err := svc.StageAll(headers)
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
	assert.Nil(t, staged)

	// The files staged before the failure must have been discarded
	entries, err := os.ReadDir(svc.stagingDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCommitPropertyMovesFilesOutOfStaging(t *testing.T) {
	svc := newTestUploadService(t, 5*1024*1024)

	staged, err := svc.StageAll([]*multipart.FileHeader{
		makeFileHeader(t, "one.png", pngBytes),
		makeFileHeader(t, "two.jpg", jpegBytes),
	})
	require.NoError(t, err)

	require.NoError(t, svc.CommitProperty(42, staged...))

	for _, sf := range staged {
		finalPath := filepath.Join(svc.rootDir, "properties", "42", sf.Filename)
		_, err := os.Stat(finalPath)
		assert.NoError(t, err, "committed file should exist at its served path")
		_, err = os.Stat(sf.tempPath)
		assert.True(t, os.IsNotExist(err), "staged copy should be gone after commit")
	}
}

func TestCommitProfileReturnsStoredPath(t *testing.T) {
	svc := newTestUploadService(t, 5*1024*1024)

	staged, err := svc.Stage(makeFileHeader(t, "avatar.png", pngBytes))
	require.NoError(t, err)

	relPath, err := svc.CommitProfile(staged)
	require.NoError(t, err)
	assert.Equal(t, "profiles/"+staged.Filename, relPath)

	_, err = os.Stat(filepath.Join(svc.rootDir, relPath))
	assert.NoError(t, err)
}

func TestDiscardRemovesStagedFiles(t *testing.T) {
	svc := newTestUploadService(t, 5*1024*1024)

	staged, err := svc.Stage(makeFileHeader(t, "photo.png", pngBytes))
	require.NoError(t, err)

	svc.Discard(staged)

	_, err = os.Stat(staged.tempPath)
	assert.True(t, os.IsNotExist(err))

	// Discarding again is a no-op
	svc.Discard(staged)
}

func TestRemoveRejectsPathTraversal(t *testing.T) {
	svc := newTestUploadService(t, 5*1024*1024)

	assert.Error(t, svc.Remove("../etc/passwd"))
	assert.Error(t, svc.Remove("/etc/passwd"))
}

func TestRemoveDeletesCommittedFile(t *testing.T) {
	svc := newTestUploadService(t, 5*1024*1024)

	staged, err := svc.Stage(makeFileHeader(t, "photo.png", pngBytes))
	require.NoError(t, err)
	relPath, err := svc.CommitProfile(staged)
	require.NoError(t, err)

	require.NoError(t, svc.Remove(relPath))
	_, err = os.Stat(filepath.Join(svc.rootDir, relPath))
	assert.True(t, os.IsNotExist(err))

	// Removing a missing file is not an error
	assert.NoError(t, svc.Remove(relPath))
}
