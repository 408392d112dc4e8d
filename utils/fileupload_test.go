package utils

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildFileHeader creates a multipart.FileHeader the way gin would hand it to
// a handler
func buildFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req

	fileHeader, err := c.FormFile("image")
	require.NoError(t, err)
	return fileHeader
}

func TestValidateImageFile(t *testing.T) {
	tests := []struct {
		name         string
		filename     string
		content      []byte
		expectedCode string
	}{
		{
			name:     "valid PNG file",
			filename: "car.png",
			content:  []byte("fake PNG content"),
		},
		{
			name:     "uppercase extension is accepted",
			filename: "car.PNG",
			content:  []byte("fake PNG content"),
		},
		{
			name:         "JPEG is rejected",
			filename:     "car.jpg",
			content:      []byte("fake JPEG content"),
			expectedCode: "INVALID_FILE_FORMAT",
		},
		{
			name:         "missing extension is rejected",
			filename:     "car",
			content:      []byte("content"),
			expectedCode: "INVALID_FILE_FORMAT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fileHeader := buildFileHeader(t, tt.filename, tt.content)

			err := ValidateImageFile(fileHeader)
			if tt.expectedCode == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			uploadErr, ok := err.(*FileUploadError)
			require.True(t, ok)
			assert.Equal(t, tt.expectedCode, uploadErr.Code)
		})
	}
}

func TestValidateImageFileTooLarge(t *testing.T) {
	fileHeader := buildFileHeader(t, "car.png", []byte("small content"))
	fileHeader.Size = MaxFileSize + 1

	err := ValidateImageFile(fileHeader)
	require.Error(t, err)

	uploadErr, ok := err.(*FileUploadError)
	require.True(t, ok)
	assert.Equal(t, "FILE_TOO_LARGE", uploadErr.Code)
}

func TestSaveUploadedFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := []byte("fake PNG content")
	fileHeader := buildFileHeader(t, "car.png", content)

	filename, err := SaveUploadedFile(fileHeader, tmpDir)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filename, "car.png"))

	saved, err := os.ReadFile(filepath.Join(tmpDir, filename))
	require.NoError(t, err)
	assert.Equal(t, content, saved)
}

func TestSaveUploadedFileCreatesDirectory(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "nested", "uploads")
	fileHeader := buildFileHeader(t, "car.png", []byte("content"))

	filename, err := SaveUploadedFile(fileHeader, tmpDir)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(tmpDir, filename))
	assert.NoError(t, err)
}

func TestDeleteUploadedFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "car.png")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0644))

	require.NoError(t, DeleteUploadedFile("car.png", tmpDir))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Deleting an already missing file is fine
	assert.NoError(t, DeleteUploadedFile("car.png", tmpDir))
	assert.NoError(t, DeleteUploadedFile("", tmpDir))
}

func TestGetImageURL(t *testing.T) {
	assert.Equal(t, "/api/v1/uploads/car.png", GetImageURL("car.png"))
	assert.Equal(t, "", GetImageURL(""))
}
