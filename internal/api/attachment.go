package api

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	apierrors "github.com/diogo/geminiwin95/internal/errors"
	"github.com/diogo/geminiwin95/internal/models"
)

const (
	MaxAttachmentSize = 20 * 1024 * 1024 // 20MB, the inline_data request limit
)

// SupportedAttachmentTypes returns the MIME types and prefixes accepted
// as inline data. Entries ending in "/" match any subtype.
func SupportedAttachmentTypes() []string {
	return []string{
		"image/",
		"audio/",
		"video/",
		"text/",
		"application/pdf",
		"application/json",
		"application/x-javascript",
		"application/x-python",
	}
}

// IsSupportedAttachmentType reports whether mimeType can be sent inline
func IsSupportedAttachmentType(mimeType string) bool {
	mimeType = baseMIMEType(mimeType)
	for _, t := range SupportedAttachmentTypes() {
		if strings.HasSuffix(t, "/") {
			if strings.HasPrefix(mimeType, t) {
				return true
			}
			continue
		}
		if mimeType == t {
			return true
		}
	}
	return false
}

// ReadAttachment reads a file from disk into an Attachment
func ReadAttachment(path string) (models.Attachment, error) {
	name := filepath.Base(path)

	info, err := os.Stat(path)
	if err != nil {
		return models.Attachment{}, apierrors.NewAttachmentError(name, "failed to stat file", err)
	}
	if info.IsDir() {
		return models.Attachment{}, apierrors.NewAttachmentError(name, "is a directory", nil)
	}
	if info.Size() > MaxAttachmentSize {
		return models.Attachment{}, apierrors.NewAttachmentError(name,
			fmt.Sprintf("file size exceeds maximum %d bytes", MaxAttachmentSize), nil)
	}

	file, err := os.Open(path)
	if err != nil {
		return models.Attachment{}, apierrors.NewAttachmentError(name, "failed to open file", err)
	}
	defer func() { _ = file.Close() }()

	return AttachmentFromReader(file, name, "")
}

// AttachmentFromReader encodes the content of reader as an Attachment.
// An empty mimeType is detected from the file extension, then from the content.
func AttachmentFromReader(reader io.Reader, name, mimeType string) (models.Attachment, error) {
	data, err := io.ReadAll(io.LimitReader(reader, MaxAttachmentSize+1))
	if err != nil {
		return models.Attachment{}, apierrors.NewAttachmentError(name, "failed to read data", err)
	}
	if len(data) > MaxAttachmentSize {
		return models.Attachment{}, apierrors.NewAttachmentError(name,
			fmt.Sprintf("data size exceeds maximum %d bytes", MaxAttachmentSize), nil)
	}

	if mimeType == "" {
		mimeType = DetectMIMEType(name, data)
	}
	mimeType = baseMIMEType(mimeType)
	if !IsSupportedAttachmentType(mimeType) {
		return models.Attachment{}, apierrors.NewAttachmentError(name, "unsupported file type: "+mimeType, nil)
	}

	return models.Attachment{
		ID:       uuid.NewString(),
		Name:     name,
		MIMEType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(data),
	}, nil
}

// DetectMIMEType guesses the MIME type from the extension, falling back
// to content sniffing
func DetectMIMEType(name string, data []byte) string {
	if ext := filepath.Ext(name); ext != "" {
		if t := mime.TypeByExtension(strings.ToLower(ext)); t != "" {
			return baseMIMEType(t)
		}
		switch strings.ToLower(ext) {
		case ".md", ".markdown":
			return "text/markdown"
		case ".py":
			return "text/x-python"
		case ".go", ".rs", ".ts", ".c", ".h", ".java":
			return "text/plain"
		}
	}
	return baseMIMEType(http.DetectContentType(data))
}

func baseMIMEType(mimeType string) string {
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}
