// Package blobstore stores uploaded complaint photos.
//
// A Store saves objects under caller-chosen keys and maps keys to public
// URLs. Listings keep the key next to the URL so a delete can release the
// object without parsing URLs.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyKey is returned when an operation is given a blank key.
var ErrEmptyKey = errors.New("blobstore: empty key")

// Store is implemented by Local and S3.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Object describes a stored upload.
type Object struct {
	Key         string
	URL         string
	ContentType string
}

// Upload stores r under a fresh key of the form
// listings/YYYY/MM/<uuid8>-<filename> and returns its key and URL.
func Upload(ctx context.Context, s Store, filename string, r io.Reader, contentType string) (Object, error) {
	key := NewKey("listings", filename, time.Now().UTC())
	if err := s.Put(ctx, key, r, contentType); err != nil {
		return Object{}, fmt.Errorf("upload %s: %w", key, err)
	}
	return Object{Key: key, URL: s.URL(key), ContentType: contentType}, nil
}

// NewKey builds a unique object key below prefix.
func NewKey(prefix, filename string, now time.Time) string {
	dateDir := fmt.Sprintf("%04d/%02d", now.Year(), now.Month())
	name := fmt.Sprintf("%s-%s", uuid.New().String()[:8], SanitizeFilename(filename))
	return path.Join(strings.Trim(prefix, "/"), dateDir, name)
}

// SanitizeFilename keeps only [A-Za-z0-9._-], drops directory components
// and caps the length at 100 bytes, preserving a short extension.
func SanitizeFilename(filename string) string {
	filename = filepath.Base(filepath.ToSlash(strings.ReplaceAll(filename, "\\", "/")))
	if filename == "." || filename == "/" {
		filename = ""
	}

	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}

	if len(result) == 0 {
		return "file"
	}
	if len(result) > 100 {
		ext := filepath.Ext(string(result))
		if len(ext) > 0 && len(ext) < 10 {
			result = append(result[:100-len(ext)], ext...)
		} else {
			result = result[:100]
		}
	}
	return string(result)
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}

func cleanKey(key string) (string, error) {
	key = strings.TrimLeft(path.Clean("/"+strings.TrimSpace(key)), "/")
	if key == "" || key == "." {
		return "", ErrEmptyKey
	}
	return key, nil
}
