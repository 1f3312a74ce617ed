package storage

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	ErrExtensionMissing = errors.New("file extension missing")
	ErrTypeNotAllowed   = errors.New("file type not allowed")
)

var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// ValidateImageExtension returns the lower-cased extension of an accepted
// image filename.
func ValidateImageExtension(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	if ext == "" {
		return "", ErrExtensionMissing
	}

	if !allowedImageExt[ext] {
		return "", ErrTypeNotAllowed
	}

	return ext, nil
}
