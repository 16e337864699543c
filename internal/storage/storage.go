package storage

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage persists uploaded files and resolves their public URLs.
// The local implementation is the only backend today; the interface
// keeps cloud object storage a drop-in replacement.
type Storage interface {
	// Save writes the file under the given folder and returns the
	// public URL. The stored name is generated, never caller-supplied.
	Save(folder, originalName string, reader io.Reader) (string, error)
	Open(key string) (io.ReadCloser, error)
	Delete(key string) error
	Exists(key string) (bool, error)
	// PublicURL maps a storage key to the URL clients fetch it from.
	PublicURL(key string) string
	// KeyFromURL is the inverse of PublicURL for URLs this storage issued.
	KeyFromURL(url string) (string, bool)
}

var allowedImageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// GenerateKey builds a collision-free storage key, keeping the original
// extension when it is an allowed image type.
func GenerateKey(folder, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedImageExtensions[ext] {
		return "", fmt.Errorf("unsupported file type %q", ext)
	}
	return filepath.Join(folder, uuid.New().String()+ext), nil
}
