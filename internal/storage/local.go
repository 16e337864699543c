package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage writes files under a root directory served at baseURL.
type LocalStorage struct {
	rootDir string
	baseURL string // e.g. "http://localhost:8080/uploads"
}

func NewLocalStorage(rootDir, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &LocalStorage{
		rootDir: rootDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *LocalStorage) Save(folder, originalName string, reader io.Reader) (string, error) {
	key, err := GenerateKey(folder, originalName)
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(s.rootDir, key)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}
	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("write file: %w", err)
	}
	return s.PublicURL(key), nil
}

func (s *LocalStorage) Open(key string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.rootDir, key))
}

func (s *LocalStorage) Delete(key string) error {
	err := os.Remove(filepath.Join(s.rootDir, key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func (s *LocalStorage) Exists(key string) (bool, error) {
	_, err := os.Stat(filepath.Join(s.rootDir, key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *LocalStorage) PublicURL(key string) string {
	return s.baseURL + "/" + filepath.ToSlash(key)
}

func (s *LocalStorage) KeyFromURL(url string) (string, bool) {
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

// Root exposes the directory for static file serving.
func (s *LocalStorage) Root() string {
	return s.rootDir
}
