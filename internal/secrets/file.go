package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps one 0600 file per account under a directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create secrets dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(account string) string {
	// Account names are dotted identifiers; keep the filename flat.
	return filepath.Join(s.dir, strings.ReplaceAll(account, string(filepath.Separator), "_"))
}

func (s *FileStore) Get(account string) (string, bool, error) {
	b, err := os.ReadFile(s.path(account))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(b), true, nil
}

func (s *FileStore) Set(account, value string) error {
	return os.WriteFile(s.path(account), []byte(value), 0o600)
}

func (s *FileStore) Delete(account string) error {
	err := os.Remove(s.path(account))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
