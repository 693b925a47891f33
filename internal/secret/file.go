package secret

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	tokenFileName = "rpc.token"
	tokenFileMode = 0o600
)

var (
	fileReadFile = os.ReadFile
	fileMkdirAll = os.MkdirAll
	fileTempFile = os.CreateTemp
	fileRename   = os.Rename
	fileRemove   = os.Remove
)

// FileStore keeps the token in a file when the keyring is unavailable.
type FileStore struct {
	dir string
}

func NewFileStore(configDir string) *FileStore {
	return &FileStore{dir: configDir}
}

func (f *FileStore) path() string {
	return filepath.Join(f.dir, tokenFileName)
}

func (f *FileStore) Get() (string, error) {
	data, err := fileReadFile(f.path())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Set writes the token atomically through a temp file and rename.
func (f *FileStore) Set(token string) error {
	if err := fileMkdirAll(f.dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp, err := fileTempFile(f.dir, ".rpc.token.tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(token); err != nil {
		tmp.Close()
		fileRemove(tmpPath)
		return fmt.Errorf("write token: %w", err)
	}
	if err := tmp.Close(); err != nil {
		fileRemove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, tokenFileMode); err != nil {
		fileRemove(tmpPath)
		return fmt.Errorf("set permissions: %w", err)
	}
	if err := fileRename(tmpPath, f.path()); err != nil {
		fileRemove(tmpPath)
		return fmt.Errorf("rename token file: %w", err)
	}
	return nil
}
