package disk

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// TestingNewManager initializes a disk manager backed by a file under a
// fresh temporary directory
func TestingNewManager() (*FileManager, error) {
	dir, err := os.MkdirTemp("", "bustub-disk")
	if err != nil {
		return nil, errors.Wrap(err, "os.MkdirTemp failed")
	}
	m, err := NewFileManager(filepath.Join(dir, "test.db"))
	if err != nil {
		return nil, errors.Wrap(err, "NewFileManager failed")
	}
	return m, nil
}
