package buffer

import (
	"github.com/pkg/errors"

	"github.com/yiyangc91/bustub/storage/disk"
)

// TestingNewManager initializes a buffer pool manager backed by a
// temporary database file
func TestingNewManager(poolSize int) (*Manager, error) {
	dm, err := disk.TestingNewManager()
	if err != nil {
		return nil, errors.Wrap(err, "disk.TestingNewManager failed")
	}
	return NewManager(dm, poolSize), nil
}

// TestingNewManagerWithReplacer initializes a buffer pool manager with
// the given replacement policy, backed by a temporary database file
func TestingNewManagerWithReplacer(poolSize int, replacer Replacer) (*Manager, error) {
	dm, err := disk.TestingNewManager()
	if err != nil {
		return nil, errors.Wrap(err, "disk.TestingNewManager failed")
	}
	return NewManagerWithReplacer(dm, poolSize, replacer), nil
}
