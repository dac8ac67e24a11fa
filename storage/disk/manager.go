/*
Disk manager deals with the database file on secondary storage.

The file is organized as a flat collection of pages: the page with id N
lives at byte offset N * page.PageSize. Page ids are allocated
monotonically starting at zero and page.InvalidPageID is never allocated.

The buffer pool consumes the Manager interface only; FileManager is the
file-backed implementation shipped with this repo. Deallocation does not
reclaim file space, it only releases the logical id. Reclamation would
need a free-page map on disk which sits above this layer.
*/
package disk

import (
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/yiyangc91/bustub/storage/page"
)

// Manager is the contract the buffer pool consumes for page IO
type Manager interface {
	// ReadPage reads the page into buf. buf must be page.PageSize bytes
	ReadPage(pageID page.PageID, buf []byte) error
	// WritePage writes buf out for the page. buf must be page.PageSize bytes
	WritePage(pageID page.PageID, buf []byte) error
	// AllocatePage reserves and returns a fresh page id
	AllocatePage() page.PageID
	// DeallocatePage releases the page id
	DeallocatePage(pageID page.PageID)
	// ShutDown closes the underlying storage
	ShutDown() error
}

// FileManager is the file-backed disk manager
type FileManager struct {
	// mu protects nextPageID. file IO itself relies on the offset-based
	// ReadAt/WriteAt so concurrent IO on distinct pages does not need it
	mu sync.Mutex
	// the database file
	db *os.File
	// nextPageID is the next id handed out by AllocatePage
	nextPageID page.PageID
}

var _ Manager = (*FileManager)(nil)

// NewFileManager opens the database file and initializes the disk manager
// allocation resumes after the last page already present in the file
func NewFileManager(path string) (*FileManager, error) {
	db, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, errors.Wrap(err, "os.OpenFile failed")
	}
	fi, err := db.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "db.Stat failed")
	}
	return &FileManager{
		db:         db,
		nextPageID: page.PageID(fi.Size() / page.PageSize),
	}, nil
}

// ReadPage reads the page image at the page's offset into buf.
// a read past the end of the file returns a 0-filled page: the page has
// been allocated but nothing has been written out for it yet
func (m *FileManager) ReadPage(pageID page.PageID, buf []byte) error {
	if len(buf) != page.PageSize {
		return errors.Errorf("buffer size %d does not match page size", len(buf))
	}
	n, err := m.db.ReadAt(buf, pageOffset(pageID))
	if err != nil && err != io.EOF {
		return errors.Wrap(err, "db.ReadAt failed")
	}
	// zero the tail when the file is shorter than a full page
	for i := n; i < page.PageSize; i++ {
		buf[i] = 0
	}
	return nil
}

// WritePage writes buf out at the page's offset
func (m *FileManager) WritePage(pageID page.PageID, buf []byte) error {
	if len(buf) != page.PageSize {
		return errors.Errorf("buffer size %d does not match page size", len(buf))
	}
	if _, err := m.db.WriteAt(buf, pageOffset(pageID)); err != nil {
		return errors.Wrap(err, "db.WriteAt failed")
	}
	return nil
}

// AllocatePage reserves and returns a fresh page id
// ids are handed out monotonically and page.InvalidPageID is never returned
func (m *FileManager) AllocatePage() page.PageID {
	m.mu.Lock()
	defer m.mu.Unlock()
	pageID := m.nextPageID
	if pageID == page.InvalidPageID {
		panic("page id space exhausted")
	}
	m.nextPageID++
	return pageID
}

// DeallocatePage releases the page id
// the file space is not reclaimed. see the package comment
func (m *FileManager) DeallocatePage(pageID page.PageID) {
}

// ShutDown closes the database file
func (m *FileManager) ShutDown() error {
	if err := m.db.Close(); err != nil {
		return errors.Wrap(err, "db.Close failed")
	}
	return nil
}

// pageOffset returns the byte offset of the page within the database file
func pageOffset(pageID page.PageID) int64 {
	return int64(pageID) * page.PageSize
}
