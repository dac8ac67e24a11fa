/*
Buffer pool manager mediates access between the database access layer and
the disk manager.

Disk IO is expensive so pages are cached in a bounded pool of in-memory
frames. The manager brings pages in on demand, serves concurrent
fetch/unpin requests against logical page ids, and evicts unpinned frames
through the replacer, writing dirty victims back first.

access rules for pages:
- fetch the page (this pins the frame) -> acquire the frame's content
  latch -> read or write the page image -> release the content latch
  -> unpin the frame, passing whether the image was modified.
- a frame stays resident while pinned. dirtiness is sticky within a
  residency: once a holder unpins with isDirty=true, only write-back
  (flush, background write or eviction) clears it. In-place modifications
  never followed by a dirty unpin are dropped on eviction.

The list of locks:

- manager latch:
  - serializes the page table, the free list and frame metadata.
  - acquired at the entry of every public operation, released at its exit.

- frame content latch:
  - protects each page image. held by clients while reading/writing the
    image, and by the manager while mutating pin count or the dirty flag
    so holders see consistent metadata.
  - always acquired after the manager latch and never held while
    acquiring it.

- replacer internal lock:
  - leaf-level; only taken while the manager latch is held, so no
    cross-component lock order exists.
*/
package buffer

import (
	"log/slog"
	"sync"

	"github.com/pkg/errors"

	"github.com/yiyangc91/bustub/config"
	"github.com/yiyangc91/bustub/storage/disk"
	"github.com/yiyangc91/bustub/storage/page"
	"github.com/yiyangc91/bustub/util/log"
)

// ErrNoAvailableFrame is returned when every frame is pinned: there is no
// free frame and the replacer has no victim. the caller may retry after
// unpinning
var ErrNoAvailableFrame = errors.New("no free frame and no evictable frame")

// Manager is the buffer pool manager
type Manager struct {
	// disk manager
	dm disk.Manager
	// the page frames. frame ids index this slice
	frames []*page.Page
	// table maps a resident page id to its frame id
	table *bufferTable
	// freeList holds the frames with no resident page
	freeList *freeList
	// replacer tracks the unpinned frames and selects eviction victims
	replacer Replacer
	// latch serializes every public operation
	latch sync.Mutex
	// logger for per-operation debug lines
	logger *slog.Logger
}

// NewManager initializes a buffer pool manager with poolSize frames and
// the clock replacement policy
func NewManager(dm disk.Manager, poolSize int) *Manager {
	return NewManagerWithReplacer(dm, poolSize, NewClockReplacer(poolSize))
}

// NewManagerWithReplacer initializes a buffer pool manager with the given
// replacement policy
func NewManagerWithReplacer(dm disk.Manager, poolSize int, replacer Replacer) *Manager {
	frames := make([]*page.Page, poolSize)
	for i := range frames {
		frames[i] = page.New()
	}
	return &Manager{
		dm:       dm,
		frames:   frames,
		table:    newBufferTable(),
		freeList: newFreeList(poolSize),
		replacer: replacer,
		logger:   slog.Default(),
	}
}

// NewManagerFromConfig opens the configured database file and initializes
// a manager with the configured pool size and replacement policy
func NewManagerFromConfig(cfg *config.Config) (*Manager, error) {
	if cfg.LogPath != "" {
		if err := log.InitLogger(cfg.LogPath, cfg.LogLevel); err != nil {
			return nil, errors.Wrap(err, "log.InitLogger failed")
		}
	}
	dm, err := disk.NewFileManager(cfg.DBFilePath)
	if err != nil {
		return nil, errors.Wrap(err, "disk.NewFileManager failed")
	}
	var replacer Replacer
	switch cfg.Replacer {
	case config.ReplacerClock, "":
		replacer = NewClockReplacer(cfg.PoolSize)
	case config.ReplacerLRU:
		replacer = NewLRUReplacer(cfg.PoolSize)
	default:
		return nil, errors.Errorf("unknown replacer policy %q", cfg.Replacer)
	}
	return NewManagerWithReplacer(dm, cfg.PoolSize, replacer), nil
}

/*
FetchPage returns the frame holding the page, pinned.
The caller has to call UnpinPage after completion of using the page.

When the page is already resident, its pin count is incremented and the
frame is returned. When it is not, a frame is obtained (free list first,
then eviction), the page image is read from disk into it and it is
installed in the buffer table.

When every frame is pinned, ErrNoAvailableFrame is returned.
*/
func (m *Manager) FetchPage(pageID page.PageID) (*page.Page, error) {
	m.latch.Lock()
	defer m.latch.Unlock()
	m.logger.Debug("FetchPage", "pageID", uint32(pageID))

	if frameID, ok := m.table.lookup(pageID); ok {
		p := m.frames[frameID]
		p.WLatch()
		p.IncPinCount()
		p.WUnlatch()
		m.replacer.Pin(frameID)
		return p, nil
	}

	frameID, err := m.obtainFrame()
	if err != nil {
		return nil, err
	}
	p := m.frames[frameID]
	// read the page image before installing the mapping so a failed read
	// leaves the frame empty on the free list
	if err := m.dm.ReadPage(pageID, p.Data()); err != nil {
		m.freeList.push(frameID)
		return nil, errors.Wrap(err, "dm.ReadPage failed")
	}
	p.SetPageID(pageID)
	p.IncPinCount()
	m.table.insert(pageID, frameID)
	m.replacer.Pin(frameID)
	m.logger.Debug("FetchPage: read page from disk", "pageID", uint32(pageID), "frameID", int32(frameID))
	return p, nil
}

/*
NewPage allocates a fresh page at the disk manager and returns the frame
holding it, pinned. The allocated id is read from the frame.
The caller has to call UnpinPage after completion of using the page.

When every frame is pinned, ErrNoAvailableFrame is returned and no page
id is allocated.
*/
func (m *Manager) NewPage() (*page.Page, error) {
	m.latch.Lock()
	defer m.latch.Unlock()

	frameID, err := m.obtainFrame()
	if err != nil {
		return nil, err
	}
	p := m.frames[frameID]
	pageID := m.dm.AllocatePage()
	p.SetPageID(pageID)
	p.IncPinCount()
	m.table.insert(pageID, frameID)
	m.replacer.Pin(frameID)
	m.logger.Debug("NewPage: allocated page", "pageID", uint32(pageID), "frameID", int32(frameID))
	return p, nil
}

/*
UnpinPage releases one pin on the resident page.
isDirty declares whether the caller modified the page image; the dirty
flag only ever goes from false to true here (sticky dirtiness).

It returns false when the page is not resident, or when the pin count is
already zero (caller error; the count is not modified). When the count
reaches zero the frame becomes evictable.
*/
func (m *Manager) UnpinPage(pageID page.PageID, isDirty bool) bool {
	m.latch.Lock()
	defer m.latch.Unlock()
	m.logger.Debug("UnpinPage", "pageID", uint32(pageID), "isDirty", isDirty)

	frameID, ok := m.table.lookup(pageID)
	if !ok {
		return false
	}
	p := m.frames[frameID]
	p.WLatch()
	defer p.WUnlatch()
	if isDirty {
		p.MarkDirty()
	}
	if p.GetPinCount() == 0 {
		// there is no outstanding pin to release
		return false
	}
	p.DecPinCount()
	if p.GetPinCount() == 0 {
		m.replacer.Unpin(frameID)
	}
	return true
}

/*
FlushPage writes the resident page's image out to disk and clears the
dirty flag. The write happens regardless of the dirty flag when
explicitly requested. It returns false when the page is not resident.
*/
func (m *Manager) FlushPage(pageID page.PageID) (bool, error) {
	m.latch.Lock()
	defer m.latch.Unlock()
	m.logger.Debug("FlushPage", "pageID", uint32(pageID))

	frameID, ok := m.table.lookup(pageID)
	if !ok {
		return false, nil
	}
	p := m.frames[frameID]
	p.WLatch()
	defer p.WUnlatch()
	if err := m.dm.WritePage(pageID, p.Data()); err != nil {
		return false, errors.Wrap(err, "dm.WritePage failed")
	}
	p.ClearDirty()
	return true, nil
}

// FlushAllPages writes every resident page's image out to disk and clears
// the dirty flags
func (m *Manager) FlushAllPages() error {
	m.latch.Lock()
	defer m.latch.Unlock()
	m.logger.Debug("FlushAllPages")

	for _, p := range m.frames {
		if p.GetPageID() == page.InvalidPageID {
			continue
		}
		p.WLatch()
		if err := m.dm.WritePage(p.GetPageID(), p.Data()); err != nil {
			p.WUnlatch()
			return errors.Wrap(err, "dm.WritePage failed")
		}
		p.ClearDirty()
		p.WUnlatch()
	}
	return nil
}

/*
DeletePage discards the resident page and deallocates its id at the disk
manager. The image is dropped without write-back even when dirty.

A non-resident page is deallocated at the disk manager anyway and true is
returned. A pinned page cannot be deleted; false is returned and the
frame is untouched.
*/
func (m *Manager) DeletePage(pageID page.PageID) bool {
	m.latch.Lock()
	defer m.latch.Unlock()
	m.logger.Debug("DeletePage", "pageID", uint32(pageID))

	frameID, ok := m.table.lookup(pageID)
	if !ok {
		// the page may still exist on disk without being resident
		m.dm.DeallocatePage(pageID)
		return true
	}
	p := m.frames[frameID]
	p.RLatch()
	pinned := p.GetPinCount() != 0
	p.RUnlatch()
	if pinned {
		return false
	}

	// pin count is zero so no holder can touch the frame; no latch needed
	p.Reset()
	m.table.remove(pageID)
	// pinning removes the frame's eviction eligibility. the entry rejoins
	// the normal lifecycle when the frame is reused
	m.replacer.Pin(frameID)
	m.freeList.push(frameID)
	m.dm.DeallocatePage(pageID)
	return true
}

// obtainFrame pops an empty frame off the free list, evicting a victim
// first when the list is empty
func (m *Manager) obtainFrame() (FrameID, error) {
	if frameID, ok := m.freeList.pop(); ok {
		return frameID, nil
	}
	if err := m.victimize(); err != nil {
		return InvalidFrameID, err
	}
	frameID, ok := m.freeList.pop()
	if !ok {
		return InvalidFrameID, errors.New("victimized frame did not reach the free list")
	}
	return frameID, nil
}

// victimize asks the replacer for a victim, writes it back when dirty,
// wipes the frame and returns it to the free list.
// a write-back failure leaves the page resident and evictable and
// surfaces the error
func (m *Manager) victimize() error {
	frameID, ok := m.replacer.Victim()
	if !ok {
		return ErrNoAvailableFrame
	}
	p := m.frames[frameID]
	pageID := p.GetPageID()
	if pageID == page.InvalidPageID {
		// the replacer only tracks resident frames
		return errors.Errorf("replacer returned empty frame %d", frameID)
	}
	// the replacer never returns a pinned frame, so no holder can race on
	// the image here and the content latch is not needed
	if p.IsDirty() {
		if err := m.dm.WritePage(pageID, p.Data()); err != nil {
			m.replacer.Unpin(frameID)
			return errors.Wrap(err, "dm.WritePage failed")
		}
	}
	m.logger.Debug("victimize: evicting page", "pageID", uint32(pageID), "frameID", int32(frameID))
	p.Reset()
	m.table.remove(pageID)
	m.freeList.push(frameID)
	return nil
}
