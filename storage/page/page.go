/*
Page is the unit of IO between the disk manager and the buffer pool.

The buffer pool holds a fixed number of page frames and each frame is
represented by Page: the page image itself plus the metadata the pool
needs for its replacement policy.

Metadata for the replacement policy:

1. pin count
- the number of outstanding holders of the frame.
- a pinned frame must not be evicted, so the flow is:
- fetch the page (this pins the frame) -> do anything with the page
- -> unpin the frame after the work is completed.
- IMPORTANT: the caller is responsible for unpinning the frame.

2. dirty flag
- set once a holder declares a modification of the page image.
- a dirty frame must be written back to disk before eviction.
- the flag is sticky within a residency: only write-back clears it.

The frame also carries a reader/writer latch protecting the page image.
Holders of a pinned frame acquire it while reading/writing the content;
the buffer manager acquires it while mutating pin count or the dirty flag
so a concurrent holder sees consistent metadata.
*/
package page

import (
	"math"
	"sync"
)

// PageSize is the byte size of one page
const PageSize = 4096

// PageID is the logical identifier given to each page on disk
type PageID uint32

const (
	// FirstPageID is the id of the first allocated page
	FirstPageID PageID = 0
	// InvalidPageID marks a frame which holds no page
	InvalidPageID PageID = math.MaxUint32
)

// Page is one buffer pool frame: a fixed-size page image plus frame metadata
type Page struct {
	// id of the resident page. InvalidPageID when the frame is empty
	id PageID
	// the number of outstanding holders. the frame must not be evicted while non-zero
	pinCount int
	// whether the page image may differ from the on-disk contents
	dirty bool
	// latch protects data. metadata is mutated under the write latch as well
	latch sync.RWMutex
	// the page image
	data [PageSize]byte
}

// New initializes an empty frame
func New() *Page {
	return &Page{id: InvalidPageID}
}

// Data returns the page image
func (p *Page) Data() []byte {
	return p.data[:]
}

// GetPageID returns the id of the resident page
func (p *Page) GetPageID() PageID {
	return p.id
}

// GetPinCount returns the number of outstanding holders
func (p *Page) GetPinCount() int {
	return p.pinCount
}

// IsDirty reports whether the page image has unpersisted modifications
func (p *Page) IsDirty() bool {
	return p.dirty
}

// SetPageID updates the resident page id
// this is expected to be called only by the buffer manager during admission
func (p *Page) SetPageID(id PageID) {
	p.id = id
}

// MarkDirty turns on the dirty flag
// the caller has to hold a pin; the flag stays on until write-back
func (p *Page) MarkDirty() {
	p.dirty = true
}

// ClearDirty turns off the dirty flag after write-back
func (p *Page) ClearDirty() {
	p.dirty = false
}

// IncPinCount increments the pin count
func (p *Page) IncPinCount() {
	p.pinCount++
}

// DecPinCount decrements the pin count. it never goes below zero
func (p *Page) DecPinCount() {
	if p.pinCount > 0 {
		p.pinCount--
	}
}

// Reset wipes the page image and the metadata
// the frame is expected to be unpinned when this is called
func (p *Page) Reset() {
	p.data = [PageSize]byte{}
	p.id = InvalidPageID
	p.pinCount = 0
	p.dirty = false
}

// RLatch acquires the shared content latch
func (p *Page) RLatch() {
	p.latch.RLock()
}

// RUnlatch releases the shared content latch
func (p *Page) RUnlatch() {
	p.latch.RUnlock()
}

// WLatch acquires the exclusive content latch
func (p *Page) WLatch() {
	p.latch.Lock()
}

// WUnlatch releases the exclusive content latch
func (p *Page) WUnlatch() {
	p.latch.Unlock()
}
