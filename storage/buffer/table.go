/*
This is the buffer table: the mapping from logical page id to the frame
where the page is resident. An entry lives exactly as long as the
residency: admission inserts it, eviction and deletion remove it.

The map is an xsync.MapOf so lookups on the fetch hit path never contend
on a table-wide lock. All mutation happens under the buffer manager latch.
*/
package buffer

import (
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/yiyangc91/bustub/storage/page"
)

// bufferTable maps page ids to the frames holding them
type bufferTable struct {
	frames *xsync.MapOf[page.PageID, FrameID]
}

// newBufferTable initializes an empty buffer table
func newBufferTable() *bufferTable {
	return &bufferTable{
		frames: xsync.NewMapOf[page.PageID, FrameID](),
	}
}

// lookup returns the frame holding the page, if resident
func (t *bufferTable) lookup(pageID page.PageID) (FrameID, bool) {
	return t.frames.Load(pageID)
}

// insert records the page's residency in the frame
func (t *bufferTable) insert(pageID page.PageID, frameID FrameID) {
	t.frames.Store(pageID, frameID)
}

// remove drops the page's residency entry
func (t *bufferTable) remove(pageID page.PageID) {
	t.frames.Delete(pageID)
}
