/*
Dirty pages have to be written back to disk before eviction. If that
write happens on the fetch path, the fetch stalls on IO. The background
writer flushes dirty frames ahead of time so a victim is usually clean by
the time the replacer selects it.
*/
package buffer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/yiyangc91/bustub/storage/page"
)

const (
	// delay between active rounds
	bgWriterDelay = 200 * time.Millisecond
	// at most this many frames are written out in one round
	bgWriterMaxPages = 100
)

// BackgroundWriter periodically writes dirty frames back to disk
type BackgroundWriter struct {
	m *Manager
}

// NewBackgroundWriter initializes a background writer for the manager
func NewBackgroundWriter(m *Manager) *BackgroundWriter {
	return &BackgroundWriter{m: m}
}

// Run flushes dirty frames in rounds until a write fails.
// each round scans the pool once and writes out at most bgWriterMaxPages
// dirty frames
func (bw *BackgroundWriter) Run() error {
	for {
		written := 0
		for i := 0; i < len(bw.m.frames); i++ {
			wrote, err := bw.m.syncFrame(FrameID(i))
			if err != nil {
				return errors.Wrap(err, "syncFrame failed")
			}
			if wrote {
				written++
				if written >= bgWriterMaxPages {
					break
				}
			}
		}
		time.Sleep(bgWriterDelay)
	}
}

// syncFrame writes the frame's page back when it is resident and dirty.
// it reports whether a write happened
func (m *Manager) syncFrame(frameID FrameID) (bool, error) {
	m.latch.Lock()
	defer m.latch.Unlock()

	p := m.frames[frameID]
	if p.GetPageID() == page.InvalidPageID || !p.IsDirty() {
		return false, nil
	}
	p.WLatch()
	defer p.WUnlatch()
	if err := m.dm.WritePage(p.GetPageID(), p.Data()); err != nil {
		return false, errors.Wrap(err, "dm.WritePage failed")
	}
	p.ClearDirty()
	return true, nil
}
