/*
Strict LRU replacement policy built on hashicorp's golang-lru.

The recency list holds only evictable frames: pinning removes a frame from
the list, unpinning inserts it. Unpinning an already evictable frame does
not refresh its recency, so the victim order tracks first-unpin order, the
same observable ordering the clock policy approximates.
*/
package buffer

import (
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// LRUReplacer selects eviction victims in strict least-recently-unpinned
// order
type LRUReplacer struct {
	// mu guards evictable. simplelru is not thread-safe
	mu sync.Mutex
	// evictable orders the unpinned frames, oldest first
	evictable *simplelru.LRU[FrameID, struct{}]
}

var _ Replacer = (*LRUReplacer)(nil)

// NewLRUReplacer initializes an LRU replacer for a pool of numFrames frames
func NewLRUReplacer(numFrames int) *LRUReplacer {
	size := numFrames
	if size < 1 {
		// simplelru rejects non-positive sizes. a zero-frame pool still
		// needs a working replacer which simply never has a victim
		size = 1
	}
	// the list never exceeds the pool size because each evictable frame is
	// a distinct pool index, so the internal capacity never force-evicts
	lru, err := simplelru.NewLRU[FrameID, struct{}](size, nil)
	if err != nil {
		panic(err)
	}
	return &LRUReplacer{evictable: lru}
}

// Victim removes and returns the least recently unpinned frame.
// it reports false when no frame is evictable
func (l *LRUReplacer) Victim() (FrameID, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	frameID, _, ok := l.evictable.RemoveOldest()
	if !ok {
		return InvalidFrameID, false
	}
	return frameID, true
}

// Pin marks the frame un-evictable. idempotent when already pinned
func (l *LRUReplacer) Pin(frameID FrameID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.evictable.Remove(frameID)
}

// Unpin marks the frame evictable. a second unpin does not refresh the
// frame's recency
func (l *LRUReplacer) Unpin(frameID FrameID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.evictable.Contains(frameID) {
		l.evictable.Add(frameID, struct{}{})
	}
}

// Size returns the number of evictable frames
func (l *LRUReplacer) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.evictable.Len()
}
