package system

import (
	"image"
	"sync"
	"sync/atomic"
)

// FramePool recycles *image.RGBA frame buffers by size so parallel workers do not
// allocate a full frame per rendered image.
type FramePool struct {
	mu    sync.RWMutex
	pools map[image.Point]*sync.Pool

	allocated atomic.Int64
	reused    atomic.Int64
}

func NewFramePool() *FramePool {
	return &FramePool{pools: make(map[image.Point]*sync.Pool)}
}

// Get returns a buffer of the given size. Its contents are undefined; callers paint
// every pixel before reading.
func (p *FramePool) Get(size image.Point) *image.RGBA {
	p.mu.RLock()
	pool, ok := p.pools[size]
	p.mu.RUnlock()

	if !ok {
		p.mu.Lock()
		pool, ok = p.pools[size]
		if !ok {
			pool = &sync.Pool{}
			p.pools[size] = pool
		}
		p.mu.Unlock()
	}

	if img, ok := pool.Get().(*image.RGBA); ok {
		p.reused.Add(1)
		return img
	}
	p.allocated.Add(1)
	return image.NewRGBA(image.Rectangle{Max: size})
}

// Put hands a buffer back. Buffers of an unknown size are dropped.
func (p *FramePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	p.mu.RLock()
	pool, ok := p.pools[img.Rect.Size()]
	p.mu.RUnlock()

	if ok {
		pool.Put(img)
	}
}

// Stats reports how many buffers were allocated and how many Get calls were served from the pool.
func (p *FramePool) Stats() (allocated, reused int64) {
	return p.allocated.Load(), p.reused.Load()
}
