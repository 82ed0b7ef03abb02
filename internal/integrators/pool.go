package integrators

import "sync"

// bufferPool recycles stage vectors of one length.
type bufferPool struct {
	pool sync.Pool
	size int
}

func newBufferPool(size int) *bufferPool {
	return &bufferPool{
		size: size,
		pool: sync.Pool{
			New: func() interface{} {
				return make([]float64, size)
			},
		},
	}
}

func (p *bufferPool) get() []float64 {
	return p.pool.Get().([]float64)
}

func (p *bufferPool) put(b []float64) {
	if len(b) == p.size {
		p.pool.Put(b)
	}
}
