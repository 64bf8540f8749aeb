package batch

import (
	"sync"

	"github.com/Tutortoise/gerald-loader/transforms"

	"github.com/pkg/errors"
)

// Source is anything that yields samples by index, such as a dataset.
type Source interface {
	Len() int
	Get(i int) (transforms.Sample, error)
}

// CollatorMetrics counts the work a Collator has done.
type CollatorMetrics struct {
	Batches   int64
	Allocated int64
	Reused    int64
	Released  int64
}

// Collator collates batches and recycles image buffers handed back through
// Release.
type Collator struct {
	buffers sync.Pool

	mu      sync.Mutex
	metrics CollatorMetrics
}

func NewCollator() *Collator {
	return &Collator{}
}

func (c *Collator) Collate(samples []transforms.Sample) (*Batch, error) {
	b, err := collate(samples, c.buffer)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.metrics.Batches++
	c.mu.Unlock()
	return b, nil
}

// Load reads the given indices from src and collates them.
func (c *Collator) Load(src Source, indices []int) (*Batch, error) {
	samples, err := Load(src, indices)
	if err != nil {
		return nil, err
	}
	return c.Collate(samples)
}

// Release returns the image buffer of b for reuse. b must not be used
// afterwards.
func (c *Collator) Release(b *Batch) {
	if b == nil || b.Images == nil {
		return
	}
	data, ok := b.Images.Data().([]float32)
	if !ok {
		return
	}
	b.Images = nil
	c.buffers.Put(&data)

	c.mu.Lock()
	c.metrics.Released++
	c.mu.Unlock()
}

// BatchCount is the number of batches collated so far.
func (c *Collator) BatchCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int(c.metrics.Batches)
}

func (c *Collator) Metrics() CollatorMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metrics
}

func (c *Collator) buffer(n int) []float32 {
	if p, ok := c.buffers.Get().(*[]float32); ok && cap(*p) >= n {
		c.mu.Lock()
		c.metrics.Reused++
		c.mu.Unlock()
		return (*p)[:n]
	}

	c.mu.Lock()
	c.metrics.Allocated++
	c.mu.Unlock()
	return make([]float32, n)
}

// Load reads the given indices from src in order.
func Load(src Source, indices []int) ([]transforms.Sample, error) {
	samples := make([]transforms.Sample, len(indices))
	for i, idx := range indices {
		s, err := src.Get(idx)
		if err != nil {
			return nil, errors.Wrapf(err, "load sample %d", idx)
		}
		samples[i] = s
	}
	return samples, nil
}

// Indices splits 0..n-1 into consecutive batches of at most size indices.
func Indices(n, size int) [][]int {
	if n <= 0 || size <= 0 {
		return nil
	}
	var out [][]int
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		idx := make([]int, end-start)
		for i := range idx {
			idx[i] = start + i
		}
		out = append(out, idx)
	}
	return out
}
