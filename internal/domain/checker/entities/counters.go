package entities

import "sync/atomic"

// BatchCounters counts outcomes per category. The category set is fixed at construction,
// so concurrent Inc calls only touch atomics and never the map itself.
type BatchCounters struct {
	counts map[Status]*atomic.Int64
}

// NewBatchCounters creates counters with every category at zero
func NewBatchCounters() *BatchCounters {
	counts := make(map[Status]*atomic.Int64, len(Statuses))
	for _, s := range Statuses {
		counts[s] = new(atomic.Int64)
	}
	return &BatchCounters{counts: counts}
}

// Inc records one outcome. Unknown statuses are counted as errors.
func (c *BatchCounters) Inc(status Status) {
	counter, ok := c.counts[status]
	if !ok {
		counter = c.counts[StatusError]
	}
	counter.Add(1)
}

// Get returns the current count for a category
func (c *BatchCounters) Get(status Status) int {
	counter, ok := c.counts[status]
	if !ok {
		return 0
	}
	return int(counter.Load())
}

// Total returns the sum over all categories
func (c *BatchCounters) Total() int {
	total := 0
	for _, counter := range c.counts {
		total += int(counter.Load())
	}
	return total
}

// Snapshot returns a plain copy of the counters
func (c *BatchCounters) Snapshot() map[Status]int {
	snapshot := make(map[Status]int, len(c.counts))
	for status, counter := range c.counts {
		snapshot[status] = int(counter.Load())
	}
	return snapshot
}
