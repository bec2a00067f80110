package diag

import (
	"slices"
	"sync"
)

// Collector is the only shared mutable state of a validation run. Any
// number of goroutines may Report or AddAll concurrently.
type Collector struct {
	mu     sync.Mutex
	items  []Diagnostic
	frozen bool
}

func NewCollector() *Collector {
	return &Collector{}
}

// Report appends one diagnostic.
func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mustBeOpen()
	c.items = append(c.items, d)
}

// AddAll appends a worker buffer in one critical section.
func (c *Collector) AddAll(ds []Diagnostic) {
	if len(ds) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mustBeOpen()
	c.items = append(c.items, ds...)
}

func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Freeze sorts the accumulated diagnostics and returns the complete
// report. The collector rejects further additions.
func (c *Collector) Freeze() *Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frozen = true
	return newReport(c.sorted(), true)
}

// Snapshot returns the diagnostics gathered so far as an incomplete
// report. The collector stays open.
func (c *Collector) Snapshot() *Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	return newReport(c.sorted(), false)
}

func (c *Collector) sorted() []Diagnostic {
	out := slices.Clone(c.items)
	Sort(out)
	return out
}

func (c *Collector) mustBeOpen() {
	if c.frozen {
		panic("diag: add to frozen collector")
	}
}
