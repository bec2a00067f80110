package engine

import (
	"fmt"
	"sync/atomic"
)

// runMetrics tracks one validation run.
type runMetrics struct {
	workersActive atomic.Int32 // currently running batches
	invocations   atomic.Int64 // rule invocations
	failures      atomic.Int64 // recovered rule panics
	diagnostics   atomic.Int64 // diagnostics merged into the collector

	batchCount   atomic.Int64
	batchItems   atomic.Int64
	batchItemMax atomic.Int64

	groups atomic.Int64 // groups that passed a trigger
}

func (m *runMetrics) batch(items int) {
	n := int64(items)
	m.batchCount.Add(1)
	m.batchItems.Add(n)
	for {
		cur := m.batchItemMax.Load()
		if n <= cur || m.batchItemMax.CompareAndSwap(cur, n) {
			return
		}
	}
}

func (m *runMetrics) String() string {
	count := m.batchCount.Load()
	avg := 0.0
	if count > 0 {
		avg = float64(m.batchItems.Load()) / float64(count)
	}
	return fmt.Sprintf(
		"rules: %d invocations, %d failures | diagnostics: %d | groups: %d | batches: %d (avg=%.1f, max=%d)",
		m.invocations.Load(), m.failures.Load(),
		m.diagnostics.Load(),
		m.groups.Load(),
		count, avg, m.batchItemMax.Load(),
	)
}
