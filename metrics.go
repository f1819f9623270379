package seqbench

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordSave is called after each save. bytes is the stored blob size,
	// err is nil if successful.
	RecordSave(kind string, bytes int64, duration time.Duration, err error)

	// RecordLoad is called after each load. bytes is the encoded size read.
	RecordLoad(kind string, bytes int64, duration time.Duration, err error)

	// RecordDiscard is called after each Discard with the number of names.
	RecordDiscard(count int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSave(string, int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordLoad(string, int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordDiscard(int, time.Duration, error)        {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SaveCount      atomic.Int64
	SaveErrors     atomic.Int64
	SaveBytes      atomic.Int64
	SaveTotalNanos atomic.Int64
	LoadCount      atomic.Int64
	LoadErrors     atomic.Int64
	LoadBytes      atomic.Int64
	LoadTotalNanos atomic.Int64
	DiscardCount   atomic.Int64
	DiscardErrors  atomic.Int64
}

// RecordSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSave(_ string, bytes int64, duration time.Duration, err error) {
	b.SaveCount.Add(1)
	b.SaveTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SaveErrors.Add(1)
		return
	}
	b.SaveBytes.Add(bytes)
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(_ string, bytes int64, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.LoadBytes.Add(bytes)
}

// RecordDiscard implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDiscard(_ int, _ time.Duration, err error) {
	b.DiscardCount.Add(1)
	if err != nil {
		b.DiscardErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SaveCount:     b.SaveCount.Load(),
		SaveErrors:    b.SaveErrors.Load(),
		SaveBytes:     b.SaveBytes.Load(),
		SaveAvgNanos:  avgNanos(b.SaveTotalNanos.Load(), b.SaveCount.Load()),
		LoadCount:     b.LoadCount.Load(),
		LoadErrors:    b.LoadErrors.Load(),
		LoadBytes:     b.LoadBytes.Load(),
		LoadAvgNanos:  avgNanos(b.LoadTotalNanos.Load(), b.LoadCount.Load()),
		DiscardCount:  b.DiscardCount.Load(),
		DiscardErrors: b.DiscardErrors.Load(),
	}
}

func avgNanos(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SaveCount     int64
	SaveErrors    int64
	SaveBytes     int64
	SaveAvgNanos  int64
	LoadCount     int64
	LoadErrors    int64
	LoadBytes     int64
	LoadAvgNanos  int64
	DiscardCount  int64
	DiscardErrors int64
}
