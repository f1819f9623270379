// Package resource bounds the concurrency, memory and write bandwidth a Store
// may use.
package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes caps the encoded bytes of loads in flight.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxConcurrentOps is the maximum number of concurrent saves and loads.
	// If 0, unlimited.
	MaxConcurrentOps int64

	// IOLimitBytesPerSec is the maximum write throughput.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages shared resources. A nil *Controller imposes no limits.
type Controller struct {
	memSem  *semaphore.Weighted // nil if unlimited
	memMax  int64
	memUsed atomic.Int64

	opSem *semaphore.Weighted // nil if unlimited

	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
		c.memMax = cfg.MemoryLimitBytes
	}
	if cfg.MaxConcurrentOps > 0 {
		c.opSem = semaphore.NewWeighted(cfg.MaxConcurrentOps)
	}
	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}
	return c
}

// AcquireMemory reserves bytes, blocking until they are available or ctx is
// canceled. Requests larger than the limit are clamped to it so that a single
// oversized load runs alone instead of blocking forever.
// It returns the amount actually reserved, which must be passed to ReleaseMemory.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) (int64, error) {
	if c == nil || bytes <= 0 {
		return 0, nil
	}

	if c.memSem != nil {
		bytes = min(bytes, c.memMax)
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return 0, err
		}
	}

	c.memUsed.Add(bytes)
	return bytes, nil
}

// TryAcquireMemory attempts to reserve memory without blocking.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return false
		}
	}

	c.memUsed.Add(bytes)
	return true
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory reservation in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireOp reserves an operation slot. Blocks if all slots are busy.
func (c *Controller) AcquireOp(ctx context.Context) error {
	if c == nil || c.opSem == nil {
		return nil
	}
	return c.opSem.Acquire(ctx, 1)
}

// TryAcquireOp attempts to reserve an operation slot without blocking.
func (c *Controller) TryAcquireOp() bool {
	if c == nil || c.opSem == nil {
		return true
	}
	return c.opSem.TryAcquire(1)
}

// ReleaseOp releases an operation slot.
func (c *Controller) ReleaseOp() {
	if c == nil || c.opSem == nil {
		return
	}
	c.opSem.Release(1)
}

// IOLimiter returns the write limiter, or nil if writes are unthrottled.
func (c *Controller) IOLimiter() *rate.Limiter {
	if c == nil {
		return nil
	}
	return c.ioLimiter
}
