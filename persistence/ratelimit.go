package persistence

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// RateLimitedWriter throttles writes to the limiter's rate, in bytes per second.
// Writes larger than the limiter's burst are split.
type RateLimitedWriter struct {
	ctx     context.Context
	w       io.Writer
	limiter *rate.Limiter
}

// NewRateLimitedWriter wraps w. A nil limiter disables throttling.
func NewRateLimitedWriter(ctx context.Context, w io.Writer, limiter *rate.Limiter) *RateLimitedWriter {
	return &RateLimitedWriter{ctx: ctx, w: w, limiter: limiter}
}

// Write implements io.Writer.
func (rw *RateLimitedWriter) Write(p []byte) (int, error) {
	if rw.limiter == nil {
		return rw.w.Write(p)
	}

	total := 0
	burst := rw.limiter.Burst()
	for len(p) > 0 {
		n := min(len(p), burst)
		if err := rw.limiter.WaitN(rw.ctx, n); err != nil {
			return total, err
		}
		m, err := rw.w.Write(p[:n])
		total += m
		if err != nil {
			return total, err
		}
		p = p[n:]
	}
	return total, nil
}
