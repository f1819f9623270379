package bench

import (
	"fmt"
	"time"
)

// Timing is the wall-clock duration of one leg covering Ops elements.
type Timing struct {
	Ops     int           `json:"ops"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

// Micros returns the elapsed time in microseconds.
func (t Timing) Micros() float64 {
	return float64(t.Elapsed) / float64(time.Microsecond)
}

// OpsPerMicro returns the throughput in elements per microsecond, or 0 if no
// time was measured.
func (t Timing) OpsPerMicro() float64 {
	us := t.Micros()
	if us <= 0 {
		return 0
	}
	return float64(t.Ops) / us
}

func (t Timing) String() string {
	return fmt.Sprintf("%.0fus %.4g op/us", t.Micros(), t.OpsPerMicro())
}

// Timeit runs fn once and reports its duration against n operations.
func Timeit(fn func() error, n int) (Timing, error) {
	start := time.Now()
	err := fn()
	return Timing{Ops: n, Elapsed: time.Since(start)}, err
}
