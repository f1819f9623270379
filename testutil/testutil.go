package testutil

import (
	"math/rand"
	"reflect"
	"sync"

	"github.com/hupe1980/seqbench/seq"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Uint64s returns n pseudo-random uint64 values.
// Locks only once per call (preferred over calling Uint64 in a loop).
func (r *RNG) Uint64s(n int) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]uint64, n)
	for i := range out {
		out[i] = r.rand.Uint64()
	}
	return out
}

// Float64s returns n normally distributed values scaled to roughly ±1e6.
// The values are always finite.
func (r *RNG) Float64s(n int) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]float64, n)
	for i := range out {
		out[i] = r.rand.NormFloat64() * 1e6
	}
	return out
}

const printable = " !\"#$%&'()*+,-./0123456789:;<=>?@ABCDEFGHIJKLMNOPQRSTUVWXYZ[\\]^_`abcdefghijklmnopqrstuvwxyz{|}~"

// Strings returns n strings of printable ASCII with lengths in [0, maxLen].
func (r *RNG) Strings(n, maxLen int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, n)
	for i := range out {
		b := make([]byte, r.rand.Intn(maxLen+1))
		for j := range b {
			b[j] = printable[r.rand.Intn(len(printable))]
		}
		out[i] = string(b)
	}
	return out
}

// BinaryStrings returns n strings of arbitrary bytes with lengths in
// [0, maxLen]. Roughly one byte in eight is zero.
func (r *RNG) BinaryStrings(n, maxLen int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, n)
	for i := range out {
		b := make([]byte, r.rand.Intn(maxLen+1))
		for j := range b {
			if r.rand.Intn(8) == 0 {
				continue
			}
			b[j] = byte(r.rand.Intn(256))
		}
		out[i] = string(b)
	}
	return out
}

// Values returns n pseudo-random values of T. Integer types get uniformly
// random bit patterns; float types get finite, normally distributed values
// so that results compare equal with ==.
func Values[T seq.Fixed](r *RNG, n int) []T {
	kind := reflect.TypeFor[T]().Kind()

	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, n)
	for i := range out {
		switch kind {
		case reflect.Float32, reflect.Float64:
			out[i] = T(r.rand.NormFloat64() * 1e6)
		default:
			out[i] = T(r.rand.Uint64())
		}
	}
	return out
}

// Iota returns [0, 1, ..., n-1] as a sequence of T.
func Iota[T seq.Fixed](n int) []T {
	out := make([]T, n)
	for i := range out {
		out[i] = T(i)
	}
	return out
}
