// Package codec provides whole-value encoders used as baselines in
// benchmark runs.
//
// Each codec marshals an entire sequence in one call. Comparing them with the
// streaming codecs in package seq shows the cost of general-purpose
// serialization over a fixed binary layout.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Default is the codec used when none is selected.
var Default Codec = GoJSON{}

// All returns every built-in codec in a stable order.
func All() []Codec {
	return []Codec{JSON{}, GoJSON{}, JSONIter{}, MsgPack{}, CBOR{}}
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	for _, c := range All() {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// MustMarshal is a helper for tests and benchmarks.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
