package seqbench

import (
	"log/slog"

	"github.com/hupe1980/seqbench/catalog"
	"github.com/hupe1980/seqbench/internal/compress"
)

// Compression selects block compression for saved blobs.
type Compression = compress.Type

const (
	// CompressionNone stores the encoded stream as is.
	CompressionNone = compress.None
	// CompressionLZ4 frames the stream into LZ4 blocks.
	CompressionLZ4 = compress.LZ4
	// CompressionZSTD frames the stream into ZSTD blocks.
	CompressionZSTD = compress.ZSTD
)

// ParseCompression parses "none", "lz4" or "zstd".
func ParseCompression(s string) (Compression, error) {
	return compress.ParseType(s)
}

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	compression      Compression
	blockSize        int
	ioLimit          int64
	memoryLimit      int64
	maxConcurrency   int64
	catalog          catalog.Catalog
	deleteLimit      int
}

// Option configures a Store.
type Option func(*options)

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := seqbench.NewJSONLogger(slog.LevelInfo)
//	st := seqbench.Open(bs, seqbench.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &seqbench.BasicMetricsCollector{}
//	st := seqbench.Open(bs, seqbench.WithMetricsCollector(metrics))
//	// ... save and load ...
//	stats := metrics.GetStats()
//	fmt.Printf("Saves: %d, Avg latency: %dns\n", stats.SaveCount, stats.SaveAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithCompression configures block compression for saved blobs.
// Without a catalog, loads assume the store's own compression setting.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithBlockSize sets the uncompressed block size used with compression.
// Default: 256KB.
func WithBlockSize(size int) Option {
	return func(o *options) {
		o.blockSize = size
	}
}

// WithIOLimit throttles blob writes to bytesPerSec. Zero disables throttling.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithMemoryLimit bounds the encoded bytes of loads in flight. Loads block
// until enough budget is free. Zero disables the limit.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithMaxConcurrency bounds the number of saves and loads running at once.
// Zero disables the limit.
func WithMaxConcurrency(n int) Option {
	return func(o *options) {
		o.maxConcurrency = int64(n)
	}
}

// WithCatalog records every save in c and verifies loads against it.
func WithCatalog(c catalog.Catalog) Option {
	return func(o *options) {
		o.catalog = c
	}
}

// WithDeleteConcurrency bounds the number of concurrent deletes in Discard.
// Default: 8.
func WithDeleteConcurrency(n int) Option {
	return func(o *options) {
		o.deleteLimit = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		compression:      CompressionNone,
		blockSize:        compress.DefaultBlockSize,
		deleteLimit:      8,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
