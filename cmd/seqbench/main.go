// Command seqbench times binary round trips of number and string sequences.
//
// By default it runs the two reference scenarios (1000 consecutive uint64
// values and four short strings) through the in-memory codecs and through a
// Store backed by the selected blob store:
//
//	seqbench -store local -dir /tmp/scratch -compression zstd
//	seqbench -store minio -endpoint localhost:9000 -bucket bench
//	seqbench -store s3 -bucket my-bucket -prefix seqbench/ -table seqbench-catalog
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/hupe1980/seqbench"
	"github.com/hupe1980/seqbench/bench"
	"github.com/hupe1980/seqbench/blobstore"
	"github.com/hupe1980/seqbench/blobstore/minio"
	"github.com/hupe1980/seqbench/blobstore/s3"
	"github.com/hupe1980/seqbench/catalog"
	"github.com/hupe1980/seqbench/catalog/dynamo"
	"github.com/hupe1980/seqbench/codec"
	"github.com/hupe1980/seqbench/testutil"
)

var referenceStrings = []string{"abc", "xyz012", "0123456789", "7654321"}

type config struct {
	n           int
	store       string
	dir         string
	bucket      string
	prefix      string
	endpoint    string
	accessKey   string
	secretKey   string
	table       string
	compression string
	ioLimit     int64
	codecs      bool
	random      int
	seed        int64
	json        bool
	print       bool
	verbose     bool
}

func parseFlags(args []string, stderr io.Writer) (config, error) {
	var cfg config
	fs := flag.NewFlagSet("seqbench", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.IntVar(&cfg.n, "n", 1000, "number of uint64 values in the iota scenario")
	fs.StringVar(&cfg.store, "store", "memory", "blob store: memory, local, minio or s3")
	fs.StringVar(&cfg.dir, "dir", "", "root directory for -store local (default: a temporary directory)")
	fs.StringVar(&cfg.bucket, "bucket", "", "bucket for -store minio or s3")
	fs.StringVar(&cfg.prefix, "prefix", "seqbench/", "key prefix for -store minio or s3")
	fs.StringVar(&cfg.endpoint, "endpoint", os.Getenv("MINIO_ENDPOINT"), "MinIO endpoint")
	fs.StringVar(&cfg.accessKey, "access-key", os.Getenv("MINIO_ACCESS_KEY"), "MinIO access key")
	fs.StringVar(&cfg.secretKey, "secret-key", os.Getenv("MINIO_SECRET_KEY"), "MinIO secret key")
	fs.StringVar(&cfg.table, "table", "", "DynamoDB catalog table (default: in-memory catalog)")
	fs.StringVar(&cfg.compression, "compression", "none", "block compression: none, lz4 or zstd")
	fs.Int64Var(&cfg.ioLimit, "io-limit", 0, "write throttle in bytes per second (0 disables)")
	fs.BoolVar(&cfg.codecs, "codecs", false, "also run the baseline whole-value codecs")
	fs.IntVar(&cfg.random, "random", 0, "also run random sequences of this length")
	fs.Int64Var(&cfg.seed, "seed", 4711, "seed for -random")
	fs.BoolVar(&cfg.json, "json", false, "write the report as JSON")
	fs.BoolVar(&cfg.print, "print", false, "print the reference strings before running")
	fs.BoolVar(&cfg.verbose, "v", false, "debug logging")

	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	if cfg.n < 0 || cfg.random < 0 {
		return config{}, errors.New("-n and -random must not be negative")
	}
	return cfg, nil
}

func openBlobStore(ctx context.Context, cfg config) (blobstore.BlobStore, func(), error) {
	noop := func() {}
	switch cfg.store {
	case "memory":
		return blobstore.NewMemoryStore(), noop, nil
	case "local":
		if cfg.dir != "" {
			return blobstore.NewLocalStore(cfg.dir), noop, nil
		}
		dir, err := os.MkdirTemp("", "seqbench-")
		if err != nil {
			return nil, nil, err
		}
		return blobstore.NewLocalStore(dir), func() { _ = os.RemoveAll(dir) }, nil
	case "minio":
		if cfg.endpoint == "" || cfg.bucket == "" {
			return nil, nil, errors.New("-store minio requires -endpoint and -bucket")
		}
		store, err := minio.Dial(cfg.endpoint, cfg.accessKey, cfg.secretKey, cfg.bucket, minio.WithPrefix(cfg.prefix))
		if err != nil {
			return nil, nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, nil, err
		}
		return store, noop, nil
	case "s3":
		if cfg.bucket == "" {
			return nil, nil, errors.New("-store s3 requires -bucket")
		}
		store, err := s3.New(ctx, cfg.bucket, s3.WithPrefix(cfg.prefix))
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.store)
	}
}

func openCatalog(ctx context.Context, cfg config) (catalog.Catalog, error) {
	if cfg.table == "" {
		return catalog.NewMemoryCatalog(), nil
	}
	return dynamo.New(ctx, cfg.table)
}

func buildCases(cfg config, st *seqbench.Store) []bench.Case {
	ids := testutil.Iota[uint64](cfg.n)

	cases := []bench.Case{
		bench.FixedCase("iota/binary", ids),
		bench.StringsCase("strings/binary", referenceStrings),
		bench.TextCase("iota/plaintext", ids),
		bench.FixedCase("empty/binary", []uint64{}),
		bench.StringsCase("blank/binary", []string{""}),
		bench.StoreCase("iota/store", st, "iota.bin", ids),
		bench.StoreStringsCase("strings/store", st, "strings.bin", referenceStrings),
	}

	if cfg.random > 0 {
		rng := testutil.NewRNG(cfg.seed)
		floats := rng.Float64s(cfg.random)
		words := rng.BinaryStrings(cfg.random, 64)
		cases = append(cases,
			bench.FixedCase("random-float64/binary", floats),
			bench.StringsCase("random-strings/binary", words),
			bench.StoreCase("random-float64/store", st, "random-float64.bin", floats),
			bench.StoreStringsCase("random-strings/store", st, "random-strings.bin", words),
		)
	}

	if cfg.codecs {
		for _, c := range codec.All() {
			cases = append(cases,
				bench.CodecCase("iota/"+c.Name(), c, ids),
				bench.CodecCase("strings/"+c.Name(), c, referenceStrings),
			)
		}
	}
	return cases
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	compression, err := seqbench.ParseCompression(cfg.compression)
	if err != nil {
		return err
	}

	bs, cleanup, err := openBlobStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	cat, err := openCatalog(ctx, cfg)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if cfg.verbose {
		level = slog.LevelDebug
	}
	st := seqbench.Open(bs,
		seqbench.WithCatalog(cat),
		seqbench.WithCompression(compression),
		seqbench.WithIOLimit(cfg.ioLimit),
		seqbench.WithLogger(seqbench.NewLogger(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))),
	)

	if cfg.print {
		if err := bench.PrintSequence(stdout, referenceStrings); err != nil {
			return err
		}
	}

	report, runErr := bench.Run(ctx, buildCases(cfg, st)...)

	if cfg.json {
		err = report.WriteJSON(stdout)
	} else {
		err = report.WriteText(stdout)
	}
	return errors.Join(runErr, err)
}

// exitCode reports err on stderr and returns the process exit status.
func exitCode(err error, stderr io.Writer) int {
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return 0
	}
	fmt.Fprintln(stderr, "seqbench:", err)
	return 1
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := exitCode(run(ctx, os.Args[1:], os.Stdout, os.Stderr), os.Stderr)
	stop()
	os.Exit(code)
}
