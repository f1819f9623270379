package persistence

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/hupe1980/seqbench/internal/fs"
)

// ErrClosed is returned when writing to an AtomicFile after Commit or Abort.
var ErrClosed = errors.New("persistence: file already closed")

// bufferSize batches small codec writes (critical for performance).
const bufferSize = 256 * 1024

var tmpSeq atomic.Uint64

// AtomicFile writes to a temporary file in the target directory and renames
// it over the target on Commit. Abort, or a failed Commit, removes the
// temporary file, so readers never observe a partially written target.
type AtomicFile struct {
	fsys    fs.FileSystem
	target  string
	tmpName string
	f       fs.File
	buf     *bufio.Writer
	done    bool
}

// CreateAtomic starts an atomic write of filename. A nil fsys uses fs.Default.
func CreateAtomic(fsys fs.FileSystem, filename string) (*AtomicFile, error) {
	if fsys == nil {
		fsys = fs.Default
	}
	dir := filepath.Dir(filename)
	if err := fsys.MkdirAll(dir, 0750); err != nil {
		return nil, err
	}

	// Same directory so the rename is atomic.
	tmpName := filename + ".tmp-" + strconv.FormatInt(time.Now().UnixNano(), 36) + "-" + strconv.FormatUint(tmpSeq.Add(1), 36)
	f, err := fsys.OpenFile(tmpName, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	return &AtomicFile{
		fsys:    fsys,
		target:  filename,
		tmpName: tmpName,
		f:       f,
		buf:     bufio.NewWriterSize(f, bufferSize),
	}, nil
}

// Write implements io.Writer.
func (a *AtomicFile) Write(p []byte) (int, error) {
	if a.done {
		return 0, ErrClosed
	}
	return a.buf.Write(p)
}

// Commit flushes, syncs and renames the temporary file over the target.
func (a *AtomicFile) Commit() error {
	if a.done {
		return ErrClosed
	}
	a.done = true

	if err := a.buf.Flush(); err != nil {
		a.cleanup()
		return err
	}
	if err := a.f.Sync(); err != nil {
		a.cleanup()
		return err
	}
	if err := a.f.Close(); err != nil {
		_ = a.fsys.Remove(a.tmpName)
		return err
	}
	if err := a.fsys.Rename(a.tmpName, a.target); err != nil {
		_ = a.fsys.Remove(a.tmpName)
		return err
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := a.fsys.OpenFile(filepath.Dir(a.target), os.O_RDONLY, 0); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}

// Abort discards everything written. It is a no-op after Commit.
func (a *AtomicFile) Abort() error {
	if a.done {
		return nil
	}
	a.done = true
	a.cleanup()
	return nil
}

func (a *AtomicFile) cleanup() {
	_ = a.f.Close()
	_ = a.fsys.Remove(a.tmpName)
}

// SaveToFile atomically replaces filename with whatever writeFunc writes.
func SaveToFile(fsys fs.FileSystem, filename string, writeFunc func(io.Writer) error) error {
	a, err := CreateAtomic(fsys, filename)
	if err != nil {
		return err
	}
	if err := writeFunc(a); err != nil {
		_ = a.Abort()
		return err
	}
	return a.Commit()
}

// LoadFromFile opens filename and hands a buffered reader to readFunc. The
// file is closed on every path.
func LoadFromFile(fsys fs.FileSystem, filename string, readFunc func(io.Reader) error) error {
	if fsys == nil {
		fsys = fs.Default
	}
	f, err := fsys.OpenFile(filename, os.O_RDONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	return readFunc(bufio.NewReaderSize(f, bufferSize))
}
