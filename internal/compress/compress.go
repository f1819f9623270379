// Package compress frames a byte stream into independently compressed blocks.
//
// Block format: [UncompressedSize uint32][CompressedSize uint32][Data...]
// A CompressedSize of 0 marks a block stored uncompressed.
package compress

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type defines the compression algorithm used.
type Type uint8

const (
	// None writes the stream unframed.
	None Type = 0
	// LZ4 indicates LZ4 block compression (fast, good for hot data).
	LZ4 Type = 1
	// ZSTD indicates ZSTD block compression (better ratio, good for cold data).
	ZSTD Type = 2
)

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(t))
	}
}

// ParseType is the inverse of Type.String.
func ParseType(s string) (Type, error) {
	switch s {
	case "", "none":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return ZSTD, nil
	default:
		return None, fmt.Errorf("unknown compression %q", s)
	}
}

const (
	// DefaultBlockSize is used when a non-positive block size is requested.
	DefaultBlockSize = 256 * 1024

	// MaxBlockSize bounds the uncompressed size of one block. Larger requested
	// block sizes are clamped; readers reject headers that exceed it.
	MaxBlockSize = 16 * 1024 * 1024
)

const blockHeaderSize = 8

var (
	// ErrCorruptBlock is returned when a block header or payload is inconsistent.
	ErrCorruptBlock = errors.New("corrupt compressed block")

	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxBlockSize))
	return dec
}

// compressBlock returns the framed block. Data that does not shrink by at
// least 10% is stored uncompressed.
func compressBlock(data []byte, t Type) ([]byte, error) {
	var compressed []byte
	switch t {
	case LZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n]
	case ZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("unsupported compression %s", t)
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		compressed = nil
	}

	out := make([]byte, blockHeaderSize, blockHeaderSize+max(len(compressed), len(data)))
	binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(out[4:], uint32(len(compressed)))
	if compressed == nil {
		return append(out, data...), nil
	}
	return append(out, compressed...), nil
}

func decompressBlock(dst, src []byte, t Type) ([]byte, error) {
	switch t {
	case LZ4:
		n, err := lz4.UncompressBlock(src, dst)
		if err != nil {
			return nil, err
		}
		if n != len(dst) {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorruptBlock)
		}
		return dst, nil
	case ZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		out, err := dec.DecodeAll(src, dst[:0])
		if err != nil {
			return nil, err
		}
		if len(out) != len(dst) {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorruptBlock)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported compression %s", t)
	}
}

// Writer buffers writes and emits one framed block per blockSize bytes.
type Writer struct {
	w         io.Writer
	t         Type
	blockSize int
	buffer    *bytes.Buffer
	written   int64
}

// NewWriter creates a block writer. Close (or Flush) must be called to emit the
// final partial block.
func NewWriter(w io.Writer, t Type, blockSize int) *Writer {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	blockSize = min(blockSize, MaxBlockSize)
	return &Writer{
		w:         w,
		t:         t,
		blockSize: blockSize,
		buffer:    bytes.NewBuffer(make([]byte, 0, blockSize)),
	}
}

// Write writes data to the buffer, flushing blocks as needed.
func (c *Writer) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		space := c.blockSize - c.buffer.Len()
		if space <= 0 {
			if err := c.Flush(); err != nil {
				return total, err
			}
			space = c.blockSize
		}

		n, _ := c.buffer.Write(p[:min(len(p), space)])
		total += n
		p = p[n:]
	}
	return total, nil
}

// Flush compresses and writes the buffered block, if any.
func (c *Writer) Flush() error {
	if c.buffer.Len() == 0 {
		return nil
	}

	block, err := compressBlock(c.buffer.Bytes(), c.t)
	if err != nil {
		return err
	}

	n, err := c.w.Write(block)
	c.written += int64(n)
	if err != nil {
		return err
	}
	c.buffer.Reset()
	return nil
}

// Close flushes the final block. It does not close the underlying writer.
func (c *Writer) Close() error {
	return c.Flush()
}

// BytesWritten returns the total framed bytes written.
func (c *Writer) BytesWritten() int64 {
	return c.written
}

// Reader decompresses a stream produced by Writer.
type Reader struct {
	r     io.Reader
	t     Type
	block []byte
	off   int
	src   []byte
}

// NewReader creates a block reader for the given compression type.
func NewReader(r io.Reader, t Type) *Reader {
	return &Reader{r: r, t: t}
}

// Read implements io.Reader. A stream that ends inside a block header or
// payload yields io.ErrUnexpectedEOF.
func (c *Reader) Read(p []byte) (int, error) {
	for c.off == len(c.block) {
		if err := c.next(); err != nil {
			return 0, err
		}
	}
	n := copy(p, c.block[c.off:])
	c.off += n
	return n, nil
}

func (c *Reader) next() error {
	var hdr [blockHeaderSize]byte
	if _, err := io.ReadFull(c.r, hdr[:]); err != nil {
		return err
	}
	uncompressedSize := binary.LittleEndian.Uint32(hdr[0:])
	compressedSize := binary.LittleEndian.Uint32(hdr[4:])

	// Sizes come from the stream; check them before allocating.
	if uncompressedSize > MaxBlockSize {
		return fmt.Errorf("%w: block of %d bytes exceeds %d", ErrCorruptBlock, uncompressedSize, MaxBlockSize)
	}
	if compressedSize > uncompressedSize {
		return fmt.Errorf("%w: compressed size %d exceeds block size %d", ErrCorruptBlock, compressedSize, uncompressedSize)
	}

	payload := int(uncompressedSize)
	if compressedSize != 0 {
		payload = int(compressedSize)
	}
	if cap(c.src) < payload {
		c.src = make([]byte, payload)
	}
	src := c.src[:payload]
	if _, err := io.ReadFull(c.r, src); err != nil {
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		return err
	}

	c.off = 0
	if compressedSize == 0 {
		c.block = src
		return nil
	}

	block, err := decompressBlock(make([]byte, uncompressedSize), src, c.t)
	if err != nil {
		return err
	}
	c.block = block
	return nil
}
