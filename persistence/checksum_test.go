package persistence

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestChecksum_WriterReaderAgree(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")

	var buf bytes.Buffer
	cw := NewChecksumWriter(&buf)
	_, err := cw.Write(data[:10])
	require.NoError(t, err)
	_, err = cw.Write(data[10:])
	require.NoError(t, err)
	assert.Equal(t, Checksum(data), cw.Sum())
	assert.Equal(t, int64(len(data)), cw.BytesWritten())

	cr := NewChecksumReader(&buf)
	got, err := io.ReadAll(cr)
	require.NoError(t, err)
	require.Equal(t, data, got)
	require.NoError(t, cr.Verify(cw.Sum()))
	assert.Equal(t, int64(len(data)), cr.BytesRead())

	err = cr.Verify(cw.Sum() + 1)
	require.Error(t, err)
	assert.True(t, IsChecksumMismatch(err))
}

func TestRateLimitedWriter(t *testing.T) {
	var buf bytes.Buffer
	rw := NewRateLimitedWriter(context.Background(), &buf, rate.NewLimiter(rate.Inf, 4))

	n, err := rw.Write([]byte("split across bursts"))
	require.NoError(t, err)
	require.Equal(t, 19, n)
	require.Equal(t, "split across bursts", buf.String())

	unlimited := NewRateLimitedWriter(context.Background(), &buf, nil)
	_, err = unlimited.Write([]byte("!"))
	require.NoError(t, err)
}

func TestRateLimitedWriter_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rw := NewRateLimitedWriter(ctx, io.Discard, rate.NewLimiter(rate.Every(time.Hour), 1))
	_, err := rw.Write([]byte("xy"))
	require.Error(t, err)
}
