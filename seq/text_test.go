package seq

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeText(&buf, []uint64{0, 1, 2, 18446744073709551615}))
	require.Equal(t, "0 1 2 18446744073709551615 ", buf.String())

	got, err := DecodeText[uint64](&buf)
	require.NoError(t, err)
	require.Equal(t, []uint64{0, 1, 2, 18446744073709551615}, got)
}

func TestText_SignedAndFloat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeText(&buf, []int16{-32768, 7}))
	got, err := DecodeText[int16](&buf)
	require.NoError(t, err)
	require.Equal(t, []int16{-32768, 7}, got)

	buf.Reset()
	require.NoError(t, EncodeText(&buf, []float32{0.1, -2.5e10}))
	require.Equal(t, "0.1 -2.5e+10 ", buf.String())
	fs, err := DecodeText[float32](&buf)
	require.NoError(t, err)
	require.Equal(t, []float32{0.1, -2.5e10}, fs)
}

func TestText_Whitespace(t *testing.T) {
	got, err := DecodeText[int32](strings.NewReader("\n 1\t2   3\r\n"))
	require.NoError(t, err)
	require.Equal(t, []int32{1, 2, 3}, got)

	got, err = DecodeText[int32](strings.NewReader(""))
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestText_SyntaxError(t *testing.T) {
	tests := []struct {
		input string
		index int
		token string
	}{
		{"1 2 x", 2, "x"},
		{"300", 0, "300"},
		{"-1", 0, "-1"},
	}

	for _, tt := range tests {
		got, err := DecodeText[uint8](strings.NewReader(tt.input))
		require.Nil(t, got, tt.input)

		var se *SyntaxError
		require.ErrorAs(t, err, &se, tt.input)
		assert.Equal(t, tt.index, se.Index, tt.input)
		assert.Equal(t, tt.token, se.Token, tt.input)
	}
}

func TestText_WriteError(t *testing.T) {
	err := EncodeText(&failWriter{limit: 1}, []uint8{1, 2, 3})

	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
}
