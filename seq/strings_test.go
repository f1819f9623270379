package seq

import (
	"bytes"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrings_Reference(t *testing.T) {
	want := []string{"abc", "xyz012", "0123456789", "7654321"}

	var buf bytes.Buffer
	require.NoError(t, EncodeStrings(&buf, want))
	require.Equal(t, int64(8+(8+3)+(8+6)+(8+10)+(8+7)), int64(buf.Len()))
	require.Equal(t, StringsSize(want), int64(buf.Len()))

	got, err := DecodeStrings(&buf)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestStrings_SingleEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeStrings(&buf, []string{""}))
	require.Equal(t, []byte{
		1, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
	}, buf.Bytes())

	got, err := DecodeStrings(&buf)
	require.NoError(t, err)
	require.Equal(t, []string{""}, got)
}

func TestStrings_EdgeContent(t *testing.T) {
	tests := []struct {
		name string
		in   []string
	}{
		{"none", []string{}},
		{"embedded zero bytes", []string{"a\x00b", "\x00", "\x00\x00\x00"}},
		{"empties between", []string{"", "x", "", ""}},
		{"invalid utf8", []string{"\xff\xfe", "caf\xc3"}},
		{"chunk sized", []string{strings.Repeat("q", chunkSize), strings.Repeat("r", chunkSize-3)}},
		{"larger than chunk", []string{"head", strings.Repeat("z", 3*chunkSize+5), "tail"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := AppendStrings(nil, tt.in)
			require.Equal(t, StringsSize(tt.in), int64(len(data)))

			var buf bytes.Buffer
			require.NoError(t, EncodeStrings(&buf, tt.in))
			require.Equal(t, data, buf.Bytes())

			got, err := DecodeStrings(&buf)
			require.NoError(t, err)
			require.Equal(t, tt.in, got)

			got, err = DecodeStrings(streamOnly{iotest.OneByteReader(bytes.NewReader(data))})
			require.NoError(t, err)
			require.Equal(t, tt.in, got)
		})
	}
}

func TestStrings_Truncated(t *testing.T) {
	full := AppendStrings(nil, []string{"abc", "defgh"})
	// full: [count 8][len 8]["abc"][len 8]["defgh"] = 32 bytes

	tests := []struct {
		name  string
		cut   int
		field string
		index int
	}{
		{"count", 3, "count", -1},
		{"first length", 12, "length", 0},
		{"first payload", 18, "payload", 0},
		{"second length", 20, "length", 1},
		{"second payload", 31, "payload", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeStrings(streamOnly{bytes.NewReader(full[:tt.cut])})
			require.Nil(t, got)

			var te *TruncatedInputError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.field, te.Field)
			assert.Equal(t, tt.index, te.Index)
		})
	}
}

func TestStrings_TruncatedSized(t *testing.T) {
	full := AppendStrings(nil, []string{"abc", "defgh"})

	for cut := 0; cut < len(full); cut++ {
		got, err := DecodeStrings(bytes.NewReader(full[:cut]))
		require.Nil(t, got, "cut=%d", cut)
		require.ErrorIs(t, err, ErrTruncatedInput, "cut=%d", cut)
	}
}

func TestStrings_HugeDeclaredLength(t *testing.T) {
	data := le.AppendUint64(nil, 1)
	data = le.AppendUint64(data, 1<<50)
	data = append(data, "short"...)

	got, err := DecodeStrings(streamOnly{bytes.NewReader(data)})
	require.Nil(t, got)

	var te *TruncatedInputError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "payload", te.Field)
	assert.Equal(t, int64(1<<50), te.Want)
	assert.Equal(t, int64(5), te.Got)
}

func TestStrings_HugeDeclaredCount(t *testing.T) {
	data := le.AppendUint64(nil, 1<<62)

	_, err := DecodeStrings(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrTruncatedInput)

	_, err = DecodeStrings(streamOnly{bytes.NewReader(data)})
	require.ErrorIs(t, err, ErrTruncatedInput)
}

func TestStrings_WriteError(t *testing.T) {
	w := &failWriter{limit: 10}
	err := EncodeStrings(w, []string{"abcdef"})

	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "write", ioErr.Op)
}

func TestUnmarshalStrings_Consumed(t *testing.T) {
	data := AppendStrings(nil, []string{"k", ""})
	data = append(data, "trailer"...)

	s, n, err := UnmarshalStrings(data)
	require.NoError(t, err)
	require.Equal(t, []string{"k", ""}, s)
	require.Equal(t, 8+8+1+8, n)
}

func BenchmarkStringsRoundTrip(b *testing.B) {
	s := []string{"abc", "xyz012", "0123456789", "7654321"}
	var buf bytes.Buffer
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		if err := EncodeStrings(&buf, s); err != nil {
			b.Fatal(err)
		}
		if _, err := DecodeStrings(&buf); err != nil {
			b.Fatal(err)
		}
	}
}
