package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budget/internal/encoding"
)

func readAll(t *testing.T, input []byte) string {
	t.Helper()

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got)
}

func TestNewUTF8Reader(t *testing.T) {
	type testCase struct {
		name  string
		input []byte
		want  string
	}

	tests := []testCase{
		{
			name:  "utf8 passes through",
			input: []byte("date,category,amount\n2024-01-02,Café,12.50\n"),
			want:  "date,category,amount\n2024-01-02,Café,12.50\n",
		},
		{
			name:  "utf8 bom is stripped",
			input: append([]byte{0xEF, 0xBB, 0xBF}, "date,type\n"...),
			want:  "date,type\n",
		},
		{
			// "Café;12,50\n" in Windows-1252, é = 0xE9.
			name:  "windows-1252 is decoded",
			input: []byte{'C', 'a', 'f', 0xE9, ';', '1', '2', ',', '5', '0', '\n'},
			want:  "Café;12,50\n",
		},
		{
			name:  "utf16 little endian with bom",
			input: []byte{0xFF, 0xFE, 'd', 0, 'a', 0, 't', 0, 'e', 0},
			want:  "date",
		},
		{
			name:  "empty input",
			input: nil,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, readAll(t, tt.input))
		})
	}
}

func TestNewUTF8Reader_LongInputWithMultibyteAtBoundary(t *testing.T) {
	// 4095 ASCII bytes followed by a two-byte rune straddles the sniff window.
	input := strings.Repeat("a", 4095) + "é\n"

	assert.Equal(t, input, readAll(t, []byte(input)))
}

func TestNewUTF8Reader_RejectsBinary(t *testing.T) {
	// The start of a zip archive, as an XLSX uploaded with the wrong format.
	input := []byte{'P', 'K', 0x03, 0x04, 0x14, 0x00, 0x06, 0x00}

	_, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	assert.ErrorIs(t, err, encoding.ErrBinary)
}
