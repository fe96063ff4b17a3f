package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"

	"github.com/MrJamesThe3rd/notemarket/internal/apperr"
	"github.com/MrJamesThe3rd/notemarket/internal/encoding"
)

const tapeRows = "Address,City,State\n12 Calle Peñasco,San José,CA\n"

func encode(t *testing.T, enc interface{ Bytes([]byte) ([]byte, error) }, s string) []byte {
	t.Helper()

	b, err := enc.Bytes([]byte(s))
	require.NoError(t, err)

	return b
}

func TestDecode(t *testing.T) {
	// Puts "é" across the end of the sniff window.
	longUTF8 := strings.Repeat("a", 4095) + "é\n"

	tests := []struct {
		name    string
		in      []byte
		want    string
		charset encoding.Charset
	}{
		{
			name:    "UTF8Passthrough",
			in:      []byte(tapeRows),
			want:    tapeRows,
			charset: encoding.UTF8,
		},
		{
			name:    "UTF8BOMDropped",
			in:      append([]byte{0xEF, 0xBB, 0xBF}, tapeRows...),
			want:    tapeRows,
			charset: encoding.UTF8,
		},
		{
			name:    "UTF8RuneAcrossSniffWindow",
			in:      []byte(longUTF8),
			want:    longUTF8,
			charset: encoding.UTF8,
		},
		{
			name:    "ExcelWindows1252",
			in:      encode(t, charmap.Windows1252.NewEncoder(), tapeRows),
			want:    tapeRows,
			charset: encoding.Windows1252,
		},
		{
			name:    "Windows1252AccentAtEOF",
			in:      encode(t, charmap.Windows1252.NewEncoder(), "City\nSan José"),
			want:    "City\nSan José",
			charset: encoding.Windows1252,
		},
		{
			name:    "UTF16LE",
			in:      encode(t, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder(), tapeRows),
			want:    tapeRows,
			charset: encoding.UTF16LE,
		},
		{
			name:    "UTF16BE",
			in:      encode(t, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder(), tapeRows),
			want:    tapeRows,
			charset: encoding.UTF16BE,
		},
		{
			name:    "UTF32LE",
			in:      encode(t, utf32.UTF32(utf32.LittleEndian, utf32.UseBOM).NewEncoder(), tapeRows),
			want:    tapeRows,
			charset: encoding.UTF32LE,
		},
		{
			name:    "Empty",
			in:      nil,
			want:    "",
			charset: encoding.UTF8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, cs, err := encoding.Decode(bytes.NewReader(tt.in))
			require.NoError(t, err)

			got, err := io.ReadAll(r)
			require.NoError(t, err)

			assert.Equal(t, tt.charset, cs)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestDecode_RejectsWorkbooks(t *testing.T) {
	for name, in := range map[string][]byte{
		"xlsx": []byte("PK\x03\x04\x14\x00\x06\x00"),
		"xls":  {0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1},
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := encoding.Decode(bytes.NewReader(in))
			require.ErrorIs(t, err, encoding.ErrBinary)
			assert.ErrorIs(t, err, apperr.ErrInvalid)
		})
	}
}

func TestNewUTF8Reader(t *testing.T) {
	r, err := encoding.NewUTF8Reader(bytes.NewReader(encode(t, charmap.Windows1252.NewEncoder(), tapeRows)))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, tapeRows, string(got))
}
