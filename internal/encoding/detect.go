// Package encoding normalises uploaded loan tapes to UTF-8. US servicing
// systems export UTF-8, or UTF-16/32 behind a byte order mark, and Excel on
// Windows saves "CSV" as Windows-1252. Anything that is not valid UTF-8 is
// read as Windows-1252.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"

	"github.com/MrJamesThe3rd/notemarket/internal/apperr"
)

// Charset names the encoding a tape was decoded from.
type Charset string

const (
	UTF8        Charset = "UTF-8"
	UTF16LE     Charset = "UTF-16LE"
	UTF16BE     Charset = "UTF-16BE"
	UTF32LE     Charset = "UTF-32LE"
	UTF32BE     Charset = "UTF-32BE"
	Windows1252 Charset = "windows-1252"
)

// ErrBinary is returned for workbooks and other non-text uploads.
var ErrBinary = fmt.Errorf("file is not a text export, save the workbook as CSV: %w", apperr.ErrInvalid)

const sniffLen = 4096

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// xlsx is a zip archive, legacy xls an OLE container.
var workbookSignatures = [][]byte{
	[]byte("PK\x03\x04"),
	{0xD0, 0xCF, 0x11, 0xE0},
}

// Decode sniffs the head of r and returns a reader yielding UTF-8 along
// with the charset it chose. Byte order marks are not passed through.
func Decode(r io.Reader) (io.Reader, Charset, error) {
	br := bufio.NewReaderSize(r, sniffLen)

	head, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF {
		return nil, "", fmt.Errorf("read tape head: %w", err)
	}

	if bytes.HasPrefix(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
		return br, UTF8, nil
	}

	if cs, ok := unicodeMark(head); ok {
		return transform.NewReader(br, decoderFor(cs)), cs, nil
	}

	if isBinary(head) {
		return nil, "", ErrBinary
	}

	if validUTF8Prefix(head, len(head) == sniffLen) {
		return br, UTF8, nil
	}

	return transform.NewReader(br, decoderFor(Windows1252)), Windows1252, nil
}

// NewUTF8Reader is Decode without the charset.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	out, _, err := Decode(r)
	return out, err
}

// unicodeMark reports a UTF-16 or UTF-32 byte order mark. chardet only
// scores those recognisers at 100 when the mark is present, and it tells the
// UTF-32LE mark apart from the UTF-16LE one it begins with.
func unicodeMark(head []byte) (Charset, bool) {
	if len(head) < 2 {
		return "", false
	}

	res, err := chardet.NewTextDetector().DetectBest(head)
	if err != nil || res.Confidence < 100 {
		return "", false
	}

	switch cs := Charset(res.Charset); cs {
	case UTF16LE, UTF16BE, UTF32LE, UTF32BE:
		return cs, true
	}

	return "", false
}

func isBinary(head []byte) bool {
	for _, sig := range workbookSignatures {
		if bytes.HasPrefix(head, sig) {
			return true
		}
	}

	return bytes.IndexByte(head, 0) >= 0
}

// validUTF8Prefix ignores a multi-byte rune cut off by a full sniff window.
func validUTF8Prefix(b []byte, truncated bool) bool {
	if !truncated {
		return utf8.Valid(b)
	}

	start := len(b) - 1
	for start > 0 && start > len(b)-utf8.UTFMax && !utf8.RuneStart(b[start]) {
		start--
	}

	if start >= 0 && !utf8.FullRune(b[start:]) {
		b = b[:start]
	}

	return utf8.Valid(b)
}

func decoderFor(cs Charset) transform.Transformer {
	switch cs {
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
	case UTF32LE:
		return utf32.UTF32(utf32.LittleEndian, utf32.UseBOM).NewDecoder()
	case UTF32BE:
		return utf32.UTF32(utf32.BigEndian, utf32.UseBOM).NewDecoder()
	default:
		return charmap.Windows1252.NewDecoder()
	}
}
