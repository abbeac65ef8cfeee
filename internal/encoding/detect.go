package encoding

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrBinary is returned for input that looks like binary data rather than text.
var ErrBinary = errors.New("content is not text")

const sniffLen = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// charsets maps chardet results to decoders. Charsets not listed fall back to Windows-1252.
var charsets = map[string]encoding.Encoding{
	"ISO-8859-1":   charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"ISO-8859-9":   charmap.ISO8859_9,
	"ISO-8859-15":  charmap.ISO8859_15,
	"windows-1256": charmap.Windows1256,
}

// NewUTF8Reader returns a reader that decodes r to UTF-8.
//
// A UTF-8 BOM is stripped and UTF-16 input with a BOM is decoded. Valid UTF-8 passes through
// unchanged; anything else is identified with chardet, falling back to Windows-1252.
// Input without a UTF-16 BOM that contains NUL bytes is rejected with ErrBinary.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, sniffLen)

	buf, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("peek: %w", err)
	}

	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		_, _ = br.Discard(len(bomUTF8))
		return br, nil
	case bytes.HasPrefix(buf, bomUTF16LE):
		return transform.NewReader(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()), nil
	case bytes.HasPrefix(buf, bomUTF16BE):
		return transform.NewReader(br, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()), nil
	}

	if bytes.IndexByte(buf, 0) >= 0 {
		return nil, ErrBinary
	}

	if utf8.Valid(trimPartialRune(buf)) {
		return br, nil
	}

	return transform.NewReader(br, detect(buf).NewDecoder()), nil
}

func detect(buf []byte) encoding.Encoding {
	result, err := chardet.NewTextDetector().DetectBest(buf)
	if err != nil {
		return charmap.Windows1252
	}

	if enc, ok := charsets[result.Charset]; ok {
		return enc
	}

	return charmap.Windows1252
}

// trimPartialRune drops a multi-byte sequence cut off by the end of the sniff window.
func trimPartialRune(buf []byte) []byte {
	if len(buf) < sniffLen {
		return buf
	}

	for i := 1; i < utf8.UTFMax && i <= len(buf); i++ {
		if utf8.RuneStart(buf[len(buf)-i]) {
			if !utf8.FullRune(buf[len(buf)-i:]) {
				return buf[:len(buf)-i]
			}

			break
		}
	}

	return buf
}
