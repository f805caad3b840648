// Package encoding normalizes the text encoding of uploaded CSV files.
// Donor lists come out of old spreadsheet exports in whatever encoding the
// operator's machine produced, so the importer never assumes UTF-8.
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
	"golang.org/x/text/transform"
)

// peekSize is how much of the input the detector inspects.
const peekSize = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode wraps r in a reader that yields UTF-8. A BOM is honored first,
// then valid UTF-8 passes through untouched, then chardet gets a vote,
// and Windows-1252 is the fallback for everything else.
func Decode(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)

	head, err := br.Peek(peekSize)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("peek: %w", err)
	}

	switch {
	case bytes.HasPrefix(head, bomUTF8):
		_, _ = br.Discard(len(bomUTF8))
		return br, nil

	case bytes.HasPrefix(head, bomUTF16LE):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		return transform.NewReader(br, dec), nil

	case bytes.HasPrefix(head, bomUTF16BE):
		dec := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		return transform.NewReader(br, dec), nil
	}

	if utf8.Valid(head) {
		return br, nil
	}

	if t := sniff(head); t != nil {
		return transform.NewReader(br, t), nil
	}

	return transform.NewReader(br, charmap.Windows1252.NewDecoder()), nil
}

// sniff asks chardet for its best guess and maps the charsets we have
// actually seen in the wild onto decoders. Unknown guesses fall through
// to the caller's fallback.
func sniff(head []byte) transform.Transformer {
	result, err := chardet.NewTextDetector().DetectBest(head)
	if err != nil {
		return nil
	}

	switch result.Charset {
	case "UTF-8":
		return unicode.UTF8.NewDecoder()
	case "ISO-8859-1", "windows-1252":
		return charmap.Windows1252.NewDecoder()
	case "ISO-8859-9":
		return charmap.ISO8859_9.NewDecoder()
	default:
		return nil
	}
}
