// Package encoding normalizes bank exports of unknown charset to UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	xenc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// sniffSize is how much of the input is inspected before choosing a decoder.
const sniffSize = 4096

var boms = []struct {
	mark []byte
	enc  xenc.Encoding
}{
	{[]byte{0xEF, 0xBB, 0xBF}, nil},
	{[]byte{0xFF, 0xFE}, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)},
	{[]byte{0xFE, 0xFF}, unicode.UTF16(unicode.BigEndian, unicode.UseBOM)},
}

// detected maps chardet charset names onto decoders. UTF-8 maps to nil.
var detected = map[string]xenc.Encoding{
	"UTF-8":        nil,
	"ISO-8859-1":   charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"ISO-8859-15":  charmap.ISO8859_15,
	"ISO-8859-9":   charmap.ISO8859_9,
}

// ToUTF8 returns a reader yielding r as UTF-8. A byte order mark wins, then valid UTF-8 is
// passed through, then chardet's best guess is used. Anything else is read as Windows-1252,
// which is what Portuguese banks export.
func ToUTF8(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	head, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("sniffing charset: %w", err)
	}

	for _, b := range boms {
		if !bytes.HasPrefix(head, b.mark) {
			continue
		}

		if b.enc == nil {
			_, _ = br.Discard(len(b.mark))
			return br, nil
		}

		return transform.NewReader(br, b.enc.NewDecoder()), nil
	}

	if utf8.Valid(head) {
		return br, nil
	}

	enc := xenc.Encoding(charmap.Windows1252)

	if guess, err := chardet.NewTextDetector().DetectBest(head); err == nil {
		if e, ok := detected[guess.Charset]; ok {
			if e == nil {
				return br, nil
			}

			enc = e
		}
	}

	return transform.NewReader(br, enc.NewDecoder()), nil
}
