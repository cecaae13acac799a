package parsers

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Supported CSV encodings.
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
	EncodingShiftJIS    = "shift-jis"
)

// SkipBOM skips a leading UTF-8 BOM.
func SkipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	bom := []byte{0xEF, 0xBB, 0xBF}
	peeked, err := br.Peek(3)
	if err != nil {
		return br
	}
	isBOM := true
	for i, b := range bom {
		if peeked[i] != b {
			isBOM = false
			break
		}
	}
	if isBOM {
		br.Discard(3)
	}
	return br
}

// Decode wraps r so that it yields UTF-8 text.
func Decode(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", EncodingUTF8, "utf8":
		return SkipBOM(r), nil
	case EncodingWindows1252, "cp1252", "latin1":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	case EncodingShiftJIS, "sjis", "shift_jis":
		return transform.NewReader(r, japanese.ShiftJIS.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported encoding: %s", encoding)
	}
}

// NewCSVReader returns a lenient CSV reader over the decoded input.
func NewCSVReader(r io.Reader, encoding string) (*csv.Reader, error) {
	decoded, err := Decode(r, encoding)
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(decoded)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader, nil
}
