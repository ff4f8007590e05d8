package fileio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// ReadDelimited reads comma-, semicolon- or tab-separated text. The delimiter is taken
// from the first line; rows the CSV reader rejects are dropped, not fatal.
func ReadDelimited(r io.Reader) ([][]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text, _, err := DecodeText(raw)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(text)) == 0 {
		return nil, nil
	}

	cr := csv.NewReader(bytes.NewReader(text))
	cr.Comma = SniffDelimiter(firstLine(text))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = cr.Comma != '\t'

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				continue
			}
			return nil, err
		}
		for i := range rec {
			rec[i] = strings.Trim(strings.TrimSpace(rec[i]), `"`)
		}
		rows = append(rows, rec)
	}
	return dropEmptyRows(rows), nil
}

// SniffDelimiter returns ';' when the header line contains one, then tab, and
// ',' otherwise.
func SniffDelimiter(header string) rune {
	switch {
	case strings.Contains(header, ";"):
		return ';'
	case strings.Contains(header, "\t"):
		return '\t'
	}
	return ','
}

// DecodeText converts an upload to UTF-8. Valid UTF-8 passes through (BOM
// stripped); anything else is decoded with the charset chardet reports.
func DecodeText(b []byte) ([]byte, string, error) {
	b = bytes.TrimPrefix(b, bomUTF8)
	if utf8.Valid(b) {
		return b, "utf-8", nil
	}

	cs := "iso-8859-1"
	if det, err := chardet.NewTextDetector().DetectBest(b); err == nil && det != nil {
		cs = strings.ToLower(det.Charset)
	}

	var dec *encoding.Decoder
	switch cs {
	case "windows-1251", "cp1251":
		dec = charmap.Windows1251.NewDecoder()
	case "koi8-r":
		dec = charmap.KOI8R.NewDecoder()
	case "windows-1252":
		dec = charmap.Windows1252.NewDecoder()
	case "iso-8859-15":
		dec = charmap.ISO8859_15.NewDecoder()
	default:
		cs = "iso-8859-1"
		dec = charmap.ISO8859_1.NewDecoder()
	}
	out, err := dec.Bytes(b)
	if err != nil {
		return nil, cs, err
	}
	return out, cs, nil
}

func firstLine(b []byte) string {
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
