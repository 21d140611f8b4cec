package core

// streaming.go provides the reader chain between the raw source and the CSV
// parser:
//
//   - CountingReader: tracks raw bytes read and enforces the size limit
//   - BOMSkippingReader: removes a UTF-8 BOM left by Windows tools
//   - charset decoding through golang.org/x/text
//
// Use WrapForStreaming to apply all transforms in the correct order.

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultEncoding is the encoding the enrollment export is published in.
const DefaultEncoding = "cp949"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LookupEncoding resolves an encoding name. CP949 aliases map to the Korean
// decoder; other names are resolved with the WHATWG label index.
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "cp949", "ms949", "uhc", "euc-kr", "euckr":
		return korean.EUCKR, nil
	case "utf-8", "utf8":
		return unicode.UTF8, nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", name, err)
	}
	return enc, nil
}

// NewBOMSkippingReader returns a reader that drops a leading UTF-8 BOM.
func NewBOMSkippingReader(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// CountingReader wraps an io.Reader to track bytes read.
// When Limit is positive, reading past it fails with ErrTooLarge.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
	Limit     int64
}

// NewCountingReader creates a counting reader with an optional byte limit.
func NewCountingReader(r io.Reader, limit int64) *CountingReader {
	return &CountingReader{reader: r, Limit: limit}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	if r.Limit > 0 && r.BytesRead > r.Limit {
		return n, fmt.Errorf("%w: read more than %d bytes", ErrTooLarge, r.Limit)
	}
	return n, err
}

// WrapForStreaming builds the reader chain for a raw source.
//
// The order matters:
//  1. Counting wraps the raw bytes so the size limit applies to the file itself
//  2. BOM is stripped before decoding
//  3. Decoding to UTF-8 happens last; invalid sequences become U+FFFD
func WrapForStreaming(r io.Reader, limit int64, enc encoding.Encoding) (io.Reader, *CountingReader) {
	counter := NewCountingReader(r, limit)
	decoded := transform.NewReader(NewBOMSkippingReader(counter), enc.NewDecoder())
	return decoded, counter
}
