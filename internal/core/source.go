package core

// source.go provides the row sources the processor reads from.
//
// CSVSource streams a file without loading it into memory:
//
//   - A leading UTF-8 byte order mark from Windows programs is dropped
//   - Invalid UTF-8 is replaced with U+FFFD as it is read
//   - Bytes read are counted for progress reporting
//
// SliceSource serves records already in memory, which tests and callers
// with parsed spreadsheets use.

import (
	"encoding/csv"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Source yields raw records, header first, and io.EOF at the end. The
// returned slice may be reused by the next call. *csv.Reader satisfies it.
type Source interface {
	Read() ([]string, error)
}

// CountingReader wraps an io.Reader to track bytes read.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
	Total     int64 // 0 when unknown
}

// NewCountingReader creates a counting reader with an optional total size.
func NewCountingReader(r io.Reader, total int64) *CountingReader {
	return &CountingReader{reader: r, Total: total}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// Progress returns the read progress as a percentage (0-100).
// Returns 0 if total is unknown.
func (r *CountingReader) Progress() int {
	if r.Total <= 0 {
		return 0
	}
	return int(r.BytesRead * 100 / r.Total)
}

// WrapForStreaming counts raw bytes, then strips a BOM and repairs invalid
// UTF-8.
func WrapForStreaming(r io.Reader, totalSize int64) (io.Reader, *CountingReader) {
	counter := NewCountingReader(r, totalSize)
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	return transform.NewReader(counter, decoder), counter
}

// CSVSource reads records from CSV text.
type CSVSource struct {
	csv     *csv.Reader
	counter *CountingReader
}

// NewCSVSource returns a source over r. totalSize is used for progress and
// may be 0.
func NewCSVSource(r io.Reader, totalSize int64) *CSVSource {
	text, counter := WrapForStreaming(r, totalSize)
	cr := csv.NewReader(text)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	return &CSVSource{csv: cr, counter: counter}
}

// Read returns the next record.
func (s *CSVSource) Read() ([]string, error) {
	return s.csv.Read()
}

// BytesRead returns the number of raw bytes consumed so far.
func (s *CSVSource) BytesRead() int64 {
	return s.counter.BytesRead
}

// Progress returns the read progress as a percentage.
func (s *CSVSource) Progress() int {
	return s.counter.Progress()
}

// SliceSource serves in-memory records.
type SliceSource struct {
	records [][]string
	next    int
}

// NewSliceSource returns a source over records, the first being the header.
func NewSliceSource(records ...[]string) *SliceSource {
	return &SliceSource{records: records}
}

// Read returns the next record.
func (s *SliceSource) Read() ([]string, error) {
	if s.next >= len(s.records) {
		return nil, io.EOF
	}
	rec := s.records[s.next]
	s.next++
	return rec, nil
}
