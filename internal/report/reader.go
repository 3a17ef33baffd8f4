// Package report reads and writes the tab-delimited variant reports
// that VEP annotations are merged into.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Report column names the merge key is built from. Matching is exact
// and case-sensitive.
const (
	ColChrom = "CHROM"
	ColPos   = "POS"
	ColRef   = "REF"
	ColAlt   = "ALT"
)

// RequiredColumns lists the columns every report must carry.
var RequiredColumns = []string{ColChrom, ColPos, ColRef, ColAlt}

// Row is one data line of a report, with cells aligned to the header
// columns. Short rows arrive padded with empty cells.
type Row struct {
	Values  []string
	columns map[string]int
}

// Get returns the cell under the named column.
func (r *Row) Get(name string) (string, bool) {
	i, ok := r.columns[name]
	if !ok {
		return "", false
	}
	return r.Values[i], true
}

// Chrom returns the CHROM cell.
func (r *Row) Chrom() string {
	v, _ := r.Get(ColChrom)
	return v
}

// Pos returns the POS cell verbatim; positions are matched as text.
func (r *Row) Pos() string {
	v, _ := r.Get(ColPos)
	return v
}

// Ref returns the REF cell.
func (r *Row) Ref() string {
	v, _ := r.Get(ColRef)
	return v
}

// Alts splits the ALT cell on "," into the row's alternate alleles.
func (r *Row) Alts() []string {
	v, _ := r.Get(ColAlt)
	return strings.Split(v, ",")
}

// Reader reads rows from a tab-delimited report file.
type Reader struct {
	reader      *bufio.Reader
	file        *os.File
	gzipReader  *gzip.Reader
	lineNumber  int
	header      []string
	columns     map[string]int
	maxRequired int
}

// NewReader creates a reader for the given report file, "-" meaning
// stdin. Plain and gzip-compressed files are both accepted.
func NewReader(path string) (*Reader, error) {
	if path == "-" {
		return NewReaderFromReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report file: %w", err)
	}

	r, err := newReader(bufio.NewReader(file))
	if err != nil {
		file.Close()
		return nil, err
	}
	r.file = file
	return r, nil
}

// NewReaderFromReader creates a reader from an io.Reader (e.g. stdin).
func NewReaderFromReader(rd io.Reader) (*Reader, error) {
	return newReader(bufio.NewReader(rd))
}

func newReader(br *bufio.Reader) (*Reader, error) {
	r := &Reader{reader: br}

	magic, _ := br.Peek(2)
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		r.gzipReader = gz
		r.reader = bufio.NewReader(gz)
	}

	if err := r.parseHeader(); err != nil {
		return nil, err
	}
	return r, nil
}

// parseHeader reads the first line and indexes its column names.
func (r *Reader) parseHeader() error {
	line, err := r.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("read header: %w", err)
	}
	if line == "" && err == io.EOF {
		return &ParseError{Line: r.lineNumber, Message: "no header line found"}
	}
	r.lineNumber++

	line = strings.TrimRight(line, "\r\n")
	r.header = strings.Split(line, "\t")
	r.columns = make(map[string]int, len(r.header))
	for i, name := range r.header {
		r.columns[name] = i
	}

	for _, name := range RequiredColumns {
		i, ok := r.columns[name]
		if !ok {
			return &ParseError{
				Line:    r.lineNumber,
				Message: fmt.Sprintf("required column '%s' not found in header", name),
			}
		}
		if i > r.maxRequired {
			r.maxRequired = i
		}
	}
	return nil
}

// Next reads the next data row. Returns nil, nil when there are no
// more rows. Empty lines are skipped.
func (r *Reader) Next() (*Row, error) {
	for {
		line, err := r.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read report line: %w", err)
		}
		if line == "" && err == io.EOF {
			return nil, nil
		}
		r.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			if err == io.EOF {
				return nil, nil
			}
			continue
		}
		return r.parseLine(line)
	}
}

// parseLine splits one data line and aligns it with the header. Rows
// missing a key cell are rejected; rows missing only trailing optional
// cells are padded.
func (r *Reader) parseLine(line string) (*Row, error) {
	cells := strings.Split(line, "\t")
	if len(cells) > len(r.header) {
		return nil, &ParseError{
			Line:    r.lineNumber,
			Message: fmt.Sprintf("expected at most %d columns, found %d", len(r.header), len(cells)),
		}
	}
	if len(cells) <= r.maxRequired {
		return nil, &ParseError{
			Line:    r.lineNumber,
			Message: fmt.Sprintf("expected at least %d columns, found %d", r.maxRequired+1, len(cells)),
		}
	}
	for len(cells) < len(r.header) {
		cells = append(cells, "")
	}
	return &Row{Values: cells, columns: r.columns}, nil
}

// Header returns the report's column names in file order.
func (r *Reader) Header() []string {
	return r.header
}

// LineNumber returns the current line number being processed.
func (r *Reader) LineNumber() int {
	return r.lineNumber
}

// Close closes the reader and the underlying file.
func (r *Reader) Close() error {
	if r.gzipReader != nil {
		r.gzipReader.Close()
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// ParseError represents an error during report parsing with line
// context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("report parse error at line %d: %s", e.Line, e.Message)
}
