package vcf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/hts/bgzf"
	"github.com/klauspost/compress/gzip"
)

// Parser reads variants from a VCF file.
type Parser struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	bgzfReader *bgzf.Reader
	lineNumber int
	header     *Header
}

// NewParser creates a new VCF parser for the given file. Plain, gzip and
// BGZF (tabix-style .vcf.gz) input are detected by content, not by file
// extension. Use "-" to read from stdin.
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}

	p, err := NewParserFromReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	p.file = file

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g., stdin).
// Compression is detected the same way as for files.
func NewParserFromReader(r io.Reader) (*Parser, error) {
	br := bufio.NewReader(r)
	p := &Parser{}

	// Sniff the first BGZF block header: gzip magic, FEXTRA flag and the
	// BC extra subfield at a fixed offset. A short peek means the input
	// is too small to be compressed anyway.
	magic, _ := br.Peek(18)
	switch {
	case isBGZF(magic):
		bz, err := bgzf.NewReader(br, 1)
		if err != nil {
			return nil, fmt.Errorf("open bgzf reader: %w", err)
		}
		p.bgzfReader = bz
		p.reader = bufio.NewReader(bz)
	case isGzip(magic):
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		p.gzipReader = gz
		p.reader = bufio.NewReader(gz)
	default:
		p.reader = br
	}

	if err := p.parseHeader(); err != nil {
		p.closeDecompressors()
		return nil, err
	}

	return p, nil
}

// isGzip reports whether buf starts with the gzip magic number.
func isGzip(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0x1f && buf[1] == 0x8b
}

// isBGZF reports whether buf starts with a BGZF block: a gzip member
// whose extra field leads with the "BC" block-size subfield.
func isBGZF(buf []byte) bool {
	return isGzip(buf) && len(buf) >= 14 && buf[3]&0x04 != 0 && buf[12] == 'B' && buf[13] == 'C'
}

// parseHeader reads the ## metadata lines and the #CHROM column line.
func (p *Parser) parseHeader() error {
	h := &Header{Infos: make(map[string]InfoHeader)}

	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("read header: %w", err)
		}
		if line == "" && err == io.EOF {
			return &ParseError{Line: p.lineNumber, Message: "no #CHROM header line found"}
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")

		switch {
		case strings.HasPrefix(line, "##"):
			h.Lines = append(h.Lines, line)
			h.parseMetaLine(line)

		case strings.HasPrefix(line, "#CHROM"):
			h.Lines = append(h.Lines, line)
			// Sample names follow the FORMAT column (index 9+).
			fields := strings.Split(line, "\t")
			if len(fields) > 9 {
				h.Samples = fields[9:]
			}
			p.header = h
			return nil

		default:
			return &ParseError{Line: p.lineNumber, Message: "expected #CHROM header line"}
		}
	}
}

// Next reads the next variant from the VCF file.
// Returns nil, nil when there are no more variants.
func (p *Parser) Next() (*Variant, error) {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read variant line: %w", err)
		}
		if line == "" && err == io.EOF {
			return nil, nil
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		return p.parseLine(line)
	}
}

// parseLine parses a single VCF data line into a Variant.
func (p *Parser) parseLine(line string) (*Variant, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 8 {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected at least 8 columns, found %d", len(fields)),
		}
	}

	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("invalid position: %s", fields[1]),
		}
	}

	// ALT "." means no alternate allele was called.
	var alts []string
	if fields[4] != "." {
		alts = strings.Split(fields[4], ",")
	}

	return &Variant{
		Chrom:  fields[0],
		Pos:    pos,
		ID:     fields[2],
		Ref:    fields[3],
		Alt:    alts,
		Qual:   fields[5],
		Filter: fields[6],
		Info:   parseInfo(fields[7]),
	}, nil
}

// parseInfo parses the INFO column into a map.
func parseInfo(info string) map[string]string {
	result := make(map[string]string)
	if info == "." {
		return result
	}

	for _, kv := range strings.Split(info, ";") {
		key, value, _ := strings.Cut(kv, "=")
		result[key] = value
	}

	return result
}

// Header returns the parsed VCF header metadata.
func (p *Parser) Header() *Header {
	return p.header
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and the underlying file.
func (p *Parser) Close() error {
	p.closeDecompressors()
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

func (p *Parser) closeDecompressors() {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.bgzfReader != nil {
		p.bgzfReader.Close()
	}
}

// ParseError represents an error during VCF parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcf parse error at line %d: %s", e.Line, e.Message)
}
