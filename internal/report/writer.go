package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Writer writes merged report lines: the original columns followed by
// the appended annotation columns.
type Writer struct {
	w    *bufio.Writer
	file *os.File
}

// NewWriter creates a writer to the given path, "-" meaning stdout.
func NewWriter(path string) (*Writer, error) {
	if path == "-" {
		return NewWriterTo(os.Stdout), nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return &Writer{w: bufio.NewWriter(file), file: file}, nil
}

// NewWriterTo creates a writer on an arbitrary io.Writer.
func NewWriterTo(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteHeader writes the output header line.
func (w *Writer) WriteHeader(columns, annotationColumns []string) error {
	all := make([]string, 0, len(columns)+len(annotationColumns))
	all = append(all, columns...)
	all = append(all, annotationColumns...)
	_, err := w.w.WriteString(strings.Join(all, "\t") + "\n")
	return err
}

// WriteRow writes one merged data line.
func (w *Writer) WriteRow(cells []string) error {
	_, err := w.w.WriteString(strings.Join(cells, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Close flushes buffered output and closes the file if one was opened.
func (w *Writer) Close() error {
	if err := w.w.Flush(); err != nil {
		return err
	}
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}
