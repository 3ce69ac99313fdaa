package pileup

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Reader reads records from a pileup file.
type Reader struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	opts       DecodeOptions
}

// NewReader opens a pileup file for reading.
// Supports both plain and gzipped (.pileup.gz) files; "-" reads stdin.
func NewReader(path string, opts DecodeOptions) (*Reader, error) {
	if path == "-" {
		return NewReaderFrom(os.Stdin, opts)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pileup file: %w", err)
	}

	r := &Reader{file: file, opts: opts}

	br := bufio.NewReader(file)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		file.Close()
		return nil, fmt.Errorf("read pileup file: %w", err)
	}

	// Check for gzip magic number (0x1f, 0x8b)
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		r.gzipReader, err = gzip.NewReader(br)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		r.reader = bufio.NewReader(r.gzipReader)
	} else {
		r.reader = br
	}

	return r, nil
}

// NewReaderFrom creates a reader over an already open stream.
func NewReaderFrom(rd io.Reader, opts DecodeOptions) (*Reader, error) {
	return &Reader{
		reader: bufio.NewReader(rd),
		opts:   opts,
	}, nil
}

// Next decodes the next record.
// Returns nil, nil when there are no more records. A malformed line returns
// a *ParseError; the reader stays usable and the following call moves on to
// the next line.
func (r *Reader) Next() (*Record, error) {
	for {
		line, err := r.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read pileup line: %w", err)
		}
		if err == io.EOF && line == "" {
			return nil, nil
		}
		r.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			if err == io.EOF {
				return nil, nil
			}
			continue
		}

		rec, decErr := Decode(line, r.opts)
		if decErr != nil {
			if pe, ok := decErr.(*ParseError); ok {
				pe.Line = r.lineNumber
			}
			return nil, decErr
		}
		return rec, nil
	}
}

// LineNumber returns the current line number being processed.
func (r *Reader) LineNumber() int {
	return r.lineNumber
}

// Close closes the reader and underlying file.
func (r *Reader) Close() error {
	if r.gzipReader != nil {
		r.gzipReader.Close()
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// ParseError represents a malformed pileup line.
type ParseError struct {
	Line    int // 1-based line number, 0 when decoding a standalone line
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("pileup parse error at line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("pileup parse error: %s", e.Message)
}
