// Package fai reads samtools FASTA index (.fai) files.
package fai

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Contig is a reference sequence named in a FASTA index.
type Contig struct {
	Name   string
	Length int64
}

// Load reads the contigs listed in a .fai file, in file order.
func Load(path string) ([]Contig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fasta index: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse parses .fai content. Only the first two columns (name, length)
// are used; the offset and line-width columns are ignored.
func Parse(r io.Reader) ([]Contig, error) {
	var contigs []Contig
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, fmt.Errorf("fasta index line %d: expected at least 2 columns, found %d", lineNum, len(fields))
		}
		length, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("fasta index line %d: invalid length %q", lineNum, fields[1])
		}
		contigs = append(contigs, Contig{Name: fields[0], Length: length})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read fasta index: %w", err)
	}
	return contigs, nil
}
