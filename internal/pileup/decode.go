package pileup

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// minFields is the number of whitespace-separated columns in a pileup line:
// chromosome, position, reference base, depth, read bases, base qualities.
const minFields = 6

// DecodeOptions controls optional decoding work.
type DecodeOptions struct {
	// Quality enables decoding of the base-quality column into AvgQuality.
	Quality bool
}

// Decode parses a single pileup line into a Record.
// Malformed lines return a *ParseError without line context; Reader fills it in.
func Decode(line string, opts DecodeOptions) (*Record, error) {
	fields := strings.Fields(line)
	if len(fields) < minFields {
		return nil, &ParseError{
			Message: fmt.Sprintf("expected at least %d columns, found %d", minFields, len(fields)),
		}
	}

	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, &ParseError{Message: fmt.Sprintf("invalid position: %s", fields[1])}
	}
	depth, err := strconv.Atoi(fields[3])
	if err != nil {
		return nil, &ParseError{Message: fmt.Sprintf("invalid read depth: %s", fields[3])}
	}

	rec := &Record{
		Chrom:     fields[0],
		Pos:       pos,
		RefBase:   strings.ToUpper(fields[2]),
		ReadCount: depth,
		ReadBases: fields[4],
		Qualities: fields[5],
	}

	bases := NormalizeBases(fields[4])
	stripped, ins, dels, err := ExtractIndels(bases)
	if err != nil {
		return nil, err
	}
	rec.Insertions = ins
	rec.Deletions = dels
	rec.Counts = countBases(stripped, rec.RefBase)

	if opts.Quality {
		rec.AvgQuality = AverageQuality(fields[5])
		rec.HasQuality = true
	}

	return rec, nil
}

// NormalizeBases uppercases a read-bases column, rewrites the reverse-strand
// match marker ',' as '.', and drops read start markers (^ plus its mapping
// quality character), read end markers ($) and deleted-base placeholders (*).
func NormalizeBases(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '^':
			// The mapping quality character may be any printable byte,
			// including '+', '-' and digits.
			i++
		case '$', '*':
		case ',':
			b.WriteByte('.')
		default:
			if 'a' <= c && c <= 'z' {
				c -= 'a' - 'A'
			}
			b.WriteByte(c)
		}
	}
	return b.String()
}

// ExtractIndels scans normalized read bases for indel markers of the form
// sign, decimal length, then exactly that many bases. It returns the input
// with every marker removed together with the distinct insertions and
// deletions in first-encounter order.
func ExtractIndels(s string) (stripped string, insertions, deletions []Indel, err error) {
	var b strings.Builder
	b.Grow(len(s))

	insIdx := make(map[string]int)
	delIdx := make(map[string]int)

	for i := 0; i < len(s); {
		sign := s[i]
		if sign != '+' && sign != '-' {
			b.WriteByte(sign)
			i++
			continue
		}

		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j == i+1 {
			return "", nil, nil, &ParseError{
				Message: fmt.Sprintf("indel marker %q at offset %d has no length", sign, i),
			}
		}
		n, convErr := strconv.Atoi(s[i+1 : j])
		if convErr != nil || n == 0 {
			return "", nil, nil, &ParseError{
				Message: fmt.Sprintf("invalid indel length %q at offset %d", s[i+1:j], i),
			}
		}
		if n > len(s)-j {
			return "", nil, nil, &ParseError{
				Message: fmt.Sprintf("indel at offset %d declares %d bases, only %d available", i, n, len(s)-j),
			}
		}
		seq := s[j : j+n]
		for k := 0; k < len(seq); k++ {
			if !isLetter(seq[k]) {
				return "", nil, nil, &ParseError{
					Message: fmt.Sprintf("invalid indel base %q at offset %d", seq[k], j+k),
				}
			}
		}

		if sign == '+' {
			insertions = tally(insertions, insIdx, seq)
		} else {
			deletions = tally(deletions, delIdx, seq)
		}
		i = j + n
	}

	return b.String(), insertions, deletions, nil
}

// tally increments the count for seq, appending it on first sight.
func tally(indels []Indel, idx map[string]int, seq string) []Indel {
	if i, ok := idx[seq]; ok {
		indels[i].Count++
		return indels
	}
	idx[seq] = len(indels)
	return append(indels, Indel{Bases: seq, Count: 1})
}

// countBases tallies A/C/G/T in indel-free normalized bases, reading '.' as
// the reference base.
func countBases(bases, ref string) BaseCounts {
	var match byte
	if len(ref) == 1 {
		match = ref[0]
	}

	var counts BaseCounts
	for i := 0; i < len(bases); i++ {
		c := bases[i]
		if c == '.' {
			c = match
		}
		counts.add(c)
	}
	return counts
}

// PhredCorrectness converts a Phred+33 quality character into the
// probability that the base call is correct.
func PhredCorrectness(q byte) float64 {
	return 1 - math.Pow(10, -float64(int(q)-33)/10)
}

// AverageQuality returns the mean correctness probability over a quality
// column. An empty column yields 0.
func AverageQuality(quals string) float64 {
	if len(quals) == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < len(quals); i++ {
		sum += PhredCorrectness(quals[i])
	}
	return sum / float64(len(quals))
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isLetter(c byte) bool {
	return ('A' <= c && c <= 'Z') || ('a' <= c && c <= 'z')
}
