// Package pileup decodes samtools-style pileup lines into per-position records.
package pileup

// Nucleotides in the fixed order used for counting and candidate enumeration.
var Nucleotides = [4]byte{'A', 'C', 'G', 'T'}

// BaseCounts holds the number of reads supporting each nucleotide.
type BaseCounts struct {
	A int
	C int
	G int
	T int
}

// Get returns the count for base b. Unknown bases return 0.
func (c BaseCounts) Get(b byte) int {
	switch b {
	case 'A':
		return c.A
	case 'C':
		return c.C
	case 'G':
		return c.G
	case 'T':
		return c.T
	}
	return 0
}

// Total returns the sum of the four nucleotide counts.
func (c BaseCounts) Total() int {
	return c.A + c.C + c.G + c.T
}

func (c *BaseCounts) add(b byte) {
	switch b {
	case 'A':
		c.A++
	case 'C':
		c.C++
	case 'G':
		c.G++
	case 'T':
		c.T++
	}
}

// Indel is a distinct inserted or deleted sequence and the number of reads
// carrying it.
type Indel struct {
	Bases string
	Count int
}

// Record is one decoded pileup position.
type Record struct {
	Chrom     string // Chromosome name (e.g., "21", "chr21")
	Pos       int64  // 1-based genomic position
	RefBase   string // Reference base, uppercased
	ReadCount int    // Depth column of the pileup line

	Counts     BaseCounts
	Insertions []Indel // first-encounter order
	Deletions  []Indel // first-encounter order

	AvgQuality float64 // mean per-base correctness probability
	HasQuality bool    // whether AvgQuality was decoded

	ReadBases string // raw read-bases column
	Qualities string // raw base-quality column
}

// HasIndels reports whether any insertion or deletion was observed.
func (r *Record) HasIndels() bool {
	return len(r.Insertions) > 0 || len(r.Deletions) > 0
}
