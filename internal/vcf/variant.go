package vcf

import (
	"strconv"
	"strings"
)

// Variant represents a single record from a VCF file.
type Variant struct {
	Chrom   string                 // Chromosome name (e.g., "21", "chr21")
	Pos     int64                  // 1-based genomic position
	ID      string                 // Variant identifier (e.g., rs ID)
	Ref     string                 // Reference allele
	Alt     string                 // Alternate alleles, comma-separated; "." when none
	Qual    float64                // Quality score
	Filter  string                 // Filter status (PASS or filter name)
	Info    map[string]interface{} // INFO field key-value pairs
	Format  []string               // FORMAT keys (e.g., GT, VAF)
	Samples []string               // Raw sample columns, one per sample
}

// Alts returns the alternate alleles, or nil when ALT is ".".
func (v *Variant) Alts() []string {
	if v.Alt == "" || v.Alt == "." {
		return nil
	}
	return strings.Split(v.Alt, ",")
}

// IsSNV returns true if the reference and every alternate allele are single bases.
func (v *Variant) IsSNV() bool {
	alts := v.Alts()
	if len(v.Ref) != 1 || len(alts) == 0 {
		return false
	}
	for _, a := range alts {
		if len(a) != 1 {
			return false
		}
	}
	return true
}

// IsIndel returns true if any alternate allele differs in length from the reference.
func (v *Variant) IsIndel() bool {
	for _, a := range v.Alts() {
		if len(a) != len(v.Ref) {
			return true
		}
	}
	return false
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func (v *Variant) NormalizeChrom() string {
	if len(v.Chrom) > 3 && v.Chrom[:3] == "chr" {
		return v.Chrom[3:]
	}
	return v.Chrom
}

// SampleField returns the value of FORMAT key for the given sample index.
func (v *Variant) SampleField(sample int, key string) (string, bool) {
	if sample < 0 || sample >= len(v.Samples) {
		return "", false
	}
	idx := -1
	for i, k := range v.Format {
		if k == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", false
	}
	values := strings.Split(v.Samples[sample], ":")
	if idx >= len(values) {
		return "", false
	}
	return values[idx], true
}

// Genotype decodes the GT field of the given sample into allele indices.
// Returns false when GT is absent or any allele is missing (".").
func (v *Variant) Genotype(sample int) ([]int, bool) {
	gt, ok := v.SampleField(sample, "GT")
	if !ok {
		return nil, false
	}
	parts := strings.FieldsFunc(gt, func(r rune) bool { return r == '/' || r == '|' })
	if len(parts) == 0 {
		return nil, false
	}
	alleles := make([]int, len(parts))
	for i, p := range parts {
		a, err := strconv.Atoi(p)
		if err != nil {
			return nil, false
		}
		alleles[i] = a
	}
	return alleles, true
}

// IsHomRef reports whether the sample's genotype is called and all reference.
func (v *Variant) IsHomRef(sample int) bool {
	alleles, ok := v.Genotype(sample)
	if !ok {
		return false
	}
	for _, a := range alleles {
		if a != 0 {
			return false
		}
	}
	return true
}
