package vcf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVariant_Classification(t *testing.T) {
	tests := []struct {
		ref, alt string
		snv      bool
		indel    bool
	}{
		{"A", "G", true, false},
		{"A", "G,T", true, false},
		{"A", "AT", false, true},
		{"AT", "A", false, true},
		{"A", "G,AT", false, true},
		{"AT", "GC", false, false},
		{"A", ".", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.ref+">"+tt.alt, func(t *testing.T) {
			v := &Variant{Ref: tt.ref, Alt: tt.alt}
			assert.Equal(t, tt.snv, v.IsSNV())
			assert.Equal(t, tt.indel, v.IsIndel())
		})
	}
}

func TestVariant_NormalizeChrom(t *testing.T) {
	assert.Equal(t, "12", (&Variant{Chrom: "chr12"}).NormalizeChrom())
	assert.Equal(t, "12", (&Variant{Chrom: "12"}).NormalizeChrom())
	assert.Equal(t, "X", (&Variant{Chrom: "chrX"}).NormalizeChrom())
	assert.Equal(t, "chr", (&Variant{Chrom: "chr"}).NormalizeChrom())
}

func TestVariant_Genotype(t *testing.T) {
	v := &Variant{
		Format:  []string{"GT", "VAF"},
		Samples: []string{"0/1:0.9", "1|2:0.5", "./.:.", "0/0", "1"},
	}

	gt, ok := v.Genotype(0)
	assert.True(t, ok)
	assert.Equal(t, []int{0, 1}, gt)

	gt, ok = v.Genotype(1)
	assert.True(t, ok)
	assert.Equal(t, []int{1, 2}, gt)

	_, ok = v.Genotype(2)
	assert.False(t, ok, "missing alleles")

	gt, ok = v.Genotype(4)
	assert.True(t, ok)
	assert.Equal(t, []int{1}, gt, "haploid")

	_, ok = v.Genotype(5)
	assert.False(t, ok, "out of range")

	assert.True(t, v.IsHomRef(3))
	assert.False(t, v.IsHomRef(0))
	assert.False(t, v.IsHomRef(2))

	vaf, ok := v.SampleField(1, "VAF")
	assert.True(t, ok)
	assert.Equal(t, "0.5", vaf)

	_, ok = v.SampleField(3, "VAF")
	assert.False(t, ok, "trailing fields may be dropped")

	noFormat := &Variant{Samples: []string{"0/1"}}
	_, ok = noFormat.Genotype(0)
	assert.False(t, ok)
}
