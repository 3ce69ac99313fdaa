// Package concordance scores a call set against a truth call set at the
// position level.
package concordance

import (
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inodb/pilecall/internal/vcf"
)

// Source yields VCF records with sample columns.
type Source interface {
	Next() (*vcf.Variant, error)
	SampleNames() []string
}

// Options selects the sample column compared on each side.
type Options struct {
	TruthSample string // empty selects the first sample
	CallSample  string // empty selects the first sample
	Logger      *zap.Logger
}

// Counts is a confusion matrix.
type Counts struct {
	TP int
	FP int
	FN int
	TN int
}

func (c *Counts) merge(o Counts) {
	c.TP += o.TP
	c.FP += o.FP
	c.FN += o.FN
	c.TN += o.TN
}

// Precision is TP / (TP + FP).
func (c Counts) Precision() float64 { return ratio(c.TP, c.TP+c.FP) }

// Recall is TP / (TP + FN).
func (c Counts) Recall() float64 { return ratio(c.TP, c.TP+c.FN) }

// F1 is the harmonic mean of precision and recall.
func (c Counts) F1() float64 {
	p, r := c.Precision(), c.Recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// Accuracy is (TP + TN) over all sites.
func (c Counts) Accuracy() float64 { return ratio(c.TP+c.TN, c.TP+c.FP+c.FN+c.TN) }

// MCC is the Matthews correlation coefficient. Returns 0 when any marginal
// is empty.
func (c Counts) MCC() float64 {
	tp, fp, fn, tn := float64(c.TP), float64(c.FP), float64(c.FN), float64(c.TN)
	den := (tp + fp) * (tp + fn) * (tn + fp) * (tn + fn)
	if den == 0 {
		return 0
	}
	return (tp*tn - fp*fn) / math.Sqrt(den)
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// Report holds confusion counts split by variant class. Reference-only
// sites (TN) are single-base positions and are counted under SNV.
type Report struct {
	SNV   Counts
	Indel Counts
}

// Total sums the per-class counts.
func (r *Report) Total() Counts {
	var t Counts
	t.merge(r.SNV)
	t.merge(r.Indel)
	return t
}

type siteKey struct {
	chrom string
	pos   int64
}

type site struct {
	key     siteKey
	variant bool
	indel   bool
}

// Compare loads both call sets concurrently and classifies every call
// record against the truth sites. A truth site is a record whose genotype
// is called and not hom-ref. Truth sites the calls never visit are FN.
func Compare(truth, calls Source, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		truthSites map[siteKey]site
		callSites  []site
	)

	var eg errgroup.Group
	eg.Go(func() error {
		sites, err := load(truth, opts.TruthSample)
		if err != nil {
			return fmt.Errorf("load truth: %w", err)
		}
		truthSites = make(map[siteKey]site, len(sites))
		for _, s := range sites {
			if s.variant {
				truthSites[s.key] = s
			}
		}
		return nil
	})
	eg.Go(func() error {
		sites, err := load(calls, opts.CallSample)
		if err != nil {
			return fmt.Errorf("load calls: %w", err)
		}
		callSites = sites
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	logger.Debug("loaded call sets",
		zap.Int("truth_sites", len(truthSites)),
		zap.Int("call_records", len(callSites)))

	report := &Report{}
	visited := make(map[siteKey]bool, len(truthSites))
	for _, c := range callSites {
		t, inTruth := truthSites[c.key]
		if inTruth {
			visited[c.key] = true
		}
		switch {
		case c.variant && inTruth:
			report.bucket(t.indel).TP++
		case c.variant:
			report.bucket(c.indel).FP++
		case inTruth:
			report.bucket(t.indel).FN++
		default:
			report.SNV.TN++
		}
	}
	for k, t := range truthSites {
		if !visited[k] {
			report.bucket(t.indel).FN++
		}
	}

	return report, nil
}

func (r *Report) bucket(indel bool) *Counts {
	if indel {
		return &r.Indel
	}
	return &r.SNV
}

// load reads every record of src into sites. Records with a missing
// genotype are kept as non-variant sites.
func load(src Source, sample string) ([]site, error) {
	idx, err := vcf.ResolveSample(src.SampleNames(), sample)
	if err != nil {
		return nil, err
	}

	var sites []site
	for {
		v, err := src.Next()
		if err != nil {
			return nil, err
		}
		if v == nil {
			return sites, nil
		}
		alleles, ok := v.Genotype(idx)
		s := site{
			key:   siteKey{chrom: v.NormalizeChrom(), pos: v.Pos},
			indel: v.IsIndel(),
		}
		if ok && !v.IsHomRef(idx) {
			s.variant = true
			s.indel = calledIndel(v, alleles)
		}
		sites = append(sites, s)
	}
}

// calledIndel reports whether any allele in the genotype is an indel.
func calledIndel(v *vcf.Variant, alleles []int) bool {
	alts := v.Alts()
	for _, a := range alleles {
		if a > 0 && a <= len(alts) && len(alts[a-1]) != len(v.Ref) {
			return true
		}
	}
	return false
}

// FormatMetric renders a metric with four decimals.
func FormatMetric(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
