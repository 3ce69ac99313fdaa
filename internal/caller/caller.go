// Package caller infers the most likely diploid genotype at a pileup position.
package caller

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/inodb/pilecall/internal/pileup"
)

// DefaultProbability is the per-base correctness probability used when no
// other value is configured (Phred 30).
const DefaultProbability = 0.999

var (
	// ErrInvalidProbability is returned by NewCaller for a probability
	// outside the open interval (0, 1).
	ErrInvalidProbability = errors.New("probability must be in the open interval (0, 1)")

	// ErrNilRecord is returned when Call receives no record.
	ErrNilRecord = errors.New("nil pileup record")
)

// Config holds variant calling settings.
type Config struct {
	Probability   float64 // fixed per-base correctness probability
	UseQuality    bool    // prefer the record's average base quality when present
	VariantsOnly  bool    // CallAll writes only positions with a called variant
	SkipMalformed bool    // CallAll logs and skips malformed lines instead of aborting
	Workers       int     // CallAll worker count, 0 means runtime.NumCPU()
}

// DefaultConfig returns the default calling configuration.
func DefaultConfig() Config {
	return Config{Probability: DefaultProbability}
}

// Caller calls genotypes from decoded pileup records.
type Caller struct {
	cfg    Config
	logger *zap.Logger
}

// NewCaller validates cfg and creates a caller.
func NewCaller(cfg Config) (*Caller, error) {
	if !(cfg.Probability > 0 && cfg.Probability < 1) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidProbability, cfg.Probability)
	}
	return &Caller{
		cfg:    cfg,
		logger: zap.NewNop(),
	}, nil
}

// SetLogger sets the logger for warning and debug messages.
func (c *Caller) SetLogger(l *zap.Logger) {
	c.logger = l
}

// Config returns the caller's configuration.
func (c *Caller) Config() Config {
	return c.cfg
}

// Call is the genotype call for one position. The source record is left
// untouched; Ref carries the possibly extended reference allele.
type Call struct {
	Record      *pileup.Record
	Ref         string   // reference allele spanning every alt
	Genotype    [2]int   // 0 = reference, 1/2 = first/second alt
	Alts        []string // nil when no variant was called
	AltKinds    []Kind   // kind of each entry in Alts
	VAF         float64  // posterior of the chosen hypothesis
	Probability float64  // correctness probability used for the call
}

// IsVariant reports whether any alternate allele was called.
func (c *Call) IsVariant() bool {
	return len(c.Alts) > 0
}

// IsIndel reports whether any called alt is an insertion or deletion.
func (c *Call) IsIndel() bool {
	for _, k := range c.AltKinds {
		if k != KindSNV {
			return true
		}
	}
	return false
}

// GenotypeString formats the genotype VCF-style, e.g. "0/1".
func (c *Call) GenotypeString() string {
	return strconv.Itoa(c.Genotype[0]) + "/" + strconv.Itoa(c.Genotype[1])
}

// Call calls the genotype for rec.
func (c *Caller) Call(rec *pileup.Record) (*Call, error) {
	if rec == nil {
		return nil, ErrNilRecord
	}
	return CallRecord(rec, c.probabilityFor(rec)), nil
}

// probabilityFor picks the correctness probability for rec: the record's
// average base quality when enabled and usable, otherwise the fixed value.
func (c *Caller) probabilityFor(rec *pileup.Record) float64 {
	if !c.cfg.UseQuality || !rec.HasQuality {
		return c.cfg.Probability
	}
	if rec.AvgQuality > 0 && rec.AvgQuality < 1 {
		return rec.AvgQuality
	}
	c.logger.Debug("average quality outside (0, 1), using fixed probability",
		zap.String("chrom", rec.Chrom),
		zap.Int64("pos", rec.Pos),
		zap.Float64("avg_quality", rec.AvgQuality))
	return c.cfg.Probability
}

// CallRecord calls the genotype for rec with correctness probability p.
// p must lie in (0, 1).
func CallRecord(rec *pileup.Record, p float64) *Call {
	call := &Call{
		Record:      rec,
		Ref:         rec.RefBase,
		VAF:         1.0,
		Probability: p,
	}

	first, second := TopTwo(Candidates(rec))
	if first.Count == 0 {
		return call
	}

	chosen := []Candidate{first}
	if second.Count > 0 {
		l := ComputeLikelihoods(first.Count, second.Count, p)
		h := l.Best()
		call.VAF = l.Posterior(h)
		switch h {
		case HomSecond:
			chosen = []Candidate{second}
		case Het:
			chosen = []Candidate{first, second}
		}
	}

	assignAlleles(call, chosen)
	return call
}

// Candidates enumerates every allele observed at rec in the fixed tie-break
// order: A, C, G, T, then insertions and deletions in decode order.
// Zero-count indels are dropped.
func Candidates(rec *pileup.Record) []Candidate {
	cands := make([]Candidate, 0, len(pileup.Nucleotides)+len(rec.Insertions)+len(rec.Deletions))
	for _, b := range pileup.Nucleotides {
		cands = append(cands, Candidate{Seq: string(b), Kind: KindSNV, Count: rec.Counts.Get(b)})
	}
	for _, ins := range rec.Insertions {
		if ins.Count > 0 {
			cands = append(cands, Candidate{Seq: ins.Bases, Kind: KindInsertion, Count: ins.Count})
		}
	}
	for _, del := range rec.Deletions {
		if del.Count > 0 {
			cands = append(cands, Candidate{Seq: del.Bases, Kind: KindDeletion, Count: del.Count})
		}
	}
	return cands
}

// TopTwo returns the two most observed candidates. Equal counts keep
// enumeration order. Missing candidates are returned zero-valued.
func TopTwo(cands []Candidate) (first, second Candidate) {
	sorted := make([]Candidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Count > sorted[j].Count
	})
	if len(sorted) > 0 {
		first = sorted[0]
	}
	if len(sorted) > 1 {
		second = sorted[1]
	}
	return first, second
}

// assignAlleles sets genotype, alts and reference from the chosen alleles.
func assignAlleles(call *Call, chosen []Candidate) {
	ref := call.Record.RefBase

	refPresent := false
	var alts []Candidate
	for _, cand := range chosen {
		if cand.Kind == KindSNV && cand.Seq == ref {
			refPresent = true
			continue
		}
		alts = append(alts, cand)
	}

	switch {
	case len(alts) == 0:
		return
	case refPresent:
		call.Genotype = [2]int{0, 1}
	case len(alts) == 1:
		call.Genotype = [2]int{1, 1}
	default:
		call.Genotype = [2]int{1, 2}
	}

	call.Ref, call.Alts = anchorAlleles(ref, alts)
	call.AltKinds = make([]Kind, len(alts))
	for i, a := range alts {
		call.AltKinds[i] = a.Kind
	}
}

// anchorAlleles rewrites alts so that the reference and every alt describe
// the same reference interval: insertions follow the reference base, and
// everything is extended over the longest called deletion.
func anchorAlleles(ref string, alts []Candidate) (string, []string) {
	var longestDel string
	for _, a := range alts {
		if a.Kind == KindDeletion && len(a.Seq) > len(longestDel) {
			longestDel = a.Seq
		}
	}

	out := make([]string, len(alts))
	for i, a := range alts {
		switch a.Kind {
		case KindInsertion:
			out[i] = ref + a.Seq + longestDel
		case KindDeletion:
			out[i] = ref + longestDel[len(a.Seq):]
		default:
			out[i] = a.Seq + longestDel
		}
	}
	return ref + longestDel, out
}
