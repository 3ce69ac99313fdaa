package caller

import "math"

// Kind classifies a candidate allele.
type Kind int

const (
	KindSNV Kind = iota
	KindInsertion
	KindDeletion
)

func (k Kind) String() string {
	switch k {
	case KindSNV:
		return "SNV"
	case KindInsertion:
		return "INS"
	case KindDeletion:
		return "DEL"
	}
	return "UNKNOWN"
}

// Candidate is an observed allele at a position.
type Candidate struct {
	Seq   string
	Kind  Kind
	Count int
}

// Hypothesis is one of the competing genotype explanations for the two most
// observed alleles.
type Hypothesis int

const (
	HomFirst  Hypothesis = iota // homozygous for the most observed allele
	HomSecond                   // homozygous for the second allele
	Het                         // heterozygous first/second
)

func (h Hypothesis) String() string {
	switch h {
	case HomFirst:
		return "hom_first"
	case HomSecond:
		return "hom_second"
	case Het:
		return "het"
	}
	return "unknown"
}

// Likelihoods holds natural-log, unnormalized likelihoods of the three
// hypotheses. Working in log space keeps deep positions from underflowing.
type Likelihoods struct {
	HomFirst  float64
	HomSecond float64
	Het       float64
}

// ComputeLikelihoods evaluates the hypotheses for c1 reads of the first
// allele and c2 reads of the second under correctness probability p:
//
//	HomFirst  = p^c1 (1-p)^c2
//	HomSecond = (1-p)^c1 p^c2
//	Het       = 0.5^(c1+c2)
func ComputeLikelihoods(c1, c2 int, p float64) Likelihoods {
	k, rest := float64(c1), float64(c2)
	lp, lq := math.Log(p), math.Log1p(-p)
	return Likelihoods{
		HomFirst:  k*lp + rest*lq,
		HomSecond: k*lq + rest*lp,
		Het:       (k + rest) * math.Log(0.5),
	}
}

// Best returns the most likely hypothesis. Ties resolve to HomFirst, then
// HomSecond, then Het.
func (l Likelihoods) Best() Hypothesis {
	if l.HomFirst >= l.HomSecond && l.HomFirst >= l.Het {
		return HomFirst
	}
	if l.HomSecond >= l.HomFirst && l.HomSecond >= l.Het {
		return HomSecond
	}
	return Het
}

// Posterior returns the probability of h under a flat prior over the three
// hypotheses.
func (l Likelihoods) Posterior(h Hypothesis) float64 {
	var chosen float64
	switch h {
	case HomFirst:
		chosen = l.HomFirst
	case HomSecond:
		chosen = l.HomSecond
	default:
		chosen = l.Het
	}

	m := math.Max(l.HomFirst, math.Max(l.HomSecond, l.Het))
	sum := math.Exp(l.HomFirst-m) + math.Exp(l.HomSecond-m) + math.Exp(l.Het-m)
	return math.Exp(chosen-m) / sum
}
