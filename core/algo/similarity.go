package algo

import (
	"math"
	"sort"

	"github.com/mountjawa/peakfinder/schema"
	"gonum.org/v1/gonum/floats"
)

// DefaultTopN is the number of candidates kept by SelectCandidates when the
// caller has no opinion.
const DefaultTopN = 20

// Cosine returns the cosine similarity of a and b in [-1, 1].
// A zero-norm vector on either side yields exactly 0.
func Cosine(a, b schema.Vector) float64 {
	na := floats.Norm(a[:], 2)
	nb := floats.Norm(b[:], 2)
	if na == 0 || nb == 0 {
		return 0
	}
	sim := floats.Dot(a[:], b[:]) / (na * nb)
	if math.IsNaN(sim) {
		return 0
	}
	return math.Max(-1, math.Min(1, sim))
}

// SelectCandidates scores every catalog entry against the user vector and returns
// the topN most similar, most similar first. Ties keep catalog order.
// It never returns more than min(topN, len(catalog)) entries.
func SelectCandidates(user schema.Vector, catalog []schema.Mountain, topN int) []schema.Candidate {
	candidates := make([]schema.Candidate, 0, len(catalog))
	if topN <= 0 {
		return candidates
	}
	for _, m := range catalog {
		candidates = append(candidates, schema.Candidate{
			Mountain:   m,
			Similarity: Cosine(user, m.Features),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})
	if len(candidates) > topN {
		return candidates[:topN]
	}
	return candidates
}
