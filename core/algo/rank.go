package algo

import (
	"fmt"
	"sort"

	"github.com/mountjawa/peakfinder/internal/contract"
	"github.com/mountjawa/peakfinder/schema"
	"gonum.org/v1/gonum/mat"
)

// FeatureMatrix stacks the candidate feature vectors into an N×5 matrix.
func FeatureMatrix(candidates []schema.Candidate) *mat.Dense {
	data := make([]float64, 0, len(candidates)*schema.FeatureCount)
	for _, c := range candidates {
		data = append(data, c.Features[:]...)
	}
	return mat.NewDense(len(candidates), schema.FeatureCount, data)
}

// Rank re-scores candidates with one batched scorer call and blends the model
// score with the similarity. Results are sorted by final score in descending
// order; ties keep the candidate order.
func Rank(candidates []schema.Candidate, scorer contract.Scorer, weights schema.BlendWeights) ([]schema.ScoredCandidate, error) {
	if len(candidates) == 0 {
		return []schema.ScoredCandidate{}, nil
	}
	if scorer == nil {
		return nil, schema.ErrScorerUnavailable
	}

	scores, err := scorer.PredictBatch(FeatureMatrix(candidates))
	if err != nil {
		return nil, fmt.Errorf("score candidates: %w", err)
	}
	if len(scores) != len(candidates) {
		return nil, fmt.Errorf("scorer returned %d scores for %d candidates", len(scores), len(candidates))
	}

	scored := make([]schema.ScoredCandidate, len(candidates))
	for i, c := range candidates {
		scored[i] = schema.ScoredCandidate{
			Candidate:  c,
			ModelScore: scores[i],
			FinalScore: Blend(c.Similarity, scores[i], weights),
		}
	}
	sortScored(scored)
	return scored, nil
}

// RankBySimilarity ranks candidates on similarity alone. ModelScore stays 0.
func RankBySimilarity(candidates []schema.Candidate) []schema.ScoredCandidate {
	scored := make([]schema.ScoredCandidate, len(candidates))
	for i, c := range candidates {
		scored[i] = schema.ScoredCandidate{Candidate: c, FinalScore: c.Similarity}
	}
	sortScored(scored)
	return scored
}

// Blend combines a similarity and a model score with the given weights.
func Blend(similarity, model float64, weights schema.BlendWeights) float64 {
	return similarity*weights.Similarity + model*weights.Model
}

// Truncate returns at most limit results. A non-positive limit keeps everything.
func Truncate(results []schema.ScoredCandidate, limit int) []schema.ScoredCandidate {
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}

func sortScored(scored []schema.ScoredCandidate) {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].FinalScore > scored[j].FinalScore
	})
}
