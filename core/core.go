// Package core has core logic for recommendation runs and catalog inspection.
package core

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mountjawa/peakfinder/core/algo"
	"github.com/mountjawa/peakfinder/internal/catalog"
	"github.com/mountjawa/peakfinder/internal/contract"
	"github.com/mountjawa/peakfinder/internal/outwriter"
	"github.com/mountjawa/peakfinder/schema"
)

// Env is the read-only state shared by every request: the loaded catalog and
// the fitted artifacts. It is built once at startup.
type Env struct {
	Catalog   []schema.Mountain
	Artifacts contract.Artifacts
}

// Recommend runs the scoring pipeline for one preference.
//
// The preference is validated against cfg.Bounds and projected into the
// feature space. The catalog is narrowed by province, the cfg.TopN most similar
// entries are kept, and those are re-ranked by the configured strategy and cut
// to cfg.ResultLimit. A province that matches nothing yields StatusNoMatch.
func Recommend(ctx context.Context, cfg *contract.Config, env Env, pref schema.Preference) (*schema.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := contract.ValidatePreference(pref, cfg.Bounds); err != nil {
		return nil, err
	}
	user, err := algo.Normalize(pref, env.Artifacts.Scaler(), env.Artifacts.Encoder())
	if err != nil {
		return nil, err
	}

	strategy := cfg.Strategy
	if strategy == "" {
		strategy = schema.BlendStrategy
	}
	rec := &schema.Recommendation{
		Status:          schema.StatusOK,
		Strategy:        strategy,
		Preference:      pref,
		UserVector:      user,
		CatalogSize:     len(env.Catalog),
		Results:         []schema.ScoredCandidate{},
		GeneratedAt:     time.Now(),
		ArtifactVersion: env.Artifacts.Fingerprint(),
	}

	filtered := catalog.FilterProvince(env.Catalog, pref.Province)
	rec.FilteredSize = len(filtered)
	if len(filtered) == 0 {
		rec.Status = schema.StatusNoMatch
		return rec, nil
	}

	candidates := algo.SelectCandidates(user, filtered, cfg.TopN)
	rec.CandidateCount = len(candidates)

	var ranked []schema.ScoredCandidate
	switch strategy {
	case schema.SimilarityStrategy:
		ranked = algo.RankBySimilarity(candidates)
	case schema.BlendStrategy:
		ranked, err = algo.Rank(candidates, env.Artifacts.Scorer(), cfg.Weights)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown rank strategy %q", strategy)
	}
	rec.Results = algo.Truncate(ranked, cfg.ResultLimit)
	return rec, nil
}

// ExecuteRecommend runs one recommendation, records it to the history store
// when one is configured, and prints the results.
func ExecuteRecommend(ctx context.Context, cfg *contract.Config, env Env, pref schema.Preference, mgr contract.HistoryManager) error {
	start := time.Now()
	if cfg.Output != schema.TextOut {
		ctx = withSuppressHeader(ctx)
	}
	if !shouldSuppressHeader(ctx) {
		logRecommendHeader(cfg, pref, len(env.Catalog))
	}

	rec, err := GetRecommendation(ctx, cfg, env, pref, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteRecommendation(rec, cfg, time.Since(start))
}

// GetRecommendation runs Recommend inside a tracked run. Tracking failures
// are logged and never fail the request. A rejected request closes its run
// with StatusRejected and no results.
func GetRecommendation(ctx context.Context, cfg *contract.Config, env Env, pref schema.Preference, mgr contract.HistoryManager) (*schema.Recommendation, error) {
	// --- 0. Begin Run Tracking (if configured) ---
	var runID int64
	var store contract.HistoryStore
	if mgr != nil {
		store = mgr.GetHistoryStore()
	}
	if store != nil {
		configParams := map[string]any{
			"catalog":           cfg.CatalogPath,
			"strategy":          string(cfg.Strategy),
			"top_n":             cfg.TopN,
			"result_limit":      cfg.ResultLimit,
			"weight_similarity": cfg.Weights.Similarity,
			"weight_model":      cfg.Weights.Model,
		}
		var err error
		runID, err = store.BeginRun(time.Now(), pref, configParams)
		if err != nil {
			contract.LogWarn("Run tracking initialization failed", err)
		}
	}

	// --- 1. Score and Rank ---
	rec, err := Recommend(ctx, cfg, env, pref)
	if err != nil {
		if store != nil && runID > 0 {
			if endErr := store.EndRun(runID, time.Now(), schema.StatusRejected, 0, env.Artifacts.Fingerprint()); endErr != nil {
				contract.LogWarn("Failed to finalize run tracking", endErr)
			}
		}
		return nil, err
	}

	// --- 2. End Run Tracking ---
	if store != nil && runID > 0 {
		for i, r := range rec.Results {
			if err := store.RecordResult(runID, i+1, r); err != nil {
				contract.LogWarn("Failed to record run result", err)
				break
			}
		}
		if err := store.EndRun(runID, time.Now(), rec.Status, len(rec.Results), rec.ArtifactVersion); err != nil {
			contract.LogWarn("Failed to finalize run tracking", err)
		}
	}
	return rec, nil
}

// logRecommendHeader prints a concise, 2-line header before the results.
func logRecommendHeader(cfg *contract.Config, pref schema.Preference, catalogSize int) {
	province := pref.Province
	if province == "" {
		province = schema.AllProvinces
	}
	fmt.Printf("🔎 Catalog: %s (%d mountains, strategy: %s)\n", filepath.Base(cfg.CatalogPath), catalogSize, cfg.Strategy)
	fmt.Printf("🥾 Preference: %s, %s, %gm, %gh, %gkm, +%gm\n",
		province, pref.Difficulty, pref.ElevationM, pref.DurationHours, pref.DistanceKM, pref.ElevationGainM)
}
