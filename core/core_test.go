package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/mountjawa/peakfinder/internal/artifact"
	"github.com/mountjawa/peakfinder/internal/catalog"
	"github.com/mountjawa/peakfinder/internal/contract"
	"github.com/mountjawa/peakfinder/internal/history"
	"github.com/mountjawa/peakfinder/internal/outwriter"
	"github.com/mountjawa/peakfinder/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// threePeaksEnv builds a catalog of three mountains and a bundle fitted on
// them. The scorer prefers higher difficulty codes.
func threePeaksEnv(t *testing.T, withScorer bool) Env {
	t.Helper()
	scaler := artifact.ScalerParams{
		Kind:  artifact.MinMaxKind,
		Min:   []float64{-500.0 / 1600, -1 / 3.5, -1 / 4.5, -100.0 / 750},
		Scale: []float64{1.0 / 1600, 1 / 3.5, 1 / 4.5, 1.0 / 750},
	}
	var scorer *artifact.ScorerParams
	if withScorer {
		scorer = &artifact.ScorerParams{Layers: []artifact.LayerParams{{
			Weights:    [][]float64{{0}, {0}, {0}, {0}, {0.1}},
			Bias:       []float64{0.2},
			Activation: artifact.LinearActivation,
		}}}
	}
	bundle, err := artifact.New(scaler, []string{"Easy", "Moderate"}, scorer)
	require.NoError(t, err)

	mountains := []schema.Mountain{
		{Row: 0, Name: "A", Province: "Jawa Barat", ElevationM: 2000, DurationHours: 4, DistanceKM: 5, ElevationGainM: 800, Difficulty: "Moderate"},
		{Row: 1, Name: "B", Province: "Jawa Barat", ElevationM: 2100, DurationHours: 4.5, DistanceKM: 5.5, ElevationGainM: 850, Difficulty: "Moderate"},
		{Row: 2, Name: "C", Province: "Bali", ElevationM: 500, DurationHours: 1, DistanceKM: 1, ElevationGainM: 100, Difficulty: "Easy"},
	}
	for i := range mountains {
		v, err := catalog.Expected(mountains[i], bundle)
		require.NoError(t, err)
		mountains[i].Features = v
	}
	return Env{Catalog: mountains, Artifacts: bundle}
}

// fixtureEnv loads the sample catalog and bundle from testdata.
func fixtureEnv(t *testing.T) Env {
	t.Helper()
	bundle, err := artifact.Load(filepath.Join("..", "testdata", "bundle"), true)
	require.NoError(t, err)
	mountains, err := catalog.Load(filepath.Join("..", "testdata", "mountains.csv"), bundle)
	require.NoError(t, err)
	return Env{Catalog: mountains, Artifacts: bundle}
}

func testConfig() *contract.Config {
	return &contract.Config{
		CatalogPath: "mountains.csv",
		Strategy:    schema.BlendStrategy,
		TopN:        contract.DefaultTopN,
		ResultLimit: contract.DefaultResultLimit,
		Weights:     schema.DefaultBlendWeights(),
		Bounds:      contract.DefaultBounds(),
		Output:      schema.TextOut,
		Precision:   contract.DefaultPrecision,
		Width:       160,
	}
}

func prefA() schema.Preference {
	return schema.Preference{ElevationM: 2000, DurationHours: 4, DistanceKM: 5, ElevationGainM: 800, Difficulty: "Moderate"}
}

func names(results []schema.ScoredCandidate) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Name
	}
	return out
}

func TestRecommend_ThreePeaks(t *testing.T) {
	env := threePeaksEnv(t, true)
	cfg := testConfig()

	rec, err := Recommend(context.Background(), cfg, env, prefA())
	require.NoError(t, err)
	assert.Equal(t, schema.StatusOK, rec.Status)
	assert.Equal(t, schema.BlendStrategy, rec.Strategy)
	assert.Equal(t, []string{"A", "B", "C"}, names(rec.Results))
	assert.Equal(t, 3, rec.CatalogSize)
	assert.Equal(t, 3, rec.FilteredSize)
	assert.Equal(t, 3, rec.CandidateCount)
	assert.Equal(t, env.Artifacts.Fingerprint(), rec.ArtifactVersion)
	assert.Equal(t, env.Catalog[0].Features, rec.UserVector)

	a := rec.Results[0]
	assert.InDelta(t, 1.0, a.Similarity, 1e-12)
	assert.InDelta(t, 0.3, a.ModelScore, 1e-12)
	assert.InDelta(t, 0.6*a.Similarity+0.4*a.ModelScore, a.FinalScore, 1e-9)
	assert.Equal(t, 0.0, rec.Results[2].Similarity)

	for range 3 {
		again, err := Recommend(context.Background(), cfg, env, prefA())
		require.NoError(t, err)
		assert.Equal(t, rec.Results, again.Results)
	}
}

func TestRecommend_SimilarityStrategy(t *testing.T) {
	env := threePeaksEnv(t, false)
	cfg := testConfig()
	cfg.Strategy = schema.SimilarityStrategy

	rec, err := Recommend(context.Background(), cfg, env, prefA())
	require.NoError(t, err)
	assert.Equal(t, schema.SimilarityStrategy, rec.Strategy)
	assert.Equal(t, []string{"A", "B", "C"}, names(rec.Results))
	for _, r := range rec.Results {
		assert.Equal(t, 0.0, r.ModelScore)
		assert.Equal(t, r.Similarity, r.FinalScore)
	}
}

func TestRecommend_ScorerScoresCandidatesInOneBatch(t *testing.T) {
	env := threePeaksEnv(t, false)
	scorer := &artifact.MockScorer{}
	scorer.On("PredictBatch", mock.MatchedBy(func(x *mat.Dense) bool {
		r, c := x.Dims()
		return r == 3 && c == schema.FeatureCount
	})).Return([]float64{0, 0, 2.5}, nil).Once()
	env.Artifacts = artifact.WithScorer(env.Artifacts, scorer)

	rec, err := Recommend(context.Background(), testConfig(), env, prefA())
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, names(rec.Results))
	assert.InDelta(t, 1.0, rec.Results[0].FinalScore, 1e-12)
	scorer.AssertExpectations(t)
}

func TestRecommend_ScorerFailure(t *testing.T) {
	env := threePeaksEnv(t, false)
	scorer := &artifact.MockScorer{}
	scorer.On("PredictBatch", mock.Anything).Return(nil, errors.New("model exploded"))
	env.Artifacts = artifact.WithScorer(env.Artifacts, scorer)

	_, err := Recommend(context.Background(), testConfig(), env, prefA())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model exploded")
	scorer.AssertNumberOfCalls(t, "PredictBatch", 1)
}

func TestRecommend_EmptyStrategyIsBlend(t *testing.T) {
	env := threePeaksEnv(t, true)
	cfg := testConfig()
	cfg.Strategy = ""

	rec, err := Recommend(context.Background(), cfg, env, prefA())
	require.NoError(t, err)
	assert.Equal(t, schema.BlendStrategy, rec.Strategy)
	assert.Greater(t, rec.Results[0].ModelScore, 0.0)
}

func TestRecommend_BlendWithoutScorer(t *testing.T) {
	env := threePeaksEnv(t, false)

	_, err := Recommend(context.Background(), testConfig(), env, prefA())
	assert.ErrorIs(t, err, schema.ErrScorerUnavailable)
}

func TestRecommend_ProvinceFilter(t *testing.T) {
	env := threePeaksEnv(t, true)
	cfg := testConfig()

	pref := prefA()
	pref.Province = "jawa barat"
	rec, err := Recommend(context.Background(), cfg, env, pref)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, names(rec.Results))
	assert.Equal(t, 2, rec.FilteredSize)

	pref.Province = schema.AllProvinces
	rec, err = Recommend(context.Background(), cfg, env, pref)
	require.NoError(t, err)
	assert.Len(t, rec.Results, 3)
}

func TestRecommend_NoMatch(t *testing.T) {
	env := threePeaksEnv(t, true)
	pref := prefA()
	pref.Province = "Papua"

	rec, err := Recommend(context.Background(), testConfig(), env, pref)
	require.NoError(t, err)
	assert.Equal(t, schema.StatusNoMatch, rec.Status)
	assert.True(t, rec.NoMatch())
	assert.NotNil(t, rec.Results)
	assert.Empty(t, rec.Results)
	assert.Equal(t, 0, rec.FilteredSize)
	assert.Equal(t, 3, rec.CatalogSize)
}

func TestRecommend_EmptyCatalog(t *testing.T) {
	env := threePeaksEnv(t, true)
	env.Catalog = nil

	rec, err := Recommend(context.Background(), testConfig(), env, prefA())
	require.NoError(t, err)
	assert.Equal(t, schema.StatusNoMatch, rec.Status)
	assert.Empty(t, rec.Results)
}

func TestRecommend_Limits(t *testing.T) {
	env := threePeaksEnv(t, true)
	cfg := testConfig()
	cfg.TopN = 2
	cfg.ResultLimit = 1

	rec, err := Recommend(context.Background(), cfg, env, prefA())
	require.NoError(t, err)
	assert.Equal(t, 2, rec.CandidateCount)
	assert.Equal(t, []string{"A"}, names(rec.Results))
}

func TestRecommend_Rejections(t *testing.T) {
	env := threePeaksEnv(t, true)

	tests := []struct {
		name    string
		mutate  func(*schema.Preference)
		wantErr error
	}{
		{"unknown difficulty", func(p *schema.Preference) { p.Difficulty = "Hard" }, schema.ErrUnknownCategory},
		{"missing difficulty", func(p *schema.Preference) { p.Difficulty = " " }, schema.ErrInvalidPreference},
		{"elevation out of bounds", func(p *schema.Preference) { p.ElevationM = 9000 }, schema.ErrInvalidPreference},
		{"negative gain", func(p *schema.Preference) { p.ElevationGainM = -1 }, schema.ErrInvalidPreference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pref := prefA()
			tt.mutate(&pref)
			rec, err := Recommend(context.Background(), testConfig(), env, pref)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, rec)
		})
	}
}

func TestRecommend_UnknownStrategy(t *testing.T) {
	env := threePeaksEnv(t, true)
	cfg := testConfig()
	cfg.Strategy = "random"

	_, err := Recommend(context.Background(), cfg, env, prefA())
	assert.ErrorContains(t, err, `unknown rank strategy "random"`)
}

func TestRecommend_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Recommend(ctx, testConfig(), threePeaksEnv(t, true), prefA())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecommend_Fixture(t *testing.T) {
	env := fixtureEnv(t)
	cfg := testConfig()
	pref := schema.Preference{Province: "Jawa Barat", ElevationM: 2958, DurationHours: 7, DistanceKM: 9, ElevationGainM: 1500, Difficulty: "Moderate"}

	rec, err := Recommend(context.Background(), cfg, env, pref)
	require.NoError(t, err)
	assert.Equal(t, 15, rec.CatalogSize)
	assert.Equal(t, 3, rec.FilteredSize)
	require.Len(t, rec.Results, 3)
	for i := 1; i < len(rec.Results); i++ {
		assert.GreaterOrEqual(t, rec.Results[i-1].FinalScore, rec.Results[i].FinalScore)
	}
	for _, r := range rec.Results {
		assert.Equal(t, "Jawa Barat", r.Province)
		assert.InDelta(t, 0.6*r.Similarity+0.4*r.ModelScore, r.FinalScore, 1e-9)
	}

	var gede *schema.ScoredCandidate
	for i := range rec.Results {
		if rec.Results[i].Name == "Gunung Gede" {
			gede = &rec.Results[i]
		}
	}
	require.NotNil(t, gede)
	assert.InDelta(t, 1.0, gede.Similarity, 1e-9)
}

func jsonConfig(t *testing.T) (*contract.Config, string) {
	t.Helper()
	cfg := testConfig()
	cfg.Output = schema.JSONOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "out.json")
	return cfg, cfg.OutputFile
}

func readView(t *testing.T, path string) outwriter.RecommendationView {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var view outwriter.RecommendationView
	require.NoError(t, json.Unmarshal(data, &view))
	return view
}

// TestExecuteRecommend tests the recommendation entry point without run tracking.
func TestExecuteRecommend(t *testing.T) {
	env := threePeaksEnv(t, true)
	cfg, out := jsonConfig(t)

	mockMgr := &history.MockHistoryManager{}
	mockMgr.On("GetHistoryStore").Return(nil) // No run tracking for test

	require.NoError(t, ExecuteRecommend(context.Background(), cfg, env, prefA(), mockMgr))
	mockMgr.AssertExpectations(t)

	view := readView(t, out)
	assert.Equal(t, schema.StatusOK, view.Status)
	require.Len(t, view.Results, 3)
	assert.Equal(t, 1, view.Results[0].Rank)
	assert.Equal(t, "A", view.Results[0].Name)
	assert.NotEmpty(t, view.Results[0].MapsURL)
	assert.Equal(t, catalog.PlaceholderImage, view.Results[0].ImageURL)
}

// TestExecuteRecommend_RecordsRun tests that every result is stored with its rank.
func TestExecuteRecommend_RecordsRun(t *testing.T) {
	env := threePeaksEnv(t, true)
	cfg, _ := jsonConfig(t)
	pref := prefA()

	mockStore := &history.MockHistoryStore{}
	mockStore.On("BeginRun", mock.Anything, pref, mock.MatchedBy(func(params map[string]any) bool {
		return params["strategy"] == "blend" && params["top_n"] == contract.DefaultTopN
	})).Return(int64(7), nil)
	mockStore.On("RecordResult", int64(7), 1, mock.MatchedBy(func(r schema.ScoredCandidate) bool { return r.Name == "A" })).Return(nil)
	mockStore.On("RecordResult", int64(7), 2, mock.MatchedBy(func(r schema.ScoredCandidate) bool { return r.Name == "B" })).Return(nil)
	mockStore.On("RecordResult", int64(7), 3, mock.MatchedBy(func(r schema.ScoredCandidate) bool { return r.Name == "C" })).Return(nil)
	mockStore.On("EndRun", int64(7), mock.Anything, schema.StatusOK, 3, env.Artifacts.Fingerprint()).Return(nil)

	mockMgr := &history.MockHistoryManager{}
	mockMgr.On("GetHistoryStore").Return(mockStore)

	require.NoError(t, ExecuteRecommend(context.Background(), cfg, env, pref, mockMgr))
	mockStore.AssertExpectations(t)
	mockMgr.AssertExpectations(t)
}

// TestExecuteRecommend_NoMatchRun tests that a run with no match is closed with its status.
func TestExecuteRecommend_NoMatchRun(t *testing.T) {
	env := threePeaksEnv(t, true)
	cfg, out := jsonConfig(t)
	pref := prefA()
	pref.Province = "Papua"

	mockStore := &history.MockHistoryStore{}
	mockStore.On("BeginRun", mock.Anything, pref, mock.Anything).Return(int64(3), nil)
	mockStore.On("EndRun", int64(3), mock.Anything, schema.StatusNoMatch, 0, mock.Anything).Return(nil)

	mockMgr := &history.MockHistoryManager{}
	mockMgr.On("GetHistoryStore").Return(mockStore)

	require.NoError(t, ExecuteRecommend(context.Background(), cfg, env, pref, mockMgr))
	mockStore.AssertExpectations(t)
	mockStore.AssertNotCalled(t, "RecordResult", mock.Anything, mock.Anything, mock.Anything)

	view := readView(t, out)
	assert.Equal(t, schema.StatusNoMatch, view.Status)
	assert.Equal(t, `No mountains found in province "Papua".`, view.Message)
	assert.NotNil(t, view.Results)
}

// TestExecuteRecommend_TrackingFailure tests that a failed BeginRun does not fail the request.
func TestExecuteRecommend_TrackingFailure(t *testing.T) {
	env := threePeaksEnv(t, true)
	cfg, out := jsonConfig(t)

	mockStore := &history.MockHistoryStore{}
	mockStore.On("BeginRun", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), assert.AnError)

	mockMgr := &history.MockHistoryManager{}
	mockMgr.On("GetHistoryStore").Return(mockStore)

	require.NoError(t, ExecuteRecommend(context.Background(), cfg, env, prefA(), mockMgr))
	mockStore.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Len(t, readView(t, out).Results, 3)
}

// TestExecuteRecommend_InvalidPreference tests that rejected input leaves the run open.
func TestExecuteRecommend_InvalidPreference(t *testing.T) {
	env := threePeaksEnv(t, true)
	cfg, out := jsonConfig(t)
	pref := prefA()
	pref.Difficulty = "Extreme"

	mockStore := &history.MockHistoryStore{}
	mockStore.On("BeginRun", mock.Anything, pref, mock.Anything).Return(int64(9), nil)
	mockStore.On("EndRun", int64(9), mock.Anything, schema.StatusRejected, 0, env.Artifacts.Fingerprint()).Return(nil)

	mockMgr := &history.MockHistoryManager{}
	mockMgr.On("GetHistoryStore").Return(mockStore)

	err := ExecuteRecommend(context.Background(), cfg, env, pref, mockMgr)
	assert.ErrorIs(t, err, schema.ErrUnknownCategory)
	mockStore.AssertExpectations(t)
	mockStore.AssertNotCalled(t, "RecordResult", mock.Anything, mock.Anything, mock.Anything)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "nothing is written for a rejected request")
}

// TestGetRecommendation_NilManager tests that surfaces without run tracking can pass no manager.
func TestGetRecommendation_NilManager(t *testing.T) {
	rec, err := GetRecommendation(context.Background(), testConfig(), threePeaksEnv(t, true), prefA(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, names(rec.Results))
}
