package mcp

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mountjawa/peakfinder/core"
	"github.com/mountjawa/peakfinder/internal/catalog"
	"github.com/mountjawa/peakfinder/internal/contract"
	"github.com/mountjawa/peakfinder/internal/outwriter"
	"github.com/mountjawa/peakfinder/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	env     core.Env
	mgr     contract.HistoryManager
}

func (h *toolHandler) handleRecommendMountains(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if s := request.GetString("strategy", ""); s != "" {
		cfg.Strategy = schema.RankStrategy(s)
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = min(l, contract.MaxResultLimit)
	}

	pref := catalog.DefaultPreference(h.env.Catalog, catalog.Difficulties(h.env.Artifacts))
	pref.Province = request.GetString("province", pref.Province)
	pref.ElevationM = request.GetFloat("elevation_m", pref.ElevationM)
	pref.DurationHours = request.GetFloat("duration_hours", pref.DurationHours)
	pref.DistanceKM = request.GetFloat("distance_km", pref.DistanceKM)
	pref.ElevationGainM = request.GetFloat("elevation_gain", pref.ElevationGainM)
	pref.Difficulty = request.GetString("difficulty", pref.Difficulty)

	rec, err := core.GetRecommendation(ctx, cfg, h.env, pref, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("recommendation failed: %v", err)), nil
	}

	return jsonResult(outwriter.NewRecommendationView(rec)), nil
}

func (h *toolHandler) handleListProvinces(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(catalog.Provinces(h.env.Catalog)), nil
}

func (h *toolHandler) handleListDifficulties(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(catalog.Difficulties(h.env.Artifacts)), nil
}

// jsonResult encodes v as an indented text result, or a tool error when v
// cannot be encoded.
func jsonResult(v any) *mcp.CallToolResult {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(jsonData))
}
