// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mountjawa/peakfinder/core"
	"github.com/mountjawa/peakfinder/internal/contract"
	"github.com/mountjawa/peakfinder/schema"
)

// NewMCPServer initializes and configures the peakfinder MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, env core.Env, mgr contract.HistoryManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Peakfinder Recommendation Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		env:     env,
		mgr:     mgr,
	}

	// --- 1. Tool: recommend_mountains ---
	s.AddTool(mcp.NewTool("recommend_mountains",
		mcp.WithDescription("Recommend hiking mountains that match a hiker's preferences. Omitted numbers default to the catalog medians."),
		mcp.WithString("province", mcp.Description("Only consider mountains in this province (use list_provinces). Defaults to all provinces.")),
		mcp.WithNumber("elevation_m", mcp.Description("Preferred summit elevation in meters.")),
		mcp.WithNumber("duration_hours", mcp.Description("Preferred hiking duration in hours.")),
		mcp.WithNumber("distance_km", mcp.Description("Preferred trail distance in kilometers.")),
		mcp.WithNumber("elevation_gain", mcp.Description("Preferred elevation gain in meters.")),
		mcp.WithString("difficulty", mcp.Description("Difficulty level (use list_difficulties).")),
		mcp.WithString("strategy", mcp.Description("Ranking strategy. Defaults to the server's strategy."),
			mcp.Enum(string(schema.BlendStrategy), string(schema.SimilarityStrategy))),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleRecommendMountains)

	// --- 2. Tool: list_provinces ---
	s.AddTool(mcp.NewTool("list_provinces",
		mcp.WithDescription("List the provinces present in the mountain catalog."),
	), h.handleListProvinces)

	// --- 3. Tool: list_difficulties ---
	s.AddTool(mcp.NewTool("list_difficulties",
		mcp.WithDescription("List the difficulty levels the recommender understands."),
	), h.handleListDifficulties)

	return s
}

// StartMCPServer starts the peakfinder MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, env core.Env, mgr contract.HistoryManager) error {
	s := NewMCPServer(baseCfg, env, mgr)
	return server.ServeStdio(s)
}
