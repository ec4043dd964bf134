package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"spotivol/internal/volume"
)

// handleSetVolume applies the requested volume. A failed apply is reported
// as a tool error carrying the user-facing message.
func (s *Server) handleSetVolume(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	percent, err := request.RequireFloat("percent")
	if err != nil {
		return mcp.NewToolResultError("percent argument is required"), nil
	}

	if math.IsNaN(percent) {
		return mcp.NewToolResultError("percent must be a number between 0 and 100"), nil
	}

	result := s.controller.SetVolume(ctx, volume.ClampFloat(percent), "mcp")
	return volumeResult(result), nil
}

func (s *Server) handleApplyProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name argument is required"), nil
	}

	result, err := s.controller.ApplyProfile(ctx, name, "mcp")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return volumeResult(result), nil
}

type profileInfo struct {
	Name   string `json:"name"`
	Volume int    `json:"volume"`
	Hotkey string `json:"hotkey,omitempty"`
}

func (s *Server) handleListProfiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profiles := s.controller.Profiles()
	infos := make([]profileInfo, 0, len(profiles))
	for _, p := range profiles {
		infos = append(infos, profileInfo{Name: p.Name, Volume: p.Volume, Hotkey: p.Hotkey})
	}
	return jsonResult(infos)
}

type authStatus struct {
	LoggedIn        bool       `json:"loggedIn"`
	HasCredentials  bool       `json:"hasCredentials"`
	LoginInProgress bool       `json:"loginInProgress"`
	Expiry          *time.Time `json:"expiry,omitempty"`
	Backend         string     `json:"backend"`
	LocalAvailable  bool       `json:"localBackendAvailable"`
	Message         string     `json:"message"`
}

func (s *Server) handleAuthStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := s.controller.Status()
	status := authStatus{
		LoggedIn:        st.LoggedIn,
		HasCredentials:  st.HasCredentials,
		LoginInProgress: st.LoginInProgress,
		Backend:         string(st.Backend),
		LocalAvailable:  st.Capabilities.LocalBackendAvailable,
		Message:         s.controller.Guidance(),
	}
	if st.LoggedIn && !st.Expiry.IsZero() {
		expiry := st.Expiry
		status.Expiry = &expiry
	}
	return jsonResult(status)
}

func volumeResult(result volume.Result) *mcp.CallToolResult {
	if !result.OK {
		return mcp.NewToolResultError(result.String())
	}
	return mcp.NewToolResultText(result.String())
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
