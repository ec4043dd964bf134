package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"spotivol/internal/app"
	"spotivol/internal/config"
	"spotivol/internal/volume"
	"spotivol/pkg/logging"
)

// Controller is the part of the application the tools use.
// *app.Application implements it.
type Controller interface {
	SetVolume(ctx context.Context, percent int, source string) volume.Result
	ApplyProfile(ctx context.Context, name, source string) (volume.Result, error)
	Profiles() []config.Profile
	Status() app.Status
	Guidance() string
}

// Server wraps the application and exposes it as MCP tools.
type Server struct {
	controller Controller
	mcpServer  *server.MCPServer
}

// NewServer creates an MCP server for controller.
func NewServer(controller Controller, version string) *Server {
	mcpServer := server.NewMCPServer(
		"spotivol",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s := &Server{
		controller: controller,
		mcpServer:  mcpServer,
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Start serves MCP over stdin/stdout until the client disconnects.
func (s *Server) Start(ctx context.Context) error {
	logging.Info("MCPServer", "Serving MCP tools on stdio")
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	setVolumeTool := mcp.NewTool("set_volume",
		mcp.WithDescription("Set the Spotify volume using the selected backend"),
		mcp.WithNumber("percent",
			mcp.Required(),
			mcp.Description("Volume in percent, 0 to 100. Values outside the range are clamped."),
		),
	)
	s.mcpServer.AddTool(setVolumeTool, s.handleSetVolume)

	applyProfileTool := mcp.NewTool("apply_profile",
		mcp.WithDescription("Apply the volume of a configured profile"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Profile name (case-insensitive)"),
		),
	)
	s.mcpServer.AddTool(applyProfileTool, s.handleApplyProfile)

	listProfilesTool := mcp.NewTool("list_profiles",
		mcp.WithDescription("List the configured volume profiles"),
	)
	s.mcpServer.AddTool(listProfilesTool, s.handleListProfiles)

	authStatusTool := mcp.NewTool("auth_status",
		mcp.WithDescription("Report whether spotivol is logged in to Spotify and which backend is selected"),
	)
	s.mcpServer.AddTool(authStatusTool, s.handleAuthStatus)
}
