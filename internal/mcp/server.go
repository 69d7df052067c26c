package mcp

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/splittile/internal/ipc"
	"github.com/1broseidon/splittile/internal/tiling"
)

const (
	ServerName    = "splittile"
	ServerVersion = "0.1.0"
)

// LayoutClient is the subset of the IPC client the tools need.
type LayoutClient interface {
	GetStatus() (*ipc.StatusData, error)
	GetTree() (*ipc.TreeData, error)
	ToggleOrientation() error
	Reload() (*ipc.ReloadData, error)
}

var _ LayoutClient = (*ipc.Client)(nil)

// Server is the MCP server exposing the running daemon's layout.
type Server struct {
	mcpServer *mcpsdk.Server
	client    LayoutClient
}

// NewServer creates an MCP server that talks to the daemon through client.
func NewServer(client LayoutClient) (*Server, error) {
	if client == nil {
		return nil, fmt.Errorf("mcp server requires a daemon client")
	}

	s := &Server{client: client}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_layout",
		Description: "Return the current tiling layout: split orientation for new windows, the focused window, tiled window ids and the binary partition tree with each node's rectangle.",
	}, s.handleGetLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_orientation",
		Description: "Request a flip of the split orientation used when the next window opens (horizontal stacks top/bottom, vertical places side by side). Existing windows do not move. The daemon applies the request asynchronously; call get_layout to confirm.",
	}, s.handleToggleOrientation)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reload_config",
		Description: "Make the daemon re-read its YAML configuration. Window filter rules and log level apply immediately; hotkeys and screen padding need a restart.",
	}, s.handleReloadConfig)
}

func (s *Server) handleGetLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args GetLayoutInput) (*mcpsdk.CallToolResult, GetLayoutOutput, error) {
	format := strings.ToLower(strings.TrimSpace(args.Format))
	if format != "" && format != "json" && format != "text" {
		return nil, GetLayoutOutput{}, fmt.Errorf("format must be json or text, got %q", args.Format)
	}

	status, err := s.client.GetStatus()
	if err != nil {
		return nil, GetLayoutOutput{}, err
	}
	tree, err := s.client.GetTree()
	if err != nil {
		return nil, GetLayoutOutput{}, err
	}

	out := GetLayoutOutput{
		Orientation: status.Orientation,
		Focus:       status.Focus,
		WindowCount: status.WindowCount,
		Windows:     status.Windows,
		Canvas:      tree.Canvas,
		Tree:        tree.Tree,
	}
	if out.Windows == nil {
		out.Windows = []string{}
	}

	if format != "text" {
		return nil, out, nil
	}
	text, err := renderTree(tree.Tree)
	if err != nil {
		return nil, GetLayoutOutput{}, err
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: text}},
	}, out, nil
}

func (s *Server) handleToggleOrientation(_ context.Context, _ *mcpsdk.CallToolRequest, _ ToggleOrientationInput) (*mcpsdk.CallToolResult, ToggleOrientationOutput, error) {
	status, err := s.client.GetStatus()
	if err != nil {
		return nil, ToggleOrientationOutput{}, err
	}
	var prev tiling.Orientation
	if err := prev.UnmarshalText([]byte(status.Orientation)); err != nil {
		return nil, ToggleOrientationOutput{}, fmt.Errorf("daemon reported %w", err)
	}

	if err := s.client.ToggleOrientation(); err != nil {
		return nil, ToggleOrientationOutput{}, err
	}
	return nil, ToggleOrientationOutput{
		Previous:  prev.String(),
		Requested: prev.Toggle().String(),
	}, nil
}

func (s *Server) handleReloadConfig(_ context.Context, _ *mcpsdk.CallToolRequest, _ ReloadConfigInput) (*mcpsdk.CallToolResult, ReloadConfigOutput, error) {
	data, err := s.client.Reload()
	if err != nil {
		return nil, ReloadConfigOutput{}, err
	}
	files := data.Files
	if files == nil {
		files = []string{}
	}
	return nil, ReloadConfigOutput{Files: files}, nil
}

func renderTree(info *tiling.NodeInfo) (string, error) {
	if info == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := info.WriteText(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
