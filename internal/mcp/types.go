package mcp

import "github.com/1broseidon/splittile/internal/tiling"

// GetLayoutInput is the input for the get_layout tool.
type GetLayoutInput struct {
	Format string `json:"format,omitempty" jsonschema:"Tree rendering: json (default) returns the tree as structured data, text also adds an indented outline"`
}

// GetLayoutOutput is the output for the get_layout tool.
type GetLayoutOutput struct {
	Orientation string      `json:"orientation"`
	Focus       string      `json:"focus,omitempty"`
	WindowCount int         `json:"window_count"`
	Windows     []string    `json:"windows"`
	Canvas      tiling.Rect `json:"canvas"`
	// Tree holds a *tiling.NodeInfo. It is typed loosely because the node
	// type is recursive.
	Tree any `json:"tree"`
}

// ToggleOrientationInput is the input for the toggle_orientation tool.
type ToggleOrientationInput struct{}

// ToggleOrientationOutput is the output for the toggle_orientation tool. The
// daemon applies the toggle asynchronously and a later event can replace it
// before it is read, so Requested is not a confirmation.
type ToggleOrientationOutput struct {
	Previous  string `json:"previous"`
	Requested string `json:"requested"`
}

// ReloadConfigInput is the input for the reload_config tool.
type ReloadConfigInput struct{}

// ReloadConfigOutput is the output for the reload_config tool.
type ReloadConfigOutput struct {
	Files []string `json:"files"`
}
