package tiling

import (
	"fmt"
	"io"
	"strings"
)

// NodeInfo is a detached, JSON-friendly copy of a tree.
type NodeInfo struct {
	Kind        string       `json:"kind"`
	Rect        Rect         `json:"rect"`
	Window      string       `json:"window,omitempty"`
	Orientation *Orientation `json:"orientation,omitempty"`
	Left        *NodeInfo    `json:"left,omitempty"`
	Right       *NodeInfo    `json:"right,omitempty"`
}

// Snapshot copies the subtree, rendering window identifiers with format.
func Snapshot[ID comparable](n *Node[ID], format func(ID) string) *NodeInfo {
	if n == nil {
		return nil
	}
	info := &NodeInfo{Kind: n.Kind.String(), Rect: n.Rect}
	switch n.Kind {
	case KindWindow:
		info.Window = format(n.ID)
	case KindSeparator:
		o := n.Orientation
		info.Orientation = &o
		info.Left = Snapshot(n.Left, format)
		info.Right = Snapshot(n.Right, format)
	}
	return info
}

// WriteText draws the tree as an indented outline.
func (info *NodeInfo) WriteText(w io.Writer) error {
	return info.writeText(w, "", "")
}

func (info *NodeInfo) writeText(w io.Writer, prefix, childPrefix string) error {
	if info == nil {
		return nil
	}

	var label string
	switch info.Kind {
	case "window":
		label = fmt.Sprintf("window %s  %s", info.Window, info.Rect)
	case "separator":
		orientation := "?"
		if info.Orientation != nil {
			orientation = info.Orientation.String()
		}
		label = fmt.Sprintf("split %s  %s", orientation, info.Rect)
	default:
		label = fmt.Sprintf("empty  %s", info.Rect)
	}
	if _, err := fmt.Fprintf(w, "%s%s\n", prefix, label); err != nil {
		return err
	}

	if info.Left == nil && info.Right == nil {
		return nil
	}
	if err := info.Left.writeText(w, childPrefix+"├── ", childPrefix+"│   "); err != nil {
		return err
	}
	return info.Right.writeText(w, childPrefix+"└── ", childPrefix+strings.Repeat(" ", 4))
}
