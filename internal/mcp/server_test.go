package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/splittile/internal/ipc"
	"github.com/1broseidon/splittile/internal/tiling"
)

type fakeClient struct {
	status  ipc.StatusData
	tree    ipc.TreeData
	toggled int
	err     error
}

func (f *fakeClient) GetStatus() (*ipc.StatusData, error) {
	if f.err != nil {
		return nil, f.err
	}
	st := f.status
	return &st, nil
}

func (f *fakeClient) GetTree() (*ipc.TreeData, error) {
	if f.err != nil {
		return nil, f.err
	}
	tr := f.tree
	return &tr, nil
}

func (f *fakeClient) ToggleOrientation() error {
	f.toggled++
	return f.err
}

func (f *fakeClient) Reload() (*ipc.ReloadData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ipc.ReloadData{Files: []string{"/home/u/.config/splittile/config.yaml"}}, nil
}

func newFakeClient() *fakeClient {
	canvas := tiling.Rect{Width: 1920, Height: 1080}
	root := tiling.NewTree[int](canvas)
	root.Insert(tiling.Horizontal, 1)
	root.Insert(tiling.Vertical, 2)
	return &fakeClient{
		status: ipc.StatusData{
			Orientation: "horizontal",
			Focus:       "0x00000002",
			Windows:     []string{"0x00000001", "0x00000002"},
			WindowCount: 2,
		},
		tree: ipc.TreeData{
			Canvas:      canvas,
			Orientation: "horizontal",
			Tree:        tiling.Snapshot(root, func(id int) string { return string(rune('0' + id)) }),
		},
	}
}

func TestNewServer_RequiresClient(t *testing.T) {
	if _, err := NewServer(nil); err == nil {
		t.Fatalf("expected error for nil client")
	}
	if _, err := NewServer(newFakeClient()); err != nil {
		t.Fatalf("NewServer: %v", err)
	}
}

func TestHandleGetLayout_JSON(t *testing.T) {
	s := &Server{client: newFakeClient()}

	res, out, err := s.handleGetLayout(context.Background(), nil, GetLayoutInput{})
	if err != nil {
		t.Fatalf("get_layout: %v", err)
	}
	if res != nil {
		t.Fatalf("expected structured output only, got %+v", res)
	}
	if out.Orientation != "horizontal" || out.Focus != "0x00000002" || out.WindowCount != 2 {
		t.Fatalf("out = %+v", out)
	}
	tree, ok := out.Tree.(*tiling.NodeInfo)
	if !ok || tree.Kind != "separator" {
		t.Fatalf("tree = %#v", out.Tree)
	}
}

func TestHandleGetLayout_Text(t *testing.T) {
	s := &Server{client: newFakeClient()}

	res, _, err := s.handleGetLayout(context.Background(), nil, GetLayoutInput{Format: "Text"})
	if err != nil {
		t.Fatalf("get_layout: %v", err)
	}
	if res == nil || len(res.Content) != 1 {
		t.Fatalf("expected one text content, got %+v", res)
	}
	text, ok := res.Content[0].(*mcpsdk.TextContent)
	if !ok {
		t.Fatalf("content type = %T", res.Content[0])
	}
	want := "split vertical  1920x1080+0+0\n" +
		"├── window 1  960x1080+0+0\n" +
		"└── window 2  960x1080+961+0\n"
	if text.Text != want {
		t.Fatalf("text:\n%s\nwant:\n%s", text.Text, want)
	}
}

func TestHandleGetLayout_BadFormat(t *testing.T) {
	s := &Server{client: newFakeClient()}
	if _, _, err := s.handleGetLayout(context.Background(), nil, GetLayoutInput{Format: "yaml"}); err == nil {
		t.Fatalf("expected format error")
	}
}

func TestHandleToggleOrientation(t *testing.T) {
	client := newFakeClient()
	s := &Server{client: client}

	_, out, err := s.handleToggleOrientation(context.Background(), nil, ToggleOrientationInput{})
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if out.Previous != "horizontal" || out.Requested != "vertical" {
		t.Fatalf("out = %+v", out)
	}
	if client.toggled != 1 {
		t.Fatalf("toggled = %d", client.toggled)
	}
}

func TestHandleToggleOrientation_UnknownOrientation(t *testing.T) {
	client := newFakeClient()
	client.status.Orientation = "diagonal"
	s := &Server{client: client}

	if _, _, err := s.handleToggleOrientation(context.Background(), nil, ToggleOrientationInput{}); err == nil {
		t.Fatalf("expected error")
	}
	if client.toggled != 0 {
		t.Fatalf("toggle must not be sent after a bad status")
	}
}

func TestToggleOrientationOutput_ReportsRequestNotResult(t *testing.T) {
	data, err := json.Marshal(ToggleOrientationOutput{Previous: "horizontal", Requested: "vertical"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got, want := string(data), `{"previous":"horizontal","requested":"vertical"}`; got != want {
		t.Fatalf("json = %s, want %s", got, want)
	}
}

func TestHandleReloadConfig(t *testing.T) {
	s := &Server{client: newFakeClient()}

	_, out, err := s.handleReloadConfig(context.Background(), nil, ReloadConfigInput{})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(out.Files) != 1 || !strings.HasSuffix(out.Files[0], "config.yaml") {
		t.Fatalf("files = %v", out.Files)
	}
}

func TestHandlers_PropagateDaemonErrors(t *testing.T) {
	client := newFakeClient()
	client.err = errors.New("failed to connect to daemon")
	s := &Server{client: client}

	if _, _, err := s.handleGetLayout(context.Background(), nil, GetLayoutInput{}); err == nil {
		t.Fatalf("get_layout: expected error")
	}
	if _, _, err := s.handleReloadConfig(context.Background(), nil, ReloadConfigInput{}); err == nil {
		t.Fatalf("reload_config: expected error")
	}
}
