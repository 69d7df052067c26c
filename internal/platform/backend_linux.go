//go:build linux

package platform

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/splittile/internal/clients"
	"github.com/1broseidon/splittile/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn   *x11.Connection
	filter *clients.Filter
	canvas Rect
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11
// connection. filter decides which clients are tiled.
func NewLinuxBackend(conn *x11.Connection, filter *clients.Filter) *LinuxBackend {
	return &LinuxBackend{conn: conn, filter: filter}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay(display string, filter *clients.Filter) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return NewLinuxBackend(conn, filter), nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Canvas returns the work area of the active monitor.
func (b *LinuxBackend) Canvas() (Rect, error) {
	conn, err := b.connection()
	if err != nil {
		return Rect{}, err
	}
	mon, err := conn.WorkArea()
	if err != nil {
		return Rect{}, err
	}
	b.canvas = Rect{X: mon.X, Y: mon.Y, Width: mon.Width, Height: mon.Height}
	return b.canvas, nil
}

// Windows lists tileable clients on the current desktop whose centers lie on
// the canvas, in _NET_CLIENT_LIST order.
func (b *LinuxBackend) Windows() ([]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	ids, err := conn.ClientList()
	if err != nil {
		return nil, err
	}

	canvas, err := b.currentCanvas()
	if err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(ids))
	for _, id := range ids {
		info, bounds, ok := b.tileable(id, canvas)
		if !ok {
			continue
		}
		windows = append(windows, Window{
			ID:     WindowID(id),
			PID:    info.PID,
			AppID:  info.Class,
			Title:  info.Title,
			Bounds: bounds,
		})
	}
	return windows, nil
}

func (b *LinuxBackend) currentCanvas() (Rect, error) {
	if b.canvas.Width == 0 || b.canvas.Height == 0 {
		return b.Canvas()
	}
	return b.canvas, nil
}

// tileable applies the enumeration rule: the filter passes and the window's
// center lies on canvas.
func (b *LinuxBackend) tileable(id xproto.Window, canvas Rect) (x11.WindowInfo, Rect, bool) {
	info, ok := b.describe(id)
	if !ok {
		return info, Rect{}, false
	}
	x, y, w, h, err := b.conn.Geometry(id)
	if err != nil {
		return info, Rect{}, false
	}
	if !canvas.Contains(x+w/2, y+h/2) {
		return info, Rect{}, false
	}
	return info, Rect{X: x, Y: y, Width: w, Height: h}, true
}

// ClientIDs lists every managed client.
func (b *LinuxBackend) ClientIDs() ([]WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	ids, err := conn.ClientList()
	if err != nil {
		return nil, err
	}
	out := make([]WindowID, len(ids))
	for i, id := range ids {
		out[i] = WindowID(id)
	}
	return out, nil
}

// ActiveWindow returns the currently active/focused window ID.
func (b *LinuxBackend) ActiveWindow() (WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}

	wid, err := conn.GetActiveWindow()
	if err != nil {
		return 0, err
	}
	return WindowID(wid), nil
}

// MoveResize moves and resizes a window to the specified bounds.
func (b *LinuxBackend) MoveResize(windowID WindowID, bounds Rect) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}

	return conn.MoveResizeWindow(
		xproto.Window(windowID),
		bounds.X,
		bounds.Y,
		bounds.Width,
		bounds.Height,
	)
}

// Show maps a window and clears its hidden state.
func (b *LinuxBackend) Show(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.ShowWindow(xproto.Window(windowID))
}

// Watch subscribes to client list and focus changes. tracked are the windows
// already seeded; they are not reported as created again. A client is
// reported as created only when it passes the same rule as Windows.
// Callbacks run on the EventLoop goroutine.
func (b *LinuxBackend) Watch(tracked []WindowID, events WindowEvents, logger *slog.Logger) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}

	wrap := func(fn func(WindowID)) func(xproto.Window) {
		if fn == nil {
			return nil
		}
		return func(id xproto.Window) { fn(WindowID(id)) }
	}
	watcher := x11.NewWatcher(conn, func(id xproto.Window) bool {
		canvas, err := b.currentCanvas()
		if err != nil {
			return false
		}
		_, _, ok := b.tileable(id, canvas)
		return ok
	}, x11.WindowEvents{
		Created:   wrap(events.Created),
		Destroyed: wrap(events.Destroyed),
		Focused:   wrap(events.Focused),
	}, logger)

	initial := make([]xproto.Window, len(tracked))
	for i, id := range tracked {
		initial[i] = xproto.Window(id)
	}
	return watcher.Start(initial)
}

// describe reads a client's properties and runs the filter over them.
func (b *LinuxBackend) describe(id xproto.Window) (x11.WindowInfo, bool) {
	info := b.conn.Describe(id)
	current, err := b.conn.GetCurrentDesktop()
	onDesktop := err != nil || x11.OnDesktop(info, current)

	if b.filter == nil {
		return info, onDesktop
	}
	return info, b.filter.Accept(clients.Window{
		Class:            info.Class,
		Title:            info.Title,
		Types:            info.Types,
		States:           info.States,
		OnCurrentDesktop: onDesktop,
	})
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}
