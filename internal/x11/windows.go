package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// stickyDesktop is the _NET_WM_DESKTOP value for "all desktops".
const stickyDesktop = 0xFFFFFFFF

// WindowInfo is the subset of client properties used to decide tiling.
type WindowInfo struct {
	ID      xproto.Window
	Class   string
	Title   string
	Types   []string
	States  []string
	Desktop int // -1 for sticky or unknown
	PID     int
}

// ClientList returns managed client windows in mapping order.
func (c *Connection) ClientList() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to read _NET_CLIENT_LIST: %w", err)
	}
	return clients, nil
}

// Describe reads the properties of windowID. Missing properties are left at
// their zero value.
func (c *Connection) Describe(windowID xproto.Window) WindowInfo {
	info := WindowInfo{ID: windowID, Desktop: -1}

	if wmClass, err := icccm.WmClassGet(c.XUtil, windowID); err == nil {
		info.Class = strings.TrimSpace(wmClass.Class)
	}
	info.Title = c.windowTitle(windowID)
	if types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID); err == nil {
		info.Types = types
	}
	if states, err := ewmh.WmStateGet(c.XUtil, windowID); err == nil {
		info.States = states
	}
	if desktop, err := ewmh.WmDesktopGet(c.XUtil, windowID); err == nil && desktop != stickyDesktop {
		info.Desktop = int(desktop)
	}
	if pid, err := ewmh.WmPidGet(c.XUtil, windowID); err == nil {
		info.PID = int(pid)
	}
	return info
}

func (c *Connection) windowTitle(windowID xproto.Window) string {
	title, err := ewmh.WmNameGet(c.XUtil, windowID)
	if err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	title, err = icccm.WmNameGet(c.XUtil, windowID)
	if err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// Geometry returns the window's position in root coordinates and its size.
func (c *Connection) Geometry(windowID xproto.Window) (x, y, width, height int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height), nil
}

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	// Maximized windows ignore geometry requests on most window managers.
	c.clearStates(windowID, "_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT")

	// Use EWMH MoveResize for better WM compatibility
	if err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height); err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, windowID).MoveResize(x, y, width, height)
	}
	return nil
}

// ShowWindow maps the window and clears the states that would keep it from
// being visible in its tile.
func (c *Connection) ShowWindow(windowID xproto.Window) error {
	if err := xproto.MapWindowChecked(c.XUtil.Conn(), windowID).Check(); err != nil {
		return fmt.Errorf("map window 0x%x: %w", uint32(windowID), err)
	}
	c.clearStates(windowID, "_NET_WM_STATE_HIDDEN")
	return nil
}

// clearStates asks the window manager to remove each of states that is
// currently set on the window.
func (c *Connection) clearStates(windowID xproto.Window, states ...string) {
	current, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return
	}
	for _, have := range current {
		for _, want := range states {
			if have == want {
				ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateRemove, want)
			}
		}
	}
}

func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}
