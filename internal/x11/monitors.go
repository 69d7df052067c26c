package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

func (m Monitor) contains(x, y int) bool {
	return x >= m.X && x < m.X+m.Width && y >= m.Y && y < m.Y+m.Height
}

func (m Monitor) box() box {
	return box{x1: m.X, y1: m.Y, x2: m.X + m.Width, y2: m.Y + m.Height}
}

// box is a half-open rectangle [x1,x2) x [y1,y2).
type box struct {
	x1, y1, x2, y2 int
}

func (b box) intersect(o box) box {
	out := box{
		x1: max(b.x1, o.x1),
		y1: max(b.y1, o.y1),
		x2: min(b.x2, o.x2),
		y2: min(b.y2, o.y2),
	}
	if out.x2 <= out.x1 || out.y2 <= out.y1 {
		return box{}
	}
	return out
}

func (b box) width() int  { return b.x2 - b.x1 }
func (b box) height() int { return b.y2 - b.y1 }
func (b box) empty() bool { return b.width() <= 0 || b.height() <= 0 }

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(outputInfo.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   name,
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		})
	}

	return monitors, nil
}

// WorkArea returns the usable area of the active monitor: the monitor holding
// the focused window, else the one under the pointer, else the first one.
// Space reserved by docks and panels is excluded.
func (c *Connection) WorkArea() (Monitor, error) {
	monitors, err := c.GetMonitors()
	if err != nil {
		return Monitor{}, err
	}
	if len(monitors) == 0 {
		return Monitor{}, fmt.Errorf("no monitors found")
	}

	active := -1
	if win, err := ewmh.ActiveWindowGet(c.XUtil); err == nil && win != 0 {
		active = c.monitorForWindow(monitors, win)
	}
	if active < 0 {
		active = c.monitorForPointer(monitors)
	}
	if active < 0 {
		active = 0
	}
	mon := monitors[active]

	if c.applyDockStruts(&mon) {
		return mon, nil
	}

	// No struts found: fall back to the EWMH work area of the current desktop.
	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return mon, nil
	}
	idx := 0
	if desktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(desktop) < len(workArea) {
		idx = int(desktop)
	}
	wa := workArea[idx]
	clipped := mon.box().intersect(box{
		x1: wa.X, y1: wa.Y,
		x2: wa.X + int(wa.Width), y2: wa.Y + int(wa.Height),
	})
	if !clipped.empty() {
		mon.X, mon.Y = clipped.x1, clipped.y1
		mon.Width, mon.Height = clipped.width(), clipped.height()
	}
	return mon, nil
}

// applyDockStruts shrinks monitor by the struts of dock windows overlapping
// it. It reports whether any strut applied.
func (c *Connection) applyDockStruts(monitor *Monitor) bool {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return false
	}
	rootW, rootH := int(rootGeom.Width), int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return false
	}

	var top, bottom, left, right int
	for _, windowID := range clients {
		if !c.isDock(windowID) {
			continue
		}

		sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID)
		if err != nil {
			// Some docks only set _NET_WM_STRUT (no partial ranges).
			s, err := ewmh.WmStrutGet(c.XUtil, windowID)
			if err != nil {
				continue
			}
			sp = &ewmh.WmStrutPartial{
				Left: s.Left, Right: s.Right, Top: s.Top, Bottom: s.Bottom,
				LeftEndY: uint(rootH - 1), RightEndY: uint(rootH - 1),
				TopEndX: uint(rootW - 1), BottomEndX: uint(rootW - 1),
			}
		}

		mon := monitor.box()
		if sp.Top > 0 {
			top = max(top, mon.intersect(box{int(sp.TopStartX), 0, int(sp.TopEndX) + 1, int(sp.Top)}).height())
		}
		if sp.Bottom > 0 {
			bottom = max(bottom, mon.intersect(box{int(sp.BottomStartX), rootH - int(sp.Bottom), int(sp.BottomEndX) + 1, rootH}).height())
		}
		if sp.Left > 0 {
			left = max(left, mon.intersect(box{0, int(sp.LeftStartY), int(sp.Left), int(sp.LeftEndY) + 1}).width())
		}
		if sp.Right > 0 {
			right = max(right, mon.intersect(box{rootW - int(sp.Right), int(sp.RightStartY), rootW, int(sp.RightEndY) + 1}).width())
		}
	}

	if top == 0 && bottom == 0 && left == 0 && right == 0 {
		return false
	}

	monitor.X += left
	monitor.Y += top
	monitor.Width = max(1, monitor.Width-left-right)
	monitor.Height = max(1, monitor.Height-top-bottom)
	return true
}

func (c *Connection) isDock(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DOCK" {
			return true
		}
	}
	return false
}

func (c *Connection) monitorForWindow(monitors []Monitor, windowID xproto.Window) int {
	x, y, w, h, err := c.Geometry(windowID)
	if err != nil {
		return -1
	}
	for i, mon := range monitors {
		if mon.contains(x+w/2, y+h/2) {
			return i
		}
	}
	return -1
}

func (c *Connection) monitorForPointer(monitors []Monitor) int {
	pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return -1
	}
	for i, mon := range monitors {
		if mon.contains(int(pointer.RootX), int(pointer.RootY)) {
			return i
		}
	}
	return -1
}
