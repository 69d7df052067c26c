package x11

import (
	"fmt"

	"github.com/BurntSushi/xgbutil/ewmh"
)

// GetCurrentDesktop returns the current virtual desktop number (0-indexed).
// Uses _NET_CURRENT_DESKTOP atom. Returns 0 with an error if detection fails.
func (c *Connection) GetCurrentDesktop() (int, error) {
	desktop, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get current desktop: %w", err)
	}
	return int(desktop), nil
}

// OnDesktop reports whether info is visible on desktop. Sticky windows and
// windows without _NET_WM_DESKTOP are visible everywhere.
func OnDesktop(info WindowInfo, desktop int) bool {
	return info.Desktop < 0 || info.Desktop == desktop
}
