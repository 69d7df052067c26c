package clients

import (
	"strings"
	"sync"

	"github.com/1broseidon/splittile/internal/config"
)

// Window is what the filter needs to know about a client window.
type Window struct {
	Class            string
	Title            string
	Types            []string // _NET_WM_WINDOW_TYPE atoms
	States           []string // _NET_WM_STATE atoms
	OnCurrentDesktop bool
}

// Filter decides which client windows take part in tiling. Rules can be
// swapped at runtime while other goroutines call Accept.
type Filter struct {
	mu           sync.RWMutex
	classes      map[string]bool
	titles       []string
	requireTitle bool
}

// NewFilter builds a filter from the ignore rules.
func NewFilter(rules config.IgnoreRules, requireTitle bool) *Filter {
	f := &Filter{}
	f.Update(rules, requireTitle)
	return f
}

// Update replaces the rules.
func (f *Filter) Update(rules config.IgnoreRules, requireTitle bool) {
	classMap := make(map[string]bool, len(rules.Classes))
	for _, class := range rules.Classes {
		classMap[strings.ToLower(strings.TrimSpace(class))] = true
	}
	titles := append([]string(nil), rules.Titles...)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.classes = classMap
	f.titles = titles
	f.requireTitle = requireTitle
}

// Accept reports whether w should be tiled.
func (f *Filter) Accept(w Window) bool {
	return f.Reject(w) == ""
}

// Reject returns why w is not tiled, or "" when it is.
func (f *Filter) Reject(w Window) string {
	if !isNormal(w.Types) {
		return "window type"
	}
	for _, state := range w.States {
		switch state {
		case "_NET_WM_STATE_HIDDEN":
			return "hidden"
		case "_NET_WM_STATE_FULLSCREEN":
			return "fullscreen"
		}
	}
	if !w.OnCurrentDesktop {
		return "other desktop"
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	title := strings.TrimSpace(w.Title)
	if f.requireTitle && title == "" {
		return "no title"
	}
	if f.classes[strings.ToLower(w.Class)] {
		return "ignored class"
	}
	for _, pattern := range f.titles {
		if strings.Contains(title, pattern) {
			return "ignored title"
		}
	}
	return ""
}

// isNormal accepts untyped windows and those whose first recognised type is
// _NET_WM_WINDOW_TYPE_NORMAL.
func isNormal(types []string) bool {
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_TOOLBAR",
			"_NET_WM_WINDOW_TYPE_MENU",
			"_NET_WM_WINDOW_TYPE_UTILITY",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_DIALOG",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}
	return len(types) == 0
}
