package clients

import (
	"sync"
	"testing"

	"github.com/1broseidon/splittile/internal/config"
)

func normal(class, title string) Window {
	return Window{
		Class:            class,
		Title:            title,
		Types:            []string{"_NET_WM_WINDOW_TYPE_NORMAL"},
		OnCurrentDesktop: true,
	}
}

func TestFilter_Reject(t *testing.T) {
	f := NewFilter(config.IgnoreRules{
		Classes: []string{"Polybar", " conky "},
		Titles:  []string{"Picture-in-Picture"},
	}, true)

	tests := []struct {
		name string
		win  Window
		want string
	}{
		{"normal window", normal("Alacritty", "shell"), ""},
		{"untyped window", Window{Class: "xterm", Title: "xterm", OnCurrentDesktop: true}, ""},
		{"dock", Window{Class: "tint2", Title: "tint2", Types: []string{"_NET_WM_WINDOW_TYPE_DOCK"}, OnCurrentDesktop: true}, "window type"},
		{"dialog", Window{Title: "Open File", Types: []string{"_NET_WM_WINDOW_TYPE_DIALOG"}, OnCurrentDesktop: true}, "window type"},
		{"unknown type only", Window{Title: "x", Types: []string{"_KDE_NET_WM_WINDOW_TYPE_OVERRIDE"}, OnCurrentDesktop: true}, "window type"},
		{"hidden", func() Window { w := normal("a", "b"); w.States = []string{"_NET_WM_STATE_HIDDEN"}; return w }(), "hidden"},
		{"fullscreen", func() Window { w := normal("a", "b"); w.States = []string{"_NET_WM_STATE_FULLSCREEN"}; return w }(), "fullscreen"},
		{"maximized is fine", func() Window { w := normal("a", "b"); w.States = []string{"_NET_WM_STATE_MAXIMIZED_VERT"}; return w }(), ""},
		{"other desktop", func() Window { w := normal("a", "b"); w.OnCurrentDesktop = false; return w }(), "other desktop"},
		{"empty title", normal("firefox", "  "), "no title"},
		{"ignored class case-insensitive", normal("polybar", "bar"), "ignored class"},
		{"ignored class trimmed", normal("Conky", "conky"), "ignored class"},
		{"ignored title substring", normal("firefox", "Picture-in-Picture - Firefox"), "ignored title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Reject(tt.win); got != tt.want {
				t.Fatalf("Reject = %q, want %q", got, tt.want)
			}
			if f.Accept(tt.win) != (tt.want == "") {
				t.Fatalf("Accept disagrees with Reject")
			}
		})
	}
}

func TestFilter_UpdateRules(t *testing.T) {
	f := NewFilter(config.IgnoreRules{}, true)
	win := normal("Steam", "")
	if f.Accept(win) {
		t.Fatalf("untitled window accepted with require_title")
	}

	f.Update(config.IgnoreRules{}, false)
	if !f.Accept(win) {
		t.Fatalf("untitled window rejected without require_title")
	}

	f.Update(config.IgnoreRules{Classes: []string{"steam"}}, false)
	if f.Accept(win) {
		t.Fatalf("expected class rule to apply after update")
	}
}

func TestFilter_ConcurrentUpdateAndAccept(t *testing.T) {
	f := NewFilter(config.IgnoreRules{}, true)
	win := normal("kitty", "zsh")

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				f.Update(config.IgnoreRules{Titles: []string{"nothing"}}, j%2 == 0)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if !f.Accept(win) {
					t.Errorf("window unexpectedly rejected")
					return
				}
			}
		}()
	}
	wg.Wait()
}
