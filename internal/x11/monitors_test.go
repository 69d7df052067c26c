package x11

import "testing"

func TestBoxIntersect(t *testing.T) {
	mon := Monitor{X: 1920, Y: 0, Width: 2560, Height: 1440}.box()

	tests := []struct {
		name string
		b    box
		w, h int
	}{
		{"top bar on this monitor", box{1920, 0, 4480, 32}, 2560, 32},
		{"top bar on the other monitor", box{0, 0, 1920, 32}, 0, 0},
		{"bottom strip spanning both", box{0, 1400, 4480, 1440}, 2560, 40},
		{"touching edge only", box{0, 0, 1920, 1440}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mon.intersect(tt.b)
			if got.width() != tt.w || got.height() != tt.h {
				t.Fatalf("intersect = %dx%d, want %dx%d", got.width(), got.height(), tt.w, tt.h)
			}
		})
	}
}

func TestMonitorContains(t *testing.T) {
	m := Monitor{X: 0, Y: 0, Width: 1920, Height: 1080}
	if !m.contains(0, 0) || !m.contains(1919, 1079) {
		t.Fatalf("expected corners inside")
	}
	if m.contains(1920, 10) || m.contains(10, 1080) || m.contains(-1, 0) {
		t.Fatalf("expected points outside")
	}
}

func TestOnDesktop(t *testing.T) {
	if !OnDesktop(WindowInfo{Desktop: -1}, 3) {
		t.Fatalf("sticky window must be on every desktop")
	}
	if !OnDesktop(WindowInfo{Desktop: 2}, 2) || OnDesktop(WindowInfo{Desktop: 1}, 2) {
		t.Fatalf("desktop match mismatch")
	}
}
