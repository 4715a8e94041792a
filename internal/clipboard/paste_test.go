//go:build !darwin

package clipboard

import (
	"os"
	"testing"
)

func TestIsWaylandTracksEnv(t *testing.T) {
	orig, had := os.LookupEnv("WAYLAND_DISPLAY")
	t.Cleanup(func() {
		if had {
			os.Setenv("WAYLAND_DISPLAY", orig)
		} else {
			os.Unsetenv("WAYLAND_DISPLAY")
		}
	})

	os.Setenv("WAYLAND_DISPLAY", "wayland-0")
	if !isWayland() {
		t.Error("expected isWayland()=true with WAYLAND_DISPLAY set")
	}
	os.Unsetenv("WAYLAND_DISPLAY")
	if isWayland() {
		t.Error("expected isWayland()=false with WAYLAND_DISPLAY unset")
	}
}
