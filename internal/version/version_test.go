package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestColoredWithoutColor(t *testing.T) {
	prevNoColor := color.NoColor
	prevVersion := Version
	color.NoColor = true
	t.Cleanup(func() {
		color.NoColor = prevNoColor
		Version = prevVersion
	})

	tests := []struct {
		version string
		want    string
	}{
		{"0.1.0-dev", "0.1.0-dev"},
		{"1.2.3+build.7", "1.2.3+build.7"},
		{"nightly", "nightly"},
		{"  ", "dev"},
	}
	for _, tt := range tests {
		Version = tt.version
		if got := Colored(); got != tt.want {
			t.Errorf("Colored() with %q = %q, want %q", tt.version, got, tt.want)
		}
	}
}

func TestColoredWithColor(t *testing.T) {
	prevNoColor := color.NoColor
	prevVersion := Version
	color.NoColor = false
	t.Cleanup(func() {
		color.NoColor = prevNoColor
		Version = prevVersion
	})

	Version = "1.2.3"
	if got := Colored(); got == "1.2.3" {
		t.Error("expected escape sequences around version components")
	}
}
