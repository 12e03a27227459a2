package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
	if strings.Contains(Version, "\x1b") {
		t.Errorf("Version carries escape codes: %q", Version)
	}
}

func TestColored(t *testing.T) {
	orig, origNoColor := Version, color.NoColor
	defer func() { Version, color.NoColor = orig, origNoColor }()
	color.NoColor = true

	tests := []string{"0.1.0-dev", "1.2.3", "1.0.0-beta.1", "1.2.3-rc.1+build.123", "nightly"}
	for _, v := range tests {
		Version = v
		if got := Colored(); got != v {
			t.Errorf("Colored() with %q = %q", v, got)
		}
	}

	color.NoColor = false
	Version = "1.2.3-dev"
	got := Colored()
	if !strings.Contains(got, "\x1b[") || !strings.HasSuffix(got, "-dev") {
		t.Errorf("Colored() = %q, want colored core and plain suffix", got)
	}
}

func TestString(t *testing.T) {
	orig, origCommit, origDate, origNoColor := Version, GitCommit, BuildDate, color.NoColor
	defer func() { Version, GitCommit, BuildDate, color.NoColor = orig, origCommit, origDate, origNoColor }()
	color.NoColor = true

	Version = "1.2.3"
	GitCommit = "1234567890abcdef1234"
	BuildDate = "2024-01-15T10:30:00Z"
	if got, want := String(), "krait 1.2.3 (1234567890ab 2024-01-15T10:30:00Z)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	GitCommit = "abc"
	BuildDate = ""
	if got, want := String(), "krait 1.2.3 (abc)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

// BenchmarkColored benchmarks rendering the colored version
func BenchmarkColored(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = Colored()
	}
}
