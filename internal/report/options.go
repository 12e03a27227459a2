// Package report renders lint results as text, JSON or a statistics table.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto prints paths relative to Base when they lie under it.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeBasename
)

// Format selects the renderer.
type Format uint8

const (
	FormatText Format = iota
	FormatJSON
)

// ParseFormat maps a --format value.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text", "concise":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return 0, fmt.Errorf("unknown output format %q (want text or json)", s)
}

// Options configures rendering.
type Options struct {
	Color    bool
	PathMode PathMode
	// Base is the directory PathModeAuto is relative to.
	Base string
	// Context prints the source line under each diagnostic.
	Context bool
	// Width truncates context lines, 0 - не ограничено
	Width int
	// ShowFixes prints the edits of each fix as before/after lines.
	ShowFixes bool
}

// ColorEnabled resolves a --color value against f.
func ColorEnabled(mode string, f *os.File) (bool, error) {
	switch mode {
	case "always", "on":
		return true, nil
	case "never", "off":
		return false, nil
	case "", "auto":
		if os.Getenv("NO_COLOR") != "" {
			return false, nil
		}
		return isTerminal(f), nil
	}
	return false, fmt.Errorf("unknown color mode %q (want auto, always or never)", mode)
}

// TerminalWidth returns the width of f, or 0 when f is not a terminal.
func TerminalWidth(f *os.File) int {
	if !isTerminal(f) {
		return 0
	}
	w, _, err := term.GetSize(int(f.Fd())) // #nosec G115 -- file descriptors fit in int
	if err != nil {
		return 0
	}
	return w
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd())) // #nosec G115 -- file descriptors fit in int
}

func (o Options) path(p string) string {
	switch o.PathMode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(p); err == nil {
			return abs
		}
	case PathModeBasename:
		return filepath.Base(p)
	default:
		if o.Base == "" {
			return p
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return p
		}
		if rel, err := filepath.Rel(o.Base, abs); err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
	}
	return p
}
