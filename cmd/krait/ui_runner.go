package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"krait/internal/linter"
	"krait/internal/ui"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// shouldUseTUI decides whether a progress view is drawn. Auto mode draws
// it only on an interactive stderr so piped output stays clean.
func shouldUseTUI(mode uiMode) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return isTerminal(os.Stderr)
	}
}

type runOutcome struct {
	result *linter.Result
	err    error
}

// runWithUI lints paths while a progress view renders on stderr. Quitting
// the view cancels the run.
func runWithUI(ctx context.Context, paths []string, opts linter.Options) (*linter.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan linter.Event, 256)
	outcomeCh := make(chan runOutcome, 1)
	go func() {
		opts.Progress = linter.ChannelSink{Ch: events}
		res, err := linter.Run(ctx, paths, opts)
		outcomeCh <- runOutcome{result: res, err: err}
		close(events)
	}()

	program := tea.NewProgram(ui.NewProgressModel("checking", events), tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	cancel()
	// workers may still be sending
	for range events {
	}
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
