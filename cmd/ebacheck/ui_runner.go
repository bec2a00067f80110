package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap/zapcore"

	"ebacheck/internal/config"
	"ebacheck/internal/diag"
	"ebacheck/internal/engine"
	"ebacheck/internal/logger"
	"ebacheck/internal/model"
	"ebacheck/internal/ui"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

var uiModes = map[string]uiMode{
	"":     uiModeAuto,
	"auto": uiModeAuto,
	"on":   uiModeOn,
	"off":  uiModeOff,
}

func readUIMode(value string) (uiMode, error) {
	mode, ok := uiModes[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
	return mode, nil
}

// progressUI decides whether a run draws the progress view on stderr.
// Auto mode needs a terminal there and no info-level logging.
func progressUI(mode uiMode, stderr io.Writer) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	}
	f, ok := stderr.(*os.File)
	if !ok || !isTerminal(f) {
		return false
	}
	return !logger.Enabled(zapcore.InfoLevel)
}

type validateOutcome struct {
	report *diag.Report
	err    error
}

func validateWithUI(ctx context.Context, stderr io.Writer, title string, doc *model.Document, cfg config.Options, opts engine.Options) (*diag.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := make(chan engine.Event, 256)
	outcomeCh := make(chan validateOutcome, 1)

	go func() {
		runOpts := opts
		runOpts.Progress = engine.ChannelSink{Ch: events}
		rep, err := engine.Validate(ctx, doc, cfg, runOpts)
		outcomeCh <- validateOutcome{report: rep, err: err}
		close(events)
	}()

	program := tea.NewProgram(ui.NewProgressModel(title, events), tea.WithOutput(stderr))
	_, uiErr := program.Run()
	// UI закрыт раньше времени (ctrl+c): останавливаем проверку и дочитываем события
	cancel()
	for range events {
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.report, uiErr
	}
	return outcome.report, outcome.err
}
