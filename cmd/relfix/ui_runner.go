package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jonseale44/Clarafi/internal/driver"
	"github.com/jonseale44/Clarafi/internal/source"
	"github.com/jonseale44/Clarafi/internal/ui"
)

type runOutcome struct {
	fs      *source.FileSet
	results []driver.FileResult
	err     error
}

func runWithUI(ctx context.Context, title string, files []string, opts driver.Options) (*source.FileSet, []driver.FileResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		fs, results, err := driver.Run(ctx, files, optsCopy)
		outcomeCh <- runOutcome{fs: fs, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// если UI закрыли раньше, дочитываем события, чтобы Run не встал на канале
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.fs, outcome.results, uiErr
	}
	return outcome.fs, outcome.results, outcome.err
}
