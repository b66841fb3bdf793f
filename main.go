// Package main is the entry point for the CLIAMP terminal music player.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/wk-j/cliamp/internal/lyrics"
	"github.com/wk-j/cliamp/internal/player"
	"github.com/wk-j/cliamp/playlist"
	"github.com/wk-j/cliamp/ui"
)

func run() error {
	autoPlay := pflag.Bool("autoplay", false, "start playing the first track immediately")
	mini := pflag.Bool("mini", false, "compact minimal UI with less width")
	bars := pflag.Int("bars", 10, "number of spectrum analyzer bars")
	verbose := pflag.BoolP("verbose", "v", false, "enable debug logging to stderr")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: cliamp [flags] <file.mp3> [file2.mp3 ...]\n\nFlags:\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	args := pflag.Args()
	if len(args) == 0 {
		return errors.New("usage: cliamp [--autoplay] [--mini] <file.mp3> [file2.mp3 ...]")
	}

	logger := log.New(os.Stderr)
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}

	// Expand shell globs that may not have been expanded by the shell.
	var files []string
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil || len(matches) == 0 {
			files = append(files, arg)
		} else {
			files = append(files, matches...)
		}
	}

	pl := playlist.New()
	for _, f := range files {
		pl.Add(playlist.TrackFromPath(f))
	}

	listener := ui.NewPlayerListener()
	p := player.New(player.Options{
		BarCount: *bars,
		Listener: listener,
		Logger:   logger,
	})
	defer p.Close()

	finder := lyrics.New(nil, nil, logger)
	m := ui.NewModel(p, listener, pl, finder, *autoPlay, *mini)
	prog := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
