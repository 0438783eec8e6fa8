// Package main is the entry point for the gdnvim terminal host.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"gdnvim/internal/app"
	"gdnvim/internal/logger"
	"gdnvim/internal/term"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, theme := parseFlags()

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	ui := term.New(term.Options{
		Root:  opts.Root,
		Theme: theme,
		Log:   logger.Default(),
	})
	ui.SetSource(application)
	ui.OnSwitch(application.SwitchFile)
	ui.OnReload(application.ReloadFile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		cancel()
	}()

	if err := application.Run(ctx, ui); err != nil {
		if errors.Is(err, app.ErrQuit) || errors.Is(err, context.Canceled) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() (app.Options, string) {
	var opts app.Options
	var theme string
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to settings file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to settings file (shorthand)")
	flag.StringVar(&opts.EnginePath, "engine", "", "Neovim executable to embed")
	flag.StringVar(&opts.Root, "root", "", "Project root directory")
	flag.StringVar(&opts.Root, "r", "", "Project root directory (shorthand)")
	flag.StringVar(&opts.LogPath, "log", "", "Append diagnostics to a file")
	flag.BoolVar(&opts.Debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&opts.Debug, "d", false, "Enable debug logging (shorthand)")
	flag.StringVar(&theme, "theme", "", "Highlight theme for the text pane")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "gdnvim - Neovim-backed editing in a host shell\n\n")
		fmt.Fprintf(os.Stderr, "Usage: gdnvim [options] [files...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  gdnvim                       Open with an empty buffer\n")
		fmt.Fprintf(os.Stderr, "  gdnvim file.go               Open a file\n")
		fmt.Fprintf(os.Stderr, "  gdnvim -r ./project file.go  Open a file under a project root\n")
		fmt.Fprintf(os.Stderr, "  gdnvim -engine /opt/nvim/bin/nvim\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("gdnvim %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	opts.Version = version

	// Remaining arguments are files to open
	opts.Files = flag.Args()

	// If the root is not specified but files are, use the directory
	// of the first file
	if opts.Root == "" && len(opts.Files) > 0 {
		if abs, err := filepath.Abs(opts.Files[0]); err == nil {
			opts.Root = filepath.Dir(abs)
		}
	}

	return opts, theme
}
