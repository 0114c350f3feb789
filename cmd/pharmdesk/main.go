package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/dmitrijs2005/pharmdesk/internal/buildinfo"
	"github.com/dmitrijs2005/pharmdesk/internal/config"
	"github.com/dmitrijs2005/pharmdesk/internal/logging"
	"github.com/dmitrijs2005/pharmdesk/internal/modules/home"
	"github.com/dmitrijs2005/pharmdesk/internal/modules/profile"
	"github.com/dmitrijs2005/pharmdesk/internal/registry"
	"github.com/dmitrijs2005/pharmdesk/internal/shell"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.LoadConfig(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if cfg.ShowVersion {
		buildinfo.PrintBuildData(os.Stdout)
		return 0
	}

	// Configuration errors abort before anything is drawn.
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "pharmdesk needs an interactive terminal")
		return 1
	}

	logger, closer, err := logging.OpenFile(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closer.Close()

	reg := registry.New()
	reg.MustRegister(home.Descriptor(), profile.Descriptor())

	app, err := shell.NewApp(cfg, reg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := app.Run(context.Background()); err != nil {
		logger.Error(context.Background(), "shell exited", "error", err)
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
