// Package cmd implements kbproxyctl, the operator CLI for the knowledge and signature vendors.
package cmd

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/mitchellh/cli"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kbproxy/internal/config"
	logpkg "github.com/kailas-cloud/kbproxy/internal/logger"
	"github.com/kailas-cloud/kbproxy/internal/version"
)

// Main runs the CLI with the given arguments and returns the exit code.
func Main(args []string) int {
	cliName := filepath.Base(args[0])

	if len(args) == 2 && (args[1] == "-version" || args[1] == "-v") {
		args = []string{args[0], "version"}
	}

	ui := &cli.ColoredUi{
		OutputColor: cli.UiColorNone,
		InfoColor:   cli.UiColorNone,
		ErrorColor:  cli.UiColorRed,
		WarnColor:   cli.UiColorYellow,
		Ui: &cli.BasicUi{
			Reader:      bufio.NewReader(os.Stdin),
			Writer:      os.Stdout,
			ErrorWriter: os.Stderr,
		},
	}

	// Vendor clients log every call; keep the terminal quiet unless asked.
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	logger, err := logpkg.NewLogger(config.GetEnv(), level)
	if err != nil {
		logger = zap.NewNop()
	}
	defer func() { _ = logger.Sync() }()

	c := &cli.CLI{
		Name:     cliName,
		Args:     args[1:],
		Version:  version.Version,
		Commands: Commands(NewBase(ui, logger)),
	}

	exitCode, err := c.Run()
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	return exitCode
}

// Commands returns the command table.
func Commands(b *Base) map[string]cli.CommandFactory {
	return map[string]cli.CommandFactory{
		"probe": func() (cli.Command, error) {
			return &ProbeCommand{Base: b}, nil
		},
		"list": func() (cli.Command, error) {
			return &ListCommand{Base: b}, nil
		},
		"search": func() (cli.Command, error) {
			return &SearchCommand{Base: b}, nil
		},
		"sign": func() (cli.Command, error) {
			return &SignCommand{Base: b}, nil
		},
		"version": func() (cli.Command, error) {
			return &VersionCommand{Base: b}, nil
		},
	}
}
