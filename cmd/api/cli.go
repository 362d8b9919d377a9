package main

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/haythamforever/HonorHub/internal/config"
	"github.com/haythamforever/HonorHub/internal/db"
	"github.com/haythamforever/HonorHub/internal/version"
)

const (
	exitOK      = 0
	exitUsage   = 2
	exitConfig  = 3
	exitMigrate = 4
)

var (
	migrateRunner           = db.Migrate
	osExit                  = os.Exit
	stdout        io.Writer = os.Stdout
	stderr        io.Writer = os.Stderr
)

var migrateSubcommands = []string{"up", "down", "status"}

type cliCommand struct {
	usage string
	help  string
	run   func(args []string) int
}

// cliCommands are the one-shot commands the api binary accepts instead of
// serving. Keys are matched against the first argument.
func cliCommands() map[string]cliCommand {
	return map[string]cliCommand{
		"migrate": {"migrate up|down|status", "Apply, roll back one, or list schema migrations", runMigrate},
		"version": {"version", "Print build version", func([]string) int {
			fmt.Fprintln(stdout, version.String())
			return exitOK
		}},
		"help": {"help", "Show this message", func([]string) int {
			printHelp(stdout)
			return exitOK
		}},
	}
}

// handleCLICommand reports false when the process should start the server.
func handleCLICommand(args []string) bool {
	if len(args) == 0 {
		return false
	}
	name := args[0]
	switch name {
	case "--version":
		name = "version"
	case "-h", "--help":
		name = "help"
	}
	cmd, ok := cliCommands()[name]
	if !ok {
		return false
	}
	osExit(cmd.run(args[1:]))
	return true
}

func runMigrate(args []string) int {
	if len(args) != 1 || !slices.Contains(migrateSubcommands, args[0]) {
		fmt.Fprintln(stderr, "usage: honorhub migrate up|down|status")
		return exitUsage
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitConfig
	}
	if err := migrateRunner(args[0], cfg.DatabaseURL); err != nil {
		fmt.Fprintf(stderr, "migrate %s: %v\n", args[0], err)
		return exitMigrate
	}
	return exitOK
}

func printHelp(w io.Writer) {
	cmds := cliCommands()
	names := make([]string, 0, len(cmds))
	for n := range cmds {
		names = append(names, n)
	}
	slices.Sort(names)

	fmt.Fprintf(w, "HonorHub API %s\n\nUsage:\n  %-30s %s\n", version.String(), "honorhub", "Start the API server")
	for _, n := range names {
		fmt.Fprintf(w, "  %-30s %s\n", "honorhub "+cmds[n].usage, cmds[n].help)
	}
}
