// Package main provides the gerrit-stats CLI application.
//
// gerrit-stats summarizes code-review activity on a Gerrit server as
// per-author tables: changes created, merged and abandoned, review
// comments written and votes cast. Query results are cached locally
// so repeated runs do not hit the server.
package main

import (
	"flag"
	"fmt"
	"os"
)

// version is set during build time.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes the main application logic.
func run() error {
	// Define global flags.
	configPath := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "show version information")

	// Parse command.
	flag.Parse()

	// Handle version flag.
	if *showVersion {
		fmt.Printf("gerrit-stats %s\n", version)
		return nil
	}

	// Get command; report is the default.
	args := flag.Args()
	if len(args) == 0 {
		return runReportCommand(*configPath, nil)
	}

	command := args[0]

	switch command {
	case "report":
		return runReportCommand(*configPath, args[1:])
	case "fetch":
		return runFetchCommand(*configPath, args[1:])
	case "watch":
		return runWatchCommand(*configPath, args[1:])
	case "config":
		return runConfigCommand(*configPath, args[1:])
	case "help":
		return showUsage()
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// runReportCommand runs the report command.
func runReportCommand(configPath string, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	days := fs.Int("days", 0, "activity window in days (default from config)")
	refresh := fs.Bool("refresh", false, "refetch from the server even when the cache is fresh")
	all := fs.Bool("all", false, "print every report")
	selected := reportFlags(fs)

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd := &reportCommand{
		configPath: configPath,
		days:       *days,
		refresh:    *refresh,
		names:      selectedReports(selected, *all),
	}

	return cmd.Execute()
}

// runFetchCommand runs the fetch command.
func runFetchCommand(configPath string, args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	days := fs.Int("days", 0, "activity window in days (default from config)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd := &fetchCommand{
		configPath: configPath,
		days:       *days,
	}

	return cmd.Execute()
}

// runWatchCommand runs the watch command.
func runWatchCommand(configPath string, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	days := fs.Int("days", 0, "activity window in days (default from config)")
	all := fs.Bool("all", false, "print every report")
	noClear := fs.Bool("no-clear", false, "do not clear the screen between renders")
	selected := reportFlags(fs)

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd := &watchCommand{
		configPath: configPath,
		days:       *days,
		names:      selectedReports(selected, *all),
		noClear:    *noClear,
	}

	return cmd.Execute()
}

// runConfigCommand runs the config command.
func runConfigCommand(configPath string, args []string) error {
	cmd := &configCommand{
		configPath: configPath,
	}
	return cmd.Execute(args)
}

// reportFlags registers one selection flag per built-in report and
// returns the flag values keyed by report name.
func reportFlags(fs *flag.FlagSet) map[string]*bool {
	return map[string]*bool{
		"change-activity": fs.Bool("change-activity", false, "changes created, merged and abandoned per author"),
		"open-by-author":  fs.Bool("open-by-author", false, "open changes per author, by review state"),
		"open-activity":   fs.Bool("open-activity", false, "comment and vote activity on open changes"),
		"activity":        fs.Bool("activity", false, "comments and votes during the activity window"),
	}
}

// selectedReports converts the selection flags into an ordered name
// list; nil means the default set.
func selectedReports(selected map[string]*bool, all bool) []string {
	if all {
		return nil
	}
	// Keep the default print order.
	var names []string
	for _, name := range []string{"open-by-author", "open-activity", "change-activity", "activity"} {
		if *selected[name] {
			names = append(names, name)
		}
	}
	return names
}

// showUsage displays usage information.
func showUsage() error {
	usage := `gerrit-stats - per-author code-review statistics for Gerrit

Usage:
  gerrit-stats [flags] <command> [command flags]

Commands:
  report      Render activity reports (default command)
  fetch       Query the server and update the local cache
  watch       Re-render reports whenever the cache is updated
  config      Configuration management (show, path, init)
  help        Show this help message

Global Flags:
  -config     Path to configuration file
  -version    Show version information

Report Command Flags:
  -days             Activity window in days (default from config)
  -refresh          Refetch from the server even when the cache is fresh
  -all              Print every report
  -open-by-author   Open changes per author, by review state
  -open-activity    Comment and vote activity on open changes
  -change-activity  Changes created, merged and abandoned per author
  -activity         Comments and votes during the activity window

Watch Command Flags:
  -days       Activity window in days (default from config)
  -all        Print every report
  -no-clear   Do not clear the screen between renders

Examples:
  # Render every report from the cache, fetching when stale
  gerrit-stats report

  # Only the open-change reports, over the past two weeks
  gerrit-stats report -days 14 -open-by-author -open-activity

  # Force a server round trip
  gerrit-stats report -refresh

  # Update the cache without rendering
  gerrit-stats fetch

  # Keep the terminal updated as the cache changes
  gerrit-stats watch

  # Print the effective configuration
  gerrit-stats config show

Version: %s
`

	fmt.Printf(usage, version)
	return nil
}
