package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/0xfelis/gerrit-stats/pkg/cache"
	"github.com/0xfelis/gerrit-stats/pkg/config"
	"github.com/0xfelis/gerrit-stats/pkg/fetch"
	"github.com/0xfelis/gerrit-stats/pkg/gerrit"
	"github.com/0xfelis/gerrit-stats/pkg/logger"
	"github.com/0xfelis/gerrit-stats/pkg/records"
	"github.com/0xfelis/gerrit-stats/pkg/report"
	"github.com/0xfelis/gerrit-stats/pkg/watch"
)

// reportCommand renders the activity reports, querying the server
// when the cache has no fresh result.
type reportCommand struct {
	configPath string
	days       int
	refresh    bool
	names      []string
}

// Execute runs the report command.
func (c *reportCommand) Execute() error {
	cfg, log, err := initialize(c.configPath)
	if err != nil {
		return err
	}

	days := windowDays(cfg, c.days)

	store, err := cache.New(cache.Config{Path: cfg.Cache.Path}, log)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer closeStore(store, log)

	data, err := loadResults(cfg, log, store, days, c.refresh)
	if err != nil {
		return err
	}

	set, err := buildRecordSet(cfg, data, days)
	if err != nil {
		return err
	}

	reports, err := resolveReports(c.names)
	if err != nil {
		return err
	}

	return renderReports(os.Stdout, set, reports)
}

// fetchCommand forces a server round trip and updates the cache.
type fetchCommand struct {
	configPath string
	days       int
}

// Execute runs the fetch command.
func (c *fetchCommand) Execute() error {
	cfg, log, err := initialize(c.configPath)
	if err != nil {
		return err
	}

	days := windowDays(cfg, c.days)

	store, err := cache.New(cache.Config{Path: cfg.Cache.Path}, log)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer closeStore(store, log)

	data, err := fetchResults(cfg, log, store, days)
	if err != nil {
		return err
	}

	fmt.Printf("Updated %s (%d bytes, past %d days)\n", store.Path(), len(data), days)
	return nil
}

// watchCommand re-renders the reports whenever the cache file is
// updated, for running next to a periodic fetch.
type watchCommand struct {
	configPath string
	days       int
	names      []string
	noClear    bool
}

// Execute runs the watch command.
func (c *watchCommand) Execute() error {
	cfg, log, err := initialize(c.configPath)
	if err != nil {
		return err
	}

	days := windowDays(cfg, c.days)

	reports, err := resolveReports(c.names)
	if err != nil {
		return err
	}

	// Resolve the cache file location (the store expands ~) before
	// registering the filesystem watch.
	store, err := cache.New(cache.Config{Path: cfg.Cache.Path}, log)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	cachePath := store.Path()
	closeStore(store, log)

	// Clear between renders only when writing to an actual terminal.
	clearScreen := !c.noClear && term.IsTerminal(int(os.Stdout.Fd()))

	render := func() {
		if err := c.render(cfg, log, cachePath, days, reports, clearScreen); err != nil {
			log.Error("render failed", "error", err)
		}
	}

	w, err := watch.New(watch.Config{Path: cachePath}, log)
	if err != nil {
		return fmt.Errorf("failed to watch cache: %w", err)
	}
	defer func() {
		if err := w.Close(); err != nil {
			log.Error("failed to close watcher", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	render()
	return w.Run(ctx, render)
}

// render draws one snapshot of the reports from the cache.
//
// The store is opened per render so a concurrent fetch process can
// take the database lock in between.
func (c *watchCommand) render(cfg *config.Config, log logger.Logger, cachePath string, days int, reports []report.Report, clearScreen bool) error {
	store, err := cache.New(cache.Config{Path: cachePath, Timeout: 5 * time.Second}, log)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer closeStore(store, log)

	key := fetch.CacheKey(cfg.Gerrit.Host, cfg.Gerrit.Port, days)
	data, err := store.Get(key, 0)
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			fmt.Printf("No cached result for %s yet; run gerrit-stats fetch\n", key)
			return nil
		}
		return err
	}

	set, err := buildRecordSet(cfg, data, days)
	if err != nil {
		return err
	}

	if clearScreen {
		fmt.Print("\033[2J\033[H")
	}
	fmt.Printf("gerrit-stats %s - %s\n\n", key, time.Now().Format("2006-01-02 15:04:05"))

	return renderReports(os.Stdout, set, reports)
}

// initialize loads the configuration and builds the logger.
func initialize(configPath string) (*config.Config, logger.Logger, error) {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})

	return cfg, log, nil
}

// windowDays resolves the activity window, preferring the command
// line over the configuration.
func windowDays(cfg *config.Config, flagDays int) int {
	if flagDays > 0 {
		return flagDays
	}
	return cfg.Activity.Days
}

// closeStore closes the cache, logging instead of failing.
func closeStore(store cache.Store, log logger.Logger) {
	if err := store.Close(); err != nil {
		log.Error("failed to close cache", "error", err)
	}
}

// loadResults returns the raw query export, served from the cache
// when a fresh enough entry exists.
func loadResults(cfg *config.Config, log logger.Logger, store cache.Store, days int, refresh bool) ([]byte, error) {
	key := fetch.CacheKey(cfg.Gerrit.Host, cfg.Gerrit.Port, days)

	if !refresh {
		data, err := store.Get(key, cfg.Cache.TTL)
		if err == nil {
			log.Debug("serving cached result", "key", key, "bytes", len(data))
			return data, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			return nil, err
		}
	}

	return fetchResults(cfg, log, store, days)
}

// fetchResults queries the server and stores the export.
func fetchResults(cfg *config.Config, log logger.Logger, store cache.Store, days int) ([]byte, error) {
	client, err := fetch.New(fetch.Config{
		Host:    cfg.Gerrit.Host,
		Port:    cfg.Gerrit.Port,
		Timeout: cfg.Gerrit.QueryTimeout,
	}, log)
	if err != nil {
		return nil, err
	}

	data, err := client.Query(context.Background(), days)
	if err != nil {
		return nil, err
	}

	if err := store.Put(client.Key(days), data); err != nil {
		log.Warn("failed to cache query result", "key", client.Key(days), "error", err)
	}

	return data, nil
}

// buildRecordSet parses the raw export into the windowed record set
// the reports run over.
func buildRecordSet(cfg *config.Config, data []byte, days int) (*records.Set, error) {
	results, err := gerrit.Parse(data, gerrit.Options{
		TechnicalAccounts: cfg.Gerrit.TechnicalAccounts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse query result: %w", err)
	}

	return records.NewSet(results, days, time.Now()), nil
}

// resolveReports maps the selected names to reports; an empty
// selection means every built-in report.
func resolveReports(names []string) ([]report.Report, error) {
	if len(names) == 0 {
		return report.All(), nil
	}

	reports := make([]report.Report, 0, len(names))
	for _, name := range names {
		r, err := report.ByName(name)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// renderReports prints each report's title and table, separated by
// two blank lines.
func renderReports(w io.Writer, set *records.Set, reports []report.Report) error {
	for i, r := range reports {
		if i > 0 {
			fmt.Fprint(w, "\n\n")
		}
		fmt.Fprintf(w, "%s\n\n", r.Title())
		if err := r.Run(w, set); err != nil {
			return fmt.Errorf("report %s failed: %w", r.Name(), err)
		}
	}
	return nil
}
