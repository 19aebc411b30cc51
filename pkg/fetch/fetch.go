// Package fetch runs queries against a Gerrit server over SSH.
//
// It shells out to the ssh binary the same way an interactive
// `gerrit query` does, requesting the JSON export with all approvals
// and comments for changes that are open or recently active.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/0xfelis/gerrit-stats/pkg/logger"
)

// Client runs Gerrit queries.
type Client interface {
	// Query fetches the raw JSON export for changes that are open or
	// were active within the past days.
	//
	// Parameters:
	//   - ctx: Cancels or times out the query run
	//   - days: Activity window in days
	//
	// Returns the raw export bytes or an error when the ssh command
	// fails.
	Query(ctx context.Context, days int) ([]byte, error)

	// Key returns the cache key describing a query against this
	// server with the given window.
	Key(days int) string
}

// CacheKey builds the cache key for a query against host:port with
// the given activity window.
func CacheKey(host string, port, days int) string {
	if port == 0 {
		port = 29418
	}
	return fmt.Sprintf("%s:%d/%dd", host, port, days)
}

// Config contains the query transport settings.
type Config struct {
	// Host is the Gerrit SSH host.
	Host string

	// Port is the Gerrit SSH port, 29418 by default.
	Port int

	// Timeout bounds one query run when the caller's context carries
	// no deadline.
	Timeout time.Duration
}

// client implements the Client interface by invoking ssh.
type client struct {
	config Config
	logger logger.Logger
}

// New creates a query client.
//
// Returns ErrNoHost when no host is configured.
func New(cfg Config, log logger.Logger) (Client, error) {
	if cfg.Host == "" {
		return nil, ErrNoHost
	}
	if cfg.Port == 0 {
		cfg.Port = 29418
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}

	return &client{config: cfg, logger: log}, nil
}

// Query implements Client.Query.
func (c *client) Query(ctx context.Context, days int) ([]byte, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	args := queryArgs(c.config.Host, c.config.Port, days)
	c.logger.Debug("running gerrit query", "host", c.config.Host, "days", days)

	start := time.Now()
	cmd := exec.CommandContext(ctx, "ssh", args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			return nil, fmt.Errorf("%w: %v: %s", ErrQueryFailed, err, msg)
		}
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	c.logger.Info("gerrit query finished",
		"host", c.config.Host,
		"bytes", len(out),
		"duration", time.Since(start))

	return out, nil
}

// Key implements Client.Key.
func (c *client) Key(days int) string {
	return CacheKey(c.config.Host, c.config.Port, days)
}

// queryArgs builds the ssh argument list for one query run.
func queryArgs(host string, port, days int) []string {
	return []string{
		"-p", strconv.Itoa(port),
		host,
		"gerrit", "query",
		"--format=JSON", "--all-approvals", "--comments",
		"--",
		fmt.Sprintf("-age:%dd", days), "OR", "status:open",
	}
}
