// Package cli implements the orderdesk maintenance subcommands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

const usage = `usage:
  orderdesk                                   start the HTTP server
  orderdesk jobs trigger sheet-refresh [url] [sheet]  enqueue a sheet refresh
  orderdesk jobs stats                        show default queue counters
  orderdesk lookup <orders> <codes> <out.xlsx> answer a code file offline`

// ErrUsage reports malformed arguments.
var ErrUsage = errors.New(usage)

// Run dispatches one subcommand.
func Run(ctx context.Context, redisAddr string, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return ErrUsage
	}
	switch args[0] {
	case "jobs":
		return runJobs(ctx, redisAddr, args[1:], stdout)
	case "lookup":
		if len(args) != 4 {
			return ErrUsage
		}
		f, err := os.Create(args[3])
		if err != nil {
			return err
		}
		summary, err := Lookup(ctx, args[1], args[2], f)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(stdout, "column %q (%s): %d of %d codes matched\n", summary.Column, summary.Source, summary.Matched, summary.Codes)
		return err
	default:
		return ErrUsage
	}
}

func runJobs(ctx context.Context, redisAddr string, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return ErrUsage
	}
	c := NewJobsCLI(redisAddr)
	defer func() {
		_ = c.Close()
	}()
	switch {
	case args[0] == "trigger" && len(args) >= 2:
		info, err := c.Trigger(ctx, args[1], args[2:]...)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(stdout, "enqueued %s as %s\n", info.Type, info.ID)
		return err
	case args[0] == "stats":
		stats, err := c.InspectQueue(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(stdout, "queue=%s size=%d pending=%d active=%d scheduled=%d retry=%d failed=%d\n",
			stats.Queue, stats.Size, stats.Pending, stats.Active, stats.Scheduled, stats.Retry, stats.Failed)
		return err
	default:
		return ErrUsage
	}
}
