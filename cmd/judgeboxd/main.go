//go:build linux

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/dsinha-oss/judgebox/cgroup"
	"github.com/dsinha-oss/judgebox/logger"
	"github.com/dsinha-oss/judgebox/options"
	"github.com/dsinha-oss/judgebox/sandboxentry"
)

/**
 * Application entry point.
 */
func main() {
	// Parse command-line options.
	result, err := options.ParseCli(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "parsing error:", err)
		os.Exit(1)
	} else if result == nil {
		// No result means help or version was printed.
		os.Exit(0)
	}

	if result.Provision != nil {
		runProvision(result.Provision)
		return
	}

	runGuest(result.Run)
}

/**
 * Performs the one-time host setup: verifies the cgroup v2 mount and
 * enables the controllers a leased slot needs on the parent directory.
 */
func runProvision(p *options.ProvisionOptions) {
	log := logger.CreateLogger(&logger.LoggerOpts{LogLevel: slog.LevelInfo, LogFormat: logger.LogText})

	if err := os.MkdirAll(p.CgroupParent, 0o755); err != nil {
		log.Error("provision failed", slog.Any("err", err))
		os.Exit(1)
	}

	ctrl := cgroup.NewController(p.CgroupMount, cgroup.DefaultLimits())
	if err := ctrl.EnableSubtreeControllers(p.CgroupParent); err != nil {
		log.Error("provision failed", slog.Any("err", err))
		os.Exit(1)
	}

	log.Info("host provisioned", slog.String("cgroup_parent", p.CgroupParent))
}

/**
 * Runs a single guest to completion and prints its verdict as JSON on
 * standard output.
 */
func runGuest(opts *options.RunOptions) {
	log := logger.CreateLogger(&logger.LoggerOpts{
		LogLevel:  opts.Host.LogLevel,
		LogFormat: opts.Host.LogFormat,
	})
	log.Info("starting judgeboxd", slog.String("exec", opts.Task.ExecPath))

	ctrl := cgroup.NewController(opts.Host.CgroupMount, opts.Host.Limits)

	pool, err := cgroup.NewPool(opts.Host.PoolDBPath, opts.Host.CgroupParent, opts.Host.PoolSize)
	if err != nil {
		log.Error("error opening cgroup slot pool", slog.Any("err", err))
		os.Exit(1)
	}
	defer pool.Close()

	entry := sandboxentry.New(ctrl, pool, log)
	verdict := entry.SecureExecute(context.Background(), opts.Task)

	encoded, err := json.Marshal(verdict)
	if err != nil {
		log.Error("error encoding verdict", slog.Any("err", err))
		os.Exit(1)
	}
	fmt.Println(string(encoded))
}
