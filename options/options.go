//go:build linux

// Package options parses command-line flags into the records the core
// consumes: a task.Task to run, and the host-side configuration for the
// Cgroup Controller and slot pool.
package options

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dsinha-oss/judgebox/cgroup"
	"github.com/dsinha-oss/judgebox/logger"
	"github.com/dsinha-oss/judgebox/task"
	"github.com/dsinha-oss/judgebox/version"
	"github.com/inhies/go-bytesize"
	"github.com/urfave/cli/v3"
)

/**
 * Host-side configuration needed to run the Sandbox Entry: where the
 * cgroup v2 hierarchy and slot pool live, and how logging is set up.
 */
type HostConfig struct {
	CgroupMount  string
	CgroupParent string
	PoolDBPath   string
	PoolSize     int
	Limits       cgroup.Limits
	LogLevel     slog.Level
	LogFormat    logger.LogFormat
}

/**
 * Parsed result of the "run" subcommand: a Task plus the host
 * configuration needed to execute it.
 */
type RunOptions struct {
	Task task.Task
	Host HostConfig
}

/**
 * Parsed result of the "provision" subcommand.
 */
type ProvisionOptions struct {
	CgroupMount  string
	CgroupParent string
}

/**
 * Result of ParseCli: exactly one of Run or Provision is set, matching
 * whichever subcommand the user invoked.
 */
type Result struct {
	Run       *RunOptions
	Provision *ProvisionOptions
}

/**
 * Builds a `RunOptions` struct from CLI context.
 * @param c the CLI context
 * @return the built RunOptions and error if any
 */
func buildRunOptions(c *cli.Command) (*RunOptions, error) {
	argv := c.Args().Slice()
	if len(argv) == 0 {
		return nil, fmt.Errorf("missing command; usage: judgeboxd run [options] -- command [args...]")
	}

	// Memory size parsing.
	mem, err := bytesize.Parse(c.String("memory"))
	if err != nil {
		return nil, fmt.Errorf("bad --memory %q: %v", c.String("memory"), err)
	}

	// Output size parsing.
	stor, err := bytesize.Parse(c.String("max-output"))
	if err != nil {
		return nil, fmt.Errorf("bad --max-output %q: %v", c.String("max-output"), err)
	}

	// Parse environment variables. They are not merged with the Launcher's
	// baseline set, which is used only when none are given.
	var userEnv []task.EnvVar
	for _, e := range c.StringSlice("env") {
		ev, err := ParseEnv(e)
		if err != nil {
			return nil, err
		}
		userEnv = append(userEnv, ev)
	}

	// Log level parsing.
	logLevel, err := parseLogLevel(c.String("log-level"))
	if err != nil {
		return nil, err
	}

	// Log format parsing.
	logFormat, err := parseLogFormat(c.String("log-format"))
	if err != nil {
		return nil, err
	}

	t := task.Task{
		ExecPath:     argv[0],
		Args:         argv,
		WorkDir:      c.String("workdir"),
		InputFile:    c.String("stdin"),
		OutputFile:   c.String("stdout"),
		ErrorFile:    c.String("stderr"),
		Env:          userEnv,
		MaxCPUTime:   uint64(c.Int("max-cpu-time")),
		MaxMemory:    uint64(mem),
		MaxFileSize:  uint64(stor),
		MaxProcesses: uint64(c.Int("max-processes")),
	}

	host := HostConfig{
		CgroupMount:  c.String("cgroup-mount"),
		CgroupParent: c.String("cgroup-parent"),
		PoolDBPath:   c.String("pool-db"),
		PoolSize:     int(c.Int("pool-size")),
		Limits:       cgroup.DefaultLimits(),
		LogLevel:     logLevel,
		LogFormat:    logFormat,
	}

	return &RunOptions{Task: t, Host: host}, nil
}

/**
 * Parses CLI flags into a Result describing which subcommand ran.
 * @param ctx the parent context
 * @param args the process argv
 * @return the parsed Result and error if any
 */
func ParseCli(ctx context.Context, args []string) (*Result, error) {
	var result Result

	cmd := &cli.Command{
		Name:    "judgeboxd",
		Usage:   "Runs a single guest under bounded CPU, memory, output and process limits.",
		Version: version.Version(),
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Execute a guest and print its verdict",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "workdir", Value: ".", Usage: "Working directory for the guest"},
					&cli.StringFlag{Name: "stdin", Usage: "Path used as the guest's standard input"},
					&cli.StringFlag{Name: "stdout", Usage: "Path used as the guest's standard output"},
					&cli.StringFlag{Name: "stderr", Usage: "Path used as the guest's standard error"},
					&cli.StringSliceFlag{Name: "env", Usage: "Sets an environment variable as `KEY=VALUE` in the guest"},
					&cli.IntFlag{Name: "max-cpu-time", Value: 1, Usage: "CPU time limit in whole seconds"},
					&cli.StringFlag{Name: "memory", Value: "256MB", Usage: "Memory to allocate to the guest (e.g., 64MB, 1GB)"},
					&cli.StringFlag{Name: "max-output", Value: "64KB", Usage: "Output file size limit (e.g., 64KB)"},
					&cli.IntFlag{Name: "max-processes", Value: 4, Usage: "Process count limit"},
					&cli.StringFlag{Name: "cgroup-mount", Value: "/sys/fs/cgroup", Usage: "cgroup v2 unified mount"},
					&cli.StringFlag{Name: "cgroup-parent", Value: "/sys/fs/cgroup/judgebox", Usage: "Parent directory holding pooled slots"},
					&cli.StringFlag{Name: "pool-db", Value: "/var/run/judgebox/pool.db", Usage: "Cgroup slot lease database path"},
					&cli.IntFlag{Name: "pool-size", Value: 8, Usage: "Number of pooled cgroup slots"},
					&cli.StringFlag{Name: "log-level", Value: "error", Usage: "Log verbosity (info|warn|error)"},
					&cli.StringFlag{Name: "log-format", Value: "text", Usage: "Log format (text|json)"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					opts, err := buildRunOptions(c)
					if err != nil {
						return err
					}
					result.Run = opts
					return nil
				},
			},
			{
				Name:  "provision",
				Usage: "One-time host setup: parent cgroup directory and controller enablement",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "cgroup-mount", Value: "/sys/fs/cgroup", Usage: "cgroup v2 unified mount"},
					&cli.StringFlag{Name: "cgroup-parent", Value: "/sys/fs/cgroup/judgebox", Usage: "Parent directory holding pooled slots"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					result.Provision = &ProvisionOptions{
						CgroupMount:  c.String("cgroup-mount"),
						CgroupParent: c.String("cgroup-parent"),
					}
					return nil
				},
			},
		},
	}

	if err := cmd.Run(ctx, args); err != nil {
		// display help whenever parsing or the subcommand fails
		_ = cli.ShowAppHelp(cmd)
		return nil, err
	}

	if result.Run == nil && result.Provision == nil {
		return nil, nil
	}
	return &result, nil
}
