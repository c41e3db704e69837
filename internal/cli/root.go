// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

// Package cli implements paperlensctl, the operator command line for
// inspecting and maintaining the profiles in a PaperLens store.
//
// Commands open the configured store directly, so they should not run
// against a Badger directory held open by a live server. Redis and
// in-memory stores have no such restriction.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/paperlens/internal/app"
	"github.com/tomtom215/paperlens/internal/config"
	"github.com/tomtom215/paperlens/internal/logging"
)

// Set via -ldflags at build time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Options configures the command tree. Zero values select the process
// defaults.
type Options struct {
	Out io.Writer
	Err io.Writer

	// Open builds the runtime a command operates on.
	Open func(ctx context.Context) (*app.App, error)

	Now func() time.Time
}

type runner struct {
	opts    Options
	asJSON  bool
	timeout time.Duration
}

// NewRootCommand returns the paperlensctl command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.Open == nil {
		opts.Open = openFromConfig(opts.Err)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	r := &runner{opts: opts}

	root := &cobra.Command{
		Use:           "paperlensctl",
		Short:         "Inspect and maintain PaperLens user profiles",
		Long:          "paperlensctl reads the store configured for the PaperLens server (config.yaml and environment) and operates on its profiles offline.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)
	root.PersistentFlags().BoolVar(&r.asJSON, "json", false, "Print machine-readable JSON")
	root.PersistentFlags().DurationVar(&r.timeout, "timeout", 30*time.Second, "Deadline for the whole command")

	root.AddCommand(
		r.versionCmd(),
		r.usersCmd(),
		r.profileCmd(),
		r.similarCmd(),
		r.staleCmd(),
		r.refreshCmd(),
		r.eraseCmd(),
		r.nextAnchorCmd(),
		r.weeklyMixCmd(),
	)
	return root
}

// Execute runs paperlensctl with the process arguments.
func Execute() error {
	return NewRootCommand(Options{}).Execute()
}

// openFromConfig loads the server configuration without the event bus and
// logs warnings to w.
func openFromConfig(w io.Writer) func(ctx context.Context) (*app.App, error) {
	return func(ctx context.Context) (*app.App, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg.Events.Enabled = false
		logging.Init(logging.Config{
			Level:  "warn",
			Format: "console",
			Output: w,
		})
		return app.New(ctx, cfg)
	}
}

// withApp opens the runtime for one command and always closes it.
func (r *runner) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	a, err := r.opts.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			fmt.Fprintf(r.opts.Err, "warning: %v\n", cerr)
		}
	}()
	return fn(ctx, a)
}

func (r *runner) printJSON(v any) error {
	enc := json.NewEncoder(r.opts.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (r *runner) printf(format string, args ...any) {
	fmt.Fprintf(r.opts.Out, format, args...)
}

func (r *runner) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			r.printf("paperlensctl %s (commit: %s, built: %s)\n", Version, Commit, BuildDate)
		},
	}
}
