package solo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/yaklabco/solo/cmd/solo/version"
	"github.com/yaklabco/solo/config"
	"github.com/yaklabco/solo/internal/prettylog"
	"github.com/yaklabco/solo/pkg/demo"
	"github.com/yaklabco/solo/pkg/inspect"
	"github.com/yaklabco/solo/pkg/singleton"
)

const (
	shortDescription = "solo inspects lazily constructed, lockable singletons."
)

type rootCmdOptions struct {
	loadOptions *config.LoadOptions
}

type Option func(*rootCmdOptions)

// This is intentionally designed to be unusable from outside this package,
// as it exists purely for testing purposes.
func withLoadOptions(opts *config.LoadOptions) Option {
	return func(rootOpts *rootCmdOptions) {
		rootOpts.loadOptions = opts
	}
}

// session is the state shared by every subcommand of one invocation.
type session struct {
	cfg     *config.Config
	verbose *log.Logger
}

// newRegistry returns a registry configured from cfg with a gate of its own,
// so the demo never touches singleton.DefaultGate.
func (s *session) newRegistry(name string) *singleton.Registry {
	opts := append(s.cfg.RegistryOptions(slog.Default()),
		singleton.WithName(name),
		singleton.WithGate(&singleton.Gate{}),
	)
	return singleton.New(opts...)
}

func (s *session) lockAfterInit(reg *singleton.Registry) {
	if !s.cfg.LockAfterInit || reg.TornDown() {
		return
	}
	reg.Gate().Lock()
	s.verbose.Printf("locked gate of registry %q", reg.Name())
}

func NewRootCmd(ctx context.Context, opts ...Option) *cobra.Command {
	rootCmdOpts := &rootCmdOptions{}
	for _, opt := range opts {
		opt(rootCmdOpts)
	}

	var (
		debug         bool
		verbose       bool
		threadSafe    bool
		lockAfterInit bool
		violationMode string
	)
	sess := &session{}

	rootCmd := &cobra.Command{
		Use:   "solo",
		Short: shortDescription,
		Example: `	# Walk through construction, locking and teardown
	solo demo

	# Show the demo registry, filtered by type
	solo list --match 'demo.*'

	# Manage configuration
	solo config show`,
		Version:       version.String(inspect.ColorEnabled(os.Stdout)),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(rootCmdOpts.loadOptions)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("debug") {
				cfg.Debug = debug
			}
			if flags.Changed("verbose") {
				cfg.Verbose = verbose
			}
			if flags.Changed("thread-safe") {
				cfg.ThreadSafe = threadSafe
			}
			if flags.Changed("lock-after-init") {
				cfg.LockAfterInit = lockAfterInit
			}
			if flags.Changed("violation-mode") {
				cfg.ViolationMode = violationMode
				if result := cfg.Validate(); result.HasErrors() {
					return errors.New(result.ErrorMessage())
				}
			}

			prettylog.SetupPrettyLogger(cmd.ErrOrStderr(), cfg.Debug)

			verboseOut := io.Discard
			if cfg.Verbose {
				verboseOut = cmd.ErrOrStderr()
			}
			sess.cfg = cfg
			sess.verbose = log.New(verboseOut, "[SOLO] ", 0)
			sess.verbose.Printf("config loaded from %q", cfg.ConfigFile())

			return nil
		},
	}
	rootCmd.SetContext(ctx)

	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "turn on debug messages")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show verbose output")
	rootCmd.PersistentFlags().BoolVar(&threadSafe, "thread-safe", config.DefaultThreadSafe, "guard first construction with a mutex")
	rootCmd.PersistentFlags().BoolVar(&lockAfterInit, "lock-after-init", config.DefaultLockAfterInit, "lock the gate once registrations are done")
	rootCmd.PersistentFlags().StringVar(&violationMode, "violation-mode", config.DefaultViolationMode, "reaction to a violation: panic or log")

	rootCmd.AddCommand(
		newDemoCmd(sess),
		newListCmd(sess),
		newConfigCmd(sess),
	)

	return rootCmd
}

func newDemoCmd(sess *session) *cobra.Command {
	var (
		workers int
		keep    bool
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the counter walk-through and the concurrent construction check",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := sess.newRegistry("demo")
			report, err := demo.Run(cmd.Context(), reg, demo.Options{Workers: workers, Teardown: !keep})
			if err != nil {
				return err
			}
			sess.lockAfterInit(reg)

			writeReport(cmd.OutOrStdout(), report)
			if report.TeardownErr != nil {
				return fmt.Errorf("teardown: %w", report.TeardownErr)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", demo.DefaultWorkers, "goroutines racing for first access")
	cmd.Flags().BoolVar(&keep, "keep", false, "skip teardown at the end")

	return cmd
}

func newListCmd(sess *session) *cobra.Command {
	var (
		match    string
		teardown bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the singletons held by the demo registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := sess.newRegistry("demo")
			if _, err := demo.Run(cmd.Context(), reg, demo.Options{Teardown: teardown}); err != nil {
				return err
			}
			sess.lockAfterInit(reg)

			return inspect.Render(cmd.OutOrStdout(), reg, inspect.Options{
				Match: match,
				Color: sess.cfg.EnableColor && inspect.ColorEnabled(os.Stdout),
			})
		},
	}
	cmd.Flags().StringVarP(&match, "match", "m", "", "glob over type names")
	cmd.Flags().BoolVar(&teardown, "teardown", false, "tear the registry down before listing")

	return cmd
}

func writeReport(out io.Writer, r demo.Report) {
	p := func(format string, args ...any) {
		_, _ = fmt.Fprintf(out, format+"\n", args...)
	}
	p("counter after mutable increment: %d", r.CounterAfterMutable)
	p("counter seen through const:      %d", r.CounterSeenConst)
	p("mutable access while locked:     %s", describe(r.LockedMutable))
	p("try-mutable while locked:        %s", describe(r.LockedTryMutable))
	p("mutable access after unlock:     %t", r.UnlockedMutableOK)
	p("constructions across %d workers: %d (same instance: %t, hits: %d)",
		r.Workers, r.Constructions, r.SameInstance, r.Hits)
	p("destroyed before teardown:       %t", r.DestroyedBefore)
	p("destroyed after teardown:        %t", r.DestroyedAfter)
}

func describe(err error) string {
	if err == nil {
		return "allowed"
	}
	return err.Error()
}

// ExitStatus queries the error for an exit status. If the error is nil, it
// returns 0. If the error does not implement ExitStatus() int, it returns 1.
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	var exit interface{ ExitStatus() int }
	if errors.As(err, &exit) {
		return exit.ExitStatus()
	}
	return 1
}

// ExecuteWithFang runs the root Cobra command with Fang-specific options.
func ExecuteWithFang(ctx context.Context, rootCmd *cobra.Command) error {
	//nolint:wrapcheck // top-level error from cobra, wrapping not needed
	return fang.Execute(
		ctx, rootCmd, fang.WithVersion(rootCmd.Version), fang.WithoutManpage())
}
