package solo

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yaklabco/solo/config"
	"github.com/yaklabco/solo/pkg/env"
)

func newConfigCmd(sess *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage solo configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, sess)
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runConfigShow(cmd, sess)
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show configuration file locations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "user:    %s\n", config.ResolvePaths().ConfigFilePath())
				_, _ = fmt.Fprintf(out, "project: ./%s.yaml\n", config.ProjectConfigFileName)
				return nil
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write a default user configuration file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				path, err := config.WriteDefaultConfig()
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created config file: %s\n", path)
				return nil
			},
		},
	)

	return cmd
}

func runConfigShow(cmd *cobra.Command, sess *session) error {
	cfg := sess.cfg
	out := cmd.OutOrStdout()

	_, _ = fmt.Fprintln(out, "# Effective solo configuration")
	if cfg.ConfigFile() != "" {
		_, _ = fmt.Fprintf(out, "# Loaded from: %s\n", cfg.ConfigFile())
	} else {
		_, _ = fmt.Fprintln(out, "# No config file loaded (using defaults)")
	}
	_, _ = fmt.Fprintln(out)

	_, _ = fmt.Fprintf(out, "thread_safe: %t\n", cfg.ThreadSafe)
	_, _ = fmt.Fprintf(out, "lock_after_init: %t\n", cfg.LockAfterInit)
	_, _ = fmt.Fprintf(out, "violation_mode: %s\n", cfg.ViolationMode)
	_, _ = fmt.Fprintf(out, "verbose: %t\n", cfg.Verbose)
	_, _ = fmt.Fprintf(out, "debug: %t\n", cfg.Debug)
	_, _ = fmt.Fprintf(out, "enable_color: %t\n", cfg.EnableColor)

	if overrides := env.Prefixed(os.Environ()); len(overrides) > 0 {
		_, _ = fmt.Fprintln(out)
		_, _ = fmt.Fprintln(out, "# Environment")
		for _, kv := range overrides {
			_, _ = fmt.Fprintf(out, "# %s\n", kv)
		}
	}

	return nil
}
