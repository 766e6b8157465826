// logoguard hosts the validate_logo_url tool over MCP and offers one-shot
// checks, audit history and credential helpers from the command line.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matiasleandrokruk/logoguard/internal/infra/config"
	"github.com/matiasleandrokruk/logoguard/internal/infra/logging"
	"github.com/matiasleandrokruk/logoguard/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(stderr, "Error:", exitErr.Message) //nolint:errcheck
			}
			return exitErr.Code
		}
		fmt.Fprintln(stderr, "Error:", err) //nolint:errcheck
		return 1
	}
	return 0
}

// annotationNoConfig marks commands that run without loading config.
const annotationNoConfig = "logoguard/no-config"

// rootOptions is shared by every subcommand; cfg is filled in PersistentPreRunE.
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	cfg        config.Config
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           version.Name,
		Short:         "Logo URL validation over MCP",
		Long:          "logoguard exposes validate_logo_url to MCP clients and checks logo URLs from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[annotationNoConfig] == "true" {
				return nil
			}
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return exitError(exitUsage, "%v", err)
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = opts.logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.LogFormat = opts.logFormat
			}
			opts.cfg = cfg
			logging.SetupWriter(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate(version.String() + "\n")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return exitError(exitUsage, "%v", err)
	})

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Log format (json, console)")

	cmd.AddCommand(
		newServeCmd(opts),
		newCheckCmd(opts),
		newHistoryCmd(opts),
		newTokenCmd(opts),
		newHashKeyCmd(),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoConfig: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		},
	}
}
