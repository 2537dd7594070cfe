package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/saltyster/sbom-to-csv/internal/config"
	"github.com/saltyster/sbom-to-csv/internal/logging"
	"github.com/saltyster/sbom-to-csv/internal/model"
	"github.com/saltyster/sbom-to-csv/internal/pipeline"
)

var version = "dev"

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return exitOK
	}
	if errors.Is(err, model.ErrUsage) {
		fmt.Fprintf(stderr, "Error: %v\n\n%s", err, cmd.UsageString())
		return exitUsage
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitFailure
}

func newRootCmd() *cobra.Command {
	v := config.New()

	root := &cobra.Command{
		Use:   "sbom-to-csv <sbom_json> <compensate_csv> <output_csv>",
		Short: "Convert a GitHub SPDX SBOM export into a third-party component inventory CSV.",
		Long: `Convert a GitHub SPDX SBOM export into a third-party component inventory CSV.

Every package under the root key becomes one row with the 22 inventory columns.
Fields the SBOM lacks (supplier, license comments, advisories, ...) are taken from
the compensate CSV row whose PackageName equals the package name.

Examples:
  sbom-to-csv sbom.json compensate.csv inventory.csv
  sbom-to-csv sbom.json compensate.csv inventory.csv --summary summary.md
  SBOM_TO_CSV_BOOL_STYLE=lower sbom-to-csv sbom.json compensate.csv inventory.csv`,
		Version:       version,
		Args:          exactArgs(3),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(v)
			if err != nil {
				return err
			}
			defer logger.Sync()

			cfg.SBOMPath, cfg.SupplementPath, cfg.OutputPath = args[0], args[1], args[2]
			_, err = pipeline.Run(cmd.Context(), cfg, logger)
			return err
		},
	}

	flags := root.PersistentFlags()
	flags.String(config.KeyConfig, "", "YAML config file with any of the flags below")
	flags.String(config.KeyRootKey, config.DefaultRootKey, `Key holding the package list ("" when the document is the list)`)
	flags.String(config.KeySeparator, config.DefaultSeparator, "Separator used to join flattened key paths")
	flags.String(config.KeyBoolStyle, string(model.BoolStylePython), "Boolean cell style: python (True/False) or lower (true/false)")
	flags.String(config.KeySummary, "", "Write a run summary (.json, .yaml or Markdown)")
	flags.String(config.KeyLogLevel, config.DefaultLogLevel, "Log level: debug, info, warn, error")
	flags.Bool(config.KeyCheckPurl, true, "Warn about purl values that do not parse")
	_ = v.BindPFlags(flags)

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", model.ErrUsage, err)
	})

	root.AddCommand(newFlattenCmd(v))
	return root
}

func newFlattenCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "flatten <sbom_json> <output_csv>",
		Short: "Write the flattened SBOM packages as CSV, one column per key.",
		Long: `Write the flattened SBOM packages as CSV, one column per key.

Useful for finding the flattened key names when preparing a compensate CSV.`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(v)
			if err != nil {
				return err
			}
			defer logger.Sync()

			cfg.SBOMPath, cfg.OutputPath = args[0], args[1]
			_, err = pipeline.RunFlatten(cmd.Context(), cfg, logger)
			return err
		},
	}
}

func setup(v *viper.Viper) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("%w: %v", model.ErrUsage, err)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("%w: %v", model.ErrUsage, err)
	}
	return cfg, logger, nil
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("%w: %s takes %d arguments, got %d", model.ErrUsage, cmd.Name(), n, len(args))
		}
		return nil
	}
}
