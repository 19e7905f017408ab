package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/reglet-dev/portbridge/application/bridge"
	"github.com/reglet-dev/portbridge/application/schema"
	"github.com/reglet-dev/portbridge/domain/entities"
	"github.com/reglet-dev/portbridge/domain/errors"
	"github.com/reglet-dev/portbridge/host"
	"github.com/reglet-dev/portbridge/hostfuncs"
	"github.com/reglet-dev/portbridge/infrastructure/filesystem"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	module     string
	baseDir    string
	watch      bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "portbridge",
		Short: "Run a Computation Unit against input and output files",
		Long: `portbridge loads a compiled Computation Unit, sends each configured input
file to its inbound port and overwrites the matching output file every time
the unit emits on an outbound port.

Without flags it reads data/cust.csv, data/acc.csv and data/txn.csv and writes
users.json, accounts.json, batch.json and cins.txt in the working directory.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBridge(cmd.Context(), cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	flags.StringVarP(&opts.module, "module", "m", "", "compiled unit (.wasm), overrides the config file")
	flags.StringVar(&opts.baseDir, "base-dir", "", "directory relative input and output paths resolve against")
	flags.BoolVarP(&opts.watch, "watch", "w", false, "re-send inputs when their files change, until interrupted")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newSchemaCmd())
	return cmd
}

func runBridge(ctx context.Context, cmd *cobra.Command, opts *rootOptions) error {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	cfg, err := loadConfig(ctx, cmd, opts)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level.Set(slog.LevelInfo)
	}

	store := filesystem.NewStore(
		filesystem.WithBaseDir(cfg.BaseDir),
		filesystem.WithFileMode(cfg.FileMode),
	)

	wasmBytes, err := store.ReadBytes(ctx, cfg.Module)
	if err != nil {
		logger.Error("failed to read module", "module", cfg.Module, "error", err)
		return err
	}

	exec, err := host.NewExecutor(ctx,
		host.WithLogger(logger),
		host.WithMaxPayloadSize(cfg.MaxPayloadSize),
		host.WithMiddleware(hostfuncs.LoggingMiddleware(logger)),
	)
	if err != nil {
		logger.Error("failed to start runtime", "error", err)
		return err
	}
	defer func() { _ = exec.Close(context.WithoutCancel(ctx)) }()

	unit, err := exec.LoadUnit(ctx, wasmBytes)
	if err != nil {
		logger.Error("failed to load unit", "module", cfg.Module, "error", err)
		return err
	}
	defer func() { _ = unit.Close(context.WithoutCancel(ctx)) }()

	b, err := bridge.New(unit, store, store, bridge.WithConfig(cfg), bridge.WithLogger(logger))
	if err != nil {
		return err
	}

	report, err := b.Run(ctx)
	if err != nil {
		logger.Error("bridge stopped", "error", err)
		return err
	}
	if missing := report.MissingPorts(); len(missing) > 0 {
		logger.Warn("some inputs were never delivered", "ports", missing)
	}
	return nil
}

// loadConfig reads the optional config file and applies flag overrides.
// Only flags given on the command line override file values.
func loadConfig(ctx context.Context, cmd *cobra.Command, opts *rootOptions) (*entities.BridgeConfig, error) {
	var data []byte
	if opts.configPath != "" {
		raw, err := filesystem.NewStore().ReadBytes(ctx, opts.configPath)
		if err != nil {
			return nil, &errors.ConfigError{Err: fmt.Errorf("failed to read config file: %w", err)}
		}
		data = raw
	}

	overrides := []entities.ConfigOption{entities.WithModule(opts.module)}
	flags := cmd.Flags()
	if flags.Changed("base-dir") {
		overrides = append(overrides, entities.WithBaseDir(opts.baseDir))
	}
	if flags.Changed("watch") {
		overrides = append(overrides, entities.WithWatch(opts.watch))
	}
	if opts.verbose {
		overrides = append(overrides, entities.WithLogLevel("debug"))
	}

	return host.NewLoader().LoadConfig(data, overrides...)
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeSchema(cmd.OutOrStdout())
		},
	}
}

func writeSchema(w io.Writer) error {
	data, err := schema.GenerateConfigSchema()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
