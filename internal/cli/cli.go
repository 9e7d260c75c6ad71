// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/deploygridgo/internal/app"
	"github.com/specialistvlad/deploygridgo/internal/executor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time.
var Version = "dev"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// Execute runs the command line with args. Any failure is returned as an
// *ExitError: code 2 for invalid usage, 1 for failed deployments.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := NewRootCommand(ctx, outW, errW)
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	// Cobra reports unknown commands and argument errors as plain errors.
	if strings.HasPrefix(err.Error(), "unknown command") || strings.Contains(err.Error(), "arg(s)") {
		return usageError(err)
	}
	return &ExitError{Code: 1, Message: err.Error()}
}

// NewRootCommand builds the deploygrid command tree. Each call gets its own
// viper instance, so commands can be built repeatedly in one process.
func NewRootCommand(ctx context.Context, outW, errW io.Writer) *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:   "deploygrid",
		Short: "deploygrid - declarative, concurrent contract deployments",
		Long: `deploygrid deploys named modules of contracts in dependency order.

Configuration (in order of priority):
  1. Command-line flags (--state, --workers, ...)
  2. Environment variables (DEPLOYGRID_STATE, DEPLOYGRID_WORKERS, ...)
  3. Config file (--config, YAML or JSON)

Get started:
  $ deploygrid modules                      # List available modules
  $ deploygrid deploy OpenMarketModule      # Deploy a module`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(v, cfgFile)
		},
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetContext(ctx)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (YAML or JSON)")
	flags.String("modules-path", "", "path to a .hcl module file or a directory of them")
	flags.String("parameters", "", "module parameters file (YAML or JSON)")
	flags.String("state", "", "deployed_addresses.json file or directory recording deployments")
	flags.String("redis-addr", "", "redis address for a shared state store (overrides --state)")
	flags.String("redis-key", "", "redis hash holding deployed addresses")
	flags.String("artifacts", "", "directory of compiled contract artifacts")
	flags.String("deployer", "", "deploying account of the simulated chain")
	flags.String("log-format", "text", "log output format: 'text' or 'json'")
	flags.String("log-level", "info", "logging level: 'debug', 'info', 'warn', 'error'")
	flags.Int("workers", executor.DefaultWorkers, "number of concurrent deployments")
	flags.Int("healthcheck-port", 0, "port for the /health and /metrics server, 0 disables it")
	_ = v.BindPFlags(flags)

	root.AddCommand(
		newDeployCommand(v, outW, errW),
		newModulesCommand(v, outW, errW),
		newVersionCommand(outW),
	)
	return root
}

// initConfig wires environment variables and the optional config file into v.
func initConfig(v *viper.Viper, cfgFile string) error {
	v.SetEnvPrefix("DEPLOYGRID")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile == "" {
		return nil
	}
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return usageError(fmt.Errorf("failed to read config file %s: %w", cfgFile, err))
	}
	return nil
}

// buildConfig turns the resolved settings into a validated app.Config.
func buildConfig(v *viper.Viper, moduleName string) (*app.Config, error) {
	cfg, err := app.NewConfig(app.Config{
		ModulesPath:     v.GetString("modules-path"),
		Module:          moduleName,
		ParametersPath:  v.GetString("parameters"),
		StatePath:       v.GetString("state"),
		RedisAddr:       v.GetString("redis-addr"),
		RedisKey:        v.GetString("redis-key"),
		ArtifactsPath:   v.GetString("artifacts"),
		Deployer:        v.GetString("deployer"),
		LogFormat:       strings.ToLower(v.GetString("log-format")),
		LogLevel:        strings.ToLower(v.GetString("log-level")),
		WorkerCount:     v.GetInt("workers"),
		HealthcheckPort: v.GetInt("healthcheck-port"),
	})
	if err != nil {
		return nil, usageError(err)
	}
	return cfg, nil
}

func newDeployCommand(v *viper.Viper, outW, errW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "deploy MODULE",
		Short: "Deploy a module",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageError(fmt.Errorf("deploy takes exactly one module name, got %d", len(args)))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(v, args[0])
			if err != nil {
				return err
			}
			a, err := app.NewApp(outW, cfg, app.WithLogOutput(errW))
			if err != nil {
				return err
			}
			_, err = a.Run(cmd.Context())
			return err
		},
	}
}

func newModulesCommand(v *viper.Viper, outW, errW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "modules",
		Short: "List available modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := buildConfig(v, "")
			if err != nil {
				return err
			}
			a, err := app.NewApp(outW, cfg, app.WithLogOutput(errW))
			if err != nil {
				return err
			}
			for _, m := range a.Modules() {
				fmt.Fprintf(outW, "%s\t%s\n", m.Name, m.Source)
			}
			return nil
		},
	}
}

func newVersionCommand(outW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(outW, "deploygrid version %s\n", Version)
		},
	}
}
