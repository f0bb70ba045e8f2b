package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Veraticus/grantflow/internal/cli"
	"github.com/Veraticus/grantflow/internal/common"
	"github.com/Veraticus/grantflow/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	version = "dev"
	rootCmd = newRootCmd()
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grantflow",
		Short: "💸 Follow the money between nonprofits",
		Long: `grantflow: resolve who funds whom across nonprofit tax filings.

Import an organization registry and a grant ledger once, then ask for the
direct connections of an EIN, expand its funding network several hops out,
or explore interactively. Results can be exported as JSON, YAML, Graphviz
DOT, CSV or to Google Sheets.`,
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/grantflow/config.yaml)")
	cmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	cmd.PersistentFlags().String("database", "", "dataset database (default: $HOME/.local/share/grantflow/grantflow.db)")
	cmd.PersistentFlags().String("registry", "", "registry CSV or ZIP; read directly instead of the database")
	cmd.PersistentFlags().String("ledger", "", "grant ledger CSV or ZIP; read directly instead of the database")
	cmd.PersistentFlags().String("duplicates", "first", "which registry row wins for a repeated EIN (first, last)")

	_ = viper.BindPFlag("logging.level", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", cmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("data.database", cmd.PersistentFlags().Lookup("database"))
	_ = viper.BindPFlag("data.registry", cmd.PersistentFlags().Lookup("registry"))
	_ = viper.BindPFlag("data.ledger", cmd.PersistentFlags().Lookup("ledger"))
	_ = viper.BindPFlag("index.duplicates", cmd.PersistentFlags().Lookup("duplicates"))

	cmd.AddCommand(authCmd())
	cmd.AddCommand(importCmd())
	cmd.AddCommand(connectionsCmd())
	cmd.AddCommand(networkCmd())
	cmd.AddCommand(orgCmd())
	cmd.AddCommand(exploreCmd())
	cmd.AddCommand(migrateCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		var userErr *common.UserError
		if errors.As(err, &userErr) {
			fmt.Fprintln(os.Stderr, cli.FormatError(userErr.UserMessage))
			common.LogDebug("Command failed", common.Fields{"error": err})
		} else {
			fmt.Fprintln(os.Stderr, cli.FormatError(err.Error()))
		}
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := config.Dir()
		if err != nil {
			return err
		}

		viper.AddConfigPath(dir)
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("GRANTFLOW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	return setupLogging()
}

func setupLogging() error {
	level := viper.GetString("logging.level")
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: invalid log level: %s", common.ErrInvalidConfig, level)
	}

	format := viper.GetString("logging.format")
	switch format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: invalid log format: %s", common.ErrInvalidConfig, format)
	}

	common.SetupLogger(os.Stderr, common.ParseLevel(level), format)
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "grantflow %s\n", version)
		},
	}
}
