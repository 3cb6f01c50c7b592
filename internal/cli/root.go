package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eleven-am/genkit/internal/config"
	"github.com/eleven-am/genkit/internal/logger"
	"github.com/eleven-am/genkit/pkg/genkit"
)

// Global configuration variables
var (
	configFile string
	cfg        *config.Config
	operator   string
	debug      bool
	verbose    bool
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "genkit",
		Short: "genkit - Schema-driven CRUD code generator",
		Long: `genkit imports table definitions from a live MySQL or PostgreSQL database,
infers form, list and search metadata for every column, and renders a NestJS
backend and a React front-end for each imported table.

Typical workflow:
- genkit db list            show tables that can be imported
- genkit import sys_notice  import a table and infer its metadata
- genkit edit sys_notice    adjust widgets, dictionaries and labels
- genkit sync sys_notice    pick up schema changes, keeping your edits
- genkit download sys_notice -o notice.zip`,
		Version:       genkit.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var err error
			cfg, err = config.Load(configFile)
			if err != nil {
				cmd.PrintErrf("Warning: Failed to load config file: %v\n", err)
				cfg = config.Default()
			}

			if operator != "" {
				cfg.Operator = operator
			}

			level := logger.ParseLevel(cfg.Log.Level)
			if verbose && level != logger.LevelDebug {
				level = logger.LevelInfo
			}
			if debug {
				level = logger.LevelDebug
			}
			logger.Configure(logger.Options{Level: level, Format: cfg.Log.Format, Output: cmd.ErrOrStderr()})
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: genkit.yaml)")
	rootCmd.PersistentFlags().StringVar(&operator, "operator", "", "name recorded as creator/updater (default: config operator)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose output")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context, args []string) error {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		return fmt.Errorf("genkit: %w", err)
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
