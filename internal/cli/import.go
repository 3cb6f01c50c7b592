package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <table>[,<table>...]...",
	Short: "Import source tables and infer their generation metadata",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runImport,
}

var syncCmd = &cobra.Command{
	Use:   "sync <table>",
	Short: "Refresh an imported table from the source, keeping manual edits",
	Args:  cobra.ExactArgs(1),
	RunE:  runSync,
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	tables, err := a.service.Import(operatorContext(ctx), splitArgs(args)...)
	if err != nil {
		return err
	}

	for _, t := range tables {
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%d columns) as %s\n", t.TableName, len(t.Columns), t.ClassName)
	}
	return nil
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.service.Sync(operatorContext(ctx), args[0]); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Synchronized %s\n", args[0])
	return nil
}

// splitArgs accepts both "a b" and "a,b".
func splitArgs(args []string) []string {
	var out []string
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
