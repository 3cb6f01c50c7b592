package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/eleven-am/genkit/internal/introspect"
)

var (
	dbListName    string
	dbListComment string
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Inspect the source database",
}

var dbListCmd = &cobra.Command{
	Use:   "list",
	Short: "List source tables that are not imported yet",
	Args:  cobra.NoArgs,
	RunE:  runDBList,
}

func init() {
	dbListCmd.Flags().StringVar(&dbListName, "name", "", "Filter by table name (substring)")
	dbListCmd.Flags().StringVar(&dbListComment, "comment", "", "Filter by table comment (substring)")
	dbCmd.AddCommand(dbListCmd)
}

func runDBList(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	tables, err := a.service.DBList(ctx, introspect.Filter{Name: dbListName, Comment: dbListComment})
	if err != nil {
		return err
	}

	if len(tables) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No importable tables found")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tCOMMENT\tCREATED")
	for _, t := range tables {
		created := ""
		if !t.CreateTime.IsZero() {
			created = t.CreateTime.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.TableName, t.TableComment, created)
	}
	return tw.Flush()
}
