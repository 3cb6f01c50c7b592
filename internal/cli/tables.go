package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/eleven-am/genkit/internal/model"
	"github.com/eleven-am/genkit/internal/store"
)

var (
	listName    string
	listComment string
	listPage    int
	listLimit   int

	showFormat string
	editFile   string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List imported tables",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show <table>",
	Short: "Print an imported table with its columns",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var editCmd = &cobra.Command{
	Use:   "edit <table>",
	Short: "Apply an edited table document produced by 'genkit show'",
	Long: `Reads a YAML (or JSON) table document, as printed by 'genkit show', and saves
the table settings and the editable column settings: widget, dictionary, query
type and the required/insert/edit/list/query flags.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <table>...",
	Short: "Delete imported tables",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDelete,
}

func init() {
	listCmd.Flags().StringVar(&listName, "name", "", "Filter by table name (substring)")
	listCmd.Flags().StringVar(&listComment, "comment", "", "Filter by table comment (substring)")
	listCmd.Flags().IntVar(&listPage, "page", 1, "Page number")
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "Page size")

	showCmd.Flags().StringVarP(&showFormat, "format", "f", "yaml", "Output format: yaml, json")

	editCmd.Flags().StringVarP(&editFile, "file", "f", "", "Table document to apply (- for stdin)")
	editCmd.MarkFlagRequired("file")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	page, err := a.service.List(ctx, store.ListQuery{
		TableName:    listName,
		TableComment: listComment,
		Page:         listPage,
		Limit:        listLimit,
	})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTABLE\tCLASS\tCOMMENT\tUPDATED")
	for _, t := range page.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", t.TableID, t.TableName, t.ClassName, t.TableComment, t.UpdateTime.Format("2006-01-02 15:04"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nPage %d, %d of %d tables\n", page.Page, len(page.Items), page.Total)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	table, err := a.store.GetTableByName(ctx, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch showFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(table)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(table)
	default:
		return fmt.Errorf("unsupported format: %s", showFormat)
	}
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	var (
		data []byte
		err  error
	)
	if editFile == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(editFile)
	}
	if err != nil {
		return fmt.Errorf("failed to read table document: %w", err)
	}

	var table model.Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return fmt.Errorf("failed to parse table document: %w", err)
	}

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	current, err := a.store.GetTableByName(ctx, args[0])
	if err != nil {
		return err
	}
	table.TableID = current.TableID
	table.TableName = current.TableName
	table.CreateBy = current.CreateBy

	if err := a.service.Update(operatorContext(ctx), table); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", table.TableName)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	names := splitArgs(args)
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		table, err := a.store.GetTableByName(ctx, name)
		if err != nil {
			return err
		}
		ids = append(ids, table.TableID)
	}

	if err := a.service.Delete(ctx, ids...); err != nil {
		return err
	}

	for _, name := range names {
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", name)
	}
	return nil
}
