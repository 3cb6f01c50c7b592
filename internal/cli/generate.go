package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var (
	previewFile string
	previewOut  string

	downloadOutput string
)

var previewCmd = &cobra.Command{
	Use:   "preview <table>",
	Short: "Render the generated files of an imported table",
	Long: `Renders every template of the table's category and prints the result.
With --out the files are written below that directory instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

var downloadCmd = &cobra.Command{
	Use:   "download <table>...",
	Short: "Write the generated files of imported tables to a zip archive",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDownload,
}

func init() {
	previewCmd.Flags().StringVar(&previewFile, "file", "", "Only print files whose path contains this text")
	previewCmd.Flags().StringVarP(&previewOut, "out", "o", "", "Write files below this directory")

	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "Archive path (default: <table>.zip or genkit.zip)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	files, err := a.service.Preview(ctx, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, f := range files {
		if previewFile != "" && !strings.Contains(f.Path, previewFile) {
			continue
		}

		if previewOut != "" {
			path := filepath.Join(previewOut, filepath.FromSlash(f.Path))
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
			if err := os.WriteFile(path, []byte(f.Content), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			fmt.Fprintf(out, "Wrote %s\n", path)
			continue
		}

		fmt.Fprintf(out, "==> %s <==\n%s\n", f.Path, f.Content)
	}
	return nil
}

func runDownload(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	names := splitArgs(args)

	path := downloadOutput
	if path == "" {
		path = "genkit.zip"
		if len(names) == 1 {
			path = names[0] + ".zip"
		}
	}

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	w := bufio.NewWriter(f)
	if err := a.service.BatchDownload(ctx, w, names...); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
