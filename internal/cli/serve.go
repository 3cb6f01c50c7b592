package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eleven-am/genkit/internal/api"
	"github.com/eleven-am/genkit/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the generation API over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	handler := api.NewRouter(a.service, api.Options{Operator: cfg.Operator, Ping: a.store.Ping})

	fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s\n", addr)
	logger.CLI().Info("Serving API", "addr", addr, "store", cfg.Store.Driver, "source", cfg.Source.Driver)

	return api.ListenAndServe(ctx, api.ServerOptions{
		Addr:         addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, handler)
}
