package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/sentidash/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard JSON API",
	Long: `Serve loads the feedback table once and exposes the dashboard over HTTP.
Each client keeps its selection in a server-side session.

Example:
  sentidash serve --data feedback.csv --addr :8057
  curl -X POST localhost:8057/api/v1/session`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			a.cfg.Server.Addr = addr
		}

		d, err := a.dashboard()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(a.ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(os.Stderr, "Serving %d feedback rows on %s\n", d.Store().Len(), a.cfg.Server.Addr)
		return server.New(ctx, d, a.cfg).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}
