package cli

import (
	"github.com/TechXTT/sqlsession/pkg/app"
	"github.com/TechXTT/sqlsession/pkg/runtime"
	"github.com/spf13/cobra"
)

// NewServeCmd builds the `serve` command.
func NewServeCmd(g *globals) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the /home endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			ctx := cmd.Context()

			db, d, err := runtime.Connect(ctx, cfg.Database.URL, cfg.Database.Driver)
			if err != nil {
				return err
			}
			defer db.Close()

			application, err := app.New(db, d, logger)
			if err != nil {
				return err
			}
			if err := application.Init(ctx); err != nil {
				return err
			}
			return application.Serve(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}
