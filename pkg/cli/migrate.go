package cli

import (
	"github.com/TechXTT/sqlsession/pkg/logging"
	"github.com/TechXTT/sqlsession/pkg/migrate"
	"github.com/TechXTT/sqlsession/pkg/runtime"
	"github.com/spf13/cobra"
)

func NewMigrateCmd(g *globals) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:       "migrate [up|down|reset|status]",
		Short:     "Run database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "reset", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.Migrations.Dir
			}
			ctx := cmd.Context()

			db, d, err := runtime.Connect(ctx, cfg.Database.URL, cfg.Database.Driver)
			if err != nil {
				return err
			}
			defer db.Close()

			mgr, err := migrate.NewManager(db, d, dir, logger, logging.QueryHook(logger))
			if err != nil {
				return err
			}
			switch args[0] {
			case "up":
				return mgr.Up(ctx)
			case "down":
				return mgr.Down(ctx)
			case "reset":
				return mgr.Reset(ctx)
			case "status":
				status, err := mgr.Status(ctx)
				if err != nil {
					return err
				}
				cmd.Println(status)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Migrations directory (default from config)")
	return cmd
}
