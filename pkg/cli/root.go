package cli

import (
	"log/slog"
	"os"

	"github.com/TechXTT/sqlsession/pkg/config"
	"github.com/TechXTT/sqlsession/pkg/logging"
	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags.
var Version = "v0.1.0"

type globals struct {
	configPath string
}

func (g *globals) load() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, nil, err
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Log.Format, level, os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// NewVersionCmd builds the `version` command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(Version)
		},
	}
}

// NewRootCmd builds the top–level `sqlsession` command.
func NewRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "sqlsession",
		Short:         "sqlsession: CRUD sessions, the /home service and commit helpers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "sqlsession.yaml", "YAML config file")
	root.AddCommand(NewServeCmd(g))
	root.AddCommand(NewMigrateCmd(g))
	root.AddCommand(NewCommitCmd())
	root.AddCommand(NewVersionCmd())
	return root
}
