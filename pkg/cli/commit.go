package cli

import (
	"github.com/TechXTT/sqlsession/internal/commitmsg"
	"github.com/spf13/cobra"
)

// NewCommitCmd builds the `commit` command.
func NewCommitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit [--no-format] [message]",
		Short: "Format, stage, commit and push",
		Long: `Formats the tree with gofmt, stages all files, commits and pushes.
A message starting with "-t ", "-c " or "-d " is labelled TEST, CODE or
DOCUMENTATION. Without a message the commit reads "make it better".`,
		Example: `  sqlsession commit "-t cover Delete"
  sqlsession commit`,
		// "-t msg" is a message, not a shorthand flag.
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := commitmsg.NewRunner(cmd.OutOrStdout())
			var msgs []string
			for _, a := range args {
				switch a {
				case "-h", "--help":
					return cmd.Help()
				case "--no-format":
					runner.Formatter = nil
				default:
					msgs = append(msgs, a)
				}
			}
			if len(msgs) > 1 {
				return cobra.MaximumNArgs(1)(cmd, msgs)
			}
			return runner.Run(cmd.Context(), msgs)
		},
	}
	return cmd
}
