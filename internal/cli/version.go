package cli

import (
	"github.com/spf13/cobra"

	"github.com/xabinapal/gssh/internal/version"
)

// newVersionCmd creates the version command.
func (cli *CLI) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print gssh version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cli.outputWriter()
			if err != nil {
				return err
			}
			info := version.Get()
			return output.Write(info, func() {
				cli.printer.Println(info.String())
			})
		},
	}
}
