package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewVersionCmd(buildVersion, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build date",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "version=%s\nbuild_date=%s\n", buildVersion, buildDate)
		},
	}
}
