package cli

import (
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func (cl *commandline) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show employee and qualification counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cl.load(cmd.Context()); err != nil {
				return err
			}

			stats := cl.dir.Stats()

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Employees", "Qualifications"})
			table.Append([]string{strconv.Itoa(stats.Employees), strconv.Itoa(stats.Qualifications)})
			table.Render()

			return nil
		},
	}
}
