package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/benvon/life-rpg/internal/services/progression"
)

// NewAchievementsCmd prints the achievement catalog
func NewAchievementsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "achievements",
		Short: "List the achievement catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := progression.Catalog()
			if output != "table" {
				return writeReport(cmd.OutOrStdout(), output, catalog)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tNAME\tBONUS XP\tDESCRIPTION")
			for _, a := range catalog {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", a.Key, a.Name, a.XPBonus, a.Description)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, yaml or json")
	return cmd
}
