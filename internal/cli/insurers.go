package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/policyqa/internal/registry"
)

var insurersRegistry string

var insurersCmd = &cobra.Command{
	Use:   "insurers",
	Short: "List the insurers in the registry with their index",
	Long: `List prints every registry entry with the 1-based index accepted by
"policyqa ask --pick".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry.Load(insurersRegistry)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tINSURER\tSEARCH\tURL")
		for i, e := range reg.Entries {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, e.Name, e.SearchKind, e.URL)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(insurersCmd)
	insurersCmd.Flags().StringVar(&insurersRegistry, "registry", "insurers.json", "insurer registry file (JSON or YAML)")
}
