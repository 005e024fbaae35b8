package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillhub-labs/skillhub/internal/detect"
)

// detectRunner is swapped out in tests.
var detectRunner detect.Runner = detect.ExecRunner

func init() {
	rootCmd.AddCommand(detectCmd)
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Report the versions of tools skills commonly need",
	Long: `Probe for go, node, python, git and p4 and print their versions as JSON.
Tools that are not installed are reported as null.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report := detect.Probe(cmd.Context(), detectRunner)
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling detect report: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}
