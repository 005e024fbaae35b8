package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillhub-labs/skillhub/internal/errdefs"
	"github.com/skillhub-labs/skillhub/internal/manifest"
	"github.com/skillhub-labs/skillhub/internal/scaffold"
)

var initForce bool

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing skill.json")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init <dir>",
	Short: "Write a default skill.json into a skill directory",
	Long: `Write a default skill.json into an existing directory. The name defaults to
the directory name, the version to 1.0.0 and the author to Anonymous.
Edit the file before publishing.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return errdefs.UserInput("init takes exactly one directory")
		}

		result, err := scaffold.Init(args[0], initForce)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, f := range result.Files {
			successColor.Fprintf(out, "✓ Wrote %s\n", f)
		}
		for _, w := range result.Warnings {
			warnColor.Fprintf(out, "Warning: %s\n", w)
		}
		fmt.Fprintf(out, "Edit %s, then run '%s publish <name>'.\n", manifest.Path(result.OutputDir), rootCmd.Name())
		return nil
	},
}
