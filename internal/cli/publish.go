package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillhub-labs/skillhub/internal/workflow"
)

var publishPaths []string

var publishCmd = &cobra.Command{
	Use:   "publish <description>",
	Short: "Publish a local skill to the registry",
	Long: `Find the local skill whose directory name contains <description>
(case-insensitive) and publish it to the registry.

The workspace (.agent/skills) and local.skill_path are searched, plus any
--path given. The match must be unique. A skill without skill.json gets a
default one, written next to the skill before publishing.`,
	Args: cobra.ArbitraryArgs,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().StringSliceVar(&publishPaths, "path", nil, "Additional directory to search for skills (repeatable)")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	description := strings.Join(args, " ")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	res, err := workflow.Publish(cmd.Context(), workflow.PublishOptions{
		Description: description,
		SearchPaths: append(cfg.SearchPaths(cwd), publishPaths...),
		Mirror:      newMirror(cfg),
		Out:         out,
	})
	if err != nil {
		return err
	}

	successColor.Fprintf(out, "✓ Published %s v%s\n", res.ID, res.Version)
	return nil
}
