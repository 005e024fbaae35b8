package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillhub-labs/skillhub/internal/config"
	"github.com/skillhub-labs/skillhub/internal/errdefs"
	"github.com/skillhub-labs/skillhub/internal/workflow"
)

var (
	installGlobal    bool
	installWorkspace bool
)

var installCmd = &cobra.Command{
	Use:   "install <description>",
	Short: "Install a skill from the registry",
	Long: `Install the registry skill whose id contains <description> (case-insensitive).

The destination follows local.install_default: "workspace" installs into
./.agent/skills, "global" into local.skill_path. --global and --workspace
override the setting for one run. An existing install is replaced.`,
	Args: cobra.ArbitraryArgs,
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVar(&installGlobal, "global", false, "Install into local.skill_path")
	installCmd.Flags().BoolVar(&installWorkspace, "workspace", false, "Install into ./.agent/skills")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	if installGlobal && installWorkspace {
		return errdefs.UserInput("--global and --workspace are mutually exclusive")
	}
	description := strings.Join(args, " ")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	switch {
	case installGlobal:
		cfg.Local.InstallDefault = config.InstallGlobal
	case installWorkspace:
		cfg.Local.InstallDefault = config.InstallWorkspace
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	destRoot, err := cfg.InstallRoot(cwd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	res, err := workflow.Install(cmd.Context(), workflow.InstallOptions{
		Description: description,
		Mirror:      newMirror(cfg),
		DestRoot:    destRoot,
		Out:         out,
	})
	if err != nil {
		return err
	}

	if res.Replaced {
		warnColor.Fprintf(out, "Replaced existing install at %s\n", res.Path)
	}
	successColor.Fprintf(out, "✓ Installed %s to %s\n", res.Name, res.Path)
	return nil
}
