package cli

import (
	"github.com/spf13/cobra"

	"github.com/skillhub-labs/skillhub/internal/branding"
	"github.com/skillhub-labs/skillhub/internal/errdefs"
	"github.com/skillhub-labs/skillhub/internal/logger"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	configPath string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` shares agent skills through a git-backed registry.

Skills are directories found in the workspace (.agent/skills) or in the
configured global skill path. publish pushes one to the registry, install
copies one from the registry into the workspace or the global path.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.SetLogLevel(logLevel); err != nil {
			return errdefs.UserInput("invalid --log-level %q", logLevel)
		}
		logger.SetLogFormat(logFormat)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $"+branding.EnvVar("CONFIG")+" or ~/"+branding.HomeDir()+"/"+branding.ConfigFile()+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errdefs.UserInput("%v", err)
	})
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return rootCmd.Execute()
}
