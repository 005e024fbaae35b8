package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillhub-labs/skillhub/internal/config"
	"github.com/skillhub-labs/skillhub/internal/errdefs"
)

func init() {
	configCmd.AddCommand(configGetCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config <section.key> <value...>",
	Short: "Set a configuration value",
	Long: `Write one value into the configuration file, keeping everything else.

Keys are section.key with section one of "local" or "registry", for example
local.skill_path, local.install_default, registry.url, registry.branch and
registry.cache_dir. Remaining arguments are joined with spaces to form the value.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) < 2 {
			return errdefs.UserInput("usage: %s config <section.key> <value>", rootCmd.Name())
		}
		key, value := args[0], strings.Join(args[1:], " ")
		path := config.ResolvePath(configPath)
		if err := config.Set(path, key, value); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <section.key>",
	Short: "Print the effective value of a configuration key",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return errdefs.UserInput("usage: %s config get <section.key>", rootCmd.Name())
		}
		value, err := config.Get(config.ResolvePath(configPath), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}
