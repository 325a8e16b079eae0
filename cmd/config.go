package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oratohq/orato/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the orato config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Long: `Writes the default configuration to the --config path so the
defaults can be inspected and edited. Refuses to overwrite an existing
file unless --force is given.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if err := initConfigFile(cfgFile, force); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", cfgFile)
		return nil
	},
}

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfigFile(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	return config.DefaultConfig().Save(path)
}
