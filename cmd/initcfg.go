package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gfbarbieri/coffer/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a commented default config file",
	Long:  `Write the default configuration with explanatory comments to the given path, or to the default location under the user config directory. Refuses to overwrite an existing file.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	} else {
		dir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("resolving config directory: %w", err)
		}
		path = filepath.Join(dir, "coffer", "config.yaml")
	}

	if err := config.WriteDefaultConfig(path); err != nil {
		return err
	}
	fmt.Printf("Wrote default config to %s\n", path)
	return nil
}
