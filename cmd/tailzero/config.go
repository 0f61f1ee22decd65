package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/tailzero/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Print the configuration after applying defaults, the config file and
TAILZERO_* environment variables, in the config file's YAML format.

Examples:
  tailzero config                          # Print the effective configuration
  tailzero config --write .tailzero.yaml   # Save it as a config file`,
	Run: func(cmd *cobra.Command, args []string) {
		writePath, _ := cmd.Flags().GetString("write")
		if err := runConfig(os.Stdout, cfg, writePath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

var configExampleCmd = &cobra.Command{
	Use:   "example",
	Short: "Print an example config file",
	Long: `Print a commented example configuration.

Examples:
  tailzero config example > .tailzero.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(config.ExampleConfigFile())
	},
}

func init() {
	configCmd.Flags().String("write", "", "Write the effective configuration to this file instead of printing it")

	configCmd.AddCommand(configExampleCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfig prints c as YAML, or saves it to writePath when one is given
func runConfig(w io.Writer, c *config.Config, writePath string) error {
	if writePath != "" {
		if err := config.SaveConfigFile(writePath, c); err != nil {
			return err
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(w, "%s Wrote configuration to %s\n", green("✓"), writePath)
		return nil
	}

	data, err := config.Marshal(c)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
