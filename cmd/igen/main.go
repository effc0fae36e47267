package main

import (
	"os"

	"github.com/spf13/cobra"
)

type rootCmdConfig struct {
	verbose bool
}

func main() {
	if err := cliParser().Execute(); err != nil {
		os.Exit(1)
	}
}

func cliParser() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "igen",
		Short: "igen learns which configurations reach a coverage target",
		Long:  `A tool to learn decision trees separating the configurations that hit a coverage target from those that miss it, turn them into formulas and sample new configurations from them`,
	}
	config := &rootCmdConfig{}
	rootCmd.PersistentFlags().BoolVarP(&(config.verbose), "verbose", "v", false, "log the decisions taken while learning")
	rootCmd.AddCommand(versionCmd(), learnCmd(config), classifyCmd(config), sampleCmd(config))
	return rootCmd
}
