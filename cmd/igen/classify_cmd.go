package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/unsat/igen/tree"
)

type classifyCmdConfig struct {
	*rootCmdConfig
	domainInput string
	treeInput   string
	dataInput   string
}

func classifyCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &classifyCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Test the accuracy of a tree",
		Long:  `Test the accuracy of a learned tree against a set of labeled configurations`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			logger := config.Logger()
			dom, err := loadDomain(config.domainInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			t, err := loadTree(config.treeInput, dom, tree.WithLogger(logger))
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			s, err := loadSet(config.dataInput, dom)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			logger.Info("testing tree", "configs", s.Count())
			rate, err := t.Test(s)
			if err != nil {
				fmt.Fprintf(os.Stderr, "testing tree: %v\n", err)
				os.Exit(5)
			}
			fmt.Printf("%f success rate over %d configurations\n", rate, s.Count())
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.domainInput), "domain", "d", "", "path to a file describing the variables of the program, as text or YML (.yml) (required)")
	cmd.PersistentFlags().StringVarP(&(config.treeInput), "tree", "t", "", "path to a file from which the tree will be read and parsed as JSON (required)")
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to a CSV file with labeled configurations (defaults to STDIN)")
	return cmd
}

func (ccc *classifyCmdConfig) Validate() error {
	if ccc.domainInput == "" {
		return fmt.Errorf("required domain flag was not set")
	}
	if ccc.treeInput == "" {
		return fmt.Errorf("required tree flag was not set")
	}
	return nil
}
