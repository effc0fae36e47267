package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/unsat/igen/config"
	"github.com/unsat/igen/dataset/csv"
	"github.com/unsat/igen/expr"
	"github.com/unsat/igen/solver"
	"github.com/unsat/igen/tree"
)

type sampleCmdConfig struct {
	*rootCmdConfig
	domainInput string
	treeInput   string
	count       int
	miss        bool
}

func sampleCmd(rootConfig *rootCmdConfig) *cobra.Command {
	cfg := &sampleCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Sample configurations from a tree",
		Long:  `Find configurations the learned tree classifies as hitting the target, or missing it, and print them as CSV`,
		Run: func(cmd *cobra.Command, args []string) {
			err := cfg.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			code := cfg.sample(ctx)
			cancel()
			if code != 0 {
				os.Exit(code)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(cfg.domainInput), "domain", "d", "", "path to a file describing the variables of the program, as text or YML (.yml) (required)")
	cmd.PersistentFlags().StringVarP(&(cfg.treeInput), "tree", "t", "", "path to a file from which the tree will be read and parsed as JSON (required)")
	cmd.PersistentFlags().IntVarP(&(cfg.count), "count", "n", 10, "maximum number of configurations to sample, 0 for all of them")
	cmd.PersistentFlags().BoolVar(&(cfg.miss), "miss", false, "sample configurations classified as missing the target instead")
	return cmd
}

func (scc *sampleCmdConfig) Validate() error {
	if scc.domainInput == "" {
		return fmt.Errorf("required domain flag was not set")
	}
	if scc.treeInput == "" {
		return fmt.Errorf("required tree flag was not set")
	}
	if scc.count < 0 {
		return fmt.Errorf("count flag must not be negative")
	}
	return nil
}

// sample writes the sampled configurations to STDOUT and returns the exit
// code of the command.
func (scc *sampleCmdConfig) sample(ctx context.Context) int {
	logger := scc.Logger()
	dom, err := loadDomain(scc.domainInput)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	t, err := loadTree(scc.treeInput, dom, tree.WithLogger(logger))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 3
	}
	f, err := t.MixedFormula()
	if err != nil {
		fmt.Fprintf(os.Stderr, "building the formula: %v\n", err)
		return 4
	}
	if scc.miss {
		f = expr.Neg(f)
	}
	logger.Debug("sampling", "formula", f.String(), "count", scc.count)
	models, err := solver.New(dom.Context()).Models(ctx, f, scc.count)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sampling configurations: %v\n", err)
		return 5
	}
	configs := make([]*config.Config, 0, len(models))
	for _, m := range models {
		configs = append(configs, config.FromValues(m))
	}
	n, err := csv.WriteConfigs(os.Stdout, dom, configs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "writing configurations: %v\n", err)
		return 6
	}
	logger.Info("sampled", "written", n)
	return 0
}
