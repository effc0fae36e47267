package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/unsat/igen/dataset/csv"
	"github.com/unsat/igen/tree"
)

type learnCmdConfig struct {
	*rootCmdConfig
	domainInput  string
	dataInput    string
	paramsInput  string
	output       string
	smallLeaves  string
	metricsOut   string
	minLeafConfs int
	maxLeafConfs int
}

func learnCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &learnCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "learn",
		Short: "Learn a tree from a set of configurations",
		Long:  `Learn a tree from configurations labeled by whether they hit a coverage target, and print it with the formula it stands for.`,
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
			params := tree.DefaultParams()
			if config.paramsInput != "" {
				params, err = tree.ReadParamsFromFile(config.paramsInput)
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(3)
				}
			}
			s, err := loadSet(config.dataInput, dom)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			reg := prometheus.NewRegistry()
			t, err := tree.Build(dom, s.Hits, s.Misses,
				tree.WithParams(params),
				tree.WithLogger(logger),
				tree.WithMetrics(tree.NewMetrics(reg)))
			if err != nil {
				fmt.Fprintf(os.Stderr, "learning the tree: %v\n", err)
				os.Exit(5)
			}
			if config.metricsOut != "" {
				if err := prometheus.WriteToTextfile(config.metricsOut, reg); err != nil {
					logger.Warn("writing metrics", "path", config.metricsOut, "err", err)
				}
			}
			fmt.Print(t)
			f, err := t.MixedFormula()
			if err != nil {
				fmt.Fprintf(os.Stderr, "building the formula: %v\n", err)
				os.Exit(6)
			}
			fmt.Printf("formula: %v\n", f)
			disjuncts, err := t.Disjuncts()
			if err != nil {
				fmt.Fprintf(os.Stderr, "building the disjuncts: %v\n", err)
				os.Exit(6)
			}
			for _, d := range disjuncts {
				fmt.Printf("disjunct: %v\n", d)
			}
			if config.output != "" {
				if err := outputTree(config.output, t); err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(7)
				}
			}
			if config.smallLeaves != "" {
				templates, err := t.GatherSmallLeaves(config.minLeafConfs, config.maxLeafConfs)
				if err != nil {
					fmt.Fprintf(os.Stderr, "gathering small leaves: %v\n", err)
					os.Exit(8)
				}
				n, err := csv.WriteConfigs(os.Stdout, dom, templates)
				if err != nil {
					fmt.Fprintf(os.Stderr, "writing small leaves: %v\n", err)
					os.Exit(8)
				}
				logger.Info("small leaves", "min", config.minLeafConfs, "max", config.maxLeafConfs, "written", n)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.domainInput), "domain", "d", "", "path to a file describing the variables of the program, as text or YML (.yml) (required)")
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to a CSV file with the labeled configurations to learn from (defaults to STDIN)")
	cmd.PersistentFlags().StringVarP(&(config.paramsInput), "params", "p", "", "path to a YML file with the learning parameters")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "path to a file to which the learned tree will be written in JSON format")
	cmd.PersistentFlags().StringVar(&(config.smallLeaves), "small-leaves", "", "MIN:MAX, print as CSV templates for the leaves reached by MIN to MAX configurations")
	cmd.PersistentFlags().StringVar(&(config.metricsOut), "metrics", "", "path to a file to which learning metrics will be written in Prometheus text format")
	return cmd
}

func (lcc *learnCmdConfig) Validate() error {
	if lcc.domainInput == "" {
		return fmt.Errorf("required domain flag was not set")
	}
	if lcc.smallLeaves != "" {
		var err error
		lcc.minLeafConfs, lcc.maxLeafConfs, err = parseRange(lcc.smallLeaves)
		if err != nil {
			return fmt.Errorf("invalid small-leaves flag: %w", err)
		}
	}
	return nil
}

func parseRange(s string) (int, int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected MIN:MAX, got %q", s)
	}
	min, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	max, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}
	if min < 0 || max < min {
		return 0, 0, fmt.Errorf("invalid range %d:%d", min, max)
	}
	return min, max, nil
}
