package main

import (
	"fmt"
	"os"

	"github.com/Schnaffon/suricata/internal/scenario"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newRunFileCmd(logLevel *string) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "run-file <scenario.yaml>",
		Short: "Run a custom rule group and packet sequence described in a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(*logLevel)

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var file scenario.RuleGroupFile
			if err := yaml.Unmarshal(raw, &file); err != nil {
				return fmt.Errorf("parsing %s: %w", args[0], err)
			}

			reg := prometheus.NewRegistry()
			stop, err := maybeServeMetrics(metricsAddr, reg, logger)
			if err != nil {
				return err
			}
			defer stop()

			d := file.Run(reg)
			reportScenario(cmd, scenario.BuiltinScenario{Name: args[0], Description: "custom rule group"}, d)
			return nil
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address (e.g. :9090) while the scenario runs")

	return cmd
}
