package cli

import (
	"github.com/spf13/cobra"

	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/plan"
)

func (a *app) planCmd() *cobra.Command {
	var (
		file        string
		metricsFile string
		dumpResult  bool
	)

	c := &cobra.Command{
		Use:   "plan",
		Short: "Build routes and schedules from a YAML plan file",
		Long: "Build routes and schedules from a YAML plan file (optionally gzip\n" +
			"compressed) and print a summary of the resulting aggregates.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := plan.Load(file)
			if err != nil {
				return err
			}

			res, buildErr := a.build(cmd.Context(), p)
			if metricsFile != "" {
				if err := a.metrics.WriteTextfile(metricsFile); err != nil {
					return err
				}
			}
			if buildErr != nil {
				return buildErr
			}

			now, err := a.now()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			a.report(out, res, now)
			if dumpResult {
				dump(out, res)
			}
			return nil
		},
	}

	c.Flags().StringVarP(&file, "file", "f", "", "plan file, .yaml or .yaml.gz (required)")
	c.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	c.Flags().BoolVar(&dumpResult, "dump", false, "dump the full aggregates")

	_ = c.MarkFlagRequired("file")
	return c
}
