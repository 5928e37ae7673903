package main

import (
	"github.com/YuminosukeSato/electrospin/design"
	"github.com/spf13/cobra"
)

func (a *app) designCmd() *cobra.Command {
	var (
		factors      int
		centerPoints int
		asCSV        bool
	)
	cmd := &cobra.Command{
		Use:   "design",
		Short: "Generate a Box–Behnken design",
		Args:  positionalArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("center-points") {
				centerPoints = a.cfg.CenterPoints
			}
			runs, err := design.Generate(factors, centerPoints)
			if err != nil {
				return err
			}
			if asCSV {
				return design.WriteCSV(a.out, runs)
			}
			return design.WriteText(a.out, runs)
		},
	}
	cmd.Flags().IntVar(&factors, "factors", design.MinFactors, "number of factors (at least 3)")
	cmd.Flags().IntVar(&centerPoints, "center-points", design.DefaultCenterPoints, "number of center runs")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "write CSV instead of a text table")
	return cmd
}
