package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/YuminosukeSato/electrospin/core/model"
	"github.com/YuminosukeSato/electrospin/dataset"
	"github.com/YuminosukeSato/electrospin/pkg/errors"
	"github.com/YuminosukeSato/electrospin/pkg/log"
	"github.com/YuminosukeSato/electrospin/render"
	"github.com/YuminosukeSato/electrospin/surface"
	"github.com/spf13/cobra"
)

func (a *app) regressCmd() *cobra.Command {
	var (
		resolution int
		outDir     string
		modelPath  string
	)
	cmd := &cobra.Command{
		Use:   "regress FILE",
		Short: "Fit a quadratic response surface to a CSV or XLSX table",
		Long: "Fit y (last column) on X1..Xk (preceding columns) with min-max scaling and\n" +
			"degree-2 terms, print the formula and write one contour plot per feature pair.",
		Args: positionalArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("resolution") {
				resolution = a.cfg.SurfaceResolution
			}
			ds, err := dataset.ReadFile(args[0])
			if err != nil {
				return err
			}
			log.GetLoggerWithName("cli").Debug("dataset loaded",
				log.OperationKey, log.OperationIngest,
				log.SourceKey, args[0],
				log.SamplesKey, ds.NumRows(),
			)

			res, err := surface.Fit(ds, surface.WithResolution(resolution))
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, res.Formula)
			fmt.Fprintf(a.out, "R^2 = %.4f, RMSE = %.4f, n = %d\n", res.Model.R2(), res.Model.RMSE(), res.Model.Samples())

			if modelPath != "" {
				if err := model.SaveWeights(res.Model.Weights(), modelPath); err != nil {
					return errors.Wrap(err, "failed to save model")
				}
				fmt.Fprintf(a.out, "model saved to %s\n", modelPath)
			}
			return a.writeSurfaces(res.Surfaces, outDir)
		},
	}
	cmd.Flags().IntVar(&resolution, "resolution", surface.DefaultResolution, "samples per surface axis")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "directory for contour PNGs (none when empty)")
	cmd.Flags().StringVar(&modelPath, "model", "", "save the fitted model as JSON")
	return cmd
}

// surfacesCmd re-evaluates a saved model without refitting.
func (a *app) surfacesCmd() *cobra.Command {
	var (
		resolution int
		outDir     string
	)
	cmd := &cobra.Command{
		Use:   "surfaces MODEL.json",
		Short: "Render contour surfaces from a saved model",
		Args:  positionalArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("resolution") {
				resolution = a.cfg.SurfaceResolution
			}
			mw, err := model.LoadWeights(args[0])
			if err != nil {
				return errors.NewValueError("surfaces", err.Error())
			}
			m, err := surface.FromWeights(mw)
			if err != nil {
				return errors.NewValueError("surfaces", err.Error())
			}
			surfaces, err := m.Surfaces(resolution)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, m.Formula())
			return a.writeSurfaces(surfaces, outDir)
		},
	}
	cmd.Flags().IntVar(&resolution, "resolution", surface.DefaultResolution, "samples per surface axis")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "directory for contour PNGs (none when empty)")
	return cmd
}

// writeSurfaces lists the surfaces and, when outDir is set, renders each
// one to <outDir>/surface_<n>_<f1>_<f2>.png.
func (a *app) writeSurfaces(surfaces []surface.ContourSurface, outDir string) error {
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create %s", outDir)
		}
	}
	for n, s := range surfaces {
		line := fmt.Sprintf("Plot %d of %d: %s vs %s", n+1, len(surfaces), s.F1, s.F2)
		if outDir != "" {
			path := filepath.Join(outDir, fmt.Sprintf("surface_%02d_%s_%s.png", n+1, s.F1, s.F2))
			if err := writePNG(path, func(f *os.File) error { return render.Contour(f, s.Grid) }); err != nil {
				return err
			}
			line += " -> " + path
		}
		fmt.Fprintln(a.out, line)
	}
	return nil
}
