package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/YuminosukeSato/electrospin/pkg/errors"
	"github.com/YuminosukeSato/electrospin/render"
	"github.com/YuminosukeSato/electrospin/response"
	"github.com/spf13/cobra"
)

func (a *app) ucCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uc",
		Short: "Evaluate the critical voltage model",
	}
	cmd.AddCommand(a.ucPointCmd(), a.ucSweepCmd())
	return cmd
}

func (a *app) ucPointCmd() *cobra.Command {
	var gamma, bigH, r, h float64
	cmd := &cobra.Command{
		Use:   "point",
		Short: "Evaluate Uc at one input tuple",
		Args:  positionalArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlags(cmd, "gamma", "H", "R", "h"); err != nil {
				return err
			}
			v, err := response.Uc(gamma, bigH, r, h)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.out, "Uc = %.4f kV\n", v)
			return err
		},
	}
	cmd.Flags().Float64Var(&gamma, "gamma", 0, "surface tension, dyn/cm")
	cmd.Flags().Float64Var(&bigH, "H", 0, "H, cm")
	cmd.Flags().Float64Var(&r, "R", 0, "R, cm")
	cmd.Flags().Float64Var(&h, "h", 0, "h, cm")
	return cmd
}

func (a *app) ucSweepCmd() *cobra.Command {
	var (
		x, y           string
		const1, const2 float64
		resolution     int
		pngPath        string
		asJSON         bool
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Sweep Uc over two inputs, holding the other two constant",
		Long: "Sweep Uc over two of {\"Surface Tension\", H, R, h}. The two remaining inputs,\n" +
			"in that order, take --const1 and --const2. Values are clipped to [10, 30] kV.",
		Args: positionalArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlags(cmd, "x", "y", "const1", "const2"); err != nil {
				return err
			}
			if !cmd.Flags().Changed("resolution") {
				resolution = a.cfg.SweepResolution
			}
			sw, err := response.SweepByName(x, y, const1, const2, response.WithResolution(resolution))
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(a.out)
				if err := enc.Encode(sw); err != nil {
					return errors.Wrap(err, "failed to encode sweep")
				}
			} else {
				fmt.Fprintf(a.out, "%s vs %s (%dx%d)\n", sw.Grid.XLabel, sw.Grid.YLabel, len(sw.Grid.X), len(sw.Grid.Y))
				fmt.Fprintf(a.out, "held: %s\n", sw.Caption)
				fmt.Fprintf(a.out, "Uc range: %.4f .. %.4f kV (%d cells clipped)\n", sw.Grid.Min(), sw.Grid.Max(), sw.Clipped)
			}

			if pngPath != "" {
				if err := writePNG(pngPath, func(f *os.File) error { return render.Contour(f, sw.Grid) }); err != nil {
					return err
				}
				if !asJSON {
					fmt.Fprintf(a.out, "wrote %s\n", pngPath)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&x, "x", "", `x axis variable: "Surface Tension", H, R or h`)
	cmd.Flags().StringVar(&y, "y", "", "y axis variable")
	cmd.Flags().Float64Var(&const1, "const1", 0, "value of the first held variable")
	cmd.Flags().Float64Var(&const2, "const2", 0, "value of the second held variable")
	cmd.Flags().IntVar(&resolution, "resolution", response.DefaultResolution, "samples per axis")
	cmd.Flags().StringVar(&pngPath, "png", "", "write a contour plot to this PNG file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "write the grid as JSON")
	return cmd
}

// writePNG creates path and runs draw on it.
func writePNG(path string, draw func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	if err := draw(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %s", path)
	}
	return nil
}
