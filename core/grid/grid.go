// Package grid holds the 2-D evaluation grid shared by Uc sweeps and
// regression contour surfaces.
package grid

import (
	"encoding/json"
	"fmt"

	"github.com/YuminosukeSato/electrospin/core/parallel"
	"github.com/YuminosukeSato/electrospin/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// parallelRowThreshold is the row count above which Evaluate fans out
// across cores.
const parallelRowThreshold = 32

// Grid is a rectangular sampling of a scalar function of two variables.
// Z has len(Y) rows and len(X) columns: Z.At(i, j) is the value at
// (X[j], Y[i]), which is the layout contour backends expect.
type Grid struct {
	X []float64
	Y []float64
	Z *mat.Dense

	XLabel string
	YLabel string
	ZLabel string
	Title  string
}

// Linspace returns n evenly spaced values over [lo, hi], endpoints included.
func Linspace(lo, hi float64, n int) ([]float64, error) {
	if n < 2 {
		return nil, errors.NewValueError("grid.Linspace", fmt.Sprintf("resolution must be at least 2, got %d", n))
	}
	if !errors.IsFinite(lo) || !errors.IsFinite(hi) {
		return nil, errors.NewValueError("grid.Linspace", fmt.Sprintf("bounds must be finite, got [%g, %g]", lo, hi))
	}
	xs := floats.Span(make([]float64, n), lo, hi)
	xs[n-1] = hi
	return xs, nil
}

// Func is evaluated once per grid cell.
type Func func(x, y float64) (float64, error)

// Evaluate samples f at every (x, y) pair. Rows are evaluated in parallel;
// f must be safe for concurrent use. If any cell fails, the error from the
// lowest failing row is returned and no grid is produced.
func Evaluate(x, y []float64, f Func) (*Grid, error) {
	if len(x) == 0 || len(y) == 0 {
		return nil, errors.NewValueError("grid.Evaluate", "axes must not be empty")
	}

	z := mat.NewDense(len(y), len(x), nil)
	rowErrs := make([]error, len(y))
	parallel.ParallelizeWithThreshold(len(y), parallelRowThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			rowErrs[i] = errors.SafeExecute("grid.Evaluate", func() error {
				row := z.RawRowView(i)
				for j, xv := range x {
					v, err := f(xv, y[i])
					if err != nil {
						return err
					}
					row[j] = v
				}
				return nil
			})
		}
	})
	for _, err := range rowErrs {
		if err != nil {
			return nil, err
		}
	}

	return &Grid{
		X: append([]float64(nil), x...),
		Y: append([]float64(nil), y...),
		Z: z,
	}, nil
}

// Dims returns the number of columns (x samples) and rows (y samples).
func (g *Grid) Dims() (c, r int) {
	return len(g.X), len(g.Y)
}

// At returns the value at (X[c], Y[r]).
func (g *Grid) At(c, r int) float64 {
	return g.Z.At(r, c)
}

// Clip clamps every cell into [lo, hi] and returns how many cells changed.
func (g *Grid) Clip(lo, hi float64) int {
	data := g.Z.RawMatrix().Data
	clipped := 0
	for k, v := range data {
		c := errors.ClipValue(v, lo, hi)
		if c != v {
			data[k] = c
			clipped++
		}
	}
	return clipped
}

// Min returns the smallest cell value.
func (g *Grid) Min() float64 {
	return floats.Min(g.Z.RawMatrix().Data)
}

// Max returns the largest cell value.
func (g *Grid) Max() float64 {
	return floats.Max(g.Z.RawMatrix().Data)
}

// Rows returns Z as a slice of rows, one per Y sample.
func (g *Grid) Rows() [][]float64 {
	r, _ := g.Z.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, g.Z)
	}
	return out
}

type gridJSON struct {
	X      []float64   `json:"x"`
	Y      []float64   `json:"y"`
	Z      [][]float64 `json:"z"`
	XLabel string      `json:"x_label,omitempty"`
	YLabel string      `json:"y_label,omitempty"`
	ZLabel string      `json:"z_label,omitempty"`
	Title  string      `json:"title,omitempty"`
}

// MarshalJSON encodes the grid as coordinate arrays plus a row-major matrix.
func (g *Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(gridJSON{
		X: g.X, Y: g.Y, Z: g.Rows(),
		XLabel: g.XLabel, YLabel: g.YLabel, ZLabel: g.ZLabel, Title: g.Title,
	})
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (g *Grid) UnmarshalJSON(data []byte) error {
	var raw gridJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.X) == 0 || len(raw.Y) == 0 || len(raw.Z) != len(raw.Y) {
		return errors.NewValueError("grid.UnmarshalJSON", "z must have one row per y value")
	}
	z := mat.NewDense(len(raw.Y), len(raw.X), nil)
	for i, row := range raw.Z {
		if len(row) != len(raw.X) {
			return errors.NewDimensionError("grid.UnmarshalJSON", len(raw.X), len(row), 1)
		}
		z.SetRow(i, row)
	}
	*g = Grid{
		X: raw.X, Y: raw.Y, Z: z,
		XLabel: raw.XLabel, YLabel: raw.YLabel, ZLabel: raw.ZLabel, Title: raw.Title,
	}
	return nil
}
