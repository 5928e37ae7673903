package response

import (
	"fmt"
	"strings"
	"time"

	"github.com/YuminosukeSato/electrospin/core/grid"
	"github.com/YuminosukeSato/electrospin/pkg/errors"
	"github.com/YuminosukeSato/electrospin/pkg/log"
)

const (
	// ClipMin and ClipMax bound every swept value. The clamp is for display
	// only: values outside the range are not errors.
	ClipMin = 10.0
	ClipMax = 30.0

	// DefaultResolution is the number of samples per axis.
	DefaultResolution = 500

	// ValueLabel labels the colour scale of a sweep.
	ValueLabel = "Uc, kV"
)

// HeldConstant is an input fixed for the whole sweep.
type HeldConstant struct {
	Variable Variable `json:"variable"`
	Value    float64  `json:"value"`
}

// String renders "<var> = <val> <unit>".
func (c HeldConstant) String() string {
	return fmt.Sprintf("%s = %g %s", c.Variable, c.Value, c.Variable.Unit())
}

// Sweep is a clipped Uc grid over two inputs.
type Sweep struct {
	Grid *grid.Grid `json:"grid"`
	// Held lists the fixed inputs in assignment order: the first gets
	// const1, the second const2.
	Held    []HeldConstant `json:"held"`
	Caption string         `json:"caption"`
	// Clipped counts cells changed by the [ClipMin, ClipMax] clamp.
	Clipped int `json:"clipped"`
}

type sweepConfig struct {
	resolution int
	bounds     map[Variable]Bounds
}

// SweepOption configures a sweep.
type SweepOption func(*sweepConfig)

// WithResolution sets the samples per axis (at least 2).
func WithResolution(n int) SweepOption {
	return func(c *sweepConfig) {
		c.resolution = n
	}
}

// WithBounds overrides the sampling range of one axis variable.
func WithBounds(v Variable, lo, hi float64) SweepOption {
	return func(c *sweepConfig) {
		c.bounds[v] = Bounds{Min: lo, Max: hi}
	}
}

// AssignConstants fills the two inputs that are not axes, scanning
// Variables() in order: the first free input gets const1, the second const2.
func AssignConstants(x, y Variable, const1, const2 float64) []HeldConstant {
	values := [2]float64{const1, const2}
	held := make([]HeldConstant, 0, len(values))
	for _, v := range variables {
		if v == x || v == y {
			continue
		}
		held = append(held, HeldConstant{Variable: v, Value: values[len(held)]})
	}
	return held
}

// Caption joins the held constants as "<var> = <val> <unit>, ...".
func Caption(held []HeldConstant) string {
	parts := make([]string, len(held))
	for i, c := range held {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

func validateAxes(x, y Variable) error {
	switch {
	case !x.Valid():
		return errors.NewInvalidSelectionError(string(x), string(y), fmt.Sprintf("unknown x variable, want one of %s", variableList()))
	case !y.Valid():
		return errors.NewInvalidSelectionError(string(x), string(y), fmt.Sprintf("unknown y variable, want one of %s", variableList()))
	case x == y:
		return errors.NewInvalidSelectionError(string(x), string(y), "x and y must be different variables")
	}
	return nil
}

// RunSweep evaluates Uc over the x/y axes with the other two inputs held at
// const1 and const2, then clips every cell to [ClipMin, ClipMax]. A domain
// error in any cell aborts the sweep.
func RunSweep(x, y Variable, const1, const2 float64, opts ...SweepOption) (*Sweep, error) {
	if err := validateAxes(x, y); err != nil {
		return nil, err
	}

	cfg := sweepConfig{resolution: DefaultResolution, bounds: map[Variable]Bounds{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	axis := func(v Variable) ([]float64, error) {
		b, ok := cfg.bounds[v]
		if !ok {
			b = v.DefaultBounds()
		}
		if !(b.Min < b.Max) {
			return nil, errors.NewValueError("response.Sweep", fmt.Sprintf("bounds for %s must be increasing, got [%g, %g]", v, b.Min, b.Max))
		}
		return grid.Linspace(b.Min, b.Max, cfg.resolution)
	}
	xs, err := axis(x)
	if err != nil {
		return nil, err
	}
	ys, err := axis(y)
	if err != nil {
		return nil, err
	}

	held := AssignConstants(x, y, const1, const2)
	var base [len(variables)]float64
	for _, c := range held {
		base[c.Variable.index()] = c.Value
	}
	xi, yi := x.index(), y.index()

	start := time.Now()
	g, err := grid.Evaluate(xs, ys, func(xv, yv float64) (float64, error) {
		in := base
		in[xi], in[yi] = xv, yv
		return Uc(in[0], in[1], in[2], in[3])
	})
	if err != nil {
		return nil, err
	}
	clipped := g.Clip(ClipMin, ClipMax)

	caption := Caption(held)
	g.XLabel = x.Label()
	g.YLabel = y.Label()
	g.ZLabel = ValueLabel
	g.Title = caption

	log.GetLoggerWithName("response").Debug("sweep evaluated",
		log.OperationKey, log.OperationSweep,
		log.SweepXKey, string(x),
		log.SweepYKey, string(y),
		log.ResolutionKey, cfg.resolution,
		log.ClippedCellsKey, clipped,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	return &Sweep{Grid: g, Held: held, Caption: caption, Clipped: clipped}, nil
}

// SweepByName parses the axis names and runs the sweep.
func SweepByName(xName, yName string, const1, const2 float64, opts ...SweepOption) (*Sweep, error) {
	x, y := Variable(strings.TrimSpace(xName)), Variable(strings.TrimSpace(yName))
	if err := validateAxes(x, y); err != nil {
		return nil, err
	}
	return RunSweep(x, y, const1, const2, opts...)
}
