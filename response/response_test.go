package response

import (
	"math"
	"testing"

	"github.com/YuminosukeSato/electrospin/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nominal は全入力が定義域内にある代表値
var nominal = map[Variable]float64{
	SurfaceTension: 50,
	H:              20,
	R:              0.02,
	Hc:             2,
}

func TestUcKnownValues(t *testing.T) {
	tests := []struct {
		gamma, bigH, r, h float64
		want              float64
	}{
		{50, 20, 0.02, 2, 27.890614820992145},
		{72, 10, 0.01, 1, 23.665971445662688},
	}
	for _, tt := range tests {
		got, err := Uc(tt.gamma, tt.bigH, tt.r, tt.h)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-9)
	}
}

func TestUcDomainErrors(t *testing.T) {
	tests := []struct {
		name              string
		gamma, bigH, r, h float64
	}{
		{"log argument negative", 50, 20, 0.05, 0.01},
		{"log argument zero", 50, 20, 0.04, 0.03},
		{"radicand negative", 50, 20, 0.05, 0.05},
		{"zero radius", 50, 20, 0, 1},
		{"nan input", math.NaN(), 20, 0.02, 2},
		{"negative surface tension", -50, 20, 0.02, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Uc(tt.gamma, tt.bigH, tt.r, tt.h)
			var domainErr *errors.DomainError
			require.True(t, errors.As(err, &domainErr), "got %v", err)
			assert.Equal(t, tt.h, domainErr.Inputs["h"])
			assert.Equal(t, errors.KindDomain, errors.Kind(err))
		})
	}
}

func TestUcMonotonic(t *testing.T) {
	prev := 0.0
	for gamma := 20.0; gamma <= 80; gamma += 5 {
		v, err := Uc(gamma, 20, 0.02, 2)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, prev, "gamma=%g", gamma)
		prev = v
	}

	prev = 0
	for bigH := 10.0; bigH <= 30; bigH += 1 {
		v, err := Uc(50, bigH, 0.02, 2)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, prev, "H=%g", bigH)
		prev = v
	}
}

func TestAssignConstantsAllPairs(t *testing.T) {
	tests := []struct {
		x, y  Variable
		first Variable
		last  Variable
	}{
		{SurfaceTension, H, R, Hc},
		{SurfaceTension, R, H, Hc},
		{SurfaceTension, Hc, H, R},
		{H, R, SurfaceTension, Hc},
		{H, Hc, SurfaceTension, R},
		{R, Hc, SurfaceTension, H},
	}

	for _, tt := range tests {
		for _, axes := range [][2]Variable{{tt.x, tt.y}, {tt.y, tt.x}} {
			held := AssignConstants(axes[0], axes[1], 1, 2)
			require.Len(t, held, 2)
			assert.Equal(t, HeldConstant{tt.first, 1}, held[0], "axes %v", axes)
			assert.Equal(t, HeldConstant{tt.last, 2}, held[1], "axes %v", axes)
		}
	}
}

func TestSweepAllPairsUseAssignedConstants(t *testing.T) {
	vars := Variables()
	for a := 0; a < len(vars); a++ {
		for b := a + 1; b < len(vars); b++ {
			x, y := vars[a], vars[b]
			held := AssignConstants(x, y, 0, 0)
			c1, c2 := nominal[held[0].Variable], nominal[held[1].Variable]

			s, err := RunSweep(x, y, c1, c2, WithResolution(5))
			require.NoError(t, err, "%s x %s", x, y)

			assert.Equal(t, held[0].Variable, s.Held[0].Variable)
			assert.Equal(t, c1, s.Held[0].Value)
			assert.Equal(t, c2, s.Held[1].Value)
			assert.Equal(t, x.Label(), s.Grid.XLabel)
			assert.Equal(t, y.Label(), s.Grid.YLabel)
			assert.Equal(t, ValueLabel, s.Grid.ZLabel)
			assert.Equal(t, s.Caption, s.Grid.Title)

			// 各セルは割り当てどおりの入力で評価されている
			for i, yv := range s.Grid.Y {
				for j, xv := range s.Grid.X {
					in := map[Variable]float64{x: xv, y: yv, held[0].Variable: c1, held[1].Variable: c2}
					want, err := Uc(in[SurfaceTension], in[H], in[R], in[Hc])
					require.NoError(t, err)
					want = math.Min(math.Max(want, ClipMin), ClipMax)
					require.InDelta(t, want, s.Grid.Z.At(i, j), 1e-12, "%s x %s cell (%d,%d)", x, y, i, j)
				}
			}
		}
	}
}

func TestSweepClipsToDisplayRange(t *testing.T) {
	s, err := RunSweep(SurfaceTension, H, 0.02, 2)
	require.NoError(t, err)

	c, r := s.Grid.Dims()
	assert.Equal(t, DefaultResolution, c)
	assert.Equal(t, DefaultResolution, r)
	assert.GreaterOrEqual(t, s.Grid.Min(), ClipMin)
	assert.LessOrEqual(t, s.Grid.Max(), ClipMax)
	assert.Greater(t, s.Clipped, 0)

	assert.Equal(t, 20.0, s.Grid.X[0])
	assert.Equal(t, 80.0, s.Grid.X[c-1])
	assert.Equal(t, "R = 0.02 cm, h = 2 cm", s.Caption)
}

func TestSweepBounds(t *testing.T) {
	s, err := RunSweep(R, Hc, 50, 20, WithResolution(3), WithBounds(R, 0.01, 0.03))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.01, 0.02, 0.03}, s.Grid.X, 1e-15)
	assert.InDeltaSlice(t, []float64{0.5, 3.25, 6}, s.Grid.Y, 1e-15)
	assert.Equal(t, "Surface Tension = 50 dyn/cm, H = 20 cm", s.Caption)

	_, err = RunSweep(R, Hc, 50, 20, WithBounds(Hc, 3, 1))
	assert.Equal(t, errors.KindInvalidArgument, errors.Kind(err))
}

func TestSweepAbortsOnDomainError(t *testing.T) {
	// h = 0.01 は R の上限付近で ln の引数が負になる
	s, err := RunSweep(R, H, 50, 0.01, WithResolution(20))
	assert.Nil(t, s)
	assert.Equal(t, errors.KindDomain, errors.Kind(err))
}

func TestSweepSelectionErrors(t *testing.T) {
	tests := []struct {
		name string
		x, y string
	}{
		{"duplicate", "H", "H"},
		{"duplicate surface tension", "Surface Tension", "Surface Tension"},
		{"unknown x", "Viscosity", "H"},
		{"unknown y", "R", "surface tension"},
		{"empty", "", "h"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SweepByName(tt.x, tt.y, 1, 2)
			var selErr *errors.InvalidSelectionError
			require.True(t, errors.As(err, &selErr), "got %v", err)
			assert.Equal(t, errors.KindInvalidSelection, errors.Kind(err))
		})
	}

	_, err := SweepByName("H", "h", 50, 0.02, WithResolution(1))
	assert.Equal(t, errors.KindInvalidArgument, errors.Kind(err))
}

func TestParseVariable(t *testing.T) {
	v, err := ParseVariable(" Surface Tension ")
	require.NoError(t, err)
	assert.Equal(t, SurfaceTension, v)
	assert.Equal(t, "Surface Tension, dyn/cm", v.Label())

	v, err = ParseVariable("h")
	require.NoError(t, err)
	assert.Equal(t, Hc, v)
	assert.Equal(t, Bounds{0.5, 6}, v.DefaultBounds())

	_, err = ParseVariable("x")
	assert.Equal(t, errors.KindInvalidSelection, errors.Kind(err))

	assert.Equal(t, []Variable{SurfaceTension, H, R, Hc}, Variables())
}

func BenchmarkSweep500(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := RunSweep(SurfaceTension, H, 0.02, 2); err != nil {
			b.Fatal(err)
		}
	}
}
