package surface

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/YuminosukeSato/electrospin/core/grid"
	"github.com/YuminosukeSato/electrospin/dataset"
	"github.com/YuminosukeSato/electrospin/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleTable は f(x1, x2) を levels×levels の格子で標本化した表を返す
func sampleTable(t *testing.T, x1Levels, x2Levels []float64, f func(x1, x2 float64) float64) *dataset.Table {
	t.Helper()
	var rows [][]float64
	for _, a := range x1Levels {
		for _, b := range x2Levels {
			rows = append(rows, []float64{a, b, f(a, b)})
		}
	}
	table, err := dataset.FromRows(rows)
	require.NoError(t, err)
	return table
}

func bilinear(x1, x2 float64) float64 { return 3 + 2*x1 + 4*x2 + 5*x1*x2 }

func TestFitRecoversKnownQuadratic(t *testing.T) {
	levels := []float64{0, 0.5, 1}
	res, err := Fit(sampleTable(t, levels, levels, bilinear))
	require.NoError(t, err)

	m := res.Model
	assert.Equal(t, []string{"X1", "X2"}, m.Features())
	assert.Equal(t, []string{"X1", "X2", "X1^2", "X1*X2", "X2^2"}, m.TermNames())
	assert.InDeltaSlice(t, []float64{2, 4, 0, 5, 0}, m.Coefficients(), 1e-6)
	assert.InDelta(t, 3, m.Intercept(), 1e-6)
	assert.InDelta(t, 1, m.R2(), 1e-9)
	assert.InDelta(t, 0, m.RMSE(), 1e-9)
	assert.Equal(t, 9, m.Samples())
	assert.Equal(t, res.Formula, m.Formula())
	assert.True(t, strings.HasPrefix(res.Formula, "y = 3.00 + 2.00*X1 + 4.00*X2 "), res.Formula)
	assert.Contains(t, res.Formula, "5.00*X1*X2")
}

func TestFitAccountsForScaling(t *testing.T) {
	res, err := Fit(sampleTable(t, []float64{10, 20, 30}, []float64{1, 2, 3}, bilinear))
	require.NoError(t, err)

	// x1 = 10 + 20u, x2 = 1 + 2v を代入すると y = 77 + 140u + 108v + 200uv
	m := res.Model
	assert.InDeltaSlice(t, []float64{140, 108, 0, 200, 0}, m.Coefficients(), 1e-6)
	assert.InDelta(t, 77, m.Intercept(), 1e-6)

	pred, err := m.Predict([][]float64{{15, 2.5}, {30, 1}, {12, 2.2}})
	require.NoError(t, err)
	assert.InDelta(t, bilinear(15, 2.5), pred[0], 1e-6)
	assert.InDelta(t, bilinear(30, 1), pred[1], 1e-6)
	assert.InDelta(t, bilinear(12, 2.2), pred[2], 1e-6)

	s, ok := m.Stat("X1")
	require.True(t, ok)
	assert.Equal(t, FeatureStats{Name: "X1", Min: 10, Max: 30, Mean: 20}, s)
	_, ok = m.Stat("X9")
	assert.False(t, ok)
}

func TestFormatFormula(t *testing.T) {
	got := FormatFormula(3, []float64{2, 4, 0, 5, -1.234}, []string{"X1", "X2", "X1^2", "X1*X2", "X2^2"})
	assert.Equal(t, "y = 3.00 + 2.00*X1 + 4.00*X2 + 0.00*X1^2 + 5.00*X1*X2 - 1.23*X2^2", got)

	assert.Equal(t, "y = -0.50 - 10.00*X1", FormatFormula(-0.5, []float64{-10}, []string{"X1"}))
}

func threeFeatureTable(t *testing.T) *dataset.Table {
	t.Helper()
	var rows [][]float64
	for _, a := range []float64{1, 2, 3} {
		for _, b := range []float64{10, 20, 30} {
			for _, c := range []float64{0, 5} {
				rows = append(rows, []float64{a, b, c, a*b - c + 0.5*a*a})
			}
		}
	}
	table, err := dataset.FromRows(rows)
	require.NoError(t, err)
	return table
}

func TestSurfacesOrderingAndLayout(t *testing.T) {
	res, err := Fit(threeFeatureTable(t), WithResolution(7))
	require.NoError(t, err)
	require.Len(t, res.Surfaces, grid.NumPairs(3))

	want := [][2]string{{"X1", "X2"}, {"X1", "X3"}, {"X2", "X3"}}
	for n, s := range res.Surfaces {
		assert.Equal(t, want[n][0], s.F1)
		assert.Equal(t, want[n][1], s.F2)
		assert.Equal(t, grid.Pairs(3)[n], [2]int{s.I, s.J})
		assert.Equal(t, s.F1, s.Grid.XLabel)
		assert.Equal(t, s.F2, s.Grid.YLabel)
		assert.Equal(t, ValueLabel, s.Grid.ZLabel)
		assert.Equal(t, "Contour Plot: "+s.F1+" vs "+s.F2, s.Grid.Title)

		c, r := s.Grid.Dims()
		assert.Equal(t, 7, c)
		assert.Equal(t, 7, r)
	}

	// (X1, X3) 曲面: X1 は [1,3]、X3 は [0,5]、X2 は平均 20 に固定
	s := res.Surfaces[1]
	assert.Equal(t, 1.0, s.Grid.X[0])
	assert.Equal(t, 3.0, s.Grid.X[6])
	assert.Equal(t, 5.0, s.Grid.Y[6])
	pred, err := res.Model.Predict([][]float64{{s.Grid.X[2], 20, s.Grid.Y[5]}})
	require.NoError(t, err)
	assert.InDelta(t, pred[0], s.Grid.Z.At(5, 2), 1e-9)
}

func TestSurfacesAreReusable(t *testing.T) {
	res, err := Fit(threeFeatureTable(t), WithResolution(5))
	require.NoError(t, err)

	again, err := res.Model.Surfaces(5)
	require.NoError(t, err)
	for n := range again {
		assert.Equal(t, res.Surfaces[n].Grid.Rows(), again[n].Grid.Rows())
	}

	finer, err := res.Model.Surface(0, 2, 11)
	require.NoError(t, err)
	c, _ := finer.Grid.Dims()
	assert.Equal(t, 11, c)
}

func TestSingleFeatureHasNoSurfaces(t *testing.T) {
	table, err := dataset.FromRows([][]float64{{0, 1}, {1, 3}, {2, 9}})
	require.NoError(t, err)

	res, err := Fit(table)
	require.NoError(t, err)
	assert.Empty(t, res.Surfaces)
	assert.Equal(t, []string{"X1", "X1^2"}, res.Model.TermNames())
}

func TestConstantFeatureDoesNotFail(t *testing.T) {
	table, err := dataset.FromRows([][]float64{
		{0, 7, 1},
		{1, 7, 3},
		{2, 7, 5},
		{3, 7, 7},
	})
	require.NoError(t, err)

	res, err := Fit(table, WithResolution(3))
	require.NoError(t, err)
	require.Len(t, res.Surfaces, 1)

	pred, err := res.Model.Predict([][]float64{{1.5, 7}})
	require.NoError(t, err)
	assert.InDelta(t, 4, pred[0], 1e-9)

	// 定数特徴量の軸は縮退しているが評価はできる
	for _, y := range res.Surfaces[0].Grid.Y {
		assert.Equal(t, 7.0, y)
	}
}

func TestFitErrors(t *testing.T) {
	var empty *errors.EmptyDatasetError
	_, err := Fit(&dataset.Table{Columns: []string{"X1", "X2"}})
	assert.True(t, errors.As(err, &empty), "got %v", err)

	_, err = Fit(&dataset.Table{Columns: []string{"X1"}, Rows: [][]float64{{1}, {2}}})
	assert.True(t, errors.As(err, &empty), "got %v", err)

	_, err = Fit(nil)
	assert.True(t, errors.As(err, &empty), "got %v", err)

	var nonNumeric *errors.NonNumericDataError
	_, err = Fit(&dataset.Table{Columns: []string{"X1", "X2"}, Rows: [][]float64{{1, 2}, {math.NaN(), 3}}})
	require.True(t, errors.As(err, &nonNumeric), "got %v", err)
	assert.Equal(t, 2, nonNumeric.Row)
	assert.Equal(t, 1, nonNumeric.Col)

	levels := []float64{0, 1}
	_, err = Fit(sampleTable(t, levels, levels, bilinear), WithResolution(1))
	assert.Equal(t, errors.KindInvalidArgument, errors.Kind(err))
}

func TestSurfaceSelectionErrors(t *testing.T) {
	res, err := Fit(threeFeatureTable(t), WithResolution(3))
	require.NoError(t, err)

	for _, p := range [][2]int{{0, 0}, {-1, 1}, {1, 3}} {
		_, err := res.Model.Surface(p[0], p[1], 3)
		assert.Equal(t, errors.KindInvalidSelection, errors.Kind(err), "pair %v", p)
	}
}

func TestModelJSONRoundTrip(t *testing.T) {
	res, err := Fit(threeFeatureTable(t), WithResolution(4))
	require.NoError(t, err)

	data, err := json.Marshal(res.Model)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"model_type":"PolynomialSurface"`)

	var restored Model
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, res.Model.Formula(), restored.Formula())
	assert.Equal(t, res.Model.Stats(), restored.Stats())
	assert.Equal(t, res.Model.Samples(), restored.Samples())
	assert.InDelta(t, res.Model.R2(), restored.R2(), 1e-12)

	surfaces, err := restored.Surfaces(4)
	require.NoError(t, err)
	for n := range surfaces {
		assert.InDeltaSlice(t,
			res.Surfaces[n].Grid.Z.RawMatrix().Data,
			surfaces[n].Grid.Z.RawMatrix().Data, 1e-9)
	}

	mw := res.Model.Weights()
	mw.Terms[3], mw.Terms[4] = mw.Terms[4], mw.Terms[3]
	_, err = FromWeights(mw)
	assert.Error(t, err, "term order must match the canonical expansion")

	mw = res.Model.Weights()
	mw.ModelType = "Other"
	_, err = FromWeights(mw)
	assert.Error(t, err)
}

func TestModelIsImmutable(t *testing.T) {
	levels := []float64{0, 0.5, 1}
	res, err := Fit(sampleTable(t, levels, levels, bilinear))
	require.NoError(t, err)

	coef := res.Model.Coefficients()
	coef[0] = 1000
	stats := res.Model.Stats()
	stats[0].Mean = 1000

	assert.InDelta(t, 2, res.Model.Coefficients()[0], 1e-6)
	assert.InDelta(t, 0.5, res.Model.Stats()[0].Mean, 1e-12)
}

func BenchmarkFitAndSurfaces(b *testing.B) {
	var rows [][]float64
	for i := 0; i < 43; i++ {
		x := []float64{float64(i % 3), float64(i % 5), float64(i % 7), float64(i % 11), float64(i % 13)}
		rows = append(rows, append(x, x[0]*x[1]+x[2]-x[3]*x[4]))
	}
	table, err := dataset.FromRows(rows)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Fit(table); err != nil {
			b.Fatal(err)
		}
	}
}
