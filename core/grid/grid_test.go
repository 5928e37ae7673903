package grid

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/YuminosukeSato/electrospin/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinspace(t *testing.T) {
	got, err := Linspace(0, 1, 5)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0.25, 0.5, 0.75, 1}, got, 1e-15)

	got, err = Linspace(0.007, 0.05, 500)
	require.NoError(t, err)
	assert.Len(t, got, 500)
	assert.Equal(t, 0.007, got[0])
	assert.Equal(t, 0.05, got[499])

	_, err = Linspace(0, 1, 1)
	assert.Error(t, err)
	_, err = Linspace(math.NaN(), 1, 3)
	assert.Error(t, err)
}

func TestEvaluateLayout(t *testing.T) {
	x := []float64{1, 2, 3}
	y := []float64{10, 20}

	g, err := Evaluate(x, y, func(x, y float64) (float64, error) { return x + y, nil })
	require.NoError(t, err)

	c, r := g.Dims()
	assert.Equal(t, 3, c)
	assert.Equal(t, 2, r)
	assert.Equal(t, 23.0, g.At(2, 1))
	assert.Equal(t, 23.0, g.Z.At(1, 2))
	assert.Equal(t, [][]float64{{11, 12, 13}, {21, 22, 23}}, g.Rows())
	assert.Equal(t, 11.0, g.Min())
	assert.Equal(t, 23.0, g.Max())
}

func TestEvaluateParallelRows(t *testing.T) {
	x, err := Linspace(0, 1, 50)
	require.NoError(t, err)
	y, err := Linspace(0, 1, 200)
	require.NoError(t, err)

	g, err := Evaluate(x, y, func(x, y float64) (float64, error) { return x * y, nil })
	require.NoError(t, err)
	for i := range y {
		for j := range x {
			require.Equal(t, x[j]*y[i], g.Z.At(i, j))
		}
	}
}

func TestEvaluateReturnsFirstRowError(t *testing.T) {
	x := []float64{0, 1}
	y := make([]float64, 100)
	for i := range y {
		y[i] = float64(i)
	}

	_, err := Evaluate(x, y, func(x, y float64) (float64, error) {
		if y >= 40 {
			return 0, errors.NewDomainError("test", map[string]float64{"y": y}, "too large")
		}
		return 0, nil
	})
	require.Error(t, err)

	var domainErr *errors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, 40.0, domainErr.Inputs["y"])
}

func TestEvaluateRecoversPanics(t *testing.T) {
	_, err := Evaluate([]float64{0}, []float64{0}, func(x, y float64) (float64, error) {
		var m map[string]int
		m["boom"] = 1
		return 0, nil
	})
	var panicErr *errors.PanicError
	assert.True(t, errors.As(err, &panicErr))
}

func TestClip(t *testing.T) {
	g, err := Evaluate([]float64{0, 1, 2}, []float64{0, 10}, func(x, y float64) (float64, error) {
		return x*20 + y, nil
	})
	require.NoError(t, err)

	n := g.Clip(10, 30)
	// 0 -> 10, 40 -> 30, 50 -> 30
	assert.Equal(t, 3, n)
	assert.GreaterOrEqual(t, g.Min(), 10.0)
	assert.LessOrEqual(t, g.Max(), 30.0)
}

func TestGridJSONRoundTrip(t *testing.T) {
	g, err := Evaluate([]float64{1, 2}, []float64{3, 4}, func(x, y float64) (float64, error) { return x * y, nil })
	require.NoError(t, err)
	g.XLabel, g.YLabel, g.ZLabel, g.Title = "H, cm", "R, cm", "Uc, kV", "t"

	data, err := json.Marshal(g)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"z":[[3,6],[4,8]]`)

	var back Grid
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, g.Rows(), back.Rows())
	assert.Equal(t, g.XLabel, back.XLabel)

	assert.Error(t, json.Unmarshal([]byte(`{"x":[1,2],"y":[1],"z":[[1]]}`), &back))
}

func TestPairs(t *testing.T) {
	assert.Equal(t, [][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}, Pairs(4))
	assert.Equal(t, [][2]int{{0, 1}}, Pairs(2))
	assert.Nil(t, Pairs(1))
	assert.Equal(t, 10, NumPairs(5))
	assert.Equal(t, 0, NumPairs(1))
}
