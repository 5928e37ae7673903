package surface

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/YuminosukeSato/electrospin/core/grid"
	"github.com/YuminosukeSato/electrospin/core/model"
	"github.com/YuminosukeSato/electrospin/linear"
	"github.com/YuminosukeSato/electrospin/pkg/errors"
	"github.com/YuminosukeSato/electrospin/preprocessing"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

const (
	// ModelType identifies serialized surface models.
	ModelType = "PolynomialSurface"
	// FormatVersion is the serialized model version.
	FormatVersion = "1"

	// ValueLabel labels the colour scale of every surface.
	ValueLabel = "Predicted y"
)

// FeatureStats holds the observed min, max and mean of one feature.
type FeatureStats = model.FeatureStats

// Model is a fitted degree-2 response surface. It is immutable: accessors
// return copies and every surface query reuses the same scaler, expansion
// and coefficients.
type Model struct {
	features  []string
	stats     []FeatureStats
	terms     []string
	coef      []float64
	intercept float64
	formula   string
	r2        float64
	rmse      float64
	samples   int

	scaler *preprocessing.MinMaxScaler
	poly   *preprocessing.PolynomialFeatures
	reg    *linear.LinearRegression
}

// Features returns the feature names in column order.
func (m *Model) Features() []string { return append([]string(nil), m.features...) }

// Stats returns per-feature statistics in column order.
func (m *Model) Stats() []FeatureStats { return append([]FeatureStats(nil), m.stats...) }

// Stat looks up the statistics of one feature.
func (m *Model) Stat(name string) (FeatureStats, bool) {
	for _, s := range m.stats {
		if s.Name == name {
			return s, true
		}
	}
	return FeatureStats{}, false
}

// TermNames returns the expanded term names aligned with Coefficients.
func (m *Model) TermNames() []string { return append([]string(nil), m.terms...) }

// Coefficients returns one coefficient per expanded term.
func (m *Model) Coefficients() []float64 { return append([]float64(nil), m.coef...) }

// Intercept returns the fitted intercept.
func (m *Model) Intercept() float64 { return m.intercept }

// Formula returns the human readable equation.
func (m *Model) Formula() string { return m.formula }

// R2 returns the coefficient of determination on the training data.
func (m *Model) R2() float64 { return m.r2 }

// RMSE returns the root mean squared training error.
func (m *Model) RMSE() float64 { return m.rmse }

// Samples returns the number of training rows.
func (m *Model) Samples() int { return m.samples }

// FormatFormula renders "y = <b0> <+|-> <|b|>*<term> ...", every number to
// two decimals, the sign chosen by coef >= 0.
func FormatFormula(intercept float64, coef []float64, terms []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "y = %.2f ", intercept)
	parts := make([]string, len(coef))
	for i, c := range coef {
		if c >= 0 {
			parts[i] = fmt.Sprintf("+ %.2f*%s", c, terms[i])
		} else {
			parts[i] = fmt.Sprintf("- %.2f*%s", -c, terms[i])
		}
	}
	b.WriteString(strings.Join(parts, " "))
	return b.String()
}

// Predict evaluates the model on raw (unscaled) feature rows.
func (m *Model) Predict(rows [][]float64) ([]float64, error) {
	if len(rows) == 0 {
		return nil, errors.NewEmptyDatasetError(0, len(m.features))
	}
	X := mat.NewDense(len(rows), len(m.features), nil)
	for i, row := range rows {
		if len(row) != len(m.features) {
			return nil, errors.NewDimensionError("surface.Predict", len(m.features), len(row), 1)
		}
		X.SetRow(i, row)
	}

	expanded, err := model.TransformAll(X, m.scaler, m.poly)
	if err != nil {
		return nil, err
	}
	pred, err := m.reg.Predict(expanded)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	return mat.Col(out, 0, pred), nil
}

// scratch holds the per-cell buffers of predictRow.
type scratch struct {
	row, scaled, expanded []float64
}

// scratchPool recycles scratch buffers across the cells of one surface.
func (m *Model) scratchPool() *sync.Pool {
	k, t := len(m.features), len(m.terms)
	return &sync.Pool{
		New: func() any {
			return &scratch{
				row:      make([]float64, k),
				scaled:   make([]float64, k),
				expanded: make([]float64, t),
			}
		},
	}
}

// predictRow evaluates one raw row with caller-owned scratch buffers.
func (m *Model) predictRow(row, scaled, expanded []float64) (float64, error) {
	if err := m.scaler.TransformRow(scaled, row); err != nil {
		return 0, err
	}
	if err := m.poly.TransformRow(expanded, scaled); err != nil {
		return 0, err
	}
	return m.reg.PredictRow(expanded)
}

// ContourSurface is the predicted response over one feature pair, every
// other feature held at its mean.
type ContourSurface struct {
	F1   string     `json:"f1"`
	F2   string     `json:"f2"`
	I    int        `json:"i"`
	J    int        `json:"j"`
	Grid *grid.Grid `json:"grid"`
}

// Surface evaluates features i and j over their observed ranges on a
// resolution×resolution grid.
func (m *Model) Surface(i, j, resolution int) (ContourSurface, error) {
	k := len(m.features)
	if i < 0 || j < 0 || i >= k || j >= k || i == j {
		return ContourSurface{}, errors.NewInvalidSelectionError(
			featureOrIndex(m.features, i), featureOrIndex(m.features, j),
			fmt.Sprintf("need two different feature indices in [0, %d)", k))
	}
	f1, f2 := m.stats[i], m.stats[j]

	xs, err := grid.Linspace(f1.Min, f1.Max, resolution)
	if err != nil {
		return ContourSurface{}, err
	}
	ys, err := grid.Linspace(f2.Min, f2.Max, resolution)
	if err != nil {
		return ContourSurface{}, err
	}

	base := make([]float64, k)
	for n, s := range m.stats {
		base[n] = s.Mean
	}
	pool := m.scratchPool()
	g, err := grid.Evaluate(xs, ys, func(x, y float64) (float64, error) {
		buf := pool.Get().(*scratch)
		defer pool.Put(buf)
		copy(buf.row, base)
		buf.row[i], buf.row[j] = x, y
		return m.predictRow(buf.row, buf.scaled, buf.expanded)
	})
	if err != nil {
		return ContourSurface{}, err
	}
	g.XLabel = f1.Name
	g.YLabel = f2.Name
	g.ZLabel = ValueLabel
	g.Title = fmt.Sprintf("Contour Plot: %s vs %s", f1.Name, f2.Name)

	return ContourSurface{F1: f1.Name, F2: f2.Name, I: i, J: j, Grid: g}, nil
}

func featureOrIndex(features []string, i int) string {
	if i >= 0 && i < len(features) {
		return features[i]
	}
	return fmt.Sprintf("#%d", i)
}

// Surfaces evaluates every feature pair concurrently and returns them in
// pair order: (X1,X2), (X1,X3), .., (X2,X3), ..
func (m *Model) Surfaces(resolution int) ([]ContourSurface, error) {
	pairs := grid.Pairs(len(m.features))
	out := make([]ContourSurface, len(pairs))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for n, p := range pairs {
		g.Go(func() error {
			return errors.SafeExecute("surface.Surfaces", func() error {
				s, err := m.Surface(p[0], p[1], resolution)
				if err != nil {
					return err
				}
				out[n] = s
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Weights exports the model in the serialized envelope.
func (m *Model) Weights() *model.ModelWeights {
	return &model.ModelWeights{
		ModelType:    ModelType,
		Version:      FormatVersion,
		Features:     m.Features(),
		FeatureStats: m.Stats(),
		Terms:        m.TermNames(),
		Coefficients: m.Coefficients(),
		Intercept:    m.intercept,
		Hyperparameters: map[string]interface{}{
			"degree":        2,
			"include_bias":  false,
			"feature_range": []float64{0, 1},
		},
		Metadata: map[string]float64{
			"r2":      m.r2,
			"rmse":    m.rmse,
			"samples": float64(m.samples),
		},
		IsFitted: true,
	}
}

// FromWeights rebuilds a model from its serialized envelope. The term list
// must match the canonical expansion of the features.
func FromWeights(mw *model.ModelWeights) (*Model, error) {
	if err := mw.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid surface model")
	}
	if mw.ModelType != ModelType {
		return nil, errors.Newf("unexpected model type %q, want %q", mw.ModelType, ModelType)
	}
	if !mw.IsFitted {
		return nil, errors.NewNotFittedError(ModelType, "FromWeights")
	}

	poly, err := preprocessing.NewPolynomialFeaturesFor(len(mw.Features))
	if err != nil {
		return nil, err
	}
	terms, err := poly.FeatureNames(mw.Features)
	if err != nil {
		return nil, err
	}
	if strings.Join(terms, ",") != strings.Join(mw.Terms, ",") {
		return nil, errors.Newf("terms %v do not match the expansion %v", mw.Terms, terms)
	}

	lo := make([]float64, len(mw.FeatureStats))
	hi := make([]float64, len(mw.FeatureStats))
	for n, s := range mw.FeatureStats {
		lo[n], hi[n] = s.Min, s.Max
	}
	scaler, err := preprocessing.NewMinMaxScalerFromRange(lo, hi)
	if err != nil {
		return nil, err
	}
	reg, err := linear.NewLinearRegressionFromWeights(mw.Coefficients, mw.Intercept)
	if err != nil {
		return nil, err
	}

	return &Model{
		features:  append([]string(nil), mw.Features...),
		stats:     append([]FeatureStats(nil), mw.FeatureStats...),
		terms:     terms,
		coef:      append([]float64(nil), mw.Coefficients...),
		intercept: mw.Intercept,
		formula:   FormatFormula(mw.Intercept, mw.Coefficients, terms),
		r2:        mw.Metadata["r2"],
		rmse:      mw.Metadata["rmse"],
		samples:   int(mw.Metadata["samples"]),
		scaler:    scaler,
		poly:      poly,
		reg:       reg,
	}, nil
}

// MarshalJSON implements json.Marshaler.
func (m *Model) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Weights())
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Model) UnmarshalJSON(data []byte) error {
	var mw model.ModelWeights
	if err := json.Unmarshal(data, &mw); err != nil {
		return err
	}
	restored, err := FromWeights(&mw)
	if err != nil {
		return err
	}
	*m = *restored
	return nil
}
