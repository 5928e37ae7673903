// Package surface fits a degree-2 polynomial response surface to tabular
// data and evaluates it over every pair of input features.
package surface

import (
	"time"

	"github.com/YuminosukeSato/electrospin/dataset"
	"github.com/YuminosukeSato/electrospin/linear"
	"github.com/YuminosukeSato/electrospin/metrics"
	"github.com/YuminosukeSato/electrospin/pkg/errors"
	"github.com/YuminosukeSato/electrospin/pkg/log"
	"github.com/YuminosukeSato/electrospin/preprocessing"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
)

// DefaultResolution is the number of samples per surface axis.
const DefaultResolution = 50

// Result is the output of Fit.
type Result struct {
	Formula  string           `json:"formula"`
	Surfaces []ContourSurface `json:"surfaces"`
	Model    *Model           `json:"model"`
}

type fitConfig struct {
	resolution int
}

// Option configures Fit.
type Option func(*fitConfig)

// WithResolution sets the samples per surface axis (at least 2).
func WithResolution(n int) Option {
	return func(c *fitConfig) {
		c.resolution = n
	}
}

// Fit runs the full pipeline on ds: per-feature statistics, min-max
// scaling to [0, 1], degree-2 expansion without bias, ordinary least
// squares, formula synthesis and one contour surface per feature pair.
// Nothing is returned unless every step succeeds.
func Fit(ds *dataset.Table, opts ...Option) (*Result, error) {
	cfg := fitConfig{resolution: DefaultResolution}
	for _, opt := range opts {
		opt(&cfg)
	}

	m, err := FitModel(ds)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	surfaces, err := m.Surfaces(cfg.resolution)
	if err != nil {
		return nil, err
	}
	log.GetLoggerWithName("surface").Debug("surfaces evaluated",
		log.OperationKey, log.OperationSurfaces,
		log.SurfacesKey, len(surfaces),
		log.ResolutionKey, cfg.resolution,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	return &Result{Formula: m.Formula(), Surfaces: surfaces, Model: m}, nil
}

// FitModel fits the surface model without evaluating any surface.
func FitModel(ds *dataset.Table) (*Model, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	features := ds.Features()

	featureStats := make([]FeatureStats, len(features))
	for j, name := range features {
		s, err := columnStats(name, ds.Column(j))
		if err != nil {
			return nil, err
		}
		featureStats[j] = s
	}

	X := ds.FeatureMatrix()
	y := ds.Target()

	scaler := preprocessing.NewMinMaxScalerDefault()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		return nil, err
	}
	poly := preprocessing.NewPolynomialFeatures()
	expanded, err := poly.FitTransform(scaled)
	if err != nil {
		return nil, err
	}
	terms, err := poly.FeatureNames(features)
	if err != nil {
		return nil, err
	}

	reg := linear.NewLinearRegression()
	if err := reg.Fit(expanded, mat.NewDense(len(y), 1, y)); err != nil {
		return nil, errors.NewModelError("surface.Fit", "least squares failed", err)
	}

	pred, err := reg.Predict(expanded)
	if err != nil {
		return nil, err
	}
	report, err := metrics.Evaluate(y, metrics.Column(pred, 0))
	if err != nil {
		return nil, err
	}

	coef := reg.GetWeights()
	intercept := reg.GetIntercept()
	m := &Model{
		features:  features,
		stats:     featureStats,
		terms:     terms,
		coef:      coef,
		intercept: intercept,
		formula:   FormatFormula(intercept, coef, terms),
		r2:        report.R2,
		rmse:      report.RMSE,
		samples:   ds.NumRows(),
		scaler:    scaler,
		poly:      poly,
		reg:       reg,
	}

	log.GetLoggerWithName("surface").Debug("model fitted",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, ds.NumRows(),
		log.FeaturesKey, len(features),
		log.TermsKey, len(terms),
		log.R2ScoreKey, report.R2,
		log.RMSEKey, report.RMSE,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return m, nil
}

func columnStats(name string, col []float64) (FeatureStats, error) {
	data := stats.Float64Data(col)
	lo, err := data.Min()
	if err != nil {
		return FeatureStats{}, errors.Wrapf(err, "min of %s", name)
	}
	hi, err := data.Max()
	if err != nil {
		return FeatureStats{}, errors.Wrapf(err, "max of %s", name)
	}
	mean, err := data.Mean()
	if err != nil {
		return FeatureStats{}, errors.Wrapf(err, "mean of %s", name)
	}
	return FeatureStats{Name: name, Min: lo, Max: hi, Mean: mean}, nil
}
