package linear

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/electrospin/core/model"
	"github.com/YuminosukeSato/electrospin/core/parallel"
	"github.com/YuminosukeSato/electrospin/metrics"
	"github.com/YuminosukeSato/electrospin/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const defaultParallelThreshold = 1000

var _ model.LinearModel = (*LinearRegression)(nil)

// LinearRegression は最小二乗法による線形回帰モデル
//
// X と y を中心化したうえで特異値分解による最小ノルム解を求める。
// ランク落ちした計画行列（列の重複や定数列）でも失敗せず、
// scikit-learn の LinearRegression と同じ係数を返す。
type LinearRegression struct {
	model.BaseEstimator

	Weights   *mat.VecDense // 重み（係数）
	Intercept float64       // 切片
	NFeatures int           // 特徴量の数
	Rank      int           // 中心化した X の実効ランク
	Singular  []float64     // 中心化した X の特異値（降順）

	fitIntercept      bool
	rcond             float64
	parallelThreshold int
}

// NewLinearRegression は新しい線形回帰モデルを作成する
func NewLinearRegression(opts ...Option) *LinearRegression {
	lr := &LinearRegression{
		fitIntercept:      true,
		parallelThreshold: defaultParallelThreshold,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// NewLinearRegressionFromWeights は保存済みの係数と切片から学習済みモデルを復元する
func NewLinearRegressionFromWeights(weights []float64, intercept float64) (*LinearRegression, error) {
	if len(weights) == 0 {
		return nil, errors.NewModelError("LinearRegression.FromWeights", "empty weights", errors.ErrEmptyData)
	}
	if err := errors.CheckNumericalStability("LinearRegression.FromWeights", append(append([]float64(nil), weights...), intercept)); err != nil {
		return nil, err
	}
	lr := NewLinearRegression()
	lr.Weights = mat.NewVecDense(len(weights), append([]float64(nil), weights...))
	lr.Intercept = intercept
	lr.NFeatures = len(weights)
	lr.Rank = -1
	lr.SetFitted()
	return lr, nil
}

// Fit はモデルを訓練データで学習させる
func (lr *LinearRegression) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("LinearRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("LinearRegression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("LinearRegression.Fit", "y must be a column vector")
	}
	if err := errors.CheckMatrix("LinearRegression.Fit", X, r, c); err != nil {
		return err
	}

	xMean := make([]float64, c)
	var yMean float64
	if lr.fitIntercept {
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				xMean[j] += X.At(i, j)
			}
			yMean += y.At(i, 0)
		}
		for j := range xMean {
			xMean[j] /= float64(r)
		}
		yMean /= float64(r)
	}

	// 中心化した計画行列と応答
	Xc := mat.NewDense(r, c, nil)
	yc := mat.NewDense(r, 1, nil)
	parallel.ParallelizeWithThreshold(r, lr.parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < c; j++ {
				Xc.Set(i, j, X.At(i, j)-xMean[j])
			}
			yc.Set(i, 0, y.At(i, 0)-yMean)
		}
	})

	var svd mat.SVD
	if ok := svd.Factorize(Xc, mat.SVDThin); !ok {
		return errors.NewModelError("LinearRegression.Fit", "SVD factorization failed", errors.ErrSingularMatrix)
	}

	rcond := lr.rcond
	if rcond <= 0 {
		rcond = epsilon * float64(max(r, c))
	}
	rank := svd.Rank(rcond)

	coef := mat.NewDense(c, 1, nil)
	if rank > 0 {
		svd.SolveTo(coef, yc, rank)
	}

	w := mat.Col(nil, 0, coef)
	intercept := yMean
	for j, v := range w {
		intercept -= xMean[j] * v
	}
	if err := errors.CheckNumericalStability("LinearRegression.Fit", append(w, intercept)); err != nil {
		return err
	}
	weights := mat.NewVecDense(c, w[:c])

	lr.Weights = weights
	lr.Intercept = intercept
	lr.NFeatures = c
	lr.Rank = rank
	lr.Singular = svd.Values(nil)
	lr.SetFitted()

	return nil
}

// epsilon は float64 のマシンイプシロン
var epsilon = math.Nextafter(1, 2) - 1

// Predict は入力データに対する予測を行う
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LinearRegression", "Predict")
	}

	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, errors.NewDimensionError("LinearRegression.Predict", lr.NFeatures, c, 1)
	}

	// y = X * weights + intercept
	predictions := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		pred := lr.Intercept
		for j := 0; j < c; j++ {
			pred += X.At(i, j) * lr.Weights.AtVec(j)
		}
		predictions.Set(i, 0, pred)
	}

	return predictions, nil
}

// PredictRow は1行分の特徴量に対する予測値を返す
func (lr *LinearRegression) PredictRow(row []float64) (float64, error) {
	if !lr.IsFitted() {
		return 0, errors.NewNotFittedError("LinearRegression", "PredictRow")
	}
	if len(row) != lr.NFeatures {
		return 0, errors.NewDimensionError("LinearRegression.PredictRow", lr.NFeatures, len(row), 1)
	}
	return lr.Intercept + mat.Dot(mat.NewVecDense(len(row), row), lr.Weights), nil
}

// GetWeights は学習された重み（係数）のコピーを返す
func (lr *LinearRegression) GetWeights() []float64 {
	if lr.Weights == nil {
		return nil
	}
	return append([]float64(nil), lr.Weights.RawVector().Data...)
}

// GetIntercept は学習された切片を返す
func (lr *LinearRegression) GetIntercept() float64 {
	if !lr.IsFitted() {
		return 0
	}
	return lr.Intercept
}

// Score はモデルの決定係数（R²）を計算する
func (lr *LinearRegression) Score(X, y mat.Matrix) (float64, error) {
	if !lr.IsFitted() {
		return 0, errors.NewNotFittedError("LinearRegression", "Score")
	}

	yPred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(metrics.Column(y, 0), metrics.Column(yPred, 0))
}

// String は文字列表現を返す
func (lr *LinearRegression) String() string {
	if !lr.IsFitted() {
		return fmt.Sprintf("LinearRegression(fit_intercept=%t)", lr.fitIntercept)
	}
	return fmt.Sprintf("LinearRegression(fit_intercept=%t, n_features=%d, rank=%d)",
		lr.fitIntercept, lr.NFeatures, lr.Rank)
}
