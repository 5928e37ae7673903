package metrics

import (
	"math"

	"github.com/YuminosukeSato/electrospin/pkg/errors"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
)

// Column は行列の j 列目をスライスとして取り出す
func Column(m mat.Matrix, j int) []float64 {
	r, _ := m.Dims()
	return mat.Col(make([]float64, r), j, m)
}

func validate(op string, yTrue, yPred []float64) error {
	if len(yTrue) == 0 {
		return errors.NewValueError(op, "empty vector")
	}
	if len(yPred) != len(yTrue) {
		return errors.NewDimensionError(op, len(yTrue), len(yPred), 0)
	}
	return nil
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred []float64) (float64, error) {
	if err := validate("MSE", yTrue, yPred); err != nil {
		return 0, err
	}

	// MSE = (1/n) * Σ(yTrue - yPred)²
	var sum float64
	for i, v := range yTrue {
		diff := v - yPred[i]
		sum += diff * diff
	}
	return sum / float64(len(yTrue)), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred []float64) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred []float64) (float64, error) {
	if err := validate("MAE", yTrue, yPred); err != nil {
		return 0, err
	}

	var sum float64
	for i, v := range yTrue {
		sum += math.Abs(v - yPred[i])
	}
	return sum / float64(len(yTrue)), nil
}

// R2Score は決定係数（R²）を計算する
//
// yTrue に分散がない場合、完全一致なら 1、それ以外は 0 を返す。
func R2Score(yTrue, yPred []float64) (float64, error) {
	if err := validate("R2Score", yTrue, yPred); err != nil {
		return 0, err
	}

	var yMean float64
	for _, v := range yTrue {
		yMean += v
	}
	yMean /= float64(len(yTrue))

	// 全変動（TSS）と残差変動（RSS）
	var tss, rss float64
	for i, v := range yTrue {
		tss += (v - yMean) * (v - yMean)
		rss += (v - yPred[i]) * (v - yPred[i])
	}

	if tss == 0 {
		if rss == 0 {
			return 1, nil
		}
		return 0, nil
	}
	return 1 - rss/tss, nil
}

// Report は回帰の当てはまりをまとめた診断値
type Report struct {
	MSE  float64 `json:"mse"`
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
	R2   float64 `json:"r2"`
}

// Evaluate はすべての診断値を一度に計算する
func Evaluate(yTrue, yPred []float64) (Report, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return Report{}, err
	}
	mae, err := MAE(yTrue, yPred)
	if err != nil {
		return Report{}, err
	}
	r2, err := R2Score(yTrue, yPred)
	if err != nil {
		return Report{}, err
	}
	return Report{MSE: mse, RMSE: math.Sqrt(mse), MAE: mae, R2: r2}, nil
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (r Report) MarshalZerologObject(event *zerolog.Event) {
	event.Float64("mse", r.MSE).
		Float64("rmse", r.RMSE).
		Float64("mae", r.MAE).
		Float64("r2", r.R2)
}
