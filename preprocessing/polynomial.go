package preprocessing

import (
	"fmt"

	"github.com/YuminosukeSato/electrospin/core/model"
	"github.com/YuminosukeSato/electrospin/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Term は展開後の1項を構成する元特徴量のインデックス（1個または2個、昇順）
type Term []int

// Name は元特徴量名から項の名前を組み立てる
//
//	[0]    -> "X1"
//	[0 0]  -> "X1^2"
//	[0 1]  -> "X1*X2"
func (t Term) Name(features []string) string {
	switch {
	case len(t) == 1:
		return features[t[0]]
	case t[0] == t[1]:
		return features[t[0]] + "^2"
	default:
		return features[t[0]] + "*" + features[t[1]]
	}
}

// eval は1行分の値に対する項の値を返す
func (t Term) eval(row []float64) float64 {
	v := 1.0
	for _, idx := range t {
		v *= row[idx]
	}
	return v
}

// PolynomialFeatures は2次の多項式特徴量（バイアス項なし）を生成する
//
// 項の順序は固定:
//
//	X1, .., Xk, X1^2, X1*X2, .., X1*Xk, X2^2, X2*X3, .., Xk^2
//
// 学習時と評価時で同じインスタンス（または同じ特徴量数）を使う限り、
// 係数と項の対応は常に一致する。
type PolynomialFeatures struct {
	model.BaseEstimator

	// NFeatures は入力特徴量の数
	NFeatures int

	terms []Term
}

// NewPolynomialFeatures は新しいPolynomialFeaturesを作成する
func NewPolynomialFeatures() *PolynomialFeatures {
	return &PolynomialFeatures{}
}

// NewPolynomialFeaturesFor は特徴量数nで学習済みのPolynomialFeaturesを返す
func NewPolynomialFeaturesFor(n int) (*PolynomialFeatures, error) {
	p := NewPolynomialFeatures()
	if err := p.fitN(n); err != nil {
		return nil, err
	}
	return p, nil
}

// NumOutputTerms はk個の特徴量から生成される項数 k + k(k+1)/2 を返す
func NumOutputTerms(k int) int {
	return k + k*(k+1)/2
}

// Fit は入力の列数から展開する項を決める
func (p *PolynomialFeatures) Fit(X mat.Matrix) error {
	_, c := X.Dims()
	return p.fitN(c)
}

func (p *PolynomialFeatures) fitN(n int) error {
	if n <= 0 {
		return errors.NewModelError("PolynomialFeatures.Fit", "empty data", errors.ErrEmptyData)
	}
	terms := make([]Term, 0, NumOutputTerms(n))
	for i := 0; i < n; i++ {
		terms = append(terms, Term{i})
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			terms = append(terms, Term{i, j})
		}
	}
	p.NFeatures = n
	p.terms = terms
	p.SetFitted()
	return nil
}

// Terms は展開後の項を順序どおりに返す
func (p *PolynomialFeatures) Terms() []Term {
	out := make([]Term, len(p.terms))
	for i, t := range p.terms {
		out[i] = append(Term(nil), t...)
	}
	return out
}

// FeatureNames は入力特徴量名に対応する展開後の項名を返す
func (p *PolynomialFeatures) FeatureNames(input []string) ([]string, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("PolynomialFeatures", "FeatureNames")
	}
	if len(input) != p.NFeatures {
		return nil, errors.NewDimensionError("PolynomialFeatures.FeatureNames", p.NFeatures, len(input), 1)
	}
	names := make([]string, len(p.terms))
	for i, t := range p.terms {
		names[i] = t.Name(input)
	}
	return names, nil
}

// Transform は各行を多項式特徴量に展開する
func (p *PolynomialFeatures) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("PolynomialFeatures", "Transform")
	}
	r, c := X.Dims()
	if c != p.NFeatures {
		return nil, errors.NewDimensionError("PolynomialFeatures.Transform", p.NFeatures, c, 1)
	}

	out := mat.NewDense(r, len(p.terms), nil)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, X)
		for k, t := range p.terms {
			out.Set(i, k, t.eval(row))
		}
	}
	return out, nil
}

// TransformRow は1行分を展開してdstに書き込む
func (p *PolynomialFeatures) TransformRow(dst, row []float64) error {
	if !p.IsFitted() {
		return errors.NewNotFittedError("PolynomialFeatures", "TransformRow")
	}
	if len(row) != p.NFeatures {
		return errors.NewDimensionError("PolynomialFeatures.TransformRow", p.NFeatures, len(row), 1)
	}
	if len(dst) != len(p.terms) {
		return errors.NewDimensionError("PolynomialFeatures.TransformRow", len(p.terms), len(dst), 1)
	}
	for k, t := range p.terms {
		dst[k] = t.eval(row)
	}
	return nil
}

// FitTransform はFitとTransformを同時に実行する
func (p *PolynomialFeatures) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := p.Fit(X); err != nil {
		return nil, err
	}
	return p.Transform(X)
}

// GetParams はパラメータを取得する
func (p *PolynomialFeatures) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"degree":       2,
		"include_bias": false,
	}
}

// String は文字列表現を返す
func (p *PolynomialFeatures) String() string {
	if !p.IsFitted() {
		return "PolynomialFeatures(degree=2, include_bias=false)"
	}
	return fmt.Sprintf("PolynomialFeatures(degree=2, include_bias=false, n_features=%d, n_output=%d)",
		p.NFeatures, len(p.terms))
}
