package model

import "gonum.org/v1/gonum/mat"

// Transformer はデータ変換のインターフェース
type Transformer interface {
	// Fit は変換に必要なパラメータを学習する
	Fit(X mat.Matrix) error

	// Transform はデータを変換する
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform はFitとTransformを同時に実行する
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// TransformAll は学習済みの変換器を順番に適用する
func TransformAll(X mat.Matrix, steps ...Transformer) (mat.Matrix, error) {
	out := X
	for _, step := range steps {
		var err error
		if out, err = step.Transform(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}
