package model

import (
	"encoding/json"
	"fmt"
)

// FeatureStats は入力特徴量ごとの観測統計（スケーラーのパラメータを兼ねる）
type FeatureStats struct {
	Name string  `json:"name"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// ModelWeights は学習済みモデルのシリアライズ形式
type ModelWeights struct {
	// ModelType はモデルの種類（例: PolynomialSurface）
	ModelType string `json:"model_type"`

	// Version は形式のバージョン（互換性チェック用）
	Version string `json:"version"`

	// Features は元の特徴量名（列順）
	Features []string `json:"features"`

	// FeatureStats は特徴量ごとの min/max/mean
	FeatureStats []FeatureStats `json:"feature_stats"`

	// Terms は展開後の項の名前（Coefficients と同じ順序）
	Terms []string `json:"terms"`

	// Coefficients は重み係数
	Coefficients []float64 `json:"coefficients"`

	// Intercept は切片
	Intercept float64 `json:"intercept"`

	// Hyperparameters はモデルのハイパーパラメータ
	Hyperparameters map[string]interface{} `json:"hyperparameters,omitempty"`

	// Metadata は学習時の診断値（r2, rmse, samples 等）
	Metadata map[string]float64 `json:"metadata,omitempty"`

	// IsFitted はモデルが学習済みかどうか
	IsFitted bool `json:"is_fitted"`
}

// ToJSON はModelWeightsをJSON形式にシリアライズ
func (mw *ModelWeights) ToJSON() ([]byte, error) {
	return json.MarshalIndent(mw, "", "  ")
}

// FromJSON はJSON形式からModelWeightsをデシリアライズし、検証する
func (mw *ModelWeights) FromJSON(data []byte) error {
	if err := json.Unmarshal(data, mw); err != nil {
		return err
	}
	return mw.Validate()
}

// Validate はModelWeightsの妥当性を検証
func (mw *ModelWeights) Validate() error {
	if mw.ModelType == "" {
		return fmt.Errorf("model_type is required")
	}
	if mw.Version == "" {
		return fmt.Errorf("version is required")
	}
	if !mw.IsFitted {
		if len(mw.Coefficients) > 0 {
			return fmt.Errorf("unfitted model should not have coefficients")
		}
		return nil
	}
	if len(mw.Coefficients) == 0 {
		return fmt.Errorf("fitted model must have coefficients")
	}
	if len(mw.Terms) != len(mw.Coefficients) {
		return fmt.Errorf("terms (%d) and coefficients (%d) must have the same length", len(mw.Terms), len(mw.Coefficients))
	}
	if len(mw.FeatureStats) != len(mw.Features) {
		return fmt.Errorf("feature_stats (%d) and features (%d) must have the same length", len(mw.FeatureStats), len(mw.Features))
	}
	for i, s := range mw.FeatureStats {
		if s.Name != mw.Features[i] {
			return fmt.Errorf("feature_stats[%d] is %q, want %q", i, s.Name, mw.Features[i])
		}
		if s.Min > s.Max {
			return fmt.Errorf("feature %q has min %g > max %g", s.Name, s.Min, s.Max)
		}
	}
	return nil
}

// Clone はModelWeightsのディープコピーを作成
func (mw *ModelWeights) Clone() *ModelWeights {
	clone := &ModelWeights{
		ModelType:       mw.ModelType,
		Version:         mw.Version,
		Intercept:       mw.Intercept,
		IsFitted:        mw.IsFitted,
		Features:        append([]string(nil), mw.Features...),
		FeatureStats:    append([]FeatureStats(nil), mw.FeatureStats...),
		Terms:           append([]string(nil), mw.Terms...),
		Coefficients:    append([]float64(nil), mw.Coefficients...),
		Hyperparameters: make(map[string]interface{}, len(mw.Hyperparameters)),
		Metadata:        make(map[string]float64, len(mw.Metadata)),
	}
	for k, v := range mw.Hyperparameters {
		clone.Hyperparameters[k] = v
	}
	for k, v := range mw.Metadata {
		clone.Metadata[k] = v
	}
	return clone
}
