package model

import (
	"fmt"
	"io"
	"os"
)

// SaveWeights はModelWeightsをJSONファイルに保存する
//
// 使用例:
//
//	err := model.SaveWeights(res.Model.Weights(), "surface.json")
func SaveWeights(mw *ModelWeights, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	return SaveWeightsToWriter(mw, file)
}

// LoadWeights はJSONファイルからModelWeightsを読み込む
func LoadWeights(filename string) (*ModelWeights, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return LoadWeightsFromReader(file)
}

// SaveWeightsToWriter はModelWeightsをio.Writerに書き出す
func SaveWeightsToWriter(mw *ModelWeights, w io.Writer) error {
	if err := mw.Validate(); err != nil {
		return fmt.Errorf("invalid model weights: %w", err)
	}
	data, err := mw.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	return nil
}

// LoadWeightsFromReader はio.ReaderからModelWeightsを読み込む
func LoadWeightsFromReader(r io.Reader) (*ModelWeights, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	var mw ModelWeights
	if err := mw.FromJSON(data); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	return &mw, nil
}
