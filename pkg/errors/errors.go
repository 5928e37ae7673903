// Package errors はelectrospin全体のエラーハンドリングを提供します。
// 各エラー種別は構造体として定義され、cockroachdb/errors によるスタックトレースと
// zerolog 向けの構造化出力を持ちます。
package errors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	実験計画・物理モデル・回帰入力のエラー型
//
// ===========================================================================

// InvalidDesignError は実験計画の因子数・中心点数が不正な場合のエラーです。
type InvalidDesignError struct {
	Param  string
	Value  int
	Reason string
}

func (e *InvalidDesignError) Error() string {
	return fmt.Sprintf("espin: invalid design: %s=%d: %s", e.Param, e.Value, e.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *InvalidDesignError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param", e.Param).
		Int("value", e.Value).
		Str("reason", e.Reason).
		Str("type", "InvalidDesignError")
}

// NewInvalidDesignError は新しいInvalidDesignErrorを作成し、スタックトレースを付与します。
func NewInvalidDesignError(param string, value int, reason string) error {
	err := &InvalidDesignError{Param: param, Value: value, Reason: reason}
	return errors.WithStack(err)
}

// DomainError は物理式が定義域の外で評価された場合のエラーです。
// 例えば対数の引数が0以下、平方根の引数が負の場合など。
type DomainError struct {
	Op     string
	Inputs map[string]float64
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("espin: %s: outside the valid domain (%s): %s", e.Op, e.inputs(), e.Reason)
}

// inputs renders Inputs with sorted keys so messages are stable.
func (e *DomainError) inputs() string {
	keys := make([]string, 0, len(e.Inputs))
	for k := range e.Inputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, e.Inputs[k])
	}
	return strings.Join(parts, ", ")
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DomainError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("inputs", e.inputs()).
		Str("reason", e.Reason).
		Str("type", "DomainError")
}

// NewDomainError は新しいDomainErrorを作成し、スタックトレースを付与します。
func NewDomainError(op string, inputs map[string]float64, reason string) error {
	err := &DomainError{Op: op, Inputs: inputs, Reason: reason}
	return errors.WithStack(err)
}

// InvalidSelectionError は軸変数の選択が重複または未知の名前の場合のエラーです。
type InvalidSelectionError struct {
	X      string
	Y      string
	Reason string
}

func (e *InvalidSelectionError) Error() string {
	return fmt.Sprintf("espin: invalid axis selection (x=%q, y=%q): %s", e.X, e.Y, e.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *InvalidSelectionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("x", e.X).
		Str("y", e.Y).
		Str("reason", e.Reason).
		Str("type", "InvalidSelectionError")
}

// NewInvalidSelectionError は新しいInvalidSelectionErrorを作成し、スタックトレースを付与します。
func NewInvalidSelectionError(x, y, reason string) error {
	err := &InvalidSelectionError{X: x, Y: y, Reason: reason}
	return errors.WithStack(err)
}

// EmptyDatasetError は回帰用データに特徴量列または行が無い場合のエラーです。
type EmptyDatasetError struct {
	Rows int
	Cols int
}

func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("espin: empty dataset: got %d rows and %d columns, need at least 1 row and 2 columns (features + response)", e.Rows, e.Cols)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *EmptyDatasetError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("rows", e.Rows).
		Int("cols", e.Cols).
		Str("type", "EmptyDatasetError")
}

// NewEmptyDatasetError は新しいEmptyDatasetErrorを作成し、スタックトレースを付与します。
func NewEmptyDatasetError(rows, cols int) error {
	err := &EmptyDatasetError{Rows: rows, Cols: cols}
	return errors.WithStack(err)
}

// NonNumericDataError は回帰用データに数値でないセルがある場合のエラーです。
// Row と Col はデータ部分における1始まりの位置です。
type NonNumericDataError struct {
	Row    int
	Col    int
	Column string
	Value  string
}

func (e *NonNumericDataError) Error() string {
	return fmt.Sprintf("espin: non-numeric value %q at row %d, column %d (%s)", e.Value, e.Row, e.Col, e.Column)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NonNumericDataError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("row", e.Row).
		Int("col", e.Col).
		Str("column", e.Column).
		Str("value", e.Value).
		Str("type", "NonNumericDataError")
}

// NewNonNumericDataError は新しいNonNumericDataErrorを作成し、スタックトレースを付与します。
func NewNonNumericDataError(row, col int, column, value string) error {
	err := &NonNumericDataError{Row: row, Col: col, Column: column, Value: value}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	汎用のエラー型
//
// ===========================================================================

// NotFittedError はモデルが未学習の状態で `Predict` や `Transform` を呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("espin: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) axisName() string {
	if e.Axis == 0 {
		return "rows"
	}
	return "features"
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("espin: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, e.axisName(), e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", e.axisName()).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("espin: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ModelError はモデルに関する一般的なエラーです。
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("espin: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("espin: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError は新しいModelErrorを作成し、スタックトレースを付与します。
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// NumericalInstabilityError は数値計算でNaNやInfが発生した場合のエラーです。
type NumericalInstabilityError struct {
	Operation string
	Values    []float64
}

func (e *NumericalInstabilityError) Error() string {
	var b strings.Builder
	for i, v := range e.Values {
		if i >= 5 {
			b.WriteString(", ...")
			break
		}
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%.6g", v)
	}
	return fmt.Sprintf("espin: numerical instability detected in %s. Values: [%s]", e.Operation, b.String())
}

// NewNumericalInstabilityError は新しいNumericalInstabilityErrorを作成します。
func NewNumericalInstabilityError(operation string, values []float64) error {
	err := &NumericalInstabilityError{Operation: operation, Values: values}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	エラー種別の分類
//
// ===========================================================================

// Error kinds reported to presentation layers.
const (
	KindInvalidDesign    = "InvalidDesign"
	KindDomain           = "Domain"
	KindInvalidSelection = "InvalidSelection"
	KindEmptyDataset     = "EmptyDataset"
	KindNonNumericData   = "NonNumericData"
	KindInvalidArgument  = "InvalidArgument"
	KindInternal         = "Internal"
)

// Kind はエラーを表示層向けの種別名に分類します。wrapされたエラーも判定できます。
func Kind(err error) string {
	var (
		designErr    *InvalidDesignError
		domainErr    *DomainError
		selectionErr *InvalidSelectionError
		emptyErr     *EmptyDatasetError
		nonNumErr    *NonNumericDataError
		valueErr     *ValueError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &designErr):
		return KindInvalidDesign
	case errors.As(err, &domainErr):
		return KindDomain
	case errors.As(err, &selectionErr):
		return KindInvalidSelection
	case errors.As(err, &emptyErr):
		return KindEmptyDataset
	case errors.As(err, &nonNumErr):
		return KindNonNumericData
	case errors.As(err, &valueErr):
		return KindInvalidArgument
	default:
		return KindInternal
	}
}

// IsUserError reports whether err is caused by caller input rather than a defect.
func IsUserError(err error) bool {
	k := Kind(err)
	return k != "" && k != KindInternal
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix は特異行列の場合のエラーです。
	ErrSingularMatrix = New("singular matrix")
)
