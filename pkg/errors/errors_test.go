package errors

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewInvalidDesignError(t *testing.T) {
	err := NewInvalidDesignError("num_factors", 2, "Box-Behnken design requires at least 3 factors")

	want := "espin: invalid design: num_factors=2: Box-Behnken design requires at least 3 factors"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	// スタックトレースの存在確認
	formatted := fmt.Sprintf("%+v", err)
	if !strings.Contains(formatted, "errors_test.go") {
		t.Error("Expected stack trace to contain test file name")
	}

	var designErr *InvalidDesignError
	if !As(err, &designErr) {
		t.Fatal("Error should be castable to *InvalidDesignError")
	}
	if designErr.Value != 2 {
		t.Errorf("Value = %d, want 2", designErr.Value)
	}
}

func TestDomainErrorMessageIsStable(t *testing.T) {
	err := NewDomainError("Uc", map[string]float64{"h": 0.1, "R": 1, "H": 10}, "log argument 2h/R-1.5 must be positive")

	want := "espin: Uc: outside the valid domain (H=10, R=1, h=0.1): log argument 2h/R-1.5 must be positive"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"design", NewInvalidDesignError("num_factors", 1, "too few"), KindInvalidDesign},
		{"domain", NewDomainError("Uc", nil, "bad"), KindDomain},
		{"selection", NewInvalidSelectionError("H", "H", "duplicate"), KindInvalidSelection},
		{"empty", NewEmptyDatasetError(0, 3), KindEmptyDataset},
		{"non numeric", NewNonNumericDataError(1, 2, "X2", "abc"), KindNonNumericData},
		{"wrapped", Wrap(NewEmptyDatasetError(0, 1), "loading csv"), KindEmptyDataset},
		{"model error chain", NewModelError("Fit", "bad input", NewNonNumericDataError(1, 1, "X1", "?")), KindNonNumericData},
		{"value", NewValueError("grid.Linspace", "resolution must be at least 2"), KindInvalidArgument},
		{"other", fmt.Errorf("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.want {
				t.Errorf("Kind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsUserError(t *testing.T) {
	if !IsUserError(NewInvalidSelectionError("a", "b", "unknown")) {
		t.Error("selection error should be a user error")
	}
	if IsUserError(fmt.Errorf("internal")) {
		t.Error("plain error should not be a user error")
	}
	if IsUserError(nil) {
		t.Error("nil should not be a user error")
	}
}

func TestMarshalZerologObject(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	var nonNum *NonNumericDataError
	if !As(NewNonNumericDataError(3, 2, "X2", "n/a"), &nonNum) {
		t.Fatal("expected *NonNumericDataError")
	}
	logger.Error().Object("error_detail", nonNum).Msg("ingest failed")

	out := buf.String()
	for _, want := range []string{`"row":3`, `"col":2`, `"column":"X2"`, `"value":"n/a"`, `"type":"NonNumericDataError"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %s does not contain %s", out, want)
		}
	}
}

func TestWrapAndIs(t *testing.T) {
	wrapped := Wrapf(ErrSingularMatrix, "in %s", "LinearRegression.Fit")

	if !Is(wrapped, ErrSingularMatrix) {
		t.Error("Expected Is(wrapped, ErrSingularMatrix) to be true")
	}
	if !strings.Contains(wrapped.Error(), "in LinearRegression.Fit") {
		t.Error("Expected wrapped error to contain wrapping message")
	}
}

func TestErrorChaining(t *testing.T) {
	err1 := fmt.Errorf("base error")
	err2 := Wrap(err1, "wrapped once")
	err3 := NewModelError("Operation", "failed", err2)

	if !strings.Contains(err3.Error(), "base error") {
		t.Error("Expected error chain to contain base error")
	}

	formatted := fmt.Sprintf("%+v", err3)
	if !strings.Contains(formatted, "errors_test.go") {
		t.Error("Expected detailed error to contain stack trace")
	}
}

func TestNumericalHelpers(t *testing.T) {
	if got := ClipValue(35, 10, 30); got != 30 {
		t.Errorf("ClipValue(35) = %v, want 30", got)
	}
	if got := ClipValue(5, 10, 30); got != 10 {
		t.Errorf("ClipValue(5) = %v, want 10", got)
	}
	if got := ClipValue(12.5, 10, 30); got != 12.5 {
		t.Errorf("ClipValue(12.5) = %v, want 12.5", got)
	}
	if got := SafeDivide(1, 0); got != 0 {
		t.Errorf("SafeDivide(1, 0) = %v, want 0", got)
	}
	if err := CheckNumericalStability("test", []float64{1, 2, 3}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	var instability *NumericalInstabilityError
	if err := CheckScalar("test", nan()); !As(err, &instability) {
		t.Errorf("CheckScalar(NaN) = %v, want NumericalInstabilityError", err)
	}
}

func TestSafeExecute(t *testing.T) {
	err := SafeExecute("surface.evaluate", func() error {
		var m map[string]int
		m["x"] = 1
		return nil
	})

	var panicErr *PanicError
	if !As(err, &panicErr) {
		t.Fatalf("Expected PanicError, got %T", err)
	}
	if panicErr.Operation != "surface.evaluate" {
		t.Errorf("Operation = %q, want surface.evaluate", panicErr.Operation)
	}
	if panicErr.StackTrace == "" {
		t.Error("Expected non-empty stack trace")
	}

	if err := SafeExecute("noop", func() error { return nil }); err != nil {
		t.Errorf("SafeExecute without panic returned %v", err)
	}
}

func TestRecoverKeepsExistingError(t *testing.T) {
	original := fmt.Errorf("original error")
	fn := func() (err error) {
		defer Recover(&err, "TestOperation")
		err = original
		panic("panic after error")
	}

	err := fn()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "panic in TestOperation") || !Is(err, original) {
		t.Errorf("unexpected error chain: %v", err)
	}
}

func nan() float64 {
	zero := 0.0
	return zero / zero
}
