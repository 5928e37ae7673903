package response

import (
	"math"

	"github.com/YuminosukeSato/electrospin/pkg/errors"
)

// Uc returns the critical voltage in kV:
//
//	Uc² = (4·H²/h²) · ln(2h/R − 1.5) · (0.117·π·γ·R)
//
// It fails with a DomainError when the logarithm or the square root is
// undefined over the reals, or when any input is not finite.
func Uc(gamma, bigH, r, h float64) (float64, error) {
	inputs := func() map[string]float64 {
		return map[string]float64{
			string(SurfaceTension): gamma,
			string(H):              bigH,
			string(R):              r,
			string(Hc):             h,
		}
	}
	for _, v := range [...]float64{gamma, bigH, r, h} {
		if !errors.IsFinite(v) {
			return 0, errors.NewDomainError("Uc", inputs(), "inputs must be finite")
		}
	}

	arg := 2*h/r - 1.5
	if !(arg > 0) {
		return 0, errors.NewDomainError("Uc", inputs(), "2h/R - 1.5 must be positive")
	}
	intermediate := (4 * bigH * bigH / (h * h)) * math.Log(arg) * (0.117 * math.Pi * gamma * r)
	if math.IsNaN(intermediate) || math.IsInf(intermediate, 0) {
		return 0, errors.NewDomainError("Uc", inputs(), "Uc² is not finite")
	}
	if intermediate < 0 {
		return 0, errors.NewDomainError("Uc", inputs(), "Uc² is negative")
	}
	return math.Sqrt(intermediate), nil
}
