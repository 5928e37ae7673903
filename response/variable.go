// Package response evaluates the critical electrospinning voltage Uc and
// sweeps it over two of its four physical inputs.
package response

import (
	"fmt"
	"strings"

	"github.com/YuminosukeSato/electrospin/pkg/errors"
)

// Variable names one input of the Uc formula.
type Variable string

const (
	SurfaceTension Variable = "Surface Tension"
	H              Variable = "H"
	R              Variable = "R"
	Hc             Variable = "h"
)

// variables is the fixed scan order used to assign held constants.
var variables = [...]Variable{SurfaceTension, H, R, Hc}

// Bounds is a closed sampling interval.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type variableInfo struct {
	unit   string
	bounds Bounds
}

var catalogue = map[Variable]variableInfo{
	SurfaceTension: {unit: "dyn/cm", bounds: Bounds{20, 80}},
	H:              {unit: "cm", bounds: Bounds{10, 30}},
	R:              {unit: "cm", bounds: Bounds{0.007, 0.05}},
	Hc:             {unit: "cm", bounds: Bounds{0.5, 6}},
}

// Variables returns the four inputs in scan order.
func Variables() []Variable {
	return append([]Variable(nil), variables[:]...)
}

// ParseVariable matches name exactly; "H" and "h" are different inputs.
func ParseVariable(name string) (Variable, error) {
	v := Variable(strings.TrimSpace(name))
	if _, ok := catalogue[v]; !ok {
		return "", errors.NewInvalidSelectionError(name, "", fmt.Sprintf("unknown variable %q, want one of %s", name, variableList()))
	}
	return v, nil
}

func variableList() string {
	names := make([]string, len(variables))
	for i, v := range variables {
		names[i] = fmt.Sprintf("%q", string(v))
	}
	return strings.Join(names, ", ")
}

// Valid reports whether v is one of the four inputs.
func (v Variable) Valid() bool {
	_, ok := catalogue[v]
	return ok
}

// Unit returns the display unit.
func (v Variable) Unit() string {
	return catalogue[v].unit
}

// DefaultBounds returns the documented sampling range.
func (v Variable) DefaultBounds() Bounds {
	return catalogue[v].bounds
}

// Label returns the axis label "<name>, <unit>".
func (v Variable) Label() string {
	return fmt.Sprintf("%s, %s", v, v.Unit())
}

func (v Variable) index() int {
	for i, c := range variables {
		if c == v {
			return i
		}
	}
	return -1
}
