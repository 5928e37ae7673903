// Package design generates Box–Behnken experimental plans.
package design

import (
	"github.com/YuminosukeSato/electrospin/core/grid"
	"github.com/YuminosukeSato/electrospin/pkg/errors"
	"github.com/YuminosukeSato/electrospin/pkg/log"
)

const (
	// MinFactors is the smallest factor count with pairwise blocks.
	MinFactors = 3
	// DefaultCenterPoints is the number of all-zero runs appended by default.
	DefaultCenterPoints = 3
)

// corners is the fixed emission order of each pair block.
var corners = [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}

// Run is one row of a design. Index is 1-based and dense; Levels holds one
// entry per factor, each in {-1, 0, +1}.
type Run struct {
	Index  int   `json:"run"`
	Levels []int `json:"levels"`
}

// IsCenter reports whether every factor is at level 0.
func (r Run) IsCenter() bool {
	for _, l := range r.Levels {
		if l != 0 {
			return false
		}
	}
	return true
}

// RunCount returns 4·C(n,2) + centerPoints.
func RunCount(numFactors, centerPoints int) int {
	return 4*grid.NumPairs(numFactors) + centerPoints
}

// Generate returns the Box–Behnken design for numFactors factors: four
// corner runs per factor pair, pairs in lexicographic order, followed by
// numCenterPoints center runs.
func Generate(numFactors, numCenterPoints int) ([]Run, error) {
	if numFactors < MinFactors {
		return nil, errors.NewInvalidDesignError("num_factors", numFactors, "Box-Behnken design requires at least 3 factors")
	}
	if numCenterPoints < 0 {
		return nil, errors.NewInvalidDesignError("num_center_points", numCenterPoints, "must not be negative")
	}

	runs := make([]Run, 0, RunCount(numFactors, numCenterPoints))
	for _, p := range grid.Pairs(numFactors) {
		for _, c := range corners {
			levels := make([]int, numFactors)
			levels[p[0]] = c[0]
			levels[p[1]] = c[1]
			runs = append(runs, Run{Index: len(runs) + 1, Levels: levels})
		}
	}
	for k := 0; k < numCenterPoints; k++ {
		runs = append(runs, Run{Index: len(runs) + 1, Levels: make([]int, numFactors)})
	}

	log.GetLoggerWithName("design").Debug("design generated",
		log.OperationKey, log.OperationGenerate,
		log.FactorsKey, numFactors,
		log.CenterPointsKey, numCenterPoints,
		log.RunsKey, len(runs),
	)
	return runs, nil
}
