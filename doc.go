// Package electrospin provides design-of-experiments engines for
// electrospinning: Box–Behnken plans, the closed-form critical voltage (Uc)
// model and quadratic response surfaces fitted from measured runs.
//
// The three engines are independent and stateless. A presentation shell (the
// electrospin CLI or the HTTP server) collects inputs, calls one engine and
// renders the returned table, grid, or formula and surfaces.
//
// # Installation
//
//	go install github.com/YuminosukeSato/electrospin/cmd/electrospin@latest
//
// # Quick Start
//
// Fit a response surface from a CSV file whose last column is the response:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/electrospin/dataset"
//	    "github.com/YuminosukeSato/electrospin/surface"
//	)
//
//	func main() {
//	    ds, err := dataset.ReadFile("runs.csv")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    res, err := surface.Fit(ds)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(res.Formula)
//	    for _, s := range res.Surfaces {
//	        fmt.Println(s.F1, "vs", s.F2)
//	    }
//	}
//
// The fitted model is immutable and can be reused without refitting:
//
//	surfaces, err := res.Model.Surfaces(100)
//
// # Packages
//
//   - design: Box–Behnken generator and table rendering
//   - response: Uc formula, variable catalogue and two-variable sweeps
//   - surface: min-max scaling + degree-2 OLS fit, formula, contour surfaces
//   - dataset: CSV/XLSX ingest with positional X1..Xk naming
//   - preprocessing: MinMaxScaler, PolynomialFeatures
//   - linear: least-squares LinearRegression
//   - metrics: MSE, RMSE, MAE, R²
//   - render: filled contour PNG rendering with gonum/plot
//   - server: gin JSON API; cmd/electrospin: cobra CLI
//   - core/grid, core/model, core/parallel: shared grid, estimator and
//     parallel helpers
//   - pkg/errors, pkg/log: error taxonomy and structured logging
//
// # Errors
//
// Every engine failure carries a kind reported by errors.Kind:
// InvalidDesign, Domain, InvalidSelection, EmptyDataset, NonNumericData,
// InvalidArgument or Internal. Kinds survive wrapping.
package electrospin
