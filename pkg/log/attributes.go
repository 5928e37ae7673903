// Package log defines standard attribute keys.
//
// Keys follow a hierarchical naming convention ("data.samples",
// "sweep.x") so log collectors can filter on them.

package log

// Operation context.
const (
	// ComponentKey identifies the package performing the operation.
	// Values: "design", "response", "surface", "server", "cli".
	ComponentKey = "component"

	// OperationKey names the operation being performed.
	OperationKey = "op"

	// RequestIDKey carries the HTTP request identifier.
	RequestIDKey = "request.id"

	// ModelIDKey identifies a cached fitted surface model.
	ModelIDKey = "model.id"
)

// Data shape.
const (
	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"
	TermsKey    = "model.terms"
	SourceKey   = "data.source"
)

// Experimental design.
const (
	FactorsKey      = "design.factors"
	CenterPointsKey = "design.center_points"
	RunsKey         = "design.runs"
)

// Sweeps and surfaces.
const (
	SweepXKey       = "sweep.x"
	SweepYKey       = "sweep.y"
	ResolutionKey   = "grid.resolution"
	SurfacesKey     = "surface.count"
	ClippedCellsKey = "grid.clipped_cells"
)

// HTTP requests.
const (
	HTTPMethodKey = "http.method"
	HTTPPathKey   = "http.path"
	HTTPStatusKey = "http.status"
	ClientIPKey   = "http.client_ip"
)

// Performance and fit quality.
const (
	DurationMsKey = "perf.duration_ms"
	R2ScoreKey    = "metrics.r2_score"
	RMSEKey       = "metrics.rmse"
)

// Error context.
const (
	ErrorKindKey  = "error.kind"
	SuggestionKey = "error.suggestion"
)

// Standard operation names.
const (
	OperationGenerate = "generate"
	OperationEvaluate = "evaluate"
	OperationSweep    = "sweep"
	OperationFit      = "fit"
	OperationSurfaces = "surfaces"
	OperationRender   = "render"
	OperationIngest   = "ingest"
)
