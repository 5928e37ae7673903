package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/YuminosukeSato/electrospin/core/grid"
	"github.com/YuminosukeSato/electrospin/dataset"
	"github.com/YuminosukeSato/electrospin/design"
	"github.com/YuminosukeSato/electrospin/pkg/errors"
	"github.com/YuminosukeSato/electrospin/pkg/log"
	"github.com/YuminosukeSato/electrospin/render"
	"github.com/YuminosukeSato/electrospin/response"
	"github.com/YuminosukeSato/electrospin/surface"
	"github.com/gin-gonic/gin"
)

const (
	mimePNG  = "image/png"
	mimeCSV  = "text/csv"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"models":    s.models.Len(),
		"timestamp": time.Now().UTC(),
	})
}

// ---- designs ----

type designRequest struct {
	Factors      *int `json:"factors" binding:"required"`
	CenterPoints *int `json:"center_points"`
}

type designResponse struct {
	Headers []string     `json:"headers"`
	Runs    []design.Run `json:"runs"`
	Count   int          `json:"count"`
}

// createDesign returns a Box–Behnken plan. ?format=text or ?format=csv
// return the rendered table instead of JSON.
func (s *Server) createDesign(c *gin.Context) {
	var req designRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithError(c, bindError(err))
		return
	}
	centers := s.cfg.CenterPoints
	if req.CenterPoints != nil {
		centers = *req.CenterPoints
	}
	if err := checkDesignSize(*req.Factors, centers); err != nil {
		s.abortWithError(c, err)
		return
	}

	runs, err := design.Generate(*req.Factors, centers)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	var buf bytes.Buffer
	switch c.Query("format") {
	case "text":
		if err := design.WriteText(&buf, runs); err != nil {
			s.abortWithError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
	case "csv":
		if err := design.WriteCSV(&buf, runs); err != nil {
			s.abortWithError(c, err)
			return
		}
		c.Data(http.StatusOK, mimeCSV, buf.Bytes())
	default:
		c.JSON(http.StatusOK, designResponse{
			Headers: design.Headers(*req.Factors),
			Runs:    runs,
			Count:   len(runs),
		})
	}
}

// ---- Uc ----

type ucRequest struct {
	SurfaceTension *float64 `json:"surface_tension" binding:"required"`
	H              *float64 `json:"H" binding:"required"`
	R              *float64 `json:"R" binding:"required"`
	Hc             *float64 `json:"h" binding:"required"`
}

func (s *Server) evaluateUc(c *gin.Context) {
	var req ucRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithError(c, bindError(err))
		return
	}
	uc, err := response.Uc(*req.SurfaceTension, *req.H, *req.R, *req.Hc)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"uc": uc, "unit": "kV"})
}

type sweepRequest struct {
	X          string                `json:"x"`
	Y          string                `json:"y"`
	Const1     *float64              `json:"const_1" binding:"required"`
	Const2     *float64              `json:"const_2" binding:"required"`
	Resolution int                   `json:"resolution"`
	Bounds     map[string][2]float64 `json:"bounds"`
}

func (s *Server) runSweep(c *gin.Context) (*response.Sweep, error) {
	var req sweepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, bindError(err)
	}
	res := req.Resolution
	if res == 0 {
		res = s.cfg.SweepResolution
	}
	if err := checkResolution(res); err != nil {
		return nil, err
	}

	opts := []response.SweepOption{response.WithResolution(res)}
	for name, b := range req.Bounds {
		v, err := response.ParseVariable(name)
		if err != nil {
			return nil, err
		}
		opts = append(opts, response.WithBounds(v, b[0], b[1]))
	}
	return response.SweepByName(req.X, req.Y, *req.Const1, *req.Const2, opts...)
}

func (s *Server) sweepUc(c *gin.Context) {
	sw, err := s.runSweep(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sw)
}

func (s *Server) sweepUcPlot(c *gin.Context) {
	sw, err := s.runSweep(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	s.writePNG(c, sw.Grid)
}

// ---- surfaces ----

type fitResponse struct {
	ModelID      string                   `json:"model_id"`
	Cached       bool                     `json:"cached"`
	Formula      string                   `json:"formula"`
	R2           float64                  `json:"r2"`
	RMSE         float64                  `json:"rmse"`
	Features     []string                 `json:"features"`
	Terms        []string                 `json:"terms"`
	Coefficients []float64                `json:"coefficients"`
	Intercept    float64                  `json:"intercept"`
	Surfaces     []surface.ContourSurface `json:"surfaces"`
}

// fitSurfaces accepts a CSV body, an XLSX body, or a multipart "file"
// upload (.csv or .xlsx). Identical datasets share one cached model.
func (s *Server) fitSurfaces(c *gin.Context) {
	res, err := s.resolutionQuery(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	ds, err := s.readDataset(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	if err := checkFeatureCount(ds.NumCols() - 1); err != nil {
		s.abortWithError(c, err)
		return
	}
	if err := checkSurfaceCells(ds.NumCols()-1, res); err != nil {
		s.abortWithError(c, err)
		return
	}

	id := modelID(ds.Fingerprint())
	m, cached := s.models.Get(id)
	if !cached {
		if m, err = surface.FitModel(ds); err != nil {
			s.abortWithError(c, err)
			return
		}
		s.models.Put(id, m)
	}

	surfaces, err := m.Surfaces(res)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	s.logger.Info("surface model ready",
		log.RequestIDKey, requestID(c),
		log.ModelIDKey, id,
		log.SamplesKey, ds.NumRows(),
		log.FeaturesKey, len(m.Features()),
		log.R2ScoreKey, m.R2(),
		"cache.hit", cached,
	)
	c.JSON(http.StatusOK, fitResponse{
		ModelID:      id,
		Cached:       cached,
		Formula:      m.Formula(),
		R2:           m.R2(),
		RMSE:         m.RMSE(),
		Features:     m.Features(),
		Terms:        m.TermNames(),
		Coefficients: m.Coefficients(),
		Intercept:    m.Intercept(),
		Surfaces:     surfaces,
	})
}

func (s *Server) readDataset(c *gin.Context) (*dataset.Table, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)

	contentType := c.ContentType()
	if strings.HasPrefix(contentType, "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, bindError(err)
		}
		format, err := dataset.FormatFromPath(fh.Filename)
		if err != nil {
			return nil, err
		}
		f, err := fh.Open()
		if err != nil {
			return nil, errors.Wrap(err, "failed to open upload")
		}
		defer f.Close()
		return dataset.Read(f, format)
	}
	if contentType == mimeXLSX {
		return dataset.Read(c.Request.Body, dataset.FormatXLSX)
	}
	return dataset.ReadCSV(c.Request.Body)
}

func (s *Server) lookupModel(c *gin.Context) (string, *surface.Model, error) {
	id := c.Param("id")
	m, ok := s.models.Get(id)
	if !ok {
		return id, nil, errors.Wrapf(ErrModelNotFound, "model %q", id)
	}
	return id, m, nil
}

func (s *Server) getModel(c *gin.Context) {
	id, m, err := s.lookupModel(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"model_id": id,
		"formula":  m.Formula(),
		"r2":       m.R2(),
		"rmse":     m.RMSE(),
		"model":    m,
	})
}

func (s *Server) getSurfaces(c *gin.Context) {
	id, m, err := s.lookupModel(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	res, err := s.resolutionQuery(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	if err := checkSurfaceCells(len(m.Features()), res); err != nil {
		s.abortWithError(c, err)
		return
	}
	surfaces, err := m.Surfaces(res)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"model_id": id, "surfaces": surfaces})
}

// getSurfacePlot renders surface :index (0-based, pair order) as PNG.
func (s *Server) getSurfacePlot(c *gin.Context) {
	_, m, err := s.lookupModel(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	res, err := s.resolutionQuery(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	pairs := grid.Pairs(len(m.Features()))
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil || idx < 0 || idx >= len(pairs) {
		s.abortWithError(c, errors.NewValueError("surface plot",
			fmt.Sprintf("index must be in [0, %d), got %q", len(pairs), c.Param("index"))))
		return
	}
	cs, err := m.Surface(pairs[idx][0], pairs[idx][1], res)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.Header("X-Plot-Position", fmt.Sprintf("Plot %d of %d", idx+1, len(pairs)))
	s.writePNG(c, cs.Grid)
}

// ---- helpers ----

func (s *Server) writePNG(c *gin.Context, g *grid.Grid) {
	var buf bytes.Buffer
	if err := render.Contour(&buf, g); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, mimePNG, buf.Bytes())
}

func (s *Server) resolutionQuery(c *gin.Context) (int, error) {
	raw := c.Query("resolution")
	if raw == "" {
		return s.cfg.SurfaceResolution, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewValueError("resolution", fmt.Sprintf("must be an integer, got %q", raw))
	}
	return n, checkResolution(n)
}

func checkResolution(n int) error {
	if n < 2 || n > MaxResolution {
		return errors.NewValueError("resolution", fmt.Sprintf("must be in [2, %d], got %d", MaxResolution, n))
	}
	return nil
}

func checkDesignSize(factors, centers int) error {
	if factors > MaxFactors {
		return errors.NewValueError("factors", fmt.Sprintf("must be at most %d, got %d", MaxFactors, factors))
	}
	if centers > MaxCenterPoints {
		return errors.NewValueError("center_points", fmt.Sprintf("must be at most %d, got %d", MaxCenterPoints, centers))
	}
	return nil
}

func checkFeatureCount(k int) error {
	if k > MaxFeatures {
		return errors.NewValueError("dataset", fmt.Sprintf("at most %d feature columns are supported, got %d", MaxFeatures, k))
	}
	return nil
}

// checkSurfaceCells bounds the cells evaluated for every pair of k features.
func checkSurfaceCells(k, resolution int) error {
	if cells := grid.NumPairs(k) * resolution * resolution; cells > MaxSurfaceCells {
		return errors.NewValueError("resolution",
			fmt.Sprintf("%d surfaces at %d×%d exceed %d cells", grid.NumPairs(k), resolution, resolution, MaxSurfaceCells))
	}
	return nil
}
