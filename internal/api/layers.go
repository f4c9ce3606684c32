package api

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/banshee-data/weld.report/internal/db"
	"github.com/banshee-data/weld.report/internal/httputil"
	"github.com/banshee-data/weld.report/internal/metrics"
	"github.com/banshee-data/weld.report/internal/view"
)

func (s *Server) showLayer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	l, err := s.db.GetLayer(id)
	if errors.Is(err, db.ErrNotFound) {
		httputil.NotFound(w, "layer not found")
		return
	}
	if err != nil {
		log.Printf("[api] get layer %s: %v", id, err)
		httputil.InternalServerError(w, "failed to load layer")
		return
	}
	httputil.WriteJSONOK(w, l)
}

type layerDataResponse struct {
	Layer   *db.Layer       `json:"layer"`
	Points  []db.ScanPoint  `json:"points"`
	Samples []db.WeldSample `json:"samples"`
	Summary metrics.Summary `json:"summary"`
}

func (s *Server) showLayerData(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	l, err := s.db.GetLayer(id)
	if errors.Is(err, db.ErrNotFound) {
		httputil.NotFound(w, "layer not found")
		return
	}
	if err != nil {
		log.Printf("[api] get layer %s: %v", id, err)
		httputil.InternalServerError(w, "failed to load layer")
		return
	}
	points, err := s.db.LayerWaypoints(id)
	if err != nil {
		log.Printf("[api] layer waypoints %s: %v", id, err)
		httputil.InternalServerError(w, "failed to load scan points")
		return
	}
	samples, err := s.db.LayerSamples(id)
	if err != nil {
		log.Printf("[api] layer samples %s: %v", id, err)
		httputil.InternalServerError(w, "failed to load weld samples")
		return
	}
	series := make([]metrics.Sample, len(samples))
	for i, smp := range samples {
		series[i] = view.SampleFromRecord(smp)
	}
	httputil.WriteJSONOK(w, layerDataResponse{
		Layer:   l,
		Points:  points,
		Samples: samples,
		Summary: metrics.Summarize(series),
	})
}

// snapshot writes the error response itself and returns nil when the layer
// cannot be loaded.
func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) *view.LayerSnapshot {
	id := r.PathValue("id")
	snap, err := s.cache.Get(id)
	if errors.Is(err, db.ErrNotFound) {
		httputil.NotFound(w, "layer not found")
		return nil
	}
	if err != nil {
		log.Printf("[api] snapshot %s: %v", id, err)
		httputil.InternalServerError(w, "failed to load layer")
		return nil
	}
	return snap
}

func layerTitle(snap *view.LayerSnapshot) string {
	return fmt.Sprintf("Layer %d", snap.LayerNumber)
}

func (s *Server) sceneFrame(w http.ResponseWriter, r *http.Request) (view.SceneFrame, bool) {
	snap := s.snapshot(w, r)
	if snap == nil {
		return view.SceneFrame{}, false
	}
	f, err := view.BuildScene(snap, s.view)
	if err != nil {
		log.Printf("[api] build scene %s: %v", snap.LayerID, err)
		httputil.InternalServerError(w, "failed to build scene")
		return view.SceneFrame{}, false
	}
	return f, true
}

func (s *Server) showScene(w http.ResponseWriter, r *http.Request) {
	if f, ok := s.sceneFrame(w, r); ok {
		httputil.WriteJSONOK(w, f)
	}
}

func (s *Server) showSceneHTML(w http.ResponseWriter, r *http.Request) {
	f, ok := s.sceneFrame(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := view.RenderSceneHTML(&buf, f, fmt.Sprintf("Layer %d", f.LayerNumber)); err != nil {
		log.Printf("[api] render scene %s: %v", f.LayerID, err)
		httputil.InternalServerError(w, "failed to render scene")
		return
	}
	httputil.WriteBody(w, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) showFootprintPNG(w http.ResponseWriter, r *http.Request) {
	f, ok := s.sceneFrame(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := view.RenderFootprintPNG(&buf, f, fmt.Sprintf("Layer %d footprint", f.LayerNumber)); err != nil {
		log.Printf("[api] render footprint %s: %v", f.LayerID, err)
		httputil.InternalServerError(w, "failed to render footprint")
		return
	}
	httputil.WriteBody(w, "image/png", buf.Bytes())
}

func (s *Server) showChart(w http.ResponseWriter, r *http.Request) {
	if snap := s.snapshot(w, r); snap != nil {
		httputil.WriteJSONOK(w, view.BuildChart(snap, s.view))
	}
}

func (s *Server) showChartHTML(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(w, r)
	if snap == nil {
		return
	}
	var buf bytes.Buffer
	if err := view.RenderChartHTML(&buf, view.BuildChart(snap, s.view), layerTitle(snap)); err != nil {
		log.Printf("[api] render chart %s: %v", snap.LayerID, err)
		httputil.InternalServerError(w, "failed to render chart")
		return
	}
	httputil.WriteBody(w, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) showChartPNG(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(w, r)
	if snap == nil {
		return
	}
	var buf bytes.Buffer
	if err := view.RenderChartPNG(&buf, view.BuildChart(snap, s.view), layerTitle(snap)); err != nil {
		log.Printf("[api] render chart png %s: %v", snap.LayerID, err)
		httputil.InternalServerError(w, "failed to render chart")
		return
	}
	httputil.WriteBody(w, "image/png", buf.Bytes())
}
