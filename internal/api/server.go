// Package api serves the weld groups, layers, and rendered layer views over
// HTTP, and accepts zip uploads for background ingest.
package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/weld.report/internal/db"
	"github.com/banshee-data/weld.report/internal/ingest"
	"github.com/banshee-data/weld.report/internal/timeutil"
	"github.com/banshee-data/weld.report/internal/view"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Paging limits for list endpoints.
const (
	DefaultLimit = 25
	MaxLimit     = 1000
)

type Server struct {
	db             *db.DB
	uploads        *ingest.Worker
	cache          *view.SnapshotCache
	view           view.Config
	timezone       string
	maxUploadBytes int64
	clock          timeutil.Clock
}

// Options configures NewServer. Zero values take defaults.
type Options struct {
	View           view.Config
	Timezone       string
	MaxUploadBytes int64
	Clock          timeutil.Clock
}

func NewServer(database *db.DB, uploads *ingest.Worker, cache *view.SnapshotCache, opts Options) *Server {
	if opts.Clock == nil {
		opts.Clock = timeutil.RealClock{}
	}
	if opts.Timezone == "" {
		opts.Timezone = "UTC"
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 512 << 20
	}
	if opts.View.Palette == nil {
		opts.View = view.DefaultConfig()
	}
	return &Server{
		db:             database,
		uploads:        uploads,
		cache:          cache,
		view:           opts.View,
		timezone:       opts.Timezone,
		maxUploadBytes: opts.MaxUploadBytes,
		clock:          opts.Clock,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/groups", s.listGroups)
	mux.HandleFunc("GET /api/groups/{id}", s.showGroup)
	mux.HandleFunc("GET /api/groups/{id}/data", s.showGroupData)
	mux.HandleFunc("GET /api/layers/{id}", s.showLayer)
	mux.HandleFunc("GET /api/layers/{id}/data", s.showLayerData)
	mux.HandleFunc("GET /api/layers/{id}/scene", s.showScene)
	mux.HandleFunc("GET /api/layers/{id}/scene.html", s.showSceneHTML)
	mux.HandleFunc("GET /api/layers/{id}/footprint.png", s.showFootprintPNG)
	mux.HandleFunc("GET /api/layers/{id}/chart", s.showChart)
	mux.HandleFunc("GET /api/layers/{id}/chart.html", s.showChartHTML)
	mux.HandleFunc("GET /api/layers/{id}/chart.png", s.showChartPNG)
	mux.HandleFunc("POST "+ingest.UploadPath, s.uploadZip)
	return mux
}

// parsePaging reads limit and offset from the query string.
func parsePaging(r *http.Request) (limit, offset int, msg string) {
	limit = DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxLimit {
			return 0, 0, "limit must be between 1 and " + strconv.Itoa(MaxLimit)
		}
		limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, 0, "offset must be a non-negative integer"
		}
		offset = n
	}
	return limit, offset, ""
}
