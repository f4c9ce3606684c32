package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/banshee-data/weld.report/internal/db"
	"github.com/banshee-data/weld.report/internal/httputil"
	"github.com/banshee-data/weld.report/internal/metrics"
	"github.com/banshee-data/weld.report/internal/units"
	"github.com/banshee-data/weld.report/internal/view"
)

// groupResponse is a group with its creation time rendered in the
// configured timezone.
type groupResponse struct {
	db.WeldGroup
	CreatedLocal string `json:"created_local"`
}

func (s *Server) groupResponse(g db.WeldGroup) groupResponse {
	return groupResponse{WeldGroup: g, CreatedLocal: units.FormatTimestamp(g.CreatedAt, s.timezone)}
}

func (s *Server) listGroups(w http.ResponseWriter, r *http.Request) {
	limit, offset, msg := parsePaging(r)
	if msg != "" {
		httputil.BadRequest(w, msg)
		return
	}
	groups, err := s.db.ListGroups(limit, offset)
	if err != nil {
		log.Printf("[api] list groups: %v", err)
		httputil.InternalServerError(w, "failed to list groups")
		return
	}
	out := make([]groupResponse, len(groups))
	for i, g := range groups {
		out[i] = s.groupResponse(g)
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"groups": out,
		"limit":  limit,
		"offset": offset,
	})
}

// loadGroup writes the error response itself and returns nil when the group
// cannot be loaded.
func (s *Server) loadGroup(w http.ResponseWriter, id string) *db.WeldGroup {
	g, err := s.db.GetGroup(id)
	if errors.Is(err, db.ErrNotFound) {
		httputil.NotFound(w, "group not found")
		return nil
	}
	if err != nil {
		log.Printf("[api] get group %s: %v", id, err)
		httputil.InternalServerError(w, "failed to load group")
		return nil
	}
	return g
}

func (s *Server) showGroup(w http.ResponseWriter, r *http.Request) {
	limit, offset, msg := parsePaging(r)
	if msg != "" {
		httputil.BadRequest(w, msg)
		return
	}
	g := s.loadGroup(w, r.PathValue("id"))
	if g == nil {
		return
	}
	layers, err := s.db.ListLayers(g.ID, limit, offset)
	if err != nil {
		log.Printf("[api] list layers %s: %v", g.ID, err)
		httputil.InternalServerError(w, "failed to list layers")
		return
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"group":  s.groupResponse(*g),
		"layers": layers,
		"limit":  limit,
		"offset": offset,
	})
}

type groupDataResponse struct {
	GroupID string                 `json:"group_id"`
	Summary metrics.Summary        `json:"summary"`
	Layers  []metrics.LayerSummary `json:"layers"`
}

func (s *Server) showGroupData(w http.ResponseWriter, r *http.Request) {
	g := s.loadGroup(w, r.PathValue("id"))
	if g == nil {
		return
	}
	samples, err := s.db.GroupSamples(g.ID)
	if err != nil {
		log.Printf("[api] group samples %s: %v", g.ID, err)
		httputil.InternalServerError(w, "failed to load group samples")
		return
	}
	summary, perLayer := metrics.SummarizeGroup(view.LayerSeriesFrom(samples))
	httputil.WriteJSONOK(w, groupDataResponse{GroupID: g.ID, Summary: summary, Layers: perLayer})
}
