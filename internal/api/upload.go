package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/banshee-data/weld.report/internal/db"
	"github.com/banshee-data/weld.report/internal/httputil"
	"github.com/banshee-data/weld.report/internal/ingest"
)

// DefaultGroupName is used when an upload omits group_name.
const DefaultGroupName = "default"

// multipartMemory is how much of an upload is held in memory before the
// multipart parser spills to a temp file.
const multipartMemory = 32 << 20

func (s *Server) uploadZip(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.RequestTooLarge(w, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		httputil.BadRequest(w, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("zip_file")
	if err != nil {
		httputil.BadRequest(w, "zip_file is required")
		return
	}
	defer file.Close()

	name := strings.TrimSpace(r.FormValue("group_name"))
	if name == "" {
		name = DefaultGroupName
	}

	group, err := s.db.ReserveGroup(name, s.clock.Now())
	if errors.Is(err, db.ErrGroupNameExists) {
		httputil.Conflict(w, err.Error())
		return
	}
	if err != nil {
		log.Printf("[api] reserve group %q: %v", name, err)
		httputil.InternalServerError(w, "failed to reserve group")
		return
	}

	job, err := s.uploads.Spool(group.ID, file)
	if err != nil {
		s.failUpload(group.ID, err)
		httputil.InternalServerError(w, "failed to store upload")
		return
	}
	if err := s.uploads.Enqueue(job); err != nil {
		s.uploads.Discard(job)
		s.failUpload(group.ID, err)
		if errors.Is(err, ingest.ErrQueueFull) {
			httputil.WriteJSONError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		httputil.InternalServerError(w, "failed to queue upload")
		return
	}

	log.Printf("[api] accepted upload for group %s (%s)", group.Name, group.ID)
	httputil.WriteJSON(w, http.StatusAccepted, ingest.UploadResponse{
		Group:   group.Name,
		GroupID: group.ID,
		Status:  "accepted",
	})
}

// failUpload marks a reserved group failed when its archive never reaches
// the worker.
func (s *Server) failUpload(groupID string, cause error) {
	log.Printf("[api] upload for group %s failed: %v", groupID, cause)
	if err := s.db.MarkFailed(groupID, cause); err != nil {
		log.Printf("[api] mark group %s failed: %v", groupID, err)
	}
}
