package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/banshee-data/weld.report/internal/httputil"
)

// UploadPath is the server route that accepts zip uploads.
const UploadPath = "/api/ingest/upload-zip"

// UploadResponse is the server's reply to an accepted upload.
type UploadResponse struct {
	Group   string `json:"group"`
	GroupID string `json:"groupId"`
	Status  string `json:"status"`
}

// UploadZip posts the archive in r to a running server as group. The
// server answers 202 once the upload is spooled; ingestion continues there.
func UploadZip(ctx context.Context, client httputil.HTTPClient, serverURL, group, filename string, r io.Reader) (*UploadResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("group_name", group); err != nil {
		return nil, err
	}
	part, err := mw.CreateFormFile("zip_file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	url := strings.TrimRight(serverURL, "/") + UploadPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusAccepted {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("upload rejected (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("upload rejected (%d)", resp.StatusCode)
	}

	var out UploadResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
