// Package ingest turns welder log archives into stored layers. A zip holds
// one wNNN_scandata.txt and one wNNN_welddat.txt per layer; each complete
// pair becomes a layer row with its scan points and weld samples.
package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path"

	"github.com/banshee-data/weld.report/internal/db"
	"github.com/banshee-data/weld.report/internal/geometry"
	"github.com/banshee-data/weld.report/internal/monitoring"
)

// Layer outcome statuses.
const (
	LayerCreated = "created"
	LayerError   = "error"

	ReasonMissingPair = "missing_pair"
)

// Store is the persistence the ingester needs.
type Store interface {
	GetGroup(id string) (*db.WeldGroup, error)
	IngestLayer(l *db.Layer, points []db.ScanPoint, samples []db.WeldSample) error
	MarkIngested(id string) error
	MarkFailed(id string, cause error) error
}

// LayerDetail reports what happened to one layer number.
type LayerDetail struct {
	LayerNumber int    `json:"layer_number"`
	Status      string `json:"status"`
	Reason      string `json:"reason,omitempty"`
	Waypoints   *int   `json:"waypoints,omitempty"`
	Metrics     *int   `json:"metrics,omitempty"`
}

// Result summarises one ingest run.
type Result struct {
	GroupID string        `json:"groupId"`
	Created int           `json:"created"`
	Errors  int           `json:"errors"`
	Details []LayerDetail `json:"details"`
}

// Ingester parses layer files and writes them to a Store.
type Ingester struct {
	store     Store
	transform ScanTransform
	logf      func(format string, v ...interface{})
}

// NewIngester returns an Ingester applying transform to raw scan readings.
func NewIngester(store Store, transform ScanTransform) *Ingester {
	return &Ingester{
		store:     store,
		transform: transform,
		logf:      monitoring.Tagged("ingest"),
	}
}

// IngestDirectory ingests every layer pair found beneath dir into groupID.
func (in *Ingester) IngestDirectory(ctx context.Context, dir, groupID string) (*Result, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("directory not found: %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}
	return in.IngestFS(ctx, os.DirFS(dir), groupID)
}

// IngestFS ingests every layer pair in fsys into groupID, then marks the
// group ingested. Layers missing a file are reported, not fatal. Any store
// or read failure aborts the run.
func (in *Ingester) IngestFS(ctx context.Context, fsys fs.FS, groupID string) (*Result, error) {
	if _, err := in.store.GetGroup(groupID); err != nil {
		return nil, fmt.Errorf("group_not_found: %w", err)
	}

	pairs, err := PairFiles(fsys)
	if err != nil {
		return nil, err
	}

	res := &Result{GroupID: groupID, Details: []LayerDetail{}}
	for _, lf := range pairs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !lf.Complete() {
			res.Errors++
			res.Details = append(res.Details, LayerDetail{
				LayerNumber: lf.Number,
				Status:      LayerError,
				Reason:      ReasonMissingPair,
			})
			in.logf("group %s layer %d: missing pair", groupID, lf.Number)
			continue
		}

		waypoints, samples, err := in.ingestLayer(fsys, groupID, lf)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", lf.Number, err)
		}
		res.Created++
		res.Details = append(res.Details, LayerDetail{
			LayerNumber: lf.Number,
			Status:      LayerCreated,
			Waypoints:   &waypoints,
			Metrics:     &samples,
		})
	}

	if err := in.store.MarkIngested(groupID); err != nil {
		return nil, err
	}
	in.logf("group %s: %d layers created, %d errors", groupID, res.Created, res.Errors)
	return res, nil
}

func (in *Ingester) ingestLayer(fsys fs.FS, groupID string, lf LayerFiles) (int, int, error) {
	scanRows, err := parseFile(fsys, lf.Scandata, ParseScandata)
	if err != nil {
		return 0, 0, err
	}
	weldRows, err := parseFile(fsys, lf.Welddat, ParseWelddat)
	if err != nil {
		return 0, 0, err
	}

	points := make([]db.ScanPoint, len(scanRows))
	for i, r := range scanRows {
		points[i] = db.ScanPoint{
			Seq:       r.Seq,
			X:         geometry.FiniteOrZero(r.X),
			Y:         geometry.FiniteOrZero(r.Y),
			Z:         geometry.FiniteOrZero(r.Z),
			ScanRaw:   finite(r.Raw),
			ScanValue: finite(in.transform.Apply(r.Raw)),
		}
		if r.Speed != nil {
			points[i].Speed = finite(*r.Speed)
		}
	}

	samples := make([]db.WeldSample, len(weldRows))
	for i, r := range weldRows {
		samples[i] = db.WeldSample{
			Seq:          r.Seq,
			X:            geometry.FiniteOrZero(r.X),
			Y:            geometry.FiniteOrZero(r.Y),
			Z:            geometry.FiniteOrZero(r.Z),
			WireFeedRate: finite(r.WireFeedRate),
			TravelSpeed:  finite(r.TravelSpeed),
			Current:      finite(r.Current),
			Voltage:      finite(r.Voltage),
		}
	}

	scanName, weldName := path.Base(lf.Scandata), path.Base(lf.Welddat)
	layer := &db.Layer{
		GroupID:      groupID,
		LayerNumber:  lf.Number,
		ScandataFile: &scanName,
		WelddatFile:  &weldName,
	}
	if err := in.store.IngestLayer(layer, points, samples); err != nil {
		return 0, 0, err
	}
	return len(points), len(samples), nil
}

// finite returns &v, or nil when v is NaN or ±Inf. Coordinates are zeroed
// instead; channel values are stored as absent.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func parseFile[T any](fsys fs.FS, name string, parse func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()
	rows, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return rows, nil
}

// IngestZip extracts zr into a temporary directory and ingests it.
func (in *Ingester) IngestZip(ctx context.Context, zr *zip.Reader, groupID string) (*Result, error) {
	tmp, err := os.MkdirTemp("", "weld-ingest-*")
	if err != nil {
		return nil, fmt.Errorf("create extract dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	if err := ExtractZip(zr, tmp); err != nil {
		return nil, err
	}
	return in.IngestDirectory(ctx, tmp, groupID)
}

// IngestZipBytes ingests an in-memory zip archive.
func (in *Ingester) IngestZipBytes(ctx context.Context, data []byte, groupID string) (*Result, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	return in.IngestZip(ctx, zr, groupID)
}

// IngestZipFile ingests the zip archive at path.
func (in *Ingester) IngestZipFile(ctx context.Context, zipPath, groupID string) (*Result, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("open zip %s: %w", zipPath, err)
	}
	defer zr.Close()
	return in.IngestZip(ctx, &zr.Reader, groupID)
}
