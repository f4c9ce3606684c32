package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/weld.report/internal/config"
	"github.com/banshee-data/weld.report/internal/db"
	"github.com/banshee-data/weld.report/internal/httputil"
	"github.com/banshee-data/weld.report/internal/ingest"
	"github.com/banshee-data/weld.report/internal/security"
	"github.com/banshee-data/weld.report/internal/view"
)

// runIngest ingests a zip archive or a directory of layer files into a new
// group and prints the result as JSON.
func runIngest(ctx context.Context, cfg *config.DashboardConfig, dbPath string, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	group := fs.String("group", "", "Group name (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *group == "" || fs.NArg() != 1 {
		return errors.New("usage: ingest -group NAME <file.zip|dir>")
	}
	src := fs.Arg(0)
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	database, err := db.NewDB(dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	g, err := database.ReserveGroup(*group, time.Now())
	if err != nil {
		return err
	}

	in := ingest.NewIngester(database, scanTransform(cfg))
	var res *ingest.Result
	if info.IsDir() {
		res, err = in.IngestDirectory(ctx, src, g.ID)
	} else {
		res, err = in.IngestZipFile(ctx, src, g.ID)
	}
	if err != nil {
		if markErr := database.MarkFailed(g.ID, err); markErr != nil {
			return fmt.Errorf("%w (mark failed: %v)", err, markErr)
		}
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// runUpload sends a zip archive to a running server.
func runUpload(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	server := fs.String("server", "http://localhost:8080", "Server base URL")
	group := fs.String("group", "", "Group name (server default when empty)")
	timeout := fs.Duration("timeout", 10*time.Minute, "Upload timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: upload [-server URL] [-group NAME] <file.zip>")
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	client := httputil.NewStandardClient(&http.Client{Timeout: *timeout})
	resp, err := ingest.UploadZip(ctx, client, *server, *group, filepath.Base(f.Name()), f)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "accepted: group %s (%s)\n", resp.Group, resp.GroupID)
	return nil
}

// runExportChart renders one layer's metrics chart to a PNG file.
func runExportChart(cfg *config.DashboardConfig, dbPath string, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("export-chart", flag.ContinueOnError)
	layerID := fs.String("layer", "", "Layer ID (required)")
	outPath := fs.String("out", "", "Output PNG path (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *layerID == "" || *outPath == "" {
		return errors.New("usage: export-chart -layer ID -out FILE.png")
	}
	if err := security.ValidateExportPath(*outPath); err != nil {
		return err
	}
	vc, err := viewConfig(cfg)
	if err != nil {
		return err
	}

	database, err := db.NewDB(dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	snap, err := view.LoadSnapshot(database, *layerID, time.Now())
	if err != nil {
		return err
	}

	f, err := os.Create(*outPath)
	if err != nil {
		return err
	}
	title := fmt.Sprintf("Layer %d", snap.LayerNumber)
	if err := view.RenderChartPNG(f, view.BuildChart(snap, vc), title); err != nil {
		f.Close()
		os.Remove(*outPath)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s\n", *outPath)
	return nil
}
