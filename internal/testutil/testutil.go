// Package testutil provides shared test fixtures: synthetic welder logs,
// zip archives built from them, and small HTTP assertion helpers.
package testutil

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// DecodeJSON decodes the recorder body into v, failing the test on error.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

// ScandataLines returns n scandata rows "raw,x,y,z,v" tracing a straight bead
// along X at height z.
func ScandataLines(n int, z float64) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%g,%g,%g,%g,%g\n", 10+float64(i)/10, float64(i), float64(i%3)/10, z, 8.0)
	}
	return b.String()
}

// WelddatLines returns n welddat rows
// "feed current voltage x y z travel_speed".
func WelddatLines(n int, z float64) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%g %g %g %g %g %g %g\n", 8.0, 150+float64(i), 22+float64(i%4)/2, float64(i), 0.0, z, 6.0)
	}
	return b.String()
}

// LayerFiles returns the scandata/welddat pair for layer n with rows rows.
func LayerFiles(n, rows int) map[string]string {
	z := float64(n) * 1.5
	return map[string]string{
		fmt.Sprintf("w%03d_scandata.txt", n): ScandataLines(rows, z),
		fmt.Sprintf("w%03d_welddat.txt", n):  WelddatLines(rows, z),
	}
}

// BuildZip returns a zip archive holding files, written in name order.
func BuildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(files[name])); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

// WriteZip builds a zip from files and writes it to dir/name.
func WriteZip(t *testing.T, dir, name string, files map[string]string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, BuildZip(t, files), 0o644); err != nil {
		t.Fatalf("write zip: %v", err)
	}
	return path
}

// Merge combines file maps; later maps win on name collisions.
func Merge(maps ...map[string]string) map[string]string {
	out := map[string]string{}
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}
