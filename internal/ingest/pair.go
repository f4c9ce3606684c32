package ingest

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/banshee-data/weld.report/internal/security"
)

var pairPattern = regexp.MustCompile(`^w(\d+)_([a-zA-Z]+)\.txt$`)

// LayerFiles holds the paths of one layer's input files, relative to the
// ingested root. Either may be empty.
type LayerFiles struct {
	Number   int
	Scandata string
	Welddat  string
}

// Complete reports whether both files are present.
func (l LayerFiles) Complete() bool {
	return l.Scandata != "" && l.Welddat != ""
}

// MatchLayerFile classifies a base file name such as "w012_scandata.txt".
// ok reports whether the name follows the wNNN_kind.txt pattern; kind is
// "scandata", "welddat", or "" when the kind word names neither.
func MatchLayerFile(name string) (number int, kind string, ok bool) {
	m := pairPattern.FindStringSubmatch(name)
	if m == nil {
		return 0, "", false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", false
	}
	switch k := strings.ToLower(m[2]); {
	case strings.Contains(k, "scan"):
		return n, "scandata", true
	case strings.Contains(k, "weld"):
		return n, "welddat", true
	}
	return n, "", true
}

// PairFiles walks fsys and groups layer files by layer number. The result
// is ordered by layer number. A pattern-matching file of unknown kind still
// registers its layer, which then reports as unpaired. When a layer has
// several candidates for the same kind, the last in walk order wins.
func PairFiles(fsys fs.FS) ([]LayerFiles, error) {
	byNumber := map[int]*LayerFiles{}
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		n, kind, ok := MatchLayerFile(path.Base(p))
		if !ok {
			return nil
		}
		lf, exists := byNumber[n]
		if !exists {
			lf = &LayerFiles{Number: n}
			byNumber[n] = lf
		}
		switch kind {
		case "scandata":
			lf.Scandata = p
		case "welddat":
			lf.Welddat = p
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk input files: %w", err)
	}

	out := make([]LayerFiles, 0, len(byNumber))
	for _, lf := range byNumber {
		out = append(out, *lf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// ExtractZip writes every file in zr beneath dest. All entry names are
// checked before anything is written, so an archive with a single escaping
// entry extracts nothing.
func ExtractZip(zr *zip.Reader, dest string) error {
	targets := make([]string, len(zr.File))
	for i, f := range zr.File {
		target, err := security.ArchiveEntryPath(dest, f.Name)
		if err != nil {
			return err
		}
		targets[i] = target
	}

	for i, f := range zr.File {
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(targets[i], 0o755); err != nil {
				return fmt.Errorf("create %s: %w", f.Name, err)
			}
			continue
		}
		if err := extractFile(f, targets[i]); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", f.Name, err)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", f.Name, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return out.Close()
}
