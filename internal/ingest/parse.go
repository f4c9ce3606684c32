package ingest

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Minimum numeric fields per accepted row.
const (
	MinScandataFields = 4
	MinWelddatFields  = 7
)

const maxLineBytes = 1 << 20

var fieldSep = regexp.MustCompile(`[,\s]+`)

// ScanRow is one accepted scandata line: [ScanValue, X, Y, Z, V?].
type ScanRow struct {
	Seq   int
	Raw   float64
	X     float64
	Y     float64
	Z     float64
	Speed *float64
}

// WeldRow is one accepted welddat line:
// [Feedrate, Current, Voltage, X, Y, Z, TravelSpeed].
type WeldRow struct {
	Seq          int
	WireFeedRate float64
	Current      float64
	Voltage      float64
	X            float64
	Y            float64
	Z            float64
	TravelSpeed  float64
}

// parseNumbers splits a line on commas and whitespace. It returns nil when
// the line is blank or any token is not a number.
func parseNumbers(line string) []float64 {
	var nums []float64
	for _, tok := range fieldSep.Split(strings.TrimSpace(line), -1) {
		if tok == "" {
			continue
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil
		}
		nums = append(nums, v)
	}
	return nums
}

// eachRow calls fn with the numbers of every line that has at least min
// fields. Seq counts accepted lines from 0.
func eachRow(r io.Reader, min int, fn func(seq int, nums []float64)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	seq := 0
	for sc.Scan() {
		nums := parseNumbers(sc.Text())
		if len(nums) < min {
			continue
		}
		fn(seq, nums)
		seq++
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read line %d: %w", seq, err)
	}
	return nil
}

// ParseScandata reads scandata rows. Lines with fewer than four numbers or
// any non-numeric token are skipped; a fifth number is the optional speed.
func ParseScandata(r io.Reader) ([]ScanRow, error) {
	var rows []ScanRow
	err := eachRow(r, MinScandataFields, func(seq int, n []float64) {
		row := ScanRow{Seq: seq, Raw: n[0], X: n[1], Y: n[2], Z: n[3]}
		if len(n) >= 5 {
			v := n[4]
			row.Speed = &v
		}
		rows = append(rows, row)
	})
	return rows, err
}

// ParseWelddat reads welddat rows. Lines with fewer than seven numbers or
// any non-numeric token are skipped.
func ParseWelddat(r io.Reader) ([]WeldRow, error) {
	var rows []WeldRow
	err := eachRow(r, MinWelddatFields, func(seq int, n []float64) {
		rows = append(rows, WeldRow{
			Seq:          seq,
			WireFeedRate: n[0],
			Current:      n[1],
			Voltage:      n[2],
			X:            n[3],
			Y:            n[4],
			Z:            n[5],
			TravelSpeed:  n[6],
		})
	})
	return rows, err
}

// ScanTransform maps raw scan readings to scan values: raw*A + B.
type ScanTransform struct {
	A float64
	B float64
}

// IdentityTransform leaves raw readings unchanged.
var IdentityTransform = ScanTransform{A: 1, B: 0}

// Apply returns raw*A + B.
func (t ScanTransform) Apply(raw float64) float64 {
	return raw*t.A + t.B
}
