package db

import (
	"database/sql"
	"fmt"
)

// ScanPoint is one row of a scandata file. ScanValue is ScanRaw after the
// configured linear transform.
type ScanPoint struct {
	Seq       int      `json:"seq"`
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	Z         float64  `json:"z"`
	ScanRaw   *float64 `json:"scan_raw,omitempty"`
	ScanValue *float64 `json:"scan_value"`
	Speed     *float64 `json:"speed,omitempty"`
}

// WeldSample is one row of a welddat file.
type WeldSample struct {
	Seq          int      `json:"seq"`
	X            float64  `json:"x"`
	Y            float64  `json:"y"`
	Z            float64  `json:"z"`
	WireFeedRate *float64 `json:"wire_feed_rate"`
	TravelSpeed  *float64 `json:"travel_speed"`
	Current      *float64 `json:"current"`
	Voltage      *float64 `json:"voltage"`
}

// LayerSamples is the weld sample series of one layer.
type LayerSamples struct {
	LayerID     string
	LayerNumber int
	Samples     []WeldSample
}

func insertScanPoints(tx *sql.Tx, layerID string, points []ScanPoint) error {
	if len(points) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(`
		INSERT INTO scan_points (layer_id, seq, x, y, z, scan_raw, scan_value, speed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare scan point insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.Exec(layerID, p.Seq, p.X, p.Y, p.Z, p.ScanRaw, p.ScanValue, p.Speed); err != nil {
			return fmt.Errorf("failed to insert scan point %d: %w", p.Seq, err)
		}
	}
	return nil
}

func insertWeldSamples(tx *sql.Tx, layerID string, samples []WeldSample) error {
	if len(samples) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(`
		INSERT INTO weld_samples (layer_id, seq, x, y, z, wire_feed_rate, travel_speed, current, voltage)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare weld sample insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range samples {
		if _, err := stmt.Exec(layerID, s.Seq, s.X, s.Y, s.Z, s.WireFeedRate, s.TravelSpeed, s.Current, s.Voltage); err != nil {
			return fmt.Errorf("failed to insert weld sample %d: %w", s.Seq, err)
		}
	}
	return nil
}

// LayerWaypoints returns the layer's scan points ordered by seq.
func (db *DB) LayerWaypoints(layerID string) ([]ScanPoint, error) {
	rows, err := db.Query(`
		SELECT seq, x, y, z, scan_raw, scan_value, speed
		FROM scan_points
		WHERE layer_id = ?
		ORDER BY seq
	`, layerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan points: %w", err)
	}
	defer rows.Close()

	points := []ScanPoint{}
	for rows.Next() {
		var p ScanPoint
		var raw, value, speed sql.NullFloat64
		if err := rows.Scan(&p.Seq, &p.X, &p.Y, &p.Z, &raw, &value, &speed); err != nil {
			return nil, fmt.Errorf("failed to scan scan point: %w", err)
		}
		p.ScanRaw = nullFloat(raw)
		p.ScanValue = nullFloat(value)
		p.Speed = nullFloat(speed)
		points = append(points, p)
	}
	return points, rows.Err()
}

// LayerSamples returns the layer's weld samples ordered by seq.
func (db *DB) LayerSamples(layerID string) ([]WeldSample, error) {
	rows, err := db.Query(`
		SELECT seq, x, y, z, wire_feed_rate, travel_speed, current, voltage
		FROM weld_samples
		WHERE layer_id = ?
		ORDER BY seq
	`, layerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query weld samples: %w", err)
	}
	defer rows.Close()

	samples := []WeldSample{}
	for rows.Next() {
		s, err := scanWeldSample(rows, nil)
		if err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// GroupSamples returns the weld samples of every layer in the group that
// has any, ordered by layer number then seq.
func (db *DB) GroupSamples(groupID string) ([]LayerSamples, error) {
	rows, err := db.Query(`
		SELECT l.id, l.layer_number,
			s.seq, s.x, s.y, s.z, s.wire_feed_rate, s.travel_speed, s.current, s.voltage
		FROM weld_samples s
		JOIN layers l ON l.id = s.layer_id
		WHERE l.group_id = ?
		ORDER BY l.layer_number, l.id, s.seq
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query group samples: %w", err)
	}
	defer rows.Close()

	var out []LayerSamples
	for rows.Next() {
		var layerID string
		var layerNumber int
		s, err := scanWeldSample(rows, []any{&layerID, &layerNumber})
		if err != nil {
			return nil, err
		}
		if n := len(out); n == 0 || out[n-1].LayerID != layerID {
			out = append(out, LayerSamples{LayerID: layerID, LayerNumber: layerNumber})
		}
		last := &out[len(out)-1]
		last.Samples = append(last.Samples, s)
	}
	return out, rows.Err()
}

func scanWeldSample(rows *sql.Rows, prefix []any) (WeldSample, error) {
	var s WeldSample
	var wfr, ts, cur, volt sql.NullFloat64
	dest := append(prefix, &s.Seq, &s.X, &s.Y, &s.Z, &wfr, &ts, &cur, &volt)
	if err := rows.Scan(dest...); err != nil {
		return s, fmt.Errorf("failed to scan weld sample: %w", err)
	}
	s.WireFeedRate = nullFloat(wfr)
	s.TravelSpeed = nullFloat(ts)
	s.Current = nullFloat(cur)
	s.Voltage = nullFloat(volt)
	return s, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
