package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Layer is one deposited pass: a scandata file paired with a welddat file.
type Layer struct {
	ID           string  `json:"id"`
	GroupID      string  `json:"group_id"`
	LayerNumber  int     `json:"layer_number"`
	ScandataFile *string `json:"scandata_file,omitempty"`
	WelddatFile  *string `json:"welddat_file,omitempty"`
}

func insertLayer(tx *sql.Tx, l *Layer) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	_, err := tx.Exec(`
		INSERT INTO layers (id, group_id, layer_number, scandata_file, welddat_file)
		VALUES (?, ?, ?, ?, ?)
	`, l.ID, l.GroupID, l.LayerNumber, l.ScandataFile, l.WelddatFile)
	if err != nil {
		return fmt.Errorf("failed to insert layer %d: %w", l.LayerNumber, err)
	}
	return nil
}

// IngestLayer inserts a layer together with its scan points and weld samples
// in a single transaction. An empty layer ID is filled with a new UUID.
func (db *DB) IngestLayer(l *Layer, points []ScanPoint, samples []WeldSample) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertLayer(tx, l); err != nil {
		return err
	}
	if err := insertScanPoints(tx, l.ID, points); err != nil {
		return err
	}
	if err := insertWeldSamples(tx, l.ID, samples); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit layer %d: %w", l.LayerNumber, err)
	}
	return nil
}

// ListLayers returns a page of the group's layers ordered by layer number.
func (db *DB) ListLayers(groupID string, limit, offset int) ([]Layer, error) {
	rows, err := db.Query(`
		SELECT id, group_id, layer_number, scandata_file, welddat_file
		FROM layers
		WHERE group_id = ?
		ORDER BY layer_number
		LIMIT ? OFFSET ?
	`, groupID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list layers: %w", err)
	}
	defer rows.Close()

	layers := []Layer{}
	for rows.Next() {
		l, err := scanLayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan layer: %w", err)
		}
		layers = append(layers, *l)
	}
	return layers, rows.Err()
}

// GetLayer retrieves a layer by ID.
func (db *DB) GetLayer(id string) (*Layer, error) {
	l, err := scanLayer(db.QueryRow(`
		SELECT id, group_id, layer_number, scandata_file, welddat_file
		FROM layers
		WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("layer %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get layer: %w", err)
	}
	return l, nil
}

func scanLayer(row rowScanner) (*Layer, error) {
	var l Layer
	var scan, weld sql.NullString
	if err := row.Scan(&l.ID, &l.GroupID, &l.LayerNumber, &scan, &weld); err != nil {
		return nil, err
	}
	if scan.Valid {
		l.ScandataFile = &scan.String
	}
	if weld.Valid {
		l.WelddatFile = &weld.String
	}
	return &l, nil
}
