package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Group ingest states.
const (
	GroupStatusPending  = "pending"
	GroupStatusIngested = "ingested"
	GroupStatusFailed   = "failed"
)

// WeldGroup is one uploaded build: a named set of layers.
type WeldGroup struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	IngestComplete bool      `json:"ingest_complete"`
	Status         string    `json:"status"`
	IngestError    *string   `json:"ingest_error"`
	CreatedAt      time.Time `json:"created_at"`
	LayerCount     int       `json:"layer_count"`
}

// ReserveGroup creates a pending group row so the name is claimed before any
// data is ingested. Returns ErrGroupNameExists if the name is taken.
func (db *DB) ReserveGroup(name string, createdAt time.Time) (*WeldGroup, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("group name is required")
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var taken int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM weld_groups WHERE name = ?`, name).Scan(&taken); err != nil {
		return nil, fmt.Errorf("failed to check group name: %w", err)
	}
	if taken > 0 {
		return nil, ErrGroupNameExists
	}

	g := &WeldGroup{
		ID:        uuid.New().String(),
		Name:      name,
		Status:    GroupStatusPending,
		CreatedAt: time.Unix(createdAt.Unix(), 0).UTC(),
	}
	_, err = tx.Exec(`
		INSERT INTO weld_groups (id, name, ingest_complete, status, created_at)
		VALUES (?, ?, 0, ?, ?)
	`, g.ID, g.Name, g.Status, g.CreatedAt.Unix())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrGroupNameExists
		}
		return nil, fmt.Errorf("failed to reserve group: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit group: %w", err)
	}
	return g, nil
}

const groupColumns = `
	g.id, g.name, g.ingest_complete, g.status, g.ingest_error, g.created_at,
	(SELECT COUNT(*) FROM layers l WHERE l.group_id = g.id)
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGroup(row rowScanner) (*WeldGroup, error) {
	var g WeldGroup
	var complete int
	var ingestErr sql.NullString
	var createdAt int64
	if err := row.Scan(&g.ID, &g.Name, &complete, &g.Status, &ingestErr, &createdAt, &g.LayerCount); err != nil {
		return nil, err
	}
	g.IngestComplete = complete == 1
	if ingestErr.Valid {
		g.IngestError = &ingestErr.String
	}
	g.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &g, nil
}

// ListGroups returns groups ordered by name with their layer counts.
func (db *DB) ListGroups(limit, offset int) ([]WeldGroup, error) {
	rows, err := db.Query(`SELECT `+groupColumns+`
		FROM weld_groups g
		ORDER BY g.name
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	groups := []WeldGroup{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, *g)
	}
	return groups, rows.Err()
}

// GetGroup retrieves a group by ID.
func (db *DB) GetGroup(id string) (*WeldGroup, error) {
	g, err := scanGroup(db.QueryRow(`SELECT `+groupColumns+`
		FROM weld_groups g
		WHERE g.id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return g, nil
}

// MarkIngested flags the group as completely ingested.
func (db *DB) MarkIngested(id string) error {
	return db.setGroupStatus(id, GroupStatusIngested, true, nil)
}

// MarkFailed records an ingest failure on the group.
func (db *DB) MarkFailed(id string, cause error) error {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	return db.setGroupStatus(id, GroupStatusFailed, false, &msg)
}

func (db *DB) setGroupStatus(id, status string, complete bool, ingestErr *string) error {
	completeInt := 0
	if complete {
		completeInt = 1
	}
	res, err := db.Exec(`
		UPDATE weld_groups
		SET status = ?, ingest_complete = ?, ingest_error = ?
		WHERE id = ?
	`, status, completeInt, ingestErr, id)
	if err != nil {
		return fmt.Errorf("failed to update group status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("group %s: %w", id, ErrNotFound)
	}
	return nil
}
