package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/coreybb/scriptcast/models"
	"github.com/google/uuid"
)

// ErrScriptNotFound is returned when no script exists for the requested ID.
// Malformed IDs are reported the same way; they can never match a stored row.
var ErrScriptNotFound = errors.New("script not found")

// ValidationError reports a create call with missing required fields. It is
// raised before the database is touched so an invalid script is never stored.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("script %s must not be empty", e.Field)
}

// PersistenceError wraps a failure of the backing store itself
// (connectivity, query execution), as opposed to a not-found outcome.
type PersistenceError struct {
	Op    string
	cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("script store %s failed: %v", e.Op, e.cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.cause
}

// ScriptRepository handles database operations for generated scripts.
type ScriptRepository struct {
	db *sql.DB
}

// NewScriptRepository creates a new ScriptRepository.
func NewScriptRepository(db *sql.DB) *ScriptRepository {
	return &ScriptRepository{db: db}
}

// CreateScript inserts a new script record and returns it with its assigned
// ID and timestamps. Both timestamps are set to the same instant; the
// pipeline only ever creates scripts, it never updates them.
func (r *ScriptRepository) CreateScript(ctx context.Context, pdfFilePath, content string) (*models.Script, error) {
	if pdfFilePath == "" {
		return nil, &ValidationError{Field: "pdfFilePath"}
	}
	if content == "" {
		return nil, &ValidationError{Field: "content"}
	}

	script := models.Script{
		ID:          uuid.NewString(),
		PDFFilePath: pdfFilePath,
		Content:     content,
	}
	now := time.Now().UTC()
	script.CreatedAt = now
	script.UpdatedAt = now

	query := `
		INSERT INTO scripts (id, pdf_file_path, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		script.ID, script.PDFFilePath, script.Content, script.CreatedAt, script.UpdatedAt,
	)
	if err != nil {
		return nil, &PersistenceError{Op: "create", cause: err}
	}
	return &script, nil
}

// GetScripts retrieves all scripts in creation order. Repeated calls with no
// intervening mutation return the same sequence; created_at ties are broken
// by ID.
func (r *ScriptRepository) GetScripts(ctx context.Context) ([]models.Script, error) {
	query := `
		SELECT id, pdf_file_path, content, created_at, updated_at
		FROM scripts
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &PersistenceError{Op: "list", cause: err}
	}
	defer rows.Close()

	var scripts []models.Script
	for rows.Next() {
		var script models.Script
		if err := rows.Scan(
			&script.ID, &script.PDFFilePath, &script.Content,
			&script.CreatedAt, &script.UpdatedAt,
		); err != nil {
			return nil, &PersistenceError{Op: "list", cause: fmt.Errorf("failed to scan script row: %w", err)}
		}
		scripts = append(scripts, script)
	}

	if err = rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "list", cause: fmt.Errorf("error iterating script rows: %w", err)}
	}

	if scripts == nil {
		scripts = []models.Script{}
	}
	return scripts, nil
}

// GetScriptByID retrieves a script by its ID. A malformed ID is reported as
// ErrScriptNotFound rather than an error the caller would treat as internal.
func (r *ScriptRepository) GetScriptByID(ctx context.Context, scriptID string) (*models.Script, error) {
	if _, err := uuid.Parse(scriptID); err != nil {
		return nil, ErrScriptNotFound
	}

	query := `
		SELECT id, pdf_file_path, content, created_at, updated_at
		FROM scripts
		WHERE id = $1
	`
	var script models.Script
	row := r.db.QueryRowContext(ctx, query, scriptID)
	err := row.Scan(
		&script.ID, &script.PDFFilePath, &script.Content,
		&script.CreatedAt, &script.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScriptNotFound
		}
		return nil, &PersistenceError{Op: "get", cause: err}
	}
	return &script, nil
}

// DeleteScript removes a script permanently and returns the deleted record.
// There is no soft delete; a subsequent get for the same ID reports not found.
func (r *ScriptRepository) DeleteScript(ctx context.Context, scriptID string) (*models.Script, error) {
	if _, err := uuid.Parse(scriptID); err != nil {
		return nil, ErrScriptNotFound
	}

	query := `
		DELETE FROM scripts
		WHERE id = $1
		RETURNING id, pdf_file_path, content, created_at, updated_at
	`
	var script models.Script
	row := r.db.QueryRowContext(ctx, query, scriptID)
	err := row.Scan(
		&script.ID, &script.PDFFilePath, &script.Content,
		&script.CreatedAt, &script.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScriptNotFound
		}
		return nil, &PersistenceError{Op: "delete", cause: err}
	}
	return &script, nil
}
