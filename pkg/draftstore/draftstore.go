// Package draftstore keeps local, per-case drafts of in-progress trees so an
// interrupted editing session survives a restart without touching the
// backend.
package draftstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/krun-tools/stepcraft/pkg/translate/tstep"
)

var ErrDraftNotFound = errors.New("draft not found")

const schema = `
CREATE TABLE IF NOT EXISTS case_draft (
	case_code  TEXT PRIMARY KEY,
	case_name  TEXT NOT NULL DEFAULT '',
	payload    TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`

type Store struct {
	db *sql.DB
}

// Open opens (and migrates) the draft database at path. ":memory:" works for
// tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open draft store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate draft store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Draft is one stored row; Payload is the same shape a save request carries.
type Draft struct {
	CaseCode  string
	CaseName  string
	Payload   *tstep.SavePayload
	UpdatedAt time.Time
}

// Save upserts the draft for a case.
func (s *Store) Save(ctx context.Context, caseCode string, payload *tstep.SavePayload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	caseName := ""
	if payload.Case != nil {
		caseName = payload.Case.CaseName
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO case_draft (case_code, case_name, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(case_code) DO UPDATE SET
			case_name = excluded.case_name,
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		caseCode, caseName, string(raw), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return tx.Commit()
}

// Load returns the draft for a case, or ErrDraftNotFound.
func (s *Store) Load(ctx context.Context, caseCode string) (*Draft, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT case_name, payload, updated_at FROM case_draft WHERE case_code = ?`, caseCode)

	var (
		caseName string
		raw      string
		updated  int64
	)
	if err := row.Scan(&caseName, &raw, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("load draft: %w", err)
	}

	var payload tstep.SavePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	return &Draft{
		CaseCode:  caseCode,
		CaseName:  caseName,
		Payload:   &payload,
		UpdatedAt: time.UnixMilli(updated),
	}, nil
}

// Delete removes a draft; deleting a missing draft is not an error.
func (s *Store) Delete(ctx context.Context, caseCode string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM case_draft WHERE case_code = ?`, caseCode); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

// List returns every draft without payloads, newest first.
func (s *Store) List(ctx context.Context) ([]Draft, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT case_code, case_name, updated_at FROM case_draft ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	var drafts []Draft
	for rows.Next() {
		var d Draft
		var updated int64
		if err := rows.Scan(&d.CaseCode, &d.CaseName, &updated); err != nil {
			return nil, fmt.Errorf("list drafts: %w", err)
		}
		d.UpdatedAt = time.UnixMilli(updated)
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}
