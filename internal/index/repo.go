package index

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/fitch/internal/apperr"
	"github.com/starford/fitch/internal/models"
	"github.com/starford/fitch/internal/verify"
)

// ListOptions filters and pages ListProofs.
type ListOptions struct {
	Limit  int
	Offset int
	// Status keeps only proofs with this status when set.
	Status models.Status
	// Query matches a substring of the path or title.
	Query string
	// Sort is "path" (default), "updated" or "invalid".
	Sort string
}

const summaryColumns = `path, title, system, checksum, status, error, lines, invalid,
	placeholders, reached, complete, updated_at, verified_at`

// UpsertProof inserts or replaces the metadata of a proof file. Files that
// failed to decode lose their diagnostics.
func (db *DB) UpsertProof(s models.ProofSummary) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if s.Status == "" {
		s.Status = models.StatusPending
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	}
	_, err = tx.Exec(`
		INSERT INTO proofs (path, title, system, checksum, status, error, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title      = excluded.title,
			system     = excluded.system,
			checksum   = excluded.checksum,
			status     = excluded.status,
			error      = excluded.error,
			updated_at = excluded.updated_at
	`, s.Path, s.Title, s.System, s.Checksum, string(s.Status), s.Error, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert proof: %w", err)
	}

	if s.Status == models.StatusError {
		if _, err := tx.Exec(`DELETE FROM diagnostics WHERE path = ?`, s.Path); err != nil {
			return fmt.Errorf("index: clear diagnostics: %w", err)
		}
		if _, err := tx.Exec(`
			UPDATE proofs SET lines = 0, invalid = 0, placeholders = 0, reached = 0,
				complete = 0, pass_id = '', verified_at = NULL
			WHERE path = ?`, s.Path); err != nil {
			return fmt.Errorf("index: reset counts: %w", err)
		}
	}
	return tx.Commit()
}

// SaveReport stores the outcome of a verification pass, replacing the
// previous diagnostics. It returns apperr.ErrNotFound when the proof is no
// longer indexed.
func (db *DB) SaveReport(path string, p verify.Pass) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	r := p.Report
	status := models.StatusValid
	if !r.Valid() {
		status = models.StatusInvalid
	}
	res, err := tx.Exec(`
		UPDATE proofs SET status = ?, lines = ?, invalid = ?, placeholders = ?,
			reached = ?, complete = ?, pass_id = ?, verified_at = ?
		WHERE path = ?
	`, string(status), len(r.Diagnostics), len(r.Invalid()), len(r.Placeholders),
		r.Reached, r.Complete(), p.ID.String(), time.Now().UTC(), path)
	if err != nil {
		return fmt.Errorf("index: save report: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("index: save report %s: %w", path, apperr.ErrNotFound)
	}

	if _, err := tx.Exec(`DELETE FROM diagnostics WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: clear diagnostics: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO diagnostics (path, line, depth, status, reason, citation, rule, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare diagnostic insert: %w", err)
	}
	defer stmt.Close()
	for _, d := range r.Diagnostics {
		if _, err := stmt.Exec(path, d.Line, d.Depth, string(d.Status), string(d.Reason), d.Citation, string(d.Rule), d.Detail); err != nil {
			return fmt.Errorf("index: insert diagnostic: %w", err)
		}
	}

	return tx.Commit()
}

// DeleteProof removes a proof and its diagnostics.
func (db *DB) DeleteProof(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM diagnostics WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete diagnostics: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM proofs WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete proof: %w", err)
	}

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a proof, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM proofs WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns the stored checksum of every indexed proof.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM proofs`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// GetProof returns the summary of one proof.
func (db *DB) GetProof(path string) (*models.ProofSummary, error) {
	row := db.conn.QueryRow(`SELECT `+summaryColumns+` FROM proofs WHERE path = ?`, path)
	s, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get proof: %w", err)
	}
	return &s, nil
}

// ListProofs returns one page of summaries and the total number of matches.
func (db *DB) ListProofs(opts ListOptions) ([]models.ProofSummary, int, error) {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	var (
		where []string
		args  []any
	)
	if opts.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(opts.Status))
	}
	if opts.Query != "" {
		like := "%" + opts.Query + "%"
		where = append(where, "(path LIKE ? OR title LIKE ?)")
		args = append(args, like, like)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM proofs`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count proofs: %w", err)
	}

	order := "path"
	switch opts.Sort {
	case "updated":
		order = "updated_at DESC, path"
	case "invalid":
		order = "invalid DESC, path"
	}
	rows, err := db.conn.Query(`SELECT `+summaryColumns+` FROM proofs`+clause+
		` ORDER BY `+order+` LIMIT ? OFFSET ?`, append(args, opts.Limit, opts.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list proofs: %w", err)
	}
	defer rows.Close()

	var out []models.ProofSummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("index: scan proof: %w", err)
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

// Diagnostics returns the stored diagnostics of a proof in line order.
func (db *DB) Diagnostics(path string) ([]verify.Diagnostic, error) {
	rows, err := db.conn.Query(`
		SELECT line, depth, status, reason, citation, rule, detail
		FROM diagnostics WHERE path = ? ORDER BY line`, path)
	if err != nil {
		return nil, fmt.Errorf("index: diagnostics: %w", err)
	}
	defer rows.Close()

	var out []verify.Diagnostic
	for rows.Next() {
		var d verify.Diagnostic
		if err := rows.Scan(&d.Line, &d.Depth, &d.Status, &d.Reason, &d.Citation, &d.Rule, &d.Detail); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(sc scanner) (models.ProofSummary, error) {
	var (
		s        models.ProofSummary
		verified sql.NullTime
	)
	err := sc.Scan(&s.Path, &s.Title, &s.System, &s.Checksum, &s.Status, &s.Error,
		&s.Lines, &s.Invalid, &s.Placeholders, &s.Reached, &s.Complete, &s.UpdatedAt, &verified)
	if verified.Valid {
		s.VerifiedAt = verified.Time
	}
	return s, err
}
