package store

import (
	"context"
	"fmt"

	"github.com/roach88/chipsim/internal/ir"
)

const revisionColumns = `revision, chip_id, name, definition, definition_hash, code, seq`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRevision reads one row selected with revisionColumns.
func scanRevision(row rowScanner) (Revision, error) {
	var (
		rev Revision
		doc string
	)
	if err := row.Scan(&rev.Revision, &rev.ChipID, &rev.Name, &doc, &rev.DefinitionHash, &rev.Code, &rev.Seq); err != nil {
		return Revision{}, err
	}
	def, err := unmarshalDefinition(doc, rev.Code)
	if err != nil {
		return Revision{}, fmt.Errorf("revision %s: %w", rev.Revision, err)
	}
	rev.Definition = def
	return rev, nil
}

// ReadRevision retrieves a single revision by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRevision(ctx context.Context, revision string) (Revision, error) {
	return scanRevision(s.db.QueryRowContext(ctx, `
		SELECT `+revisionColumns+`
		FROM chip_revisions
		WHERE revision = ?
	`, revision))
}

// LatestChips returns the latest revision of every chip.
// Results are ordered by seq ASC, revision COLLATE BINARY ASC, so chips
// come back in the order they were last saved.
//
// Returns an empty slice (not nil) if the store is empty.
func (s *Store) LatestChips(ctx context.Context) ([]Revision, error) {
	return s.queryRevisions(ctx, `
		SELECT `+revisionColumns+`
		FROM chip_revisions r
		WHERE r.seq = (
			SELECT MAX(seq) FROM chip_revisions WHERE chip_id = r.chip_id
		)
		ORDER BY r.seq ASC, r.revision COLLATE BINARY ASC
	`)
}

// History returns every revision of one chip, oldest first.
//
// Returns an empty slice (not nil) if the chip was never saved.
func (s *Store) History(ctx context.Context, chipID string) ([]Revision, error) {
	return s.queryRevisions(ctx, `
		SELECT `+revisionColumns+`
		FROM chip_revisions
		WHERE chip_id = ?
		ORDER BY seq ASC, revision COLLATE BINARY ASC
	`, chipID)
}

// LatestDefinitions returns the latest definition of every chip with its
// stored code, ready for registration.
func (s *Store) LatestDefinitions(ctx context.Context) ([]*ir.ChipDefinition, error) {
	revs, err := s.LatestChips(ctx)
	if err != nil {
		return nil, err
	}
	defs := make([]*ir.ChipDefinition, len(revs))
	for i, rev := range revs {
		defs[i] = rev.Definition
	}
	return defs, nil
}

func (s *Store) queryRevisions(ctx context.Context, query string, args ...any) ([]Revision, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query revisions: %w", err)
	}
	defer rows.Close()

	revs := []Revision{}
	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		revs = append(revs, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate revisions: %w", err)
	}
	return revs, nil
}
