package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/chipsim/internal/ir"
)

// Revision is one saved version of a chip definition.
type Revision struct {
	Revision       string
	ChipID         string
	Name           string
	Definition     *ir.ChipDefinition // Code is restored from the code column
	DefinitionHash string
	Code           string
	Seq            int64
}

// SaveChip appends a revision for def with the given compiled code.
// Returns the revision and whether a new record was inserted.
//
// If the chip's latest revision has the same name, definition hash and
// code, no row is written and that revision is returned with
// inserted=false. Layout changes (positions, labels, colors) do not change
// the hash and are therefore not recorded on their own.
func (s *Store) SaveChip(ctx context.Context, def *ir.ChipDefinition, code string) (rev Revision, inserted bool, err error) {
	if def.ID == "" {
		return Revision{}, false, fmt.Errorf("save chip: empty chip id")
	}

	hash, err := ir.DefinitionHash(def)
	if err != nil {
		return Revision{}, false, fmt.Errorf("save chip %s: %w", def.ID, err)
	}
	doc, err := marshalDefinition(def)
	if err != nil {
		return Revision{}, false, fmt.Errorf("save chip %s: %w", def.ID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Revision{}, false, fmt.Errorf("save chip: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	latest, err := scanRevision(tx.QueryRowContext(ctx, `
		SELECT revision, chip_id, name, definition, definition_hash, code, seq
		FROM chip_revisions
		WHERE chip_id = ?
		ORDER BY seq DESC
		LIMIT 1
	`, def.ID))
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return Revision{}, false, fmt.Errorf("save chip %s: read latest: %w", def.ID, err)
	case latest.DefinitionHash == hash && latest.Code == code && latest.Name == def.Name:
		return latest, false, nil
	}

	var seq int64
	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) + 1 FROM chip_revisions
	`).Scan(&seq); err != nil {
		return Revision{}, false, fmt.Errorf("save chip %s: next seq: %w", def.ID, err)
	}

	rev = Revision{
		Revision:       s.ids.Generate(),
		ChipID:         def.ID,
		Name:           def.Name,
		DefinitionHash: hash,
		Code:           code,
		Seq:            seq,
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO chip_revisions
		(revision, chip_id, name, definition, definition_hash, code, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		rev.Revision,
		rev.ChipID,
		rev.Name,
		doc,
		rev.DefinitionHash,
		rev.Code,
		rev.Seq,
	); err != nil {
		return Revision{}, false, fmt.Errorf("save chip %s: %w", def.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return Revision{}, false, fmt.Errorf("save chip %s: commit: %w", def.ID, err)
	}

	rev.Definition, err = unmarshalDefinition(doc, code)
	if err != nil {
		return Revision{}, false, err
	}
	return rev, true, nil
}
