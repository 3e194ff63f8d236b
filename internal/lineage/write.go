package lineage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"studygen/internal/canon"
	"studygen/internal/study"
)

// SaveStudy rewrites the lineage record for a merged study in a single
// transaction, together with the merge's removed sets, which are retired
// in place. The whole rewrite commits atomically: a crash mid-save leaves
// the previous lineage intact.
//
// Every save stamps a fresh run id so independent regenerations are
// distinguishable in the record.
func (s *Store) SaveStudy(ctx context.Context, st *study.Study, schemaCanonical []byte, removed []study.ParameterSet) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save study: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	runID := uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO studies (name, strategy, schema_hash, schema_canonical, run_id)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			strategy = excluded.strategy,
			schema_hash = excluded.schema_hash,
			schema_canonical = excluded.schema_canonical,
			run_id = excluded.run_id,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
	`, st.Name, st.Strategy, st.SchemaHash, string(schemaCanonical), runID)
	if err != nil {
		return fmt.Errorf("save study: upsert study row: %w", err)
	}

	// Retire everything first; live sets are revived below. A hash that
	// reappears after being retired in an earlier run comes back with its
	// newly assigned ordinal.
	_, err = tx.ExecContext(ctx, `UPDATE parameter_sets SET retired = 1 WHERE study = ?`, st.Name)
	if err != nil {
		return fmt.Errorf("save study: retire sets: %w", err)
	}

	for _, set := range st.Sets {
		valuesJSON, err := canon.MarshalCanonical(set.Values)
		if err != nil {
			return fmt.Errorf("save study: marshal set %s: %w", set.Name(), err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO parameter_sets (study, content_hash, ordinal, set_name, values_json, retired)
			VALUES (?, ?, ?, ?, ?, 0)
			ON CONFLICT(study, content_hash) DO UPDATE SET
				ordinal = excluded.ordinal,
				set_name = excluded.set_name,
				values_json = excluded.values_json,
				retired = 0
		`, st.Name, set.Hash, set.Ordinal, set.Name(), string(valuesJSON))
		if err != nil {
			return fmt.Errorf("save study: insert set %s: %w", set.Name(), err)
		}
	}

	// Removed sets were already retired by the blanket update; this keeps
	// their recorded ordinal and name current in case the merge carried
	// sets the store had never seen (e.g. an imported lineage).
	for _, set := range removed {
		valuesJSON, err := canon.MarshalCanonical(set.Values)
		if err != nil {
			return fmt.Errorf("save study: marshal removed set %s: %w", set.Name(), err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO parameter_sets (study, content_hash, ordinal, set_name, values_json, retired)
			VALUES (?, ?, ?, ?, ?, 1)
			ON CONFLICT(study, content_hash) DO UPDATE SET retired = 1
		`, st.Name, set.Hash, set.Ordinal, set.Name(), string(valuesJSON))
		if err != nil {
			return fmt.Errorf("save study: retire removed set %s: %w", set.Name(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save study: commit: %w", err)
	}
	return nil
}

// DeleteStudy removes a study's lineage entirely, including retired sets.
// This is the explicit discard operation behind strategy changes; it is
// never called implicitly.
func (s *Store) DeleteStudy(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete study: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM parameter_sets WHERE study = ?`, name); err != nil {
		return fmt.Errorf("delete study: delete sets: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM studies WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete study: delete study row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete study: commit: %w", err)
	}
	return nil
}
