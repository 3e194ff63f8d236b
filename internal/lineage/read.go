package lineage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"studygen/internal/canon"
	"studygen/internal/study"
)

// LoadStudy reads the lineage record for a study name. Returns (nil, nil)
// when no lineage exists - a first generation run, not an error.
//
// The record is verified on the way in: every stored set's values must
// re-hash to the stored content hash. A mismatch means the record was
// edited or damaged and surfaces as a SerializationError rather than
// silently seeding the merge with wrong identities.
func (s *Store) LoadStudy(ctx context.Context, name string) (*study.Study, error) {
	st := &study.Study{Name: name}

	err := s.db.QueryRowContext(ctx, `
		SELECT strategy, schema_hash FROM studies WHERE name = ?
	`, name).Scan(&st.Strategy, &st.SchemaHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &SerializationError{Study: name, Message: "reading study row", Err: err}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT content_hash, ordinal, values_json
		FROM parameter_sets
		WHERE study = ? AND retired = 0
		ORDER BY ordinal
	`, name)
	if err != nil {
		return nil, &SerializationError{Study: name, Message: "reading parameter sets", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var set study.ParameterSet
		var valuesJSON string
		if err := rows.Scan(&set.Hash, &set.Ordinal, &valuesJSON); err != nil {
			return nil, &SerializationError{Study: name, Message: "scanning parameter set", Err: err}
		}

		if err := json.Unmarshal([]byte(valuesJSON), &set.Values); err != nil {
			return nil, &SerializationError{Study: name,
				Message: fmt.Sprintf("set %s has undecodable values", set.Name()), Err: err}
		}

		recomputed, err := canon.SetHash(set.Values)
		if err != nil {
			return nil, &SerializationError{Study: name,
				Message: fmt.Sprintf("set %s values cannot be rehashed", set.Name()), Err: err}
		}
		if recomputed != set.Hash {
			return nil, &SerializationError{Study: name,
				Message: fmt.Sprintf("set %s stored hash does not match its values", set.Name())}
		}

		st.Sets = append(st.Sets, set)
	}
	if err := rows.Err(); err != nil {
		return nil, &SerializationError{Study: name, Message: "iterating parameter sets", Err: err}
	}

	return st, nil
}

// SchemaCanonical returns the canonical schema rendering recorded for a
// study, or nil when the study has no lineage.
func (s *Store) SchemaCanonical(ctx context.Context, name string) ([]byte, error) {
	var c string
	err := s.db.QueryRowContext(ctx, `
		SELECT schema_canonical FROM studies WHERE name = ?
	`, name).Scan(&c)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &SerializationError{Study: name, Message: "reading schema canonical", Err: err}
	}
	return []byte(c), nil
}

// ListRetired returns the retired sets for a study in ordinal order. These
// are the sets whose build artifacts the caller may want to prune; the
// store itself never deletes them.
func (s *Store) ListRetired(ctx context.Context, name string) ([]study.ParameterSet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT content_hash, ordinal, values_json
		FROM parameter_sets
		WHERE study = ? AND retired = 1
		ORDER BY ordinal
	`, name)
	if err != nil {
		return nil, &SerializationError{Study: name, Message: "reading retired sets", Err: err}
	}
	defer rows.Close()

	var retired []study.ParameterSet
	for rows.Next() {
		var set study.ParameterSet
		var valuesJSON string
		if err := rows.Scan(&set.Hash, &set.Ordinal, &valuesJSON); err != nil {
			return nil, &SerializationError{Study: name, Message: "scanning retired set", Err: err}
		}
		if err := json.Unmarshal([]byte(valuesJSON), &set.Values); err != nil {
			return nil, &SerializationError{Study: name,
				Message: fmt.Sprintf("retired set %s has undecodable values", set.Name()), Err: err}
		}
		retired = append(retired, set)
	}
	if err := rows.Err(); err != nil {
		return nil, &SerializationError{Study: name, Message: "iterating retired sets", Err: err}
	}
	return retired, nil
}

// ListStudies returns all study names in the store, sorted.
func (s *Store) ListStudies(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM studies ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list studies: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list studies: scan: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
