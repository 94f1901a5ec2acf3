package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/taskdesk/internal/core"
)

func (s *Store) ListReference(ctx context.Context, kind core.ReferenceKind) ([]core.ReferenceValue, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, kind, name, parent
		FROM reference_values
		WHERE kind = $1
		ORDER BY parent, name`, string(kind))
	if err != nil {
		return nil, mapError(err)
	}
	values, err := pgx.CollectRows(rows, scanReference)
	return values, mapError(err)
}

func (s *Store) CreateReference(ctx context.Context, v core.ReferenceValue) (core.ReferenceValue, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO reference_values (id, kind, name, parent)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text, kind, name, parent`,
		newID(), string(v.Kind), v.Name, v.Parent)

	created, err := scanReference(row)
	if err != nil {
		return core.ReferenceValue{}, fmt.Errorf("%s %q: %w", v.Kind, v.Name, mapError(err))
	}
	return created, nil
}

func scanReference(row pgx.CollectableRow) (core.ReferenceValue, error) {
	var (
		v    core.ReferenceValue
		kind string
	)
	err := row.Scan(&v.ID, &kind, &v.Name, &v.Parent)
	v.Kind = core.ReferenceKind(kind)
	return v, err
}
