package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/taskdesk/internal/core"
)

func (s *Store) ListAssignees(ctx context.Context) ([]core.AssigneeRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT assignee_name, captain_name FROM assignees ORDER BY assignee_name`)
	if err != nil {
		return nil, mapError(err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.AssigneeRow, error) {
		var a core.AssigneeRow
		err := row.Scan(&a.AssigneeName, &a.CaptainName)
		return a, err
	})
	return out, mapError(err)
}

// UpsertAssignees writes all pairs in one statement. ON CONFLICT cannot touch
// the same row twice, so repeated names are collapsed first with the last
// pair winning.
func (s *Store) UpsertAssignees(ctx context.Context, pairs []core.AssigneeRow) (int, error) {
	names, captains := collapsePairs(pairs)
	if len(names) == 0 {
		return 0, nil
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO assignees (assignee_name, captain_name)
		SELECT * FROM unnest($1::text[], $2::text[])
		ON CONFLICT (assignee_name) DO UPDATE
		SET captain_name = EXCLUDED.captain_name, updated_at = now()`,
		names, captains)
	if err != nil {
		return 0, mapError(err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *Store) DeleteAssignees(ctx context.Context, names []string) (int, error) {
	if len(names) == 0 {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM assignees WHERE assignee_name = ANY($1)`, names)
	if err != nil {
		return 0, mapError(err)
	}
	return int(tag.RowsAffected()), nil
}

// collapsePairs keeps first-seen order and last-seen captain per assignee.
func collapsePairs(pairs []core.AssigneeRow) (names, captains []string) {
	index := make(map[string]int, len(pairs))
	for _, p := range pairs {
		if i, ok := index[p.AssigneeName]; ok {
			captains[i] = p.CaptainName
			continue
		}
		index[p.AssigneeName] = len(names)
		names = append(names, p.AssigneeName)
		captains = append(captains, p.CaptainName)
	}
	return names, captains
}
