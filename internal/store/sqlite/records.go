package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/taskdesk/internal/core"
)

func (s *Store) ListReference(ctx context.Context, kind core.ReferenceKind) ([]core.ReferenceValue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, name, parent FROM reference_values
		WHERE kind = ?1
		ORDER BY parent, name`, string(kind))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []core.ReferenceValue
	for rows.Next() {
		var (
			v core.ReferenceValue
			k string
		)
		if err := rows.Scan(&v.ID, &k, &v.Name, &v.Parent); err != nil {
			return nil, err
		}
		v.Kind = core.ReferenceKind(k)
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) CreateReference(ctx context.Context, v core.ReferenceValue) (core.ReferenceValue, error) {
	v.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reference_values (id, kind, name, parent) VALUES (?1, ?2, ?3, ?4)`,
		v.ID, string(v.Kind), v.Name, v.Parent)
	if err != nil {
		return core.ReferenceValue{}, fmt.Errorf("%s %q: %w", v.Kind, v.Name, mapError(err))
	}
	return v, nil
}

func (s *Store) ListAssignees(ctx context.Context) ([]core.AssigneeRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT assignee_name, captain_name FROM assignees ORDER BY assignee_name`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []core.AssigneeRow
	for rows.Next() {
		var a core.AssigneeRow
		if err := rows.Scan(&a.AssigneeName, &a.CaptainName); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpsertAssignees applies pairs in order inside one transaction, so a repeated
// assignee ends up with the captain from its last pair.
func (s *Store) UpsertAssignees(ctx context.Context, pairs []core.AssigneeRow) (int, error) {
	if len(pairs) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO assignees (assignee_name, captain_name, updated_at_unixms)
		VALUES (?1, ?2, ?3)
		ON CONFLICT(assignee_name) DO UPDATE
		SET captain_name = excluded.captain_name, updated_at_unixms = excluded.updated_at_unixms`)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := nowMS()
	written := make(map[string]struct{}, len(pairs))
	for _, p := range pairs {
		if _, err := stmt.ExecContext(ctx, p.AssigneeName, p.CaptainName, now); err != nil {
			return 0, fmt.Errorf("upsert %q: %w", p.AssigneeName, mapError(err))
		}
		written[p.AssigneeName] = struct{}{}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(written), nil
}

func (s *Store) DeleteAssignees(ctx context.Context, names []string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var n int64
	for _, name := range names {
		res, err := tx.ExecContext(ctx, `DELETE FROM assignees WHERE assignee_name = ?1`, name)
		if err != nil {
			return 0, mapError(err)
		}
		affected, _ := res.RowsAffected()
		n += affected
	}
	return int(n), tx.Commit()
}

func (s *Store) RecordImport(ctx context.Context, b core.ImportBatch) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	created := b.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO import_batches
			(id, kind, file_name, status, valid_rows, written_rows, row_errors, error, ip_address, created_at_unixms)
		VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?7, ?8, ?9, ?10)`,
		b.ID, string(b.Kind), b.FileName, string(b.Status), b.Valid, b.Written, b.RowErrors,
		nullString(b.Error), nullString(b.IPAddress), created.UnixMilli())
	return mapError(err)
}

func (s *Store) ListImports(ctx context.Context, limit int) ([]core.ImportBatch, error) {
	query := `
		SELECT id, kind, file_name, status, valid_rows, written_rows, row_errors,
			error, ip_address, created_at_unixms
		FROM import_batches
		ORDER BY created_at_unixms DESC, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?1`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []core.ImportBatch
	for rows.Next() {
		var (
			b            core.ImportBatch
			kind, status string
			errText, ip  sql.NullString
			created      int64
		)
		if err := rows.Scan(&b.ID, &kind, &b.FileName, &status, &b.Valid, &b.Written, &b.RowErrors,
			&errText, &ip, &created); err != nil {
			return nil, err
		}
		b.Kind = core.ImportKind(kind)
		b.Status = core.ImportStatus(status)
		b.Error = errText.String
		b.IPAddress = ip.String
		b.CreatedAt = fromUnixMS(created)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) PurgeImports(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM import_batches WHERE created_at_unixms < ?1`, before.UnixMilli())
	if err != nil {
		return 0, mapError(err)
	}
	return res.RowsAffected()
}
