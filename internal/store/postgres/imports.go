package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/taskdesk/internal/core"
)

func (s *Store) RecordImport(ctx context.Context, b core.ImportBatch) error {
	id, ok := parseID(b.ID)
	if !ok {
		id = newID()
	}
	createdAt := b.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO import_batches
			(id, kind, file_name, status, valid_rows, written_rows, row_errors, error, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id, string(b.Kind), b.FileName, string(b.Status), b.Valid, b.Written, b.RowErrors,
		text(b.Error), text(b.IPAddress), createdAt)
	return mapError(err)
}

func (s *Store) ListImports(ctx context.Context, limit int) ([]core.ImportBatch, error) {
	query := `
		SELECT id::text, kind, file_name, status, valid_rows, written_rows, row_errors,
			error, ip_address, created_at
		FROM import_batches
		ORDER BY created_at DESC, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.ImportBatch, error) {
		var (
			b            core.ImportBatch
			kind, status string
			errText, ip  pgtype.Text
		)
		err := row.Scan(&b.ID, &kind, &b.FileName, &status, &b.Valid, &b.Written, &b.RowErrors,
			&errText, &ip, &b.CreatedAt)
		b.Kind = core.ImportKind(kind)
		b.Status = core.ImportStatus(status)
		b.Error = errText.String
		b.IPAddress = ip.String
		return b, err
	})
	return out, mapError(err)
}

func (s *Store) PurgeImports(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM import_batches WHERE created_at < $1`, before)
	if err != nil {
		return 0, mapError(err)
	}
	return tag.RowsAffected(), nil
}
