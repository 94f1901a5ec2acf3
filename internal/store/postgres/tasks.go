package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/taskdesk/internal/core"
	"github.com/JonMunkholm/taskdesk/internal/store/sqlbuild"
)

const selectTaskColumns = `id::text, client, task_category, sub_category, status, payment_status,
	assignee_name, captain_name, comment, due_date, assignment_date, completion_date,
	bill, advance_received, outstanding_amount, created_at, updated_at`

// copyColumns is the column order used by BulkCreateTasks.
var copyColumns = []string{
	"id", "client", "task_category", "sub_category", "status", "payment_status",
	"assignee_name", "captain_name", "comment", "due_date", "assignment_date", "completion_date",
	"bill", "advance_received", "outstanding_amount",
}

func scanTask(row pgx.Row) (core.Task, error) {
	var t core.Task
	err := row.Scan(
		&t.ID, &t.Client, &t.TaskCategory, &t.SubCategory, &t.Status, &t.PaymentStatus,
		&t.AssigneeName, &t.CaptainName, &t.Comment, &t.DueDate, &t.AssignmentDate, &t.CompletionDate,
		&t.Bill, &t.AdvanceReceived, &t.OutstandingAmount, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func taskValues(t core.TaskImportRow) []any {
	return []any{
		t.Client, t.TaskCategory, t.SubCategory, t.Status, t.PaymentStatus,
		t.AssigneeName, t.CaptainName, t.Comment, t.DueDate, t.AssignmentDate, t.CompletionDate,
		t.Bill, t.AdvanceReceived, t.OutstandingAmount,
	}
}

func (s *Store) CreateTask(ctx context.Context, t core.TaskImportRow) (core.Task, error) {
	args := append([]any{newID()}, taskValues(t)...)
	row := s.pool.QueryRow(ctx, `
		INSERT INTO tasks (id, client, task_category, sub_category, status, payment_status,
			assignee_name, captain_name, comment, due_date, assignment_date, completion_date,
			bill, advance_received, outstanding_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING `+selectTaskColumns, args...)

	task, err := scanTask(row)
	return task, mapError(err)
}

func (s *Store) UpdateTask(ctx context.Context, id string, t core.TaskImportRow) (core.Task, error) {
	uid, ok := parseID(id)
	if !ok {
		return core.Task{}, core.ErrNotFound
	}
	args := append([]any{uid}, taskValues(t)...)
	row := s.pool.QueryRow(ctx, `
		UPDATE tasks SET
			client = $2, task_category = $3, sub_category = $4, status = $5, payment_status = $6,
			assignee_name = $7, captain_name = $8, comment = $9,
			due_date = $10, assignment_date = $11, completion_date = $12,
			bill = $13, advance_received = $14, outstanding_amount = $15,
			updated_at = now()
		WHERE id = $1
		RETURNING `+selectTaskColumns, args...)

	task, err := scanTask(row)
	return task, mapError(err)
}

func (s *Store) GetTask(ctx context.Context, id string) (core.Task, error) {
	uid, ok := parseID(id)
	if !ok {
		return core.Task{}, core.ErrNotFound
	}
	row := s.pool.QueryRow(ctx, `SELECT `+selectTaskColumns+` FROM tasks WHERE id = $1`, uid)
	task, err := scanTask(row)
	return task, mapError(err)
}

func (s *Store) ListTasks(ctx context.Context, f core.TaskFilter) ([]core.Task, error) {
	wb := sqlbuild.NewWhereBuilder(sqlbuild.Dollar).AddTaskFilter(f)
	where, _ := wb.Build()
	query := `SELECT ` + selectTaskColumns + ` FROM tasks` + where + ` ORDER BY created_at DESC, id`
	if f.Limit > 0 {
		query += ` LIMIT ` + wb.Placeholder(f.Limit)
	}
	_, args := wb.Build()

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	tasks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Task, error) {
		return scanTask(row)
	})
	return tasks, mapError(err)
}

func (s *Store) DeleteTasks(ctx context.Context, ids []string) (int, error) {
	uids := make([]pgtype.UUID, 0, len(ids))
	for _, id := range ids {
		if uid, ok := parseID(id); ok {
			uids = append(uids, uid)
		}
	}
	if len(uids) == 0 {
		return 0, nil
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = ANY($1)`, uids)
	if err != nil {
		return 0, mapError(err)
	}
	return int(tag.RowsAffected()), nil
}

// BulkCreateTasks streams every row with COPY inside one transaction, so a
// failure leaves no partial batch behind.
func (s *Store) BulkCreateTasks(ctx context.Context, rows []core.TaskImportRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"tasks"}, copyColumns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			return append([]any{newID()}, taskValues(rows[i])...), nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy tasks: %w", mapError(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return int(n), nil
}

func (s *Store) CountTasks(ctx context.Context, dim core.CountDimension) ([]core.Count, error) {
	col, ok := dim.Column()
	if !ok {
		return nil, fmt.Errorf("unknown count dimension %q", dim)
	}

	rows, err := s.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s, count(*) FROM tasks GROUP BY %s ORDER BY %s`, col, col, col))
	if err != nil {
		return nil, mapError(err)
	}
	counts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Count, error) {
		var c core.Count
		err := row.Scan(&c.Name, &c.Count)
		return c, err
	})
	return counts, mapError(err)
}
