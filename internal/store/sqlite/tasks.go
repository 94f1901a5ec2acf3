package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/JonMunkholm/taskdesk/internal/core"
	"github.com/JonMunkholm/taskdesk/internal/store/sqlbuild"
)

const selectTaskColumns = `id, client, task_category, sub_category, status, payment_status,
	assignee_name, captain_name, comment, due_date, assignment_date, completion_date,
	bill, advance_received, outstanding_amount, created_at_unixms, updated_at_unixms`

const insertTask = `INSERT INTO tasks (id, client, task_category, sub_category, status, payment_status,
	assignee_name, captain_name, comment, due_date, assignment_date, completion_date,
	bill, advance_received, outstanding_amount, created_at_unixms, updated_at_unixms)
	VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?7, ?8, ?9, ?10, ?11, ?12, ?13, ?14, ?15, ?16, ?16)`

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (core.Task, error) {
	var (
		t                       core.Task
		due, assigned, complete string
		created, updated        int64
	)
	err := row.Scan(
		&t.ID, &t.Client, &t.TaskCategory, &t.SubCategory, &t.Status, &t.PaymentStatus,
		&t.AssigneeName, &t.CaptainName, &t.Comment, &due, &assigned, &complete,
		&t.Bill, &t.AdvanceReceived, &t.OutstandingAmount, &created, &updated,
	)
	if err != nil {
		return core.Task{}, err
	}
	t.DueDate = parseDate(due)
	t.AssignmentDate = parseDate(assigned)
	t.CompletionDate = parseDate(complete)
	t.CreatedAt = fromUnixMS(created)
	t.UpdatedAt = fromUnixMS(updated)
	return t, nil
}

func taskArgs(id string, t core.TaskImportRow, atMS int64) []any {
	return []any{
		id, t.Client, t.TaskCategory, t.SubCategory, t.Status, t.PaymentStatus,
		t.AssigneeName, t.CaptainName, t.Comment,
		formatDate(t.DueDate), formatDate(t.AssignmentDate), formatDate(t.CompletionDate),
		t.Bill, t.AdvanceReceived, t.OutstandingAmount, atMS,
	}
}

func (s *Store) CreateTask(ctx context.Context, t core.TaskImportRow) (core.Task, error) {
	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx, insertTask, taskArgs(id, t, nowMS())...); err != nil {
		return core.Task{}, mapError(err)
	}
	return s.GetTask(ctx, id)
}

func (s *Store) UpdateTask(ctx context.Context, id string, t core.TaskImportRow) (core.Task, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET
			client = ?2, task_category = ?3, sub_category = ?4, status = ?5, payment_status = ?6,
			assignee_name = ?7, captain_name = ?8, comment = ?9,
			due_date = ?10, assignment_date = ?11, completion_date = ?12,
			bill = ?13, advance_received = ?14, outstanding_amount = ?15,
			updated_at_unixms = ?16
		WHERE id = ?1`, taskArgs(id, t, nowMS())...)
	if err != nil {
		return core.Task{}, mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Task{}, core.ErrNotFound
	}
	return s.GetTask(ctx, id)
}

func (s *Store) GetTask(ctx context.Context, id string) (core.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectTaskColumns+` FROM tasks WHERE id = ?1`, id)
	task, err := scanTask(row)
	return task, mapError(err)
}

func (s *Store) ListTasks(ctx context.Context, f core.TaskFilter) ([]core.Task, error) {
	wb := sqlbuild.NewWhereBuilder(sqlbuild.Numbered).AddTaskFilter(f)
	where, _ := wb.Build()
	query := `SELECT ` + selectTaskColumns + ` FROM tasks` + where +
		` ORDER BY created_at_unixms DESC, id`
	if f.Limit > 0 {
		query += ` LIMIT ` + wb.Placeholder(f.Limit)
	}
	_, args := wb.Build()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []core.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) DeleteTasks(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	ph := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		ph[i] = sqlbuild.Numbered(i + 1)
		args[i] = id
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id IN (`+strings.Join(ph, ", ")+`)`, args...)
	if err != nil {
		return 0, mapError(err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// BulkCreateTasks inserts all rows in one transaction with a prepared
// statement. Any failure rolls the whole batch back.
func (s *Store) BulkCreateTasks(ctx context.Context, rows []core.TaskImportRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertTask)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := nowMS()
	for i, r := range rows {
		if _, err := stmt.ExecContext(ctx, taskArgs(uuid.NewString(), r, now)...); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i+1, mapError(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(rows), nil
}

func (s *Store) CountTasks(ctx context.Context, dim core.CountDimension) ([]core.Count, error) {
	col, ok := dim.Column()
	if !ok {
		return nil, fmt.Errorf("unknown count dimension %q", dim)
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s, count(*) FROM tasks GROUP BY %s ORDER BY %s`, col, col, col))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []core.Count
	for rows.Next() {
		var c core.Count
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
