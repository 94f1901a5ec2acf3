package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// MaxBulkDelete caps the ids or names accepted by one delete call.
const MaxBulkDelete = 1000

// CreateTask validates t, applies the import defaults and stores it.
func (s *Service) CreateTask(ctx context.Context, t TaskImportRow) (Task, error) {
	t, err := prepareTask(t)
	if err != nil {
		return Task{}, err
	}
	task, err := s.store.CreateTask(ctx, t)
	if err != nil {
		return Task{}, fmt.Errorf("create task: %w", err)
	}
	slog.InfoContext(ctx, "task created", "task_id", task.ID, "client", task.Client)
	return task, nil
}

// UpdateTask replaces every field of task id with t.
func (s *Service) UpdateTask(ctx context.Context, id string, t TaskImportRow) (Task, error) {
	if id == "" {
		return Task{}, fmt.Errorf("%w: task id is required", ErrInvalidInput)
	}
	t, err := prepareTask(t)
	if err != nil {
		return Task{}, err
	}
	task, err := s.store.UpdateTask(ctx, id, t)
	if err != nil {
		return Task{}, fmt.Errorf("update task %s: %w", id, err)
	}
	slog.InfoContext(ctx, "task updated", "task_id", id)
	return task, nil
}

// DeleteTasks deletes the given tasks and returns how many existed.
func (s *Service) DeleteTasks(ctx context.Context, ids []string) (int, error) {
	ids = compactNames(ids)
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: no task ids given", ErrInvalidInput)
	}
	if len(ids) > MaxBulkDelete {
		return 0, fmt.Errorf("%w: at most %d tasks per delete", ErrInvalidInput, MaxBulkDelete)
	}
	n, err := s.store.DeleteTasks(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("delete tasks: %w", err)
	}
	slog.InfoContext(ctx, "tasks deleted", "requested", len(ids), "deleted", n)
	return n, nil
}

// CreateReference adds a value to a reference list. Sub-categories must name
// their parent category.
func (s *Service) CreateReference(ctx context.Context, v ReferenceValue) (ReferenceValue, error) {
	v.Name = strings.TrimSpace(v.Name)
	v.Parent = strings.TrimSpace(v.Parent)

	switch {
	case !v.Kind.Valid():
		return ReferenceValue{}, fmt.Errorf("%w: unknown reference list %q", ErrInvalidInput, v.Kind)
	case v.Name == "":
		return ReferenceValue{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	case v.Kind == RefSubCategory && v.Parent == "":
		return ReferenceValue{}, fmt.Errorf("%w: sub-category needs a parent category", ErrInvalidInput)
	case v.Kind != RefSubCategory:
		v.Parent = ""
	}

	created, err := s.store.CreateReference(ctx, v)
	if err != nil {
		return ReferenceValue{}, fmt.Errorf("create %s: %w", v.Kind, err)
	}
	return created, nil
}

// SetCaptain adds or replaces one assignee/captain pair.
func (s *Service) SetCaptain(ctx context.Context, assignee, captain string) error {
	pair := AssigneeRow{
		AssigneeName: strings.TrimSpace(assignee),
		CaptainName:  strings.TrimSpace(captain),
	}
	if pair.AssigneeName == "" || pair.CaptainName == "" {
		return fmt.Errorf("%w: assignee and captain names are required", ErrInvalidInput)
	}
	if _, err := s.store.UpsertAssignees(ctx, []AssigneeRow{pair}); err != nil {
		return fmt.Errorf("set captain for %s: %w", pair.AssigneeName, err)
	}
	return nil
}

// DeleteAssignees removes assignees from the directory.
func (s *Service) DeleteAssignees(ctx context.Context, names []string) (int, error) {
	names = compactNames(names)
	if len(names) == 0 {
		return 0, fmt.Errorf("%w: no assignee names given", ErrInvalidInput)
	}
	if len(names) > MaxBulkDelete {
		return 0, fmt.Errorf("%w: at most %d assignees per delete", ErrInvalidInput, MaxBulkDelete)
	}
	n, err := s.store.DeleteAssignees(ctx, names)
	if err != nil {
		return 0, fmt.Errorf("delete assignees: %w", err)
	}
	slog.InfoContext(ctx, "assignees deleted", "requested", len(names), "deleted", n)
	return n, nil
}

// prepareTask trims t, checks the three required fields and applies defaults.
func prepareTask(t TaskImportRow) (TaskImportRow, error) {
	t.Client = strings.TrimSpace(t.Client)
	t.TaskCategory = strings.TrimSpace(t.TaskCategory)
	t.SubCategory = strings.TrimSpace(t.SubCategory)
	t.Status = strings.TrimSpace(t.Status)
	t.PaymentStatus = strings.TrimSpace(t.PaymentStatus)
	t.AssigneeName = strings.TrimSpace(t.AssigneeName)
	t.CaptainName = strings.TrimSpace(t.CaptainName)

	var missing []string
	if t.Client == "" {
		missing = append(missing, "client")
	}
	if t.TaskCategory == "" {
		missing = append(missing, "task category")
	}
	if t.SubCategory == "" {
		missing = append(missing, "sub category")
	}
	if len(missing) > 0 {
		return t, fmt.Errorf("%w: %s required", ErrInvalidInput, strings.Join(missing, ", "))
	}
	if t.Bill < 0 || t.AdvanceReceived < 0 || t.OutstandingAmount < 0 {
		return t, fmt.Errorf("%w: amounts cannot be negative", ErrInvalidInput)
	}
	return NewTaskRow(t), nil
}

// compactNames trims, drops empties and de-duplicates, keeping first-seen order.
func compactNames(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
