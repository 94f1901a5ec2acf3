// Package memory is an in-process core.Store. It backs tests and the CLI's
// dry runs; data is lost when the process exits.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/taskdesk/internal/core"
)

// Store keeps every record in maps guarded by one mutex.
type Store struct {
	mu        sync.RWMutex
	tasks     map[string]core.Task
	refs      map[core.ReferenceKind][]core.ReferenceValue
	assignees map[string]string
	imports   []core.ImportBatch

	// FailBulk, when set, is returned by BulkCreateTasks and UpsertAssignees.
	FailBulk error

	now func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		tasks:     make(map[string]core.Task),
		refs:      make(map[core.ReferenceKind][]core.ReferenceValue),
		assignees: make(map[string]string),
		now:       time.Now,
	}
}

var _ core.Store = (*Store)(nil)

func (s *Store) CreateTask(ctx context.Context, t core.TaskImportRow) (core.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(t), nil
}

func (s *Store) insertLocked(t core.TaskImportRow) core.Task {
	now := s.now().UTC()
	task := toTask(uuid.NewString(), t)
	task.CreatedAt, task.UpdatedAt = now, now
	s.tasks[task.ID] = task
	return task
}

func (s *Store) UpdateTask(ctx context.Context, id string, t core.TaskImportRow) (core.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.tasks[id]
	if !ok {
		return core.Task{}, core.ErrNotFound
	}
	task := toTask(id, t)
	task.CreatedAt = old.CreatedAt
	task.UpdatedAt = s.now().UTC()
	s.tasks[id] = task
	return task, nil
}

func (s *Store) GetTask(ctx context.Context, id string) (core.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return core.Task{}, core.ErrNotFound
	}
	return task, nil
}

func (s *Store) ListTasks(ctx context.Context, f core.TaskFilter) ([]core.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if matches(t, f) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func matches(t core.Task, f core.TaskFilter) bool {
	eq := func(want, got string) bool { return want == "" || want == got }
	return eq(f.Client, t.Client) &&
		eq(f.TaskCategory, t.TaskCategory) &&
		eq(f.SubCategory, t.SubCategory) &&
		eq(f.Status, t.Status) &&
		eq(f.PaymentStatus, t.PaymentStatus) &&
		eq(f.AssigneeName, t.AssigneeName) &&
		eq(f.CaptainName, t.CaptainName)
}

func (s *Store) DeleteTasks(ctx context.Context, ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, id := range ids {
		if _, ok := s.tasks[id]; ok {
			delete(s.tasks, id)
			n++
		}
	}
	return n, nil
}

// BulkCreateTasks inserts every row or none.
func (s *Store) BulkCreateTasks(ctx context.Context, rows []core.TaskImportRow) (int, error) {
	if s.FailBulk != nil {
		return 0, s.FailBulk
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.insertLocked(r)
	}
	return len(rows), nil
}

func (s *Store) CountTasks(ctx context.Context, dim core.CountDimension) ([]core.Count, error) {
	if _, ok := dim.Column(); !ok {
		return nil, fmt.Errorf("unknown count dimension %q", dim)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, t := range s.tasks {
		var key string
		switch dim {
		case core.CountByCategory:
			key = t.TaskCategory
		case core.CountByStatus:
			key = t.Status
		case core.CountByPaymentStatus:
			key = t.PaymentStatus
		}
		counts[key]++
	}

	out := make([]core.Count, 0, len(counts))
	for name, n := range counts {
		out = append(out, core.Count{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ListReference(ctx context.Context, kind core.ReferenceKind) ([]core.ReferenceValue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]core.ReferenceValue(nil), s.refs[kind]...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Parent != out[j].Parent {
			return out[i].Parent < out[j].Parent
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) CreateReference(ctx context.Context, v core.ReferenceValue) (core.ReferenceValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.refs[v.Kind] {
		if strings.EqualFold(existing.Name, v.Name) && strings.EqualFold(existing.Parent, v.Parent) {
			return core.ReferenceValue{}, fmt.Errorf("%s %q: %w", v.Kind, v.Name, core.ErrDuplicate)
		}
	}
	v.ID = uuid.NewString()
	s.refs[v.Kind] = append(s.refs[v.Kind], v)
	return v, nil
}

func (s *Store) ListAssignees(ctx context.Context) ([]core.AssigneeRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.AssigneeRow, 0, len(s.assignees))
	for a, c := range s.assignees {
		out = append(out, core.AssigneeRow{AssigneeName: a, CaptainName: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssigneeName < out[j].AssigneeName })
	return out, nil
}

func (s *Store) UpsertAssignees(ctx context.Context, pairs []core.AssigneeRow) (int, error) {
	if s.FailBulk != nil {
		return 0, s.FailBulk
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	written := make(map[string]struct{}, len(pairs))
	for _, p := range pairs {
		s.assignees[p.AssigneeName] = p.CaptainName
		written[p.AssigneeName] = struct{}{}
	}
	return len(written), nil
}

func (s *Store) DeleteAssignees(ctx context.Context, names []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, name := range names {
		if _, ok := s.assignees[name]; ok {
			delete(s.assignees, name)
			n++
		}
	}
	return n, nil
}

func (s *Store) RecordImport(ctx context.Context, b core.ImportBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imports = append(s.imports, b)
	return nil
}

func (s *Store) ListImports(ctx context.Context, limit int) ([]core.ImportBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.ImportBatch, 0, len(s.imports))
	for i := len(s.imports) - 1; i >= 0; i-- {
		out = append(out, s.imports[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) PurgeImports(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.imports[:0]
	var purged int64
	for _, b := range s.imports {
		if b.CreatedAt.Before(before) {
			purged++
			continue
		}
		kept = append(kept, b)
	}
	s.imports = kept
	return purged, nil
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close() {}

func toTask(id string, t core.TaskImportRow) core.Task {
	return core.Task{
		ID:                id,
		Client:            t.Client,
		TaskCategory:      t.TaskCategory,
		SubCategory:       t.SubCategory,
		Status:            t.Status,
		PaymentStatus:     t.PaymentStatus,
		AssigneeName:      t.AssigneeName,
		CaptainName:       t.CaptainName,
		Comment:           t.Comment,
		DueDate:           t.DueDate,
		AssignmentDate:    t.AssignmentDate,
		CompletionDate:    t.CompletionDate,
		Bill:              t.Bill,
		AdvanceReceived:   t.AdvanceReceived,
		OutstandingAmount: t.OutstandingAmount,
	}
}
