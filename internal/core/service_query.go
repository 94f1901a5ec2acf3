package core

import (
	"context"
	"fmt"
)

// DefaultTaskListLimit caps ListTasks when the filter sets no limit.
const DefaultTaskListLimit = 500

// MaxTaskListLimit is the largest limit ListTasks honours.
const MaxTaskListLimit = 5000

// ListTasks returns tasks matching f, newest first.
func (s *Service) ListTasks(ctx context.Context, f TaskFilter) ([]Task, error) {
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultTaskListLimit
	case f.Limit > MaxTaskListLimit:
		f.Limit = MaxTaskListLimit
	}
	return s.store.ListTasks(ctx, f)
}

// GetTask returns one task or an error wrapping ErrNotFound.
func (s *Service) GetTask(ctx context.Context, id string) (Task, error) {
	if id == "" {
		return Task{}, fmt.Errorf("%w: task id is required", ErrInvalidInput)
	}
	return s.store.GetTask(ctx, id)
}

// DashboardCounts holds task counts for every dashboard dimension.
type DashboardCounts struct {
	Total           int64   `json:"total"`
	ByCategory      []Count `json:"byCategory"`
	ByStatus        []Count `json:"byStatus"`
	ByPaymentStatus []Count `json:"byPaymentStatus"`
}

// Counts returns task counts grouped by category, status and payment status.
func (s *Service) Counts(ctx context.Context) (DashboardCounts, error) {
	var out DashboardCounts
	dims := []struct {
		dim  CountDimension
		dest *[]Count
	}{
		{CountByCategory, &out.ByCategory},
		{CountByStatus, &out.ByStatus},
		{CountByPaymentStatus, &out.ByPaymentStatus},
	}

	for _, d := range dims {
		counts, err := s.store.CountTasks(ctx, d.dim)
		if err != nil {
			return DashboardCounts{}, fmt.Errorf("count by %s: %w", d.dim, err)
		}
		*d.dest = counts
	}

	for _, c := range out.ByStatus {
		out.Total += c.Count
	}
	return out, nil
}

// ListReference returns the values of one reference list.
func (s *Service) ListReference(ctx context.Context, kind ReferenceKind) ([]ReferenceValue, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown reference list %q", ErrInvalidInput, kind)
	}
	return s.store.ListReference(ctx, kind)
}

// ListAssignees returns the assignee directory.
func (s *Service) ListAssignees(ctx context.Context) ([]AssigneeRow, error) {
	return s.store.ListAssignees(ctx)
}
