package core

import (
	"context"
	"log/slog"
	"time"
)

// DefaultHistoryLimit is the number of batches ImportHistory returns when no
// limit is given.
const DefaultHistoryLimit = 50

// recordTimeout bounds the history write made after an import finishes.
const recordTimeout = 5 * time.Second

// recordBatch writes one import history entry. A failure is logged and
// swallowed: the import itself already succeeded or failed on its own terms.
func (s *Service) recordBatch(ctx context.Context, r ImportResult, importErr error) {
	batch := ImportBatch{
		ID:        r.BatchID,
		Kind:      r.Kind,
		FileName:  r.FileName,
		Status:    ImportSucceeded,
		Valid:     r.Valid,
		Written:   r.Written,
		RowErrors: len(r.Errors),
		IPAddress: ClientFromContext(ctx).IP,
		CreatedAt: s.now().UTC(),
	}
	if importErr != nil {
		batch.Status = ImportFailed
		batch.Error = UserFacingMessage(importErr)
	}

	// The import context may already be cancelled or timed out.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	if err := s.store.RecordImport(ctx, batch); err != nil {
		slog.ErrorContext(ctx, "record import history failed",
			"batch_id", batch.ID,
			"error", err,
		)
	}
}

// ImportHistory returns the most recent import batches, newest first.
func (s *Service) ImportHistory(ctx context.Context, limit int) ([]ImportBatch, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.store.ListImports(ctx, limit)
}

// PurgeHistory deletes import batches older than retention.
func (s *Service) PurgeHistory(ctx context.Context, retention time.Duration) (int64, error) {
	return s.store.PurgeImports(ctx, s.now().Add(-retention).UTC())
}
