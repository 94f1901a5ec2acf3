package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// DefaultImportTimeout bounds one import from parse to the end of the bulk write.
const DefaultImportTimeout = 2 * time.Minute

// previewSampleSize is how many validated rows a preview returns.
const previewSampleSize = 5

// ErrInvalidInput is wrapped by validation failures outside file imports.
var ErrInvalidInput = errors.New("invalid input")

// ServiceOptions configures a Service. Zero values select the defaults.
type ServiceOptions struct {
	MaxConcurrentImports int
	ImportWait           time.Duration
	ImportTimeout        time.Duration
	MaxFileSize          int64

	// Policies overrides the registered header policy per import kind.
	Policies map[ImportKind]MatchPolicy

	// FillCaptainFromDirectory sets an imported task's empty captain to the
	// captain paired with its assignee in the assignee directory.
	FillCaptainFromDirectory bool
}

// Service runs imports and the task, reference and directory operations
// around them. It is safe for concurrent use.
type Service struct {
	store   Store
	limiter *ImportLimiter
	opts    ServiceOptions
	now     func() time.Time
}

// NewService creates a Service backed by store.
func NewService(store Store, opts ServiceOptions) *Service {
	if opts.ImportTimeout <= 0 {
		opts.ImportTimeout = DefaultImportTimeout
	}
	return &Service{
		store:   store,
		limiter: NewImportLimiter(opts.MaxConcurrentImports, opts.ImportWait),
		opts:    opts,
		now:     time.Now,
	}
}

// Store returns the underlying store.
func (s *Service) Store() Store {
	return s.store
}

// Limiter returns the import limiter, for status reporting and shutdown drain.
func (s *Service) Limiter() *ImportLimiter {
	return s.limiter
}

// ListImports returns display information about every registered import kind.
func (s *Service) ListImports() []ImportInfo {
	defs := All()
	infos := make([]ImportInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

// Policy returns the header policy used for def, after config overrides.
func (s *Service) Policy(def ImportDefinition) MatchPolicy {
	if p, ok := s.opts.Policies[def.Info.Kind]; ok {
		return p
	}
	return def.Policy
}

// Template returns the CSV template for kind and its download file name.
func (s *Service) Template(kind ImportKind) (string, string, error) {
	def, err := Lookup(kind)
	if err != nil {
		return "", "", err
	}
	return def.Template(), def.Info.TemplateFileName, nil
}

// Parse decodes an uploaded file and validates it. It never touches the store.
// The returned error covers decoding only; validation outcomes are on the
// ParsedFile.
func (s *Service) Parse(kind ImportKind, fileName string, data []byte) (ImportDefinition, ParsedFile, error) {
	def, err := Lookup(kind)
	if err != nil {
		return ImportDefinition{}, ParsedFile{}, err
	}
	if s.opts.MaxFileSize > 0 && int64(len(data)) > s.opts.MaxFileSize {
		return def, ParsedFile{}, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, s.opts.MaxFileSize)
	}
	format, err := DetectFormat(fileName)
	if err != nil {
		return def, ParsedFile{}, err
	}
	text, err := DecodeUpload(data, format)
	if err != nil {
		return def, ParsedFile{}, err
	}
	return def, def.Parse(text, s.Policy(def)), nil
}

// Preview validates a file and reports what Import would write.
func (s *Service) Preview(ctx context.Context, kind ImportKind, fileName string, data []byte) (PreviewResult, error) {
	_, parsed, err := s.Parse(kind, fileName, data)
	if err != nil {
		return PreviewResult{Kind: kind, FileName: fileName}, err
	}

	result := PreviewResult{
		Kind:           kind,
		FileName:       fileName,
		Valid:          parsed.Count,
		Errors:         parsed.Errors,
		MissingColumns: parsed.MissingColumns,
		Sample:         sampleRows(parsed, previewSampleSize),
	}
	if ferr := parsed.Err(); ferr != nil {
		result.Error = UserFacingMessage(ferr)
	}

	slog.DebugContext(ctx, "import previewed",
		"kind", kind,
		"file", fileName,
		"valid", parsed.Count,
		"row_errors", len(parsed.Errors),
	)
	return result, nil
}

// Import validates a file and writes every valid row with one bulk write.
//
// A structural failure or a file without valid rows performs no write. The
// returned ImportResult carries row errors even when err is non-nil, so the
// caller can show them alongside the failure. Every attempt that gets past
// the limiter is recorded in the import history.
func (s *Service) Import(ctx context.Context, kind ImportKind, fileName string, data []byte) (ImportResult, error) {
	start := s.now()
	result := ImportResult{
		BatchID:  uuid.New().String(),
		Kind:     kind,
		FileName: fileName,
	}

	if _, err := Lookup(kind); err != nil {
		return result, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return result, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.opts.ImportTimeout)
	defer cancel()

	def, parsed, err := s.Parse(kind, fileName, data)
	if err != nil {
		s.finish(ctx, &result, start, err)
		return result, err
	}

	result.Valid = parsed.Count
	result.Errors = parsed.Errors

	if err := parsed.Err(); err != nil {
		s.finish(ctx, &result, start, err)
		return result, err
	}

	if kind == KindTasks && s.opts.FillCaptainFromDirectory {
		if err := s.fillCaptains(ctx, parsed.Tasks()); err != nil {
			err = fmt.Errorf("load assignee directory: %w", err)
			s.finish(ctx, &result, start, err)
			return result, err
		}
	}

	written, err := def.Write(ctx, s.store, parsed)
	if err != nil {
		err = fmt.Errorf("write %s: %w", kind, err)
		s.finish(ctx, &result, start, err)
		return result, err
	}
	result.Written = written

	s.finish(ctx, &result, start, nil)
	return result, nil
}

// finish stamps the duration, logs the outcome and records the batch.
func (s *Service) finish(ctx context.Context, result *ImportResult, start time.Time, err error) {
	result.Duration = s.now().Sub(start)

	attrs := []any{
		"batch_id", result.BatchID,
		"kind", result.Kind,
		"file", result.FileName,
		"valid", result.Valid,
		"written", result.Written,
		"row_errors", len(result.Errors),
		"duration_ms", result.Duration.Milliseconds(),
	}
	if c := ClientFromContext(ctx); c.IP != "" || c.UserAgent != "" {
		attrs = append(attrs, "client_ip", c.IP, "user_agent", c.UserAgent)
	}
	if err != nil {
		slog.WarnContext(ctx, "import failed", append(attrs, "error", err)...)
	} else {
		slog.InfoContext(ctx, "import completed", attrs...)
	}

	s.recordBatch(ctx, *result, err)
}

// fillCaptains sets empty captain names from the assignee directory.
func (s *Service) fillCaptains(ctx context.Context, rows []TaskImportRow) error {
	pairs, err := s.store.ListAssignees(ctx)
	if err != nil {
		return err
	}
	captains := make(map[string]string, len(pairs))
	for _, p := range pairs {
		captains[p.AssigneeName] = p.CaptainName
	}
	for i := range rows {
		if rows[i].CaptainName != "" || rows[i].AssigneeName == "" {
			continue
		}
		rows[i].CaptainName = captains[rows[i].AssigneeName]
	}
	return nil
}

// sampleRows returns up to n rows of a parsed file.
func sampleRows(p ParsedFile, n int) any {
	switch rows := p.Rows.(type) {
	case []TaskImportRow:
		return rows[:min(n, len(rows))]
	case []AssigneeRow:
		return rows[:min(n, len(rows))]
	default:
		return nil
	}
}
