package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/DataSweeper/internal/codec"
	"github.com/JonMunkholm/DataSweeper/internal/config"
	"github.com/JonMunkholm/DataSweeper/internal/logging"
	"github.com/JonMunkholm/DataSweeper/internal/metrics"
	"github.com/JonMunkholm/DataSweeper/internal/table"
)

var (
	// ErrNoFiles is returned by IngestBatch for an empty batch.
	ErrNoFiles = errors.New("no file provided")

	// ErrTooManyFiles is returned when a batch exceeds the configured limit.
	ErrTooManyFiles = errors.New("too many files in batch")

	// ErrInvalidRequest marks malformed input from a transport, such as a
	// failed form parse or request validation.
	ErrInvalidRequest = errors.New("invalid request")
)

// Service owns the per-file sessions and runs the table pipeline on them.
// It is safe for concurrent use: actions on one session are serialized,
// sessions are independent of each other.
type Service struct {
	limiter  *IngestLimiter
	sessions *sessionStore
	metrics  *metrics.Metrics

	maxFiles        int
	previewRows     int
	chartSeries     int
	fillPolicy      table.FillPolicy
	cleanupInterval time.Duration
}

// NewService creates a Service from cfg. m may be nil.
func NewService(cfg *config.Config, m *metrics.Metrics) *Service {
	// Validate has already rejected unknown policies.
	policy, err := table.ParseFillPolicy(cfg.Pipeline.FillPolicy)
	if err != nil {
		policy = table.FillPolicyLeave
	}

	return &Service{
		limiter:         NewIngestLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		sessions:        newSessionStore(cfg.Session.MaxSessions, cfg.Session.TTL),
		metrics:         m,
		maxFiles:        cfg.Upload.MaxFiles,
		previewRows:     cfg.Pipeline.PreviewRows,
		chartSeries:     cfg.Pipeline.ChartSeries,
		fillPolicy:      policy,
		cleanupInterval: cfg.Session.CleanupInterval,
	}
}

// Upload is one file of a batch. Open is called once, while a parse slot is held.
type Upload struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// IngestResult is the outcome for one file of a batch. Exactly one of
// Snapshot and Err is set; Err is a *UserError.
type IngestResult struct {
	FileName string    `json:"file_name"`
	Snapshot *Snapshot `json:"snapshot,omitempty"`
	Err      error     `json:"-"`
}

// Snapshot is a read-only view of a session.
type Snapshot struct {
	ID        string             `json:"id"`
	FileName  string             `json:"file_name"`
	Format    codec.Format       `json:"format"`
	CreatedAt time.Time          `json:"created_at"`
	Columns   []table.ColumnInfo `json:"columns"`  // every column of the cleaned table
	Selected  []string           `json:"selected"` // projected columns, in order
	Rows      int                `json:"rows"`
	Preview   table.Preview      `json:"preview"` // head of the projected table
	Steps     []Step             `json:"steps"`
}

// IngestBatch parses every upload into its own session. A failing file does
// not stop the batch; its error is reported in its result. The returned error
// is non-nil only when the batch as a whole is rejected.
func (s *Service) IngestBatch(ctx context.Context, uploads []Upload) ([]IngestResult, error) {
	if len(uploads) == 0 {
		return nil, ErrNoFiles
	}
	if s.maxFiles > 0 && len(uploads) > s.maxFiles {
		return nil, fmt.Errorf("%w: %d files, limit is %d", ErrTooManyFiles, len(uploads), s.maxFiles)
	}

	logger := logging.WithFields(ctx, "batch_size", len(uploads))
	start := time.Now()

	results := make([]IngestResult, len(uploads))
	failed := 0
	for i, u := range uploads {
		results[i] = s.ingest(ctx, u)

		var ue *UserError
		if !errors.As(results[i].Err, &ue) {
			continue
		}
		failed++

		// Errors without a specific message point at a server-side problem.
		level := slog.LevelWarn
		if !IsUserFacing(ue.Technical) {
			level = slog.LevelError
		}
		logger.Log(ctx, level, "file rejected",
			"file", u.Name,
			"code", ue.User.Code,
			"error", ue.Technical,
		)
	}

	logger.Info("batch ingested",
		"accepted", len(uploads)-failed,
		"rejected", failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return results, nil
}

func (s *Service) ingest(ctx context.Context, u Upload) IngestResult {
	res := IngestResult{FileName: u.Name}

	format, err := codec.DetectFormat(u.Name)
	if err != nil {
		s.metrics.FileIngested("", metrics.OutcomeUnsupported)
		return rejected(res, err)
	}

	var t *table.Table
	err = s.limiter.Do(ctx, func() error {
		rc, err := u.Open()
		if err != nil {
			return fmt.Errorf("open: %w", err)
		}
		defer rc.Close()

		t, _, err = codec.Decode(u.Name, rc)
		return err
	})
	if err != nil {
		s.metrics.FileIngested(string(format), metrics.OutcomeFailed)
		return rejected(res, err)
	}

	now := s.sessions.now()
	sess := &session{
		id:        uuid.NewString(),
		fileName:  u.Name,
		format:    format,
		createdAt: now,
		base:      t,
	}
	sess.record("ingest", fmt.Sprintf("%d rows, %d columns", t.NumRows(), t.NumColumns()), now)

	if err := s.sessions.add(sess); err != nil {
		s.metrics.FileIngested(string(format), metrics.OutcomeFailed)
		return rejected(res, err)
	}
	s.metrics.FileIngested(string(format), metrics.OutcomeOK)
	s.metrics.SetSessions(s.sessions.len())

	logging.WithSession(ctx, sess.id, u.Name).Info("file ingested",
		"format", format,
		"rows", t.NumRows(),
		"columns", t.NumColumns(),
	)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	snap, err := s.snapshot(sess)
	if err != nil {
		return rejected(res, err)
	}
	res.Snapshot = snap
	return res
}

// rejected sets res.Err to the user-facing form of err.
func rejected(res IngestResult, err error) IngestResult {
	res.Err = NewUserError(fmt.Errorf("%s: %w", res.FileName, err))
	return res
}

// withSession runs fn holding the session's lock.
func (s *Service) withSession(ctx context.Context, id string, fn func(*session) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sess, err := s.sessions.get(id)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return fn(sess)
}

// snapshot must be called with sess.mu held.
func (s *Service) snapshot(sess *session) (*Snapshot, error) {
	view, err := sess.view()
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		ID:        sess.id,
		FileName:  sess.fileName,
		Format:    sess.format,
		CreatedAt: sess.createdAt,
		Columns:   table.Describe(sess.base),
		Selected:  view.Names(),
		Rows:      view.NumRows(),
		Preview:   table.Head(view, s.previewRows),
		Steps:     slices.Clone(sess.steps),
	}, nil
}

// Snapshot returns the current state of a session.
func (s *Service) Snapshot(ctx context.Context, id string) (*Snapshot, error) {
	var snap *Snapshot
	err := s.withSession(ctx, id, func(sess *session) error {
		var err error
		snap, err = s.snapshot(sess)
		return err
	})
	return snap, err
}

// RemoveDuplicates drops repeated rows from the session's table, keeping the
// first occurrence, and returns how many rows were removed.
func (s *Service) RemoveDuplicates(ctx context.Context, id string) (int, error) {
	var removed int
	err := s.withSession(ctx, id, func(sess *session) error {
		out, n := table.DropDuplicates(sess.base)
		sess.base = out
		removed = n
		sess.record("dedupe", fmt.Sprintf("removed %d duplicate rows", n), s.sessions.now())

		logging.WithSession(ctx, id, sess.fileName).Info("duplicates removed",
			"rows_removed", n,
			"rows", out.NumRows(),
		)
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.metrics.DuplicatesRemoved(removed)
	return removed, nil
}

// FillMissing replaces absent numeric values with their column mean. Under
// the error fill policy a numeric column with no values fails the call and
// leaves the session unchanged.
func (s *Service) FillMissing(ctx context.Context, id string) (table.FillReport, error) {
	var report table.FillReport
	err := s.withSession(ctx, id, func(sess *session) error {
		out, r, err := table.FillMissingMean(sess.base, s.fillPolicy)
		if err != nil {
			return err
		}
		sess.base = out
		report = r
		sess.record("fill", fmt.Sprintf("filled %d missing values", r.Total()), s.sessions.now())

		logging.WithSession(ctx, id, sess.fileName).Info("missing values filled",
			"cells_filled", r.Total(),
			"skipped_columns", len(r.Skipped),
		)
		return nil
	})
	if err != nil {
		return table.FillReport{}, err
	}

	s.metrics.MissingFilled(report.Total())
	return report, nil
}

// SelectColumns sets the session's projection to cols, in order. An empty
// cols selects no columns. The cleaned table keeps every column, so a later
// call can widen the selection again.
func (s *Service) SelectColumns(ctx context.Context, id string, cols []string) error {
	err := s.withSession(ctx, id, func(sess *session) error {
		if _, err := table.Select(sess.base, cols); err != nil {
			return err
		}
		sess.selection = append([]string{}, cols...)
		sess.record("select", fmt.Sprintf("%d of %d columns", len(cols), sess.base.NumColumns()), s.sessions.now())
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.ColumnsSelected()
	return nil
}

// Chart returns bar chart data for the projected table.
func (s *Service) Chart(ctx context.Context, id string) (table.Chart, error) {
	var chart table.Chart
	err := s.withSession(ctx, id, func(sess *session) error {
		view, err := sess.view()
		if err != nil {
			return err
		}
		chart = table.BarChart(view, s.chartSeries)
		return nil
	})
	return chart, err
}

// Export encodes the projected table in format f.
func (s *Service) Export(ctx context.Context, id string, f codec.Format) (*codec.Artifact, error) {
	var artifact *codec.Artifact
	err := s.withSession(ctx, id, func(sess *session) error {
		view, err := sess.view()
		if err != nil {
			return err
		}
		artifact, err = codec.Encode(view, f, sess.fileName)
		if err != nil {
			return err
		}
		sess.record("export", artifact.FileName, s.sessions.now())

		logging.WithSession(ctx, id, sess.fileName).Info("table exported",
			"format", f,
			"bytes", artifact.Size(),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Exported(string(f))
	return artifact, nil
}

// Discard removes a session.
func (s *Service) Discard(ctx context.Context, id string) error {
	if !s.sessions.remove(id) {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.metrics.SetSessions(s.sessions.len())
	logging.WithFields(ctx, "session_id", id).Info("session discarded")
	return nil
}

// SessionCount returns the number of live sessions.
func (s *Service) SessionCount() int { return s.sessions.len() }

// IngestStatus reports parse slot usage.
func (s *Service) IngestStatus() IngestLimiterStatus { return s.limiter.Status() }

// WaitForIngest blocks until in-flight parses finish or ctx ends.
func (s *Service) WaitForIngest(ctx context.Context) error { return s.limiter.WaitForDrain(ctx) }
