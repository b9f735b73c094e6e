package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/JonMunkholm/LinkSort/internal/logging"
	"github.com/google/uuid"
)

var (
	// ErrUploadInProgress is returned when a session already has a run in flight.
	ErrUploadInProgress = errors.New("upload in progress for this session")

	// ErrNoReport is returned when a session has not processed a file yet.
	ErrNoReport = errors.New("no report available")
)

// DefaultUploadTimeout bounds a single pipeline run.
const DefaultUploadTimeout = 2 * time.Minute

// Report is the outcome of one successful processing run.
type Report struct {
	ID        string
	FileName  string
	Kind      Kind
	CreatedAt time.Time
	Result    *Result
}

// Recorder persists a summary of each report. Failures are logged, never returned
// to the uploader.
type Recorder interface {
	Record(ctx context.Context, rep *Report) error
}

// ServiceConfig wires the Service's collaborators.
type ServiceConfig struct {
	Ingestor   *Ingestor
	Classifier *Classifier
	Limiter    *UploadLimiter
	Recorder   Recorder      // optional
	Timeout    time.Duration // per run; DefaultUploadTimeout when zero
}

// Service runs the pipeline and owns the current report of every session.
type Service struct {
	ingestor   *Ingestor
	classifier *Classifier
	limiter    *UploadLimiter
	recorder   Recorder
	timeout    time.Duration
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	report  *Report
	busy    bool
	touched time.Time
}

// NewService creates a Service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Classifier == nil {
		cfg.Classifier = NewClassifier()
	}
	if cfg.Limiter == nil {
		cfg.Limiter = NewUploadLimiter(DefaultMaxConcurrentUploads, DefaultMaxWaitTime)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultUploadTimeout
	}
	return &Service{
		ingestor:   cfg.Ingestor,
		classifier: cfg.Classifier,
		limiter:    cfg.Limiter,
		recorder:   cfg.Recorder,
		timeout:    cfg.Timeout,
		now:        time.Now,
		sessions:   make(map[string]*session),
	}
}

// Process runs the full pipeline for one upload and makes the result the
// session's current report.
//
// Unsupported media types are ignored: Process returns a nil report and a nil
// error and the session is left untouched. On a decode failure the previous
// report is kept.
func (s *Service) Process(ctx context.Context, sessionID, fileName, mediaType string, r io.Reader) (*Report, error) {
	return s.ProcessKind(ctx, sessionID, fileName, KindFromMediaType(mediaType), r)
}

// ProcessKind is Process for callers that already know the Kind.
func (s *Service) ProcessKind(ctx context.Context, sessionID, fileName string, kind Kind, r io.Reader) (*Report, error) {
	if kind == KindUnsupported {
		logging.FromContext(ctx).Debug("ignoring unsupported upload", "file", fileName)
		return nil, nil
	}

	if err := s.begin(sessionID); err != nil {
		return nil, err
	}
	defer s.end(sessionID)

	rep := &Report{
		ID:       uuid.NewString(),
		FileName: fileName,
		Kind:     kind,
	}
	logger := logging.WithFields(ctx, "report_id", rep.ID, "file", fileName, "kind", kind.String())
	start := s.now()

	err := s.limiter.Do(ctx, func(ctx context.Context) error {
		runCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		content, ok, err := s.ingestor.Ingest(runCtx, kind, r)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no decoder for %s", kind)
		}
		candidates := content.Candidates()
		rep.Result = s.classifier.Classify(candidates)
		logger.Debug("candidates extracted", "candidates", len(candidates))
		return nil
	})
	if err != nil {
		logger.Warn("processing failed", "error", err)
		return nil, fmt.Errorf("process %s: %w", kind, err)
	}

	rep.CreatedAt = s.now()
	s.setReport(sessionID, rep)

	logger.Info("report ready",
		"links", rep.Result.Total(),
		"platforms", len(rep.Result.Platforms()),
		"duration_ms", rep.CreatedAt.Sub(start).Milliseconds(),
	)

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, rep); err != nil {
			logger.Error("failed to record report", "error", err)
		}
	}

	return rep, nil
}

// Current returns the session's current report.
func (s *Service) Current(sessionID string) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok || sess.report == nil {
		return nil, ErrNoReport
	}
	sess.touched = s.now()
	return sess.report, nil
}

// Reset discards the session's current report. A run in flight is not
// affected and still replaces the report when it finishes.
func (s *Service) Reset(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[sessionID]; ok {
		sess.report = nil
		sess.touched = s.now()
	}
}

// Sessions returns the number of tracked sessions.
func (s *Service) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// UploadLimiterStatus reports the limiter state for monitoring.
func (s *Service) UploadLimiterStatus() UploadLimiterStatus {
	return s.limiter.Status()
}

// WaitForUploads blocks until in-flight runs finish or ctx ends.
func (s *Service) WaitForUploads(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// begin marks the session busy, rejecting overlapping runs.
func (s *Service) begin(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{}
		s.sessions[sessionID] = sess
	}
	if sess.busy {
		return ErrUploadInProgress
	}
	sess.busy = true
	sess.touched = s.now()
	return nil
}

func (s *Service) end(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[sessionID]; ok {
		sess.busy = false
		sess.touched = s.now()
	}
}

func (s *Service) setReport(sessionID string, rep *Report) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[sessionID]; ok {
		sess.report = rep
	}
}
