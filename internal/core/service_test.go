package core

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

// blockingDocs waits on release before returning the reader's text.
type blockingDocs struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingDocs) DecodeText(ctx context.Context, r io.Reader) (string, error) {
	close(b.started)
	select {
	case <-b.release:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	data, err := io.ReadAll(r)
	return string(data), err
}

type memRecorder struct {
	mu      sync.Mutex
	reports []*Report
	err     error
}

func (m *memRecorder) Record(ctx context.Context, rep *Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, rep)
	return m.err
}

func newTestService(docs DocumentDecoder, rec Recorder) *Service {
	return NewService(ServiceConfig{
		Ingestor: NewIngestor(&fakeSheets{cells: []Cell{
			{Sheet: "S", Row: 1, Col: 1, Value: "https://facebook.com/sheet", Text: true},
		}}, docs),
		Limiter:  NewUploadLimiter(2, time.Second),
		Recorder: rec,
	})
}

func TestService_ProcessDocument(t *testing.T) {
	rec := &memRecorder{}
	svc := newTestService(&fakeDocs{}, rec)

	rep, err := svc.Process(context.Background(), "s1", "links.docx", MediaTypeDocument,
		strings.NewReader("a https://twitter.com/alice/status/1 b https://instagram.com/bob"))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if rep == nil {
		t.Fatal("Process() returned nil report")
	}
	if rep.ID == "" || rep.FileName != "links.docx" || rep.Kind != KindDocument {
		t.Errorf("report metadata = %+v", rep)
	}
	if rep.Result.Count(Twitter) != 1 || rep.Result.Count(Instagram) != 1 || rep.Result.Total() != 2 {
		t.Errorf("counts = %v", rep.Result.Counts())
	}

	cur, err := svc.Current("s1")
	if err != nil || cur != rep {
		t.Errorf("Current() = %v, %v; want the processed report", cur, err)
	}
	if len(rec.reports) != 1 || rec.reports[0] != rep {
		t.Errorf("recorder got %d reports", len(rec.reports))
	}
}

func TestService_ProcessSpreadsheet(t *testing.T) {
	svc := newTestService(&fakeDocs{}, nil)

	rep, err := svc.Process(context.Background(), "s1", "links.xlsx", MediaTypeSpreadsheet, strings.NewReader(""))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	links := rep.Result.Links(Facebook)
	if len(links) != 1 || links[0].Username != "sheet" {
		t.Errorf("Facebook = %+v", links)
	}
}

func TestService_UnsupportedLeavesSessionUntouched(t *testing.T) {
	svc := newTestService(&fakeDocs{}, nil)
	ctx := context.Background()

	first, err := svc.Process(ctx, "s1", "a.docx", MediaTypeDocument, strings.NewReader("https://x.com/a"))
	if err != nil {
		t.Fatal(err)
	}

	rep, err := svc.Process(ctx, "s1", "notes.txt", "text/plain", strings.NewReader("https://x.com/b"))
	if err != nil || rep != nil {
		t.Fatalf("Process(unsupported) = %v, %v; want nil, nil", rep, err)
	}

	cur, _ := svc.Current("s1")
	if cur != first {
		t.Error("unsupported upload replaced the current report")
	}

	if _, err := svc.Current("never-uploaded"); !errors.Is(err, ErrNoReport) {
		t.Errorf("Current(unknown) error = %v, want ErrNoReport", err)
	}
}

func TestService_DecodeFailureKeepsPreviousReport(t *testing.T) {
	docs := &fakeDocs{}
	svc := newTestService(docs, nil)
	ctx := context.Background()

	first, err := svc.Process(ctx, "s1", "a.docx", MediaTypeDocument, strings.NewReader("https://x.com/a"))
	if err != nil {
		t.Fatal(err)
	}

	docs.err = errors.New("zip: not a valid zip file")
	_, err = svc.Process(ctx, "s1", "broken.docx", MediaTypeDocument, strings.NewReader(""))
	if !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("err = %v, want ErrInvalidDocument", err)
	}

	cur, _ := svc.Current("s1")
	if cur != first {
		t.Error("failed upload replaced the current report")
	}

	_, err = svc.Process(ctx, "s1", "upload in progress.docx", MediaTypeDocument, strings.NewReader(""))
	if err == nil {
		t.Fatal("expected a decode error")
	}
	if strings.Contains(err.Error(), "upload in progress.docx") {
		t.Errorf("error %q carries the file name", err)
	}
	if got := MapError(err).Code; got != "FILE003" {
		t.Errorf("MapError code = %q, want FILE003", got)
	}
}

func TestService_NewUploadReplacesReport(t *testing.T) {
	svc := newTestService(&fakeDocs{}, nil)
	ctx := context.Background()

	if _, err := svc.Process(ctx, "s1", "a.docx", MediaTypeDocument, strings.NewReader("https://x.com/a")); err != nil {
		t.Fatal(err)
	}
	second, err := svc.Process(ctx, "s1", "b.docx", MediaTypeDocument, strings.NewReader("https://youtube.com/b"))
	if err != nil {
		t.Fatal(err)
	}

	cur, _ := svc.Current("s1")
	if cur != second {
		t.Fatal("second upload did not replace the report")
	}
	if cur.Result.Count(Twitter) != 0 {
		t.Error("results were merged across uploads")
	}
}

func TestService_RejectsOverlappingUploadInSameSession(t *testing.T) {
	docs := &blockingDocs{started: make(chan struct{}), release: make(chan struct{})}
	svc := newTestService(docs, nil)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := svc.Process(ctx, "s1", "slow.docx", MediaTypeDocument, strings.NewReader("https://x.com/slow"))
		done <- err
	}()
	<-docs.started

	_, err := svc.Process(ctx, "s1", "second.docx", MediaTypeDocument, strings.NewReader("https://x.com/fast"))
	if !errors.Is(err, ErrUploadInProgress) {
		t.Errorf("overlapping upload error = %v, want ErrUploadInProgress", err)
	}
	if MapError(err).Code != "UPL001" {
		t.Errorf("code = %s, want UPL001", MapError(err).Code)
	}

	close(docs.release)
	if err := <-done; err != nil {
		t.Fatalf("first upload failed: %v", err)
	}

	cur, _ := svc.Current("s1")
	if cur == nil || cur.FileName != "slow.docx" {
		t.Errorf("current report = %+v, want slow.docx", cur)
	}
}

func TestService_RecorderFailureDoesNotFailRun(t *testing.T) {
	rec := &memRecorder{err: errors.New("connection refused")}
	svc := newTestService(&fakeDocs{}, rec)

	rep, err := svc.Process(context.Background(), "s1", "a.docx", MediaTypeDocument, strings.NewReader("https://x.com/a"))
	if err != nil || rep == nil {
		t.Fatalf("Process() = %v, %v", rep, err)
	}
}

func TestService_Sweep(t *testing.T) {
	svc := newTestService(&fakeDocs{}, nil)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	for _, id := range []string{"old", "fresh"} {
		if _, err := svc.Process(ctx, id, "a.docx", MediaTypeDocument, strings.NewReader("https://x.com/a")); err != nil {
			t.Fatal(err)
		}
	}

	now = now.Add(30 * time.Minute)
	if _, err := svc.Current("fresh"); err != nil {
		t.Fatal(err)
	}

	now = now.Add(45 * time.Minute)
	if n := svc.Sweep(time.Hour); n != 1 {
		t.Errorf("Sweep() = %d, want 1", n)
	}
	if _, err := svc.Current("old"); !errors.Is(err, ErrNoReport) {
		t.Error("old session survived the sweep")
	}
	if _, err := svc.Current("fresh"); err != nil {
		t.Error("fresh session was swept")
	}
}

func TestService_StartSessionSweeperStopsOnCancel(t *testing.T) {
	svc := newTestService(&fakeDocs{}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		svc.StartSessionSweeper(ctx, SweepConfig{TTL: time.Millisecond, Interval: 5 * time.Millisecond})
		close(stopped)
	}()

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestService_Reset(t *testing.T) {
	svc := newTestService(&fakeDocs{}, nil)
	ctx := context.Background()

	if _, err := svc.Process(ctx, "s1", "a.docx", MediaTypeDocument, strings.NewReader("https://x.com/a")); err != nil {
		t.Fatal(err)
	}
	svc.Reset("s1")
	if _, err := svc.Current("s1"); !errors.Is(err, ErrNoReport) {
		t.Errorf("Current() after Reset err = %v, want ErrNoReport", err)
	}

	svc.Reset("unknown")
	if svc.Sessions() != 1 {
		t.Errorf("Reset created a session: %d", svc.Sessions())
	}
}
