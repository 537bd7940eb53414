package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/buildervan/builderd/internal/domain/model"
)

// countingReportStore counts saves and signals the first one.
type countingReportStore struct {
	mu    sync.Mutex
	saves int
	first chan struct{}
	once  sync.Once
}

func (c *countingReportStore) Save(_ context.Context, report model.WeeklyReport, _ string) (string, error) {
	c.mu.Lock()
	c.saves++
	c.mu.Unlock()
	c.once.Do(func() { close(c.first) })
	return report.Filename(), nil
}

func (c *countingReportStore) Read(context.Context, string) (model.WeeklyReport, string, error) {
	return model.WeeklyReport{}, "", &model.NotFoundError{Kind: "report", Key: ""}
}

func (c *countingReportStore) List(context.Context) ([]string, error) {
	return nil, nil
}

func TestReportSchedulerRunsAndStops(t *testing.T) {
	store := &countingReportStore{first: make(chan struct{})}
	svc := NewReportService(&fakeSearcher{}, store)
	scheduler := NewReportScheduler(svc, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		scheduler.Start(ctx)
		close(done)
	}()

	select {
	case <-store.first:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler never triggered a report run")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop on context cancellation")
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Greater(t, store.saves, 0)
}

// flakySearcher fails until recover is called. Safe for concurrent use.
type flakySearcher struct {
	mu  sync.Mutex
	err error
}

func (f *flakySearcher) SearchMergedPRs(context.Context, time.Time) ([]model.MergedPullRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return nil, f.err
}

func (f *flakySearcher) recover() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = nil
}

func TestReportSchedulerKeepsGoingAfterFailure(t *testing.T) {
	searcher := &flakySearcher{err: &model.UpstreamError{Service: "GitHub", Status: 502}}
	store := &countingReportStore{first: make(chan struct{})}
	svc := NewReportService(searcher, store)
	scheduler := NewReportScheduler(svc, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		scheduler.Start(ctx)
		close(done)
	}()

	// Let a few failing ticks elapse, then recover the searcher.
	time.Sleep(30 * time.Millisecond)
	searcher.recover()

	select {
	case <-store.first:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler stopped retrying after a failed run")
	}

	cancel()
	<-done
}
