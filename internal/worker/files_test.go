package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/sdsvalidate/internal/catalog"
	"github.com/ppiankov/sdsvalidate/internal/model"
	"github.com/ppiankov/sdsvalidate/internal/validate"
)

// mockChecker records calls and returns an accepted outcome
type mockChecker struct {
	calls int32
	delay time.Duration
}

func (m *mockChecker) ValidateFile(ctx context.Context, f *model.File) *validate.FileOutcome {
	atomic.AddInt32(&m.calls, 1)
	time.Sleep(m.delay)
	return &validate.FileOutcome{Name: f.Name, File: f, Accepted: true}
}

func TestFileProcessor_ProcessFiles_Order(t *testing.T) {
	checker := &mockChecker{delay: 5 * time.Millisecond}
	processor := NewFileProcessor(checker, 3)

	names := catalog.Default().Names()
	files := make([]*model.File, len(names))
	for i, n := range names {
		files[i] = &model.File{Name: n}
	}

	results, err := processor.ProcessFiles(context.Background(), files)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != len(files) {
		t.Fatalf("expected %d results, got %d", len(files), len(results))
	}
	for i, r := range results {
		if r.Name != names[i] || r.Outcome.Name != names[i] {
			t.Errorf("results[%d]: expected %s, got %s", i, names[i], r.Name)
		}
	}
	if atomic.LoadInt32(&checker.calls) != int32(len(files)) {
		t.Errorf("expected %d checks, got %d", len(files), checker.calls)
	}
}

func TestFileProcessor_ProcessFiles_Empty(t *testing.T) {
	processor := NewFileProcessor(&mockChecker{}, 2)

	results, err := processor.ProcessFiles(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestFileProcessor_ProcessFiles_Cancelled(t *testing.T) {
	processor := NewFileProcessor(&mockChecker{}, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := processor.ProcessFiles(ctx, []*model.File{{Name: catalog.Orgs}, {Name: catalog.Users}})
	if err == nil {
		t.Error("expected cancellation error")
	}
}

func TestFileProcessor_RealValidator(t *testing.T) {
	v := validate.NewValidator(catalog.Default(), 2)
	processor := NewFileProcessor(v, 2)

	header := []string{"sourcedId", "name", "type", "parentSourcedId"}
	orgs := &model.File{
		Name:   catalog.Orgs,
		Header: header,
		Rows: []model.Row{
			{Line: 2, Header: header, Values: []string{"org1", "Org", "school", ""}},
		},
	}

	results, err := processor.ProcessFiles(context.Background(), []*model.File{orgs})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !results[0].Outcome.Accepted || !results[0].Outcome.Index.Contains("org1") {
		t.Errorf("unexpected outcome: %+v", results[0].Outcome)
	}
}
