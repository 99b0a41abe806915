package parallel

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/msalah0e/nodeweave/internal/ui"
)

func quiet(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := ui.Out
	ui.Out = &buf
	ui.SetColor(false)
	t.Cleanup(func() { ui.Out = old })
	return &buf
}

func ok(context.Context) (string, error) { return "", nil }

func TestRun_Success(t *testing.T) {
	quiet(t)
	tasks := []Task{{Name: "json", Fn: ok}, {Name: "dot", Fn: ok}, {Name: "png", Fn: ok}}

	results := Run(context.Background(), tasks, 4)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.OK || r.Err != nil {
			t.Errorf("task %s should be OK", r.Name)
		}
	}
	if len(Failed(results)) != 0 {
		t.Error("expected no failures")
	}
}

func TestRun_WithErrors(t *testing.T) {
	buf := quiet(t)
	tasks := []Task{
		{Name: "ok-task", Fn: ok},
		{Name: "fail-task", Fn: func(context.Context) (string, error) {
			return "line1\nline2", fmt.Errorf("simulated failure")
		}},
	}

	results := Run(context.Background(), tasks, 4)
	if !results[0].OK {
		t.Error("first task should be OK")
	}
	if results[1].OK || results[1].Err == nil {
		t.Error("second task should have failed")
	}
	if results[1].Output != "line1\nline2" {
		t.Errorf("expected output to be kept, got %q", results[1].Output)
	}
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "fail-task" {
		t.Errorf("unexpected failures %+v", failed)
	}
	if !strings.Contains(buf.String(), "simulated failure") {
		t.Errorf("failure not reported: %q", buf.String())
	}
}

func TestRun_Concurrency(t *testing.T) {
	quiet(t)
	var maxConcurrent, current int64

	tasks := make([]Task, 10)
	for i := range tasks {
		tasks[i] = Task{
			Name: fmt.Sprintf("task-%d", i),
			Fn: func(context.Context) (string, error) {
				c := atomic.AddInt64(&current, 1)
				for {
					old := atomic.LoadInt64(&maxConcurrent)
					if c <= old || atomic.CompareAndSwapInt64(&maxConcurrent, old, c) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				atomic.AddInt64(&current, -1)
				return "", nil
			},
		}
	}

	results := Run(context.Background(), tasks, 2)
	if len(results) != 10 {
		t.Fatalf("expected 10 results, got %d", len(results))
	}
	if maxConcurrent > 2 {
		t.Errorf("max concurrent should be <= 2, got %d", maxConcurrent)
	}
}

func TestRun_DefaultConcurrency(t *testing.T) {
	quiet(t)
	results := Run(context.Background(), []Task{{Name: "test", Fn: ok}}, 0)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
}

func TestRun_ContextPassed(t *testing.T) {
	quiet(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := Run(ctx, []Task{{Name: "cancelled", Fn: func(ctx context.Context) (string, error) {
		return "", ctx.Err()
	}}}, 1)
	if results[0].OK {
		t.Error("task should see the cancelled context")
	}
}

func TestRun_ReportsOutput(t *testing.T) {
	buf := quiet(t)
	Run(context.Background(), []Task{{Name: "png", Fn: func(context.Context) (string, error) {
		return "out/graph.png", nil
	}}}, 1)
	line := buf.String()
	if !strings.Contains(line, "png") || !strings.Contains(line, "out/graph.png") {
		t.Errorf("expected name and path in %q", line)
	}
}
