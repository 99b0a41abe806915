// Package parallel runs independent jobs, such as one export per output
// format, with a bounded number in flight.
package parallel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/msalah0e/nodeweave/internal/ui"
)

// Result holds the outcome of a task. Output is what the task produced,
// usually the path it wrote.
type Result struct {
	Name    string
	OK      bool
	Err     error
	Output  string
	Elapsed time.Duration
}

type Task struct {
	Name string
	Fn   func(ctx context.Context) (string, error)
}

// Run executes tasks with at most concurrency running at once and returns
// results in submission order. A failing task does not cancel the others.
// One status line per task is printed as it finishes.
func Run(ctx context.Context, tasks []Task, concurrency int) []Result {
	if concurrency < 1 {
		concurrency = 4
	}

	results := make([]Result, len(tasks))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, task := range tasks {
		g.Go(func() error {
			start := time.Now()
			output, err := task.Fn(gctx)
			r := Result{Name: task.Name, OK: err == nil, Err: err, Output: output, Elapsed: time.Since(start)}

			mu.Lock()
			defer mu.Unlock()
			results[i] = r
			report(r)
			return nil
		})
	}

	_ = g.Wait()
	return results
}

func report(r Result) {
	took := ui.Subtle.Sprintf("(%s)", r.Elapsed.Round(time.Millisecond))
	if !r.OK {
		fmt.Fprintf(ui.Out, "  %s %-4s %s %s\n", ui.StatusIcon(false), r.Name, ui.Bad.Sprint(r.Err), took)
		return
	}
	fmt.Fprintf(ui.Out, "  %s %-4s %s %s\n", ui.StatusIcon(true), r.Name, r.Output, took)
}

// Failed returns the results that carry an error.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.OK {
			out = append(out, r)
		}
	}
	return out
}
