package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ludo-technologies/greenscan/domain"
	"github.com/ludo-technologies/greenscan/internal/config"
)

// testTask is a configurable ExecutableTask for executor tests
type testTask struct {
	name string
	err  error
	runs *int64
}

func (t *testTask) Name() string { return t.name }

func (t *testTask) Execute(ctx context.Context) error {
	if t.runs != nil {
		atomic.AddInt64(t.runs, 1)
	}
	return t.err
}

func TestExecuteRunsAllTasks(t *testing.T) {
	var runs int64
	tasks := make([]domain.ExecutableTask, 8)
	for i := range tasks {
		tasks[i] = &testTask{name: fmt.Sprintf("task-%d", i), runs: &runs}
	}

	executor := NewParallelExecutor()
	if err := executor.Execute(context.Background(), tasks); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if runs != 8 {
		t.Errorf("Executed %d tasks, expected 8", runs)
	}
}

func TestExecuteEmptyTaskList(t *testing.T) {
	executor := NewParallelExecutor()
	if err := executor.Execute(context.Background(), nil); err != nil {
		t.Errorf("Execute with no tasks should succeed, got %v", err)
	}
}

func TestExecuteAggregatesErrors(t *testing.T) {
	var runs int64
	boom := errors.New("boom")
	tasks := []domain.ExecutableTask{
		&testTask{name: "ok", runs: &runs},
		&testTask{name: "first-failure", err: boom, runs: &runs},
		&testTask{name: "second-failure", err: boom, runs: &runs},
	}

	executor := NewParallelExecutor()
	err := executor.Execute(context.Background(), tasks)
	if err == nil {
		t.Fatal("Expected an aggregated error")
	}

	// Failures never stop the remaining tasks.
	if runs != 3 {
		t.Errorf("Executed %d tasks, expected 3", runs)
	}

	var aggregated *AggregatedError
	if !errors.As(err, &aggregated) {
		t.Fatalf("Expected *AggregatedError, got %T", err)
	}
	if len(aggregated.Errors) != 2 {
		t.Errorf("Collected %d errors, expected 2", len(aggregated.Errors))
	}
	if !errors.Is(err, boom) {
		t.Error("errors.Is should find the underlying task error")
	}
}

func TestExecuteWithConcurrencyLimitOne(t *testing.T) {
	var runs int64
	tasks := make([]domain.ExecutableTask, 5)
	for i := range tasks {
		tasks[i] = &testTask{name: fmt.Sprintf("task-%d", i), runs: &runs}
	}

	executor := NewParallelExecutor()
	executor.SetMaxConcurrency(1)
	if err := executor.Execute(context.Background(), tasks); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if runs != 5 {
		t.Errorf("Executed %d tasks, expected 5", runs)
	}
}

func TestExecuteCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	executor := NewParallelExecutor()
	err := executor.Execute(ctx, []domain.ExecutableTask{&testTask{name: "never"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestTaskErrorFormat(t *testing.T) {
	cause := errors.New("read failed")
	taskErr := TaskError{TaskName: "main.py", Err: cause}

	if taskErr.Error() != "[main.py] read failed" {
		t.Errorf("Error() = %q", taskErr.Error())
	}
	if !errors.Is(taskErr, cause) {
		t.Error("TaskError should unwrap to its cause")
	}
}

func TestAggregatedErrorFormat(t *testing.T) {
	single := &AggregatedError{Errors: []TaskError{
		{TaskName: "a.py", Err: errors.New("oops")},
	}}
	if single.Error() != "[a.py] oops" {
		t.Errorf("Single error format = %q", single.Error())
	}

	multi := &AggregatedError{Errors: []TaskError{
		{TaskName: "a.py", Err: errors.New("oops")},
		{TaskName: "b.py", Err: errors.New("again")},
	}}
	msg := multi.Error()
	if msg == single.Error() {
		t.Error("Multi-error format should differ from the single form")
	}
	for _, want := range []string{"2 tasks failed", "[a.py] oops", "[b.py] again"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Aggregated message should contain %q, got %q", want, msg)
		}
	}
}

func TestExecutorFromConfigDefaults(t *testing.T) {
	executor := NewParallelExecutorFromConfig(&config.PerformanceConfig{})
	if executor.maxConcurrency != DefaultMaxConcurrency {
		t.Errorf("maxConcurrency = %d, expected %d", executor.maxConcurrency, DefaultMaxConcurrency)
	}
	if executor.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, expected %v", executor.timeout, DefaultTimeout)
	}
}
