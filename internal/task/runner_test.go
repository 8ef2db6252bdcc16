package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/contactscan/internal/model"
)

// TestRunnerSubmitAndWait tests the full task lifecycle.
func TestRunnerSubmitAndWait(t *testing.T) {
	t.Parallel()

	t.Run("successful crawl completes the task", func(t *testing.T) {
		t.Parallel()

		store := NewMemoryStore()
		crawl := func(_ context.Context, seedURL string) (*model.CrawlResult, error) {
			result := model.NewCrawlResult(seedURL)
			contacts := model.NewContactRecord()
			contacts.AddEmail("found@example.com")
			result.Merge(seedURL, "text", contacts)
			return result, nil
		}

		runner := NewRunner(store, crawl, 2)
		runner.Start(context.Background())
		defer runner.Stop()

		id, err := runner.Submit(context.Background(), "https://example.com/")
		if err != nil {
			t.Fatalf("failed to submit: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		task, err := runner.Wait(ctx, id, 10*time.Millisecond)
		if err != nil {
			t.Fatalf("failed to wait: %v", err)
		}

		if task.Status != model.TaskCompleted {
			t.Errorf("expected completed, got %s", task.Status)
		}
		if task.Result == nil || len(task.Result.Emails) != 1 {
			t.Errorf("expected stored result, got %+v", task.Result)
		}
	})

	t.Run("failed crawl fails the task with the reason", func(t *testing.T) {
		t.Parallel()

		store := NewMemoryStore()
		crawl := func(context.Context, string) (*model.CrawlResult, error) {
			return nil, model.ErrInvalidSeedURL
		}

		runner := NewRunner(store, crawl, 1)
		runner.Start(context.Background())
		defer runner.Stop()

		id, err := runner.Submit(context.Background(), "not-a-url")
		if err != nil {
			t.Fatalf("failed to submit: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		task, err := runner.Wait(ctx, id, 10*time.Millisecond)
		if err != nil {
			t.Fatalf("failed to wait: %v", err)
		}

		if task.Status != model.TaskFailed {
			t.Errorf("expected failed, got %s", task.Status)
		}
		if task.Error == "" {
			t.Error("expected failure reason on the task")
		}
	})

	t.Run("tasks run concurrently up to the worker count", func(t *testing.T) {
		t.Parallel()

		store := NewMemoryStore()
		release := make(chan struct{})
		var mu sync.Mutex
		running := 0
		peak := 0

		crawl := func(ctx context.Context, seedURL string) (*model.CrawlResult, error) {
			mu.Lock()
			running++
			if running > peak {
				peak = running
			}
			mu.Unlock()

			select {
			case <-release:
			case <-ctx.Done():
			}

			mu.Lock()
			running--
			mu.Unlock()
			return model.NewCrawlResult(seedURL), nil
		}

		runner := NewRunner(store, crawl, 2)
		runner.Start(context.Background())

		ids := make([]string, 0, 4)
		for i := 0; i < 4; i++ {
			id, err := runner.Submit(context.Background(), fmt.Sprintf("https://example.com/%d", i))
			if err != nil {
				t.Fatalf("failed to submit: %v", err)
			}
			ids = append(ids, id)
		}

		// Give both workers time to pick up a task, then let them finish.
		time.Sleep(100 * time.Millisecond)
		close(release)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, id := range ids {
			if _, err := runner.Wait(ctx, id, 10*time.Millisecond); err != nil {
				t.Fatalf("failed to wait for %s: %v", id, err)
			}
		}
		runner.Stop()

		if peak != 2 {
			t.Errorf("expected 2 concurrent crawls at peak, got %d", peak)
		}
	})
}

// TestRunnerStop tests shutdown semantics.
func TestRunnerStop(t *testing.T) {
	t.Parallel()

	t.Run("submit after stop fails", func(t *testing.T) {
		t.Parallel()

		runner := NewRunner(NewMemoryStore(), func(_ context.Context, s string) (*model.CrawlResult, error) {
			return model.NewCrawlResult(s), nil
		}, 1)
		runner.Start(context.Background())
		runner.Stop()

		if _, err := runner.Submit(context.Background(), "https://example.com/"); !errors.Is(err, ErrRunnerStopped) {
			t.Errorf("expected ErrRunnerStopped, got %v", err)
		}
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		t.Parallel()

		runner := NewRunner(NewMemoryStore(), func(_ context.Context, s string) (*model.CrawlResult, error) {
			return model.NewCrawlResult(s), nil
		}, 1)
		runner.Start(context.Background())
		runner.Stop()
		runner.Stop()
	})

	t.Run("submits racing a stop fail cleanly", func(t *testing.T) {
		t.Parallel()

		runner := NewRunner(NewMemoryStore(), func(_ context.Context, s string) (*model.CrawlResult, error) {
			return model.NewCrawlResult(s), nil
		}, 2)
		runner.Start(context.Background())

		// Hammer Submit from many goroutines while Stop closes the queue.
		// Every call must resolve to an ID or a sentinel error; a send on
		// the closed queue would panic instead.
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				_, err := runner.Submit(context.Background(), fmt.Sprintf("https://example.com/%d", n))
				if err != nil && !errors.Is(err, ErrRunnerStopped) && !errors.Is(err, ErrQueueFull) {
					t.Errorf("unexpected submit error: %v", err)
				}
			}(i)
		}
		runner.Stop()
		wg.Wait()
	})
}

// TestRunnerWaitUnknownTask tests that Wait surfaces store errors.
func TestRunnerWaitUnknownTask(t *testing.T) {
	t.Parallel()

	runner := NewRunner(NewMemoryStore(), func(_ context.Context, s string) (*model.CrawlResult, error) {
		return model.NewCrawlResult(s), nil
	}, 1)

	_, err := runner.Wait(context.Background(), "no-such-task", time.Millisecond)
	if !errors.Is(err, model.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}
