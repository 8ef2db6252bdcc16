package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// TestHTTPFetcherFetch tests the basic fetch paths against a local server.
func TestHTTPFetcherFetch(t *testing.T) {
	t.Parallel()

	t.Run("returns page HTML on success", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html><body>contact us</body></html>"))
		}))
		defer server.Close()

		f := NewHTTPFetcher()
		defer f.Close()

		result, err := f.Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if result.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", result.StatusCode)
		}
		if result.HTML != "<html><body>contact us</body></html>" {
			t.Errorf("unexpected HTML: %q", result.HTML)
		}
		if result.Attempts != 1 {
			t.Errorf("expected 1 attempt, got %d", result.Attempts)
		}
	})

	t.Run("status 404 is a failure", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer server.Close()

		f := NewHTTPFetcher()
		defer f.Close()

		_, err := f.Fetch(context.Background(), server.URL)
		if !errors.Is(err, ErrHTTPStatus) {
			t.Errorf("expected ErrHTTPStatus, got %v", err)
		}
	})

	t.Run("status 429 maps to rate-limit error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "slow down", http.StatusTooManyRequests)
		}))
		defer server.Close()

		f := NewHTTPFetcher()
		defer f.Close()

		_, err := f.Fetch(context.Background(), server.URL)
		if !errors.Is(err, ErrRateLimited) {
			t.Errorf("expected ErrRateLimited, got %v", err)
		}
	})

	t.Run("retries transient failures", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 2 {
				http.Error(w, "flaky", http.StatusInternalServerError)
				return
			}
			_, _ = w.Write([]byte("<html></html>"))
		}))
		defer server.Close()

		f := NewHTTPFetcher(WithRetryPolicy(NewRetryPolicy(2, time.Millisecond)))
		defer f.Close()

		result, err := f.Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("expected success after retry, got %v", err)
		}
		if result.Attempts != 2 {
			t.Errorf("expected 2 attempts, got %d", result.Attempts)
		}
	})

	t.Run("429 retries back off and can recover", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				http.Error(w, "slow down", http.StatusTooManyRequests)
				return
			}
			_, _ = w.Write([]byte("<html></html>"))
		}))
		defer server.Close()

		f := NewHTTPFetcher(WithRetryPolicy(NewRetryPolicy(2, time.Millisecond)))
		defer f.Close()

		result, err := f.Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("expected success after backoff, got %v", err)
		}
		if result.Attempts != 2 {
			t.Errorf("expected 2 attempts, got %d", result.Attempts)
		}
	})
}

// TestHTTPFetcherUserAgentRotation tests that requests rotate through the pool.
func TestHTTPFetcherUserAgentRotation(t *testing.T) {
	t.Parallel()

	var mu []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu = append(mu, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	f := NewHTTPFetcher(WithUserAgents([]string{"agent-a", "agent-b"}))
	defer f.Close()

	for i := 0; i < 3; i++ {
		if _, err := f.Fetch(context.Background(), server.URL); err != nil {
			t.Fatalf("fetch %d failed: %v", i, err)
		}
	}

	want := []string{"agent-a", "agent-b", "agent-a"}
	for i, ua := range want {
		if mu[i] != ua {
			t.Errorf("request %d: expected %q, got %q", i, ua, mu[i])
		}
	}
}

// TestHTTPFetcherTimeout tests that slow servers fail within the deadline.
func TestHTTPFetcherTimeout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	f := NewHTTPFetcher(WithTimeout(50 * time.Millisecond))
	defer f.Close()

	if _, err := f.Fetch(context.Background(), server.URL); err == nil {
		t.Error("expected timeout error")
	}
}

// TestHTTPFetcherInsecureTLS tests fetching from a self-signed server.
func TestHTTPFetcherInsecureTLS(t *testing.T) {
	t.Parallel()

	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("secure"))
	}))
	defer server.Close()

	strict := NewHTTPFetcher()
	defer strict.Close()
	if _, err := strict.Fetch(context.Background(), server.URL); err == nil {
		t.Error("expected certificate error without InsecureTLS")
	}

	relaxed := NewHTTPFetcher(WithInsecureTLS())
	defer relaxed.Close()
	result, err := relaxed.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("expected success with InsecureTLS, got %v", err)
	}
	if result.HTML != "secure" {
		t.Errorf("unexpected body: %q", result.HTML)
	}
}
