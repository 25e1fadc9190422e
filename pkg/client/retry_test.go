package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/logger"
)

func testCaller(policy RetryPolicy) *Caller {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	return NewCaller(policy, log)
}

func testPolicy() RetryPolicy {
	return RetryPolicy{
		AttemptTimeout: 500 * time.Millisecond,
		MaxRetries:     2,
		BackoffBase:    time.Millisecond,
	}
}

func TestDo_ExhaustsRetriesOn5xx(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	hc := NewHttpClient(srv.URL)
	resp, err := testCaller(testPolicy()).Do(context.Background(), "test.call", func(ctx context.Context) (*Response, error) {
		return hc.GET(ctx, "/", nil)
	})
	if err != nil {
		t.Fatalf("final 5xx should surface as a response, got error: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", resp.StatusCode)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected initial attempt + 2 retries = 3 calls, got %d", got)
	}
}

func TestDo_RecoversAfterTransientFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	hc := NewHttpClient(srv.URL)
	resp, err := testCaller(testPolicy()).Do(context.Background(), "test.call", func(ctx context.Context) (*Response, error) {
		return hc.GET(ctx, "/", nil)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("expected 2 calls, got %d", got)
	}
}

func TestDo_DoesNotRetry4xx(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	hc := NewHttpClient(srv.URL)
	resp, err := testCaller(testPolicy()).Do(context.Background(), "test.call", func(ctx context.Context) (*Response, error) {
		return hc.GET(ctx, "/", nil)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409, got %d", resp.StatusCode)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("a 4xx must not be retried, got %d calls", got)
	}
}

func TestDo_AttemptTimeoutIsRetryable(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	policy := RetryPolicy{
		AttemptTimeout: 20 * time.Millisecond,
		MaxRetries:     2,
		BackoffBase:    time.Millisecond,
	}

	hc := NewHttpClient(srv.URL)
	_, err := testCaller(policy).Do(context.Background(), "test.call", func(ctx context.Context) (*Response, error) {
		return hc.GET(ctx, "/", nil)
	})
	if err == nil {
		t.Fatal("expected a timeout error after exhausting retries")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeTimeout {
		t.Errorf("expected %s, got %s", apperrors.CodeTimeout, appErr.Code)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected 3 timed-out attempts, got %d", got)
	}
}

func TestDo_ConnectionErrorSurfacesAsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening anymore

	hc := NewHttpClient(srv.URL)
	_, err := testCaller(testPolicy()).Do(context.Background(), "test.call", func(ctx context.Context) (*Response, error) {
		return hc.GET(ctx, "/", nil)
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeUnavailable {
		t.Errorf("expected %s, got %s", apperrors.CodeUnavailable, appErr.Code)
	}
}
