package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/offlineplot/pkg/errors"
)

func TestClientGet(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("window.Plotly={};"))
	}))
	defer server.Close()

	c := NewClient(WithHTTPClient(server.Client()), WithHeader("User-Agent", "offlineplot-test"))
	body, err := c.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if string(body) != "window.Plotly={};" {
		t.Errorf("Get() body = %q", body)
	}
	if gotUA != "offlineplot-test" {
		t.Errorf("User-Agent = %q, want offlineplot-test", gotUA)
	}
}

func TestClientGetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	c := NewClient(WithHTTPClient(server.Client()), WithRetry(3, time.Millisecond))
	body, err := c.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if string(body) != "ok" || calls.Load() != 3 {
		t.Errorf("Get() = %q after %d calls, want ok after 3", body, calls.Load())
	}
}

func TestClientGetNotFound(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	c := NewClient(WithHTTPClient(server.Client()), WithRetry(3, time.Millisecond))
	_, err := c.Get(context.Background(), server.URL)
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get() error = %v, want NOT_FOUND", err)
	}
	if calls.Load() != 1 {
		t.Errorf("404 should not be retried, got %d calls", calls.Load())
	}
}

func TestClientGetExhaustedRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewClient(WithHTTPClient(server.Client()), WithRetry(2, time.Millisecond))
	_, err := c.Get(context.Background(), server.URL)
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("Get() error = %v, want NETWORK_ERROR", err)
	}
	if IsRetryable(err) {
		t.Error("exhausted error should not carry the retry marker")
	}
}

func TestClientGetMaxBytes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 100))
	}))
	defer server.Close()

	c := NewClient(WithHTTPClient(server.Client()), WithMaxBytes(10))
	if _, err := c.Get(context.Background(), server.URL); err == nil {
		t.Error("oversized body should fail")
	}

	c = NewClient(WithHTTPClient(server.Client()), WithMaxBytes(0))
	body, err := c.Get(context.Background(), server.URL)
	if err != nil || len(body) != 100 {
		t.Errorf("unlimited Get() = %d bytes, %v", len(body), err)
	}
}

func TestClientGetInvalidURL(t *testing.T) {
	c := NewClient(WithRetry(1, 0))
	_, err := c.Get(context.Background(), "://bad")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Get() error = %v, want INVALID_INPUT", err)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name      string
		code      int
		wantErr   bool
		wantCode  errors.Code
		retryable bool
	}{
		{name: "200 OK", code: 200},
		{name: "204 No Content", code: 204},
		{name: "404 Not Found", code: 404, wantErr: true, wantCode: errors.ErrCodeNotFound},
		{name: "429 Too Many Requests", code: 429, wantErr: true, wantCode: errors.ErrCodeNetwork, retryable: true},
		{name: "500 Internal Server Error", code: 500, wantErr: true, wantCode: errors.ErrCodeNetwork, retryable: true},
		{name: "503 Service Unavailable", code: 503, wantErr: true, wantCode: errors.ErrCodeNetwork, retryable: true},
		{name: "403 Forbidden", code: 403, wantErr: true, wantCode: errors.ErrCodeNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkStatus(tt.code)
			if (err != nil) != tt.wantErr {
				t.Fatalf("checkStatus() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("checkStatus() code = %v, want %v", errors.GetCode(err), tt.wantCode)
			}
			if IsRetryable(err) != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", IsRetryable(err), tt.retryable)
			}
		})
	}
}
