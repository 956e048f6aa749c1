package bundle

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/offlineplot/pkg/cache"
	"github.com/matzehuels/offlineplot/pkg/errors"
	"github.com/matzehuels/offlineplot/pkg/httputil"
)

const fakeLibrary = "/* plotly.js */ window.Plotly = {newPlot: function(){}};"

func TestStatic(t *testing.T) {
	got, err := Static(fakeLibrary).Script(context.Background())
	if err != nil || got != fakeLibrary {
		t.Errorf("Static().Script() = %q, %v", got, err)
	}

	_, err = Static("  ").Script(context.Background())
	if !errors.Is(err, errors.ErrCodeBundleUnavailable) {
		t.Errorf("empty Static error = %v, want BUNDLE_UNAVAILABLE", err)
	}
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plotly.min.js")
	if err := os.WriteFile(path, []byte(fakeLibrary), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"existing", path, false},
		{"missing", filepath.Join(dir, "nope.js"), true},
		{"directory", dir, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := File(tt.path).Script(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Script() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeBundleUnavailable) {
				t.Errorf("Script() code = %v, want BUNDLE_UNAVAILABLE", errors.GetCode(err))
			}
			if err == nil && got != fakeLibrary {
				t.Errorf("Script() = %q", got)
			}
		})
	}
}

func newTestCDN(t *testing.T, handler http.HandlerFunc) (*CDN, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cdn := NewCDN(server.URL+"/plotly.min.js", fc)
	cdn.Client = httputil.NewClient(httputil.WithHTTPClient(server.Client()), httputil.WithRetry(2, time.Millisecond))
	cdn.Logger = log.New(&bytes.Buffer{})
	return cdn, &calls
}

func TestCDNFetchesOnce(t *testing.T) {
	cdn, calls := newTestCDN(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fakeLibrary))
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := cdn.Script(ctx)
		if err != nil {
			t.Fatalf("Script() #%d error: %v", i, err)
		}
		if got != fakeLibrary {
			t.Errorf("Script() #%d = %q", i, got)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("server called %d times, want 1", calls.Load())
	}

	if _, err := cdn.Fetch(ctx); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("Fetch should bypass the cache, calls = %d", calls.Load())
	}

	if err := cdn.Evict(ctx); err != nil {
		t.Fatalf("Evict() error: %v", err)
	}
	if _, err := cdn.Script(ctx); err != nil {
		t.Fatalf("Script() after Evict error: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("Script after Evict should download, calls = %d", calls.Load())
	}
}

func TestCDNUnavailable(t *testing.T) {
	cdn, _ := newTestCDN(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := cdn.Script(context.Background())
	if !errors.Is(err, errors.ErrCodeBundleUnavailable) {
		t.Errorf("Script() error = %v, want BUNDLE_UNAVAILABLE", err)
	}
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("Script() error should keep the network cause: %v", err)
	}
}

func TestCDNEmptyBody(t *testing.T) {
	cdn, _ := newTestCDN(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := cdn.Script(context.Background())
	if !errors.Is(err, errors.ErrCodeBundleUnavailable) {
		t.Errorf("Script() error = %v, want BUNDLE_UNAVAILABLE", err)
	}
}

func TestNewCDNDefaults(t *testing.T) {
	cdn := NewCDN("", nil)
	if cdn.URL != DefaultCDNURL {
		t.Errorf("URL = %q, want %q", cdn.URL, DefaultCDNURL)
	}
	if _, ok := cdn.Cache.(*cache.NullCache); !ok {
		t.Errorf("nil cache should become NullCache, got %T", cdn.Cache)
	}
	if cdn.Key() != cache.BundleKey(DefaultCDNURL) {
		t.Error("Key() should derive from the URL")
	}
}
