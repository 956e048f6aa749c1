package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	r := NoopRenderHooks{}
	r.OnRenderStart(ctx, "file")
	r.OnRenderComplete(ctx, "file", 1024, time.Second, nil)

	n := NoopNotebookHooks{}
	n.OnDisplay(ctx, "plot", 512, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "bundle")
	c.OnCacheMiss(ctx, "bundle")
	c.OnCacheSet(ctx, "bundle", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "cdn.plot.ly", "/plotly-latest.min.js")
	h.OnResponse(ctx, "GET", "cdn.plot.ly", "/plotly-latest.min.js", 200, time.Second)
	h.OnError(ctx, "GET", "cdn.plot.ly", "/plotly-latest.min.js", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Render() should return NoopRenderHooks by default")
	}
	if _, ok := Notebook().(NoopNotebookHooks); !ok {
		t.Error("Notebook() should return NoopNotebookHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customRender := &testRenderHooks{}
	SetRenderHooks(customRender)
	if Render() != customRender {
		t.Error("SetRenderHooks should set custom hooks")
	}

	customNotebook := &testNotebookHooks{}
	SetNotebookHooks(customNotebook)
	if Notebook() != customNotebook {
		t.Error("SetNotebookHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Reset() should restore NoopRenderHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testRenderHooks{}
	SetRenderHooks(custom)
	SetRenderHooks(nil)

	if Render() != custom {
		t.Error("SetRenderHooks(nil) should be ignored")
	}
}

func TestLogHooks(t *testing.T) {
	Reset()
	defer Reset()

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	NewLogHooks(logger).Install()

	ctx := context.Background()
	Render().OnRenderComplete(ctx, "div", 42, time.Millisecond, nil)
	Cache().OnCacheMiss(ctx, "bundle")
	HTTP().OnError(ctx, "GET", "cdn.plot.ly", "/x.js", errors.New("boom"))
	Notebook().OnDisplay(ctx, "bootstrap", 10, nil)

	out := buf.String()
	for _, want := range []string{"render done", "cache miss", "http error", "boom", "notebook display"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

// Test implementations
type testRenderHooks struct{ NoopRenderHooks }
type testNotebookHooks struct{ NoopNotebookHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
