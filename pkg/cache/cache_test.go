package cache

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// SHA-256 produces 64 hex chars
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestBundleKey(t *testing.T) {
	a := BundleKey("https://cdn.plot.ly/plotly-latest.min.js")
	b := BundleKey("https://cdn.plot.ly/plotly-2.35.2.min.js")
	if a == b {
		t.Error("different sources should produce different keys")
	}
	if a != BundleKey("https://cdn.plot.ly/plotly-latest.min.js") {
		t.Error("BundleKey should be deterministic")
	}
	if a[:7] != "bundle:" {
		t.Errorf("BundleKey should be namespaced: %s", a)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	payload := bytes.Repeat([]byte("plotly"), 1024)

	if _, hit, _ := c.Get(ctx, "lib"); hit {
		t.Fatal("empty cache should miss")
	}
	if err := c.Set(ctx, "lib", payload, 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	got, hit, err := c.Get(ctx, "lib")
	if err != nil || !hit {
		t.Fatalf("Get = hit %v, err %v; want hit", hit, err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("Get returned different bytes")
	}

	if err := c.Delete(ctx, "lib"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "lib"); hit {
		t.Error("deleted key should miss")
	}
	if err := c.Delete(ctx, "lib"); err != nil {
		t.Errorf("Delete of missing key should not fail: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatal("fresh entry should hit")
	}

	time.Sleep(20 * time.Millisecond)

	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("k") + dataExt); !os.IsNotExist(err) {
		t.Error("expired entry should be removed from disk")
	}
}

func TestFileCacheTornWrite(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("complete"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := os.WriteFile(c.path("k")+dataExt, []byte("part"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("size mismatch should be treated as a miss")
	}
}

func TestFileCacheEntriesAndClear(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "bundles")
	c, _ := NewFileCache(dir)

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("22"), time.Hour)

	entries, err := c.Entries()
	if err != nil {
		t.Fatalf("Entries error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Entries len = %d, want 2", len(entries))
	}
	sizes := map[string]int{}
	for _, e := range entries {
		sizes[e.Key] = e.Size
	}
	if sizes["a"] != 1 || sizes["b"] != 2 {
		t.Errorf("Entries sizes = %v", sizes)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	entries, _ = c.Entries()
	if len(entries) != 0 {
		t.Errorf("Entries after Clear = %d, want 0", len(entries))
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("Clear should recreate the directory: %v", err)
	}
}

func TestWithPrefix(t *testing.T) {
	ctx := context.Background()
	base, _ := NewFileCache(t.TempDir())

	a := WithPrefix(base, "a:")
	b := WithPrefix(base, "b:")

	_ = a.Set(ctx, "key", []byte("from-a"), 0)
	_ = b.Set(ctx, "key", []byte("from-b"), 0)

	got, _, _ := a.Get(ctx, "key")
	if string(got) != "from-a" {
		t.Errorf("a.Get = %q, want from-a", got)
	}
	got, _, _ = base.Get(ctx, "b:key")
	if string(got) != "from-b" {
		t.Errorf("base.Get(b:key) = %q, want from-b", got)
	}

	nested := WithPrefix(a, "x:")
	_ = nested.Set(ctx, "k", []byte("n"), 0)
	if _, hit, _ := base.Get(ctx, "a:x:k"); !hit {
		t.Error("nested prefixes should concatenate")
	}

	if WithPrefix(base, "") != Cache(base) {
		t.Error("empty prefix should return the inner cache")
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("OFFLINEPLOT_TEST_REDIS")
	if addr == "" {
		t.Skip("OFFLINEPLOT_TEST_REDIS not set")
	}
	ctx := context.Background()

	rc, err := NewRedisCache(ctx, RedisConfig{Addr: addr})
	if err != nil {
		t.Fatalf("NewRedisCache error: %v", err)
	}
	c := WithPrefix(rc, "offlineplot-test:"+t.Name()+":")
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	got, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(got) != "v" {
		t.Fatalf("Get = %q, %v, %v", got, hit, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("deleted key should miss")
	}
}
