package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pshelf/pshelf/pkg/cache"
	"github.com/pshelf/pshelf/pkg/feed"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	expected := filepath.Join("/tmp/custom-cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestRootCommandSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	if root.Use != "pshelf" {
		t.Errorf("root.Use = %q, want %q", root.Use, "pshelf")
	}

	names := map[string]bool{}
	for _, cmd := range root.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"search", "find", "versions", "download", "deps", "repo", "cache", "completion"} {
		if !names[want] {
			t.Errorf("root command is missing subcommand %q", want)
		}
	}
}

// stubClient counts Find calls so cache hits and misses are observable.
type stubClient struct {
	result feed.Result
	err    error
	calls  int
}

func (s *stubClient) Find(ctx context.Context, q feed.Query) (feed.Result, error) {
	s.calls++
	return s.result, s.err
}

func (s *stubClient) FindByCommand(ctx context.Context, names []string, prerelease bool) (feed.Result, error) {
	return feed.Result{}, feed.ErrUnsupported
}

func (s *stubClient) Download(ctx context.Context, name, version string) (io.ReadCloser, error) {
	return nil, feed.ErrUnsupported
}

func TestFindCached(t *testing.T) {
	ctx := context.Background()
	c := New(io.Discard, LogInfo)

	store, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	defer store.Close()

	stub := &stubClient{result: feed.Result{Pages: []string{"<feed/>"}, Format: feed.FormatXML}}
	q := feed.Query{Name: "Carbon"}

	res, cached, err := c.findCached(ctx, store, stub, "https://feed.test/api/v2", q, false)
	if err != nil {
		t.Fatalf("findCached() error: %v", err)
	}
	if cached {
		t.Error("first lookup should not be served from cache")
	}
	if stub.calls != 1 {
		t.Errorf("calls = %d, want 1", stub.calls)
	}
	if len(res.Pages) != 1 || res.Pages[0] != "<feed/>" {
		t.Errorf("unexpected pages %v", res.Pages)
	}

	res, cached, err = c.findCached(ctx, store, stub, "https://feed.test/api/v2", q, false)
	if err != nil {
		t.Fatalf("findCached() repeat error: %v", err)
	}
	if !cached {
		t.Error("repeat lookup should be served from cache")
	}
	if stub.calls != 1 {
		t.Errorf("calls = %d after cache hit, want 1", stub.calls)
	}
	if res.Format != feed.FormatXML {
		t.Errorf("Format = %q, want %q", res.Format, feed.FormatXML)
	}

	_, cached, err = c.findCached(ctx, store, stub, "https://feed.test/api/v2", q, true)
	if err != nil {
		t.Fatalf("findCached() refresh error: %v", err)
	}
	if cached {
		t.Error("refresh should bypass the cache")
	}
	if stub.calls != 2 {
		t.Errorf("calls = %d after refresh, want 2", stub.calls)
	}
}

func TestFindCachedDistinctQueries(t *testing.T) {
	ctx := context.Background()
	c := New(io.Discard, LogInfo)

	store, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	defer store.Close()

	stub := &stubClient{result: feed.Result{Pages: []string{"<feed/>"}}}

	if _, _, err := c.findCached(ctx, store, stub, "https://feed.test", feed.Query{Name: "Carbon"}, false); err != nil {
		t.Fatalf("findCached() error: %v", err)
	}
	if _, _, err := c.findCached(ctx, store, stub, "https://feed.test", feed.Query{Name: "Carbon", Prerelease: true}, false); err != nil {
		t.Fatalf("findCached() error: %v", err)
	}
	if stub.calls != 2 {
		t.Errorf("calls = %d, want 2 for distinct queries", stub.calls)
	}

	_, cached, err := c.findCached(ctx, store, stub, "https://feed.test", feed.Query{Name: "Carbon"}, false)
	if err != nil {
		t.Fatalf("findCached() error: %v", err)
	}
	if !cached || stub.calls != 2 {
		t.Errorf("cached = %v, calls = %d, want cache hit without a new call", cached, stub.calls)
	}
}

func TestFindCachedDoesNotCacheFailures(t *testing.T) {
	ctx := context.Background()
	c := New(io.Discard, LogInfo)

	store, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	defer store.Close()

	stub := &stubClient{
		result: feed.Result{Pages: []string{"partial page"}},
		err:    feed.ErrConnection,
	}
	q := feed.Query{Name: "Carbon"}

	res, cached, err := c.findCached(ctx, store, stub, "https://feed.test", q, false)
	if !errors.Is(err, feed.ErrConnection) {
		t.Fatalf("err = %v, want ErrConnection", err)
	}
	if cached {
		t.Error("failed lookup reported as cached")
	}
	if len(res.Pages) != 1 {
		t.Errorf("partial pages lost: %v", res.Pages)
	}

	if _, _, err := c.findCached(ctx, store, stub, "https://feed.test", q, false); !errors.Is(err, feed.ErrConnection) {
		t.Fatalf("repeat err = %v, want ErrConnection", err)
	}
	if stub.calls != 2 {
		t.Errorf("calls = %d, want 2: partial results must not be cached", stub.calls)
	}
}

func TestRangeKey(t *testing.T) {
	if got := rangeKey(nil); got != "" {
		t.Errorf("rangeKey(nil) = %q, want empty", got)
	}

	r, err := feed.ParseRange("[1.0.0, 2.0.0)")
	if err != nil {
		t.Fatalf("ParseRange() error: %v", err)
	}
	if got := rangeKey(r); got != "[1.0.0, 2.0.0)" {
		t.Errorf("rangeKey() = %q, want %q", got, "[1.0.0, 2.0.0)")
	}

	if got := rangeKey(&feed.VersionRange{}); got != "*" {
		t.Errorf("rangeKey(unbounded) = %q, want %q", got, "*")
	}
}

func TestNewCacheDisabled(t *testing.T) {
	t.Setenv(redisEnv, "")

	store, err := newCache(context.Background(), true)
	if err != nil {
		t.Fatalf("newCache() error: %v", err)
	}
	defer store.Close()

	if err := store.Set(context.Background(), "key", []byte("data"), 0); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if _, ok, _ := store.Get(context.Background(), "key"); ok {
		t.Error("disabled cache returned a hit")
	}
}

func TestNewCacheFileBacked(t *testing.T) {
	t.Setenv(redisEnv, "")
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	store, err := newCache(context.Background(), false)
	if err != nil {
		t.Fatalf("newCache() error: %v", err)
	}
	defer store.Close()

	if err := store.Set(context.Background(), "key", []byte("data"), 0); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	data, ok, err := store.Get(context.Background(), "key")
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v after Set", ok, err)
	}
	if string(data) != "data" {
		t.Errorf("Get() = %q, want %q", data, "data")
	}
}
