package cache

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

func newCountingServer(t *testing.T, status int) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&hits, 1)
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"hit": %d}`, n)
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func get(t *testing.T, client *http.Client, url string) (int, string) {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("Get(%s) unexpected error: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestFileCachingTransport_CachesSuccess(t *testing.T) {
	server, hits := newCountingServer(t, http.StatusOK)
	transport := NewFileCachingTransport(CacheConfig{Directory: t.TempDir(), TTL: time.Hour}, http.DefaultTransport)
	client := &http.Client{Transport: transport}

	_, first := get(t, client, server.URL+"/curse.json")
	_, second := get(t, client, server.URL+"/curse.json")

	if first != `{"hit": 1}` || second != first {
		t.Errorf("bodies = %q, %q, want the first response twice", first, second)
	}
	if atomic.LoadInt32(hits) != 1 {
		t.Errorf("server hits = %d, want 1", atomic.LoadInt32(hits))
	}
}

func TestFileCachingTransport_Expiry(t *testing.T) {
	server, hits := newCountingServer(t, http.StatusOK)
	transport := NewFileCachingTransport(CacheConfig{Directory: t.TempDir(), TTL: time.Hour}, http.DefaultTransport)
	client := &http.Client{Transport: transport}

	get(t, client, server.URL+"/tukui.json")

	transport.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, body := get(t, client, server.URL+"/tukui.json")

	if body != `{"hit": 2}` {
		t.Errorf("body = %q, want a fresh response", body)
	}
	if atomic.LoadInt32(hits) != 2 {
		t.Errorf("server hits = %d, want 2", atomic.LoadInt32(hits))
	}
}

func TestFileCachingTransport_SkipsFailures(t *testing.T) {
	server, hits := newCountingServer(t, http.StatusInternalServerError)
	dir := t.TempDir()
	transport := NewFileCachingTransport(CacheConfig{Directory: dir, TTL: time.Hour}, http.DefaultTransport)
	client := &http.Client{Transport: transport}

	status, _ := get(t, client, server.URL+"/wowi.json")
	get(t, client, server.URL+"/wowi.json")

	if status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", status)
	}
	if atomic.LoadInt32(hits) != 2 {
		t.Errorf("server hits = %d, want 2", atomic.LoadInt32(hits))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("cache entries = %d, want 0", len(entries))
	}
}

func TestMakeCacheKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://example.com/releases/latest/download/curse.json", nil)
	key := makeCacheKey(req)

	if len(key) != 32+len("-json") || key[32:] != "-json" {
		t.Errorf("makeCacheKey() = %q, want md5 hex plus -json", key)
	}

	other := httptest.NewRequest(http.MethodGet, "https://example.com/releases/latest/download/tukui.json", nil)
	if makeCacheKey(other) == key {
		t.Error("different URLs should not share a cache key")
	}
}
