package cache

import (
	"bufio"
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"time"
)

// CacheConfig holds cache configuration
type CacheConfig struct {
	Directory string
	TTL       time.Duration
}

// FileCachingTransport implements http.RoundTripper with file-based caching.
// Only successful GET responses are stored.
type FileCachingTransport struct {
	config    CacheConfig
	transport http.RoundTripper
	now       func() time.Time
}

// NewFileCachingTransport creates a new caching transport
func NewFileCachingTransport(config CacheConfig, transport http.RoundTripper) *FileCachingTransport {
	return &FileCachingTransport{
		config:    config,
		transport: transport,
		now:       time.Now,
	}
}

// RoundTrip implements http.RoundTripper with caching
func (t *FileCachingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.transport.RoundTrip(req)
	}

	cacheKey := makeCacheKey(req)

	if !t.cacheExpired(cacheKey) {
		if cachedResp, err := t.readCacheEntry(cacheKey, req); err == nil {
			slog.Info("cache hit", "url", req.URL.String())
			return cachedResp, nil
		}
	}

	slog.Debug("cache miss", "url", req.URL.String())
	resp, err := t.transport.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, nil
	}

	// DumpResponse drains the body, so hand back the stored copy
	if err := t.writeCacheEntry(cacheKey, resp); err != nil {
		slog.Warn("failed to write cache entry", "url", req.URL.String(), "error", err)
		return resp, nil
	}
	return t.readCacheEntry(cacheKey, req)
}

// makeCacheKey creates a cache key from the request URL
func makeCacheKey(req *http.Request) string {
	md5sum := md5.Sum([]byte(req.URL.String()))
	cacheKey := hex.EncodeToString(md5sum[:])

	if ext := filepath.Ext(req.URL.Path); ext != "" {
		return cacheKey + "-" + ext[1:]
	}
	return cacheKey
}

// cachePath returns the file path for a cache key
func (t *FileCachingTransport) cachePath(cacheKey string) string {
	return filepath.Join(t.config.Directory, cacheKey)
}

// cacheExpired checks if a cache entry is missing or older than the TTL
func (t *FileCachingTransport) cacheExpired(cacheKey string) bool {
	stat, err := os.Stat(t.cachePath(cacheKey))
	if err != nil {
		return true
	}
	return t.now().Sub(stat.ModTime()) >= t.config.TTL
}

// readCacheEntry reads a cached HTTP response
func (t *FileCachingTransport) readCacheEntry(cacheKey string, req *http.Request) (*http.Response, error) {
	data, err := os.ReadFile(t.cachePath(cacheKey))
	if err != nil {
		return nil, err
	}

	return http.ReadResponse(bufio.NewReader(bytes.NewReader(data)), req)
}

// writeCacheEntry writes an HTTP response to cache via a temp file so
// concurrent readers never see a partial entry
func (t *FileCachingTransport) writeCacheEntry(cacheKey string, resp *http.Response) error {
	path := t.cachePath(cacheKey)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	dumpedBytes, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return fmt.Errorf("failed to dump response: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), cacheKey+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(dumpedBytes); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move cache file into place: %w", err)
	}

	return nil
}
