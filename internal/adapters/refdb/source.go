package refdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/burstcov/pkg/logger"
	"github.com/okian/burstcov/pkg/metrics"
)

const defaultFetchTimeout = 30 * time.Second

// Source yields the raw reference table document.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// FileSource reads the table from a local file.
type FileSource struct {
	Path string
}

// Fetch implements Source.
func (s FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	return data, nil
}

// HTTPSource downloads the table from a URL.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// NewHTTPSource creates an HTTPSource whose requests time out after timeout.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &HTTPSource{URL: url, Client: &http.Client{Timeout: timeout}}
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", s.URL, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

// CachedSource prefers Remote and keeps a local copy at CachePath. When the
// remote fetch fails, or its body does not pass Validate, the cached copy is
// served instead. Only validated bodies are written to the cache.
type CachedSource struct {
	Remote    Source
	CachePath string
	Validate  func([]byte) error
	logger    logger.Logger
}

// NewCachedSource wraps remote with a file cache at cachePath. An empty
// cachePath disables caching. Remote bodies must decode into a valid table.
func NewCachedSource(remote Source, cachePath string, log logger.Logger) *CachedSource {
	if log == nil {
		log = logger.Nop()
	}
	return &CachedSource{Remote: remote, CachePath: cachePath, Validate: validateTable, logger: log}
}

// Fetch implements Source.
func (s *CachedSource) Fetch(ctx context.Context) ([]byte, error) {
	data, remoteErr := s.Remote.Fetch(ctx)
	if remoteErr == nil && s.Validate != nil {
		if err := s.Validate(data); err != nil {
			remoteErr = fmt.Errorf("remote body: %w", err)
		}
	}
	if remoteErr == nil {
		if s.CachePath != "" {
			if err := writeAtomic(s.CachePath, data); err != nil {
				s.logger.Warn(ctx, "reference cache write failed",
					logger.String("path", s.CachePath),
					logger.Error(err),
				)
			}
		}
		return data, nil
	}

	if s.CachePath == "" {
		return nil, fmt.Errorf("%w: %w", ErrReferenceDataUnavailable, remoteErr)
	}
	cached, cacheErr := os.ReadFile(s.CachePath)
	if cacheErr != nil {
		return nil, fmt.Errorf("%w: remote: %w; cache: %w", ErrReferenceDataUnavailable, remoteErr, cacheErr)
	}

	metrics.RecordReferenceCacheFallback()
	s.logger.Warn(ctx, "remote reference fetch failed, serving cached copy",
		logger.String("path", s.CachePath),
		logger.Error(remoteErr),
	)
	return cached, nil
}

func validateTable(data []byte) error {
	parts, err := Decode(data)
	if err != nil {
		return err
	}
	_, err = NewTable(parts)
	return err
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".refdb-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// SourceFor picks the source for a configured location. Without a URL the
// file at path is read directly; with one, path (or cachePath when set) holds
// the cached copy.
func SourceFor(path, url, cachePath string, timeout time.Duration, log logger.Logger) Source {
	if url == "" {
		return FileSource{Path: path}
	}
	if cachePath == "" {
		cachePath = path
	}
	return NewCachedSource(NewHTTPSource(url, timeout), cachePath, log)
}
