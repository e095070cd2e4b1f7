package retrieval

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/geneontology/gopreprocess/internal/apperr"
	"github.com/geneontology/gopreprocess/internal/config"
	"github.com/geneontology/gopreprocess/internal/logger"
)

type Options struct {
	CacheDir   string
	Retries    int
	RetryDelay time.Duration
	Timeout    time.Duration
	Parallel   int
	// Refresh forces a new download even when a cached copy exists.
	Refresh bool
}

// Service resolves logical source keys to local files, downloading and
// decompressing them into a per-key cache directory.
type Service struct {
	sources map[string]config.Source
	opts    Options
	client  *http.Client
	log     *logger.Logger

	mu      sync.Mutex
	fetched map[string]string
}

func NewService(sources map[string]config.Source, opts Options, log *logger.Logger) *Service {
	if opts.Retries < 1 {
		opts.Retries = 1
	}
	if opts.Parallel < 1 {
		opts.Parallel = 1
	}
	return &Service{
		sources: sources,
		opts:    opts,
		client:  &http.Client{Timeout: opts.Timeout},
		log:     logger.OrNop(log),
		fetched: make(map[string]string),
	}
}

// FromConfig builds a Service from the retrieval section of cfg.
func FromConfig(cfg *config.Config, log *logger.Logger) *Service {
	r := cfg.Retrieval
	return NewService(cfg.Sources, Options{
		CacheDir:   r.CacheDir,
		Retries:    r.Retries,
		RetryDelay: r.RetryDelay,
		Timeout:    r.Timeout,
		Parallel:   r.Parallel,
	}, log)
}

// Fetch returns the local path of the file behind key.
func (s *Service) Fetch(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	if p, ok := s.fetched[key]; ok {
		s.mu.Unlock()
		return p, nil
	}
	s.mu.Unlock()

	src, ok := s.sources[key]
	if !ok {
		return "", apperr.Retrievalf("fetch "+key, "no source configured")
	}
	dest := s.localPath(key, src)
	if !s.opts.Refresh {
		if st, err := os.Stat(dest); err == nil && st.Size() > 0 {
			s.log.Debug("using cached file", "key", key, "path", dest)
			s.remember(key, dest)
			return dest, nil
		}
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", apperr.New(apperr.Retrieval, "fetch "+key, err)
	}

	attempt := 0
	op := func() error {
		attempt++
		err := s.download(ctx, src, dest)
		if err != nil {
			s.log.Warn("download failed", "key", key, "attempt", attempt, "error", err)
		}
		return err
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.opts.RetryDelay), uint64(s.opts.Retries-1)),
		ctx,
	)
	if err := backoff.Retry(op, policy); err != nil {
		return "", apperr.New(apperr.Retrieval, "fetch "+key, fmt.Errorf("after %d attempts: %w", attempt, err))
	}
	s.log.Info("downloaded", "key", key, "path", dest, "attempts", attempt)
	s.remember(key, dest)
	return dest, nil
}

// FetchAll downloads keys concurrently and returns key → path.
func (s *Service) FetchAll(ctx context.Context, keys ...string) (map[string]string, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Parallel)

	var mu sync.Mutex
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		key := key
		g.Go(func() error {
			p, err := s.Fetch(gctx, key)
			if err != nil {
				return err
			}
			mu.Lock()
			out[key] = p
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) remember(key, p string) {
	s.mu.Lock()
	s.fetched[key] = p
	s.mu.Unlock()
}

// localPath is <cache>/<key>/<file name without .gz when gunzipping>.
func (s *Service) localPath(key string, src config.Source) string {
	name := key
	if u, err := url.Parse(src.URL); err == nil && path.Base(u.Path) != "" && path.Base(u.Path) != "/" {
		name = path.Base(u.Path)
	}
	if src.Gunzip {
		name = strings.TrimSuffix(name, ".gz")
	}
	return filepath.Join(s.opts.CacheDir, key, name)
}

func (s *Service) download(ctx context.Context, src config.Source, dest string) error {
	body, err := s.open(ctx, src.URL)
	if err != nil {
		return err
	}
	defer body.Close()

	var r io.Reader = body
	if src.Gunzip {
		zr, err := newGzipReader(body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("gunzip %s: %w", src.URL, err))
		}
		defer zr.Close()
		r = zr
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*.part")
	if err != nil {
		return backoff.Permanent(err)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}

// open supports http(s) URLs, file:// URLs and plain local paths.
func (s *Service) open(ctx context.Context, raw string) (io.ReadCloser, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	switch u.Scheme {
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			err := fmt.Errorf("GET %s: %s", raw, resp.Status)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return resp.Body, nil
	case "file":
		return openLocal(u.Path)
	case "":
		return openLocal(raw)
	}
	return nil, backoff.Permanent(fmt.Errorf("unsupported scheme %q", u.Scheme))
}

func openLocal(p string) (io.ReadCloser, error) {
	f, err := os.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, backoff.Permanent(err)
	}
	return f, err
}
