package assetcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Defaults for the audio cache
const (
	DefaultMaxEntries = 500
	DefaultExtension  = ".mp3"
	downloadTimeout   = 30 * time.Second
	partSuffix        = ".part"
)

// ErrEmptyRef is returned for an empty asset reference
var ErrEmptyRef = errors.New("assetcache: empty reference")

var validExt = regexp.MustCompile(`^\.[a-z0-9]{1,5}$`)

// Cache stores downloaded audio files on local disk. The least recently used
// files are removed once more than the configured number are cached.
type Cache struct {
	dir    string
	client *http.Client
	log    *log.Logger
	group  singleflight.Group
	index  *lru.Cache[string, string]
}

// New opens a cache in dir and indexes the files already present
func New(dir string, maxEntries int, logger *log.Logger) (*Cache, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create asset cache directory: %w", err)
	}

	c := &Cache{
		dir:    dir,
		client: &http.Client{Timeout: downloadTimeout},
		log:    logger,
	}
	index, err := lru.NewWithEvict(maxEntries, c.onEvict)
	if err != nil {
		return nil, fmt.Errorf("failed to create asset index: %w", err)
	}
	c.index = index

	if err := c.rebuild(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cache) onEvict(key, name string) {
	if err := os.Remove(filepath.Join(c.dir, name)); err != nil && !os.IsNotExist(err) {
		c.log.Warn("failed to remove evicted asset", "file", name, "err", err)
	}
}

// rebuild indexes existing files from oldest to newest so recency survives restarts
func (c *Cache) rebuild() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("failed to read asset cache directory: %w", err)
	}

	type file struct {
		name    string
		modTime time.Time
	}
	var files []file
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), partSuffix) {
			os.Remove(filepath.Join(c.dir, e.Name()))
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, file{name: e.Name(), modTime: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].modTime.Before(files[j].modTime) })

	for _, f := range files {
		key := strings.TrimSuffix(f.name, filepath.Ext(f.name))
		c.index.Add(key, f.name)
	}
	return nil
}

// Key returns the cache key of a reference
func Key(ref string) string {
	sum := sha256.Sum256([]byte(ref))
	return hex.EncodeToString(sum[:])
}

// Extension infers a file extension from the reference path
func Extension(ref string) string {
	p := ref
	if u, err := url.Parse(ref); err == nil {
		p = u.Path
	}
	ext := strings.ToLower(path.Ext(p))
	if !validExt.MatchString(ext) {
		return DefaultExtension
	}
	return ext
}

// Get returns a local path for ref, downloading it when needed. When the
// download fails the remote reference itself is returned, so callers must
// accept either form.
func (c *Cache) Get(ctx context.Context, ref string) string {
	local, err := c.Fetch(ctx, ref)
	if err != nil {
		if !errors.Is(err, ErrEmptyRef) {
			c.log.Warn("serving remote asset", "ref", ref, "err", err)
		}
		return ref
	}
	return local
}

// Fetch is like Get but reports download failures
func (c *Cache) Fetch(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrEmptyRef
	}

	key := Key(ref)
	if local, ok := c.lookup(key); ok {
		return local, nil
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		if local, ok := c.lookup(key); ok {
			return local, nil
		}
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), downloadTimeout)
		defer cancel()
		return c.download(dctx, key, ref)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Cache) lookup(key string) (string, bool) {
	name, ok := c.index.Get(key)
	if !ok {
		return "", false
	}
	local := filepath.Join(c.dir, name)
	if _, err := os.Stat(local); err != nil {
		c.index.Remove(key)
		return "", false
	}
	return local, true
}

func (c *Cache) download(ctx context.Context, key, ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("unsupported asset reference %q", ref)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download asset: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download asset: %s", resp.Status)
	}

	tmp, err := os.CreateTemp(c.dir, key+"-*"+partSuffix)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write asset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write asset: %w", err)
	}

	name := key + Extension(ref)
	local := filepath.Join(c.dir, name)
	if err := os.Rename(tmp.Name(), local); err != nil {
		return "", fmt.Errorf("failed to store asset: %w", err)
	}

	c.index.Add(key, name)
	c.log.Debug("cached asset", "ref", ref, "file", name)
	return local, nil
}

// Stats describes the cache contents
type Stats struct {
	Entries int
	Bytes   int64
}

// Stats returns the number and total size of cached files
func (c *Cache) Stats() Stats {
	var s Stats
	for _, name := range c.index.Values() {
		info, err := os.Stat(filepath.Join(c.dir, name))
		if err != nil {
			continue
		}
		s.Entries++
		s.Bytes += info.Size()
	}
	return s
}

// Clear removes every cached file
func (c *Cache) Clear() error {
	c.index.Purge()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("failed to read asset cache directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", e.Name(), err)
		}
	}
	return nil
}
