package ocdids

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Source retrieves the identifier catalogue for one country from a
// remote authority.
type Source interface {
	// LatestCommitTime returns the commit timestamp of the catalogue
	// file's most recent change.
	LatestCommitTime(ctx context.Context, relPath string) (time.Time, error)

	// Download streams the catalogue file's current content into dst.
	Download(ctx context.Context, relPath string, dst io.Writer) error
}

// Config configures a Cache.
type Config struct {
	// CountryCode selects the catalogue file, e.g. "us" for
	// country-us.csv.
	CountryCode string

	// LocalFile, when set, bypasses the remote entirely and reads the
	// catalogue from disk.
	LocalFile string

	// CacheDir holds the downloaded catalogue between runs. Defaults to
	// a scrutineer directory under the user cache dir.
	CacheDir string

	Source Source
	Logger *slog.Logger
}

// Cache loads and caches the official jurisdiction identifier
// catalogue for one country. The catalogue is fetched at most once per
// Cache instance; every rule sharing the instance sees the same data.
type Cache struct {
	cfg     Config
	relPath string

	once sync.Once
	ids  map[string]string
	err  error
}

// New validates the configuration and builds a cache. Either LocalFile
// or both CountryCode and Source must be set.
func New(cfg Config) (*Cache, error) {
	if cfg.LocalFile == "" {
		if cfg.CountryCode == "" {
			return nil, fmt.Errorf("country code cannot be empty")
		}
		if cfg.Source == nil {
			return nil, fmt.Errorf("source cannot be nil")
		}
	}
	if cfg.CacheDir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = os.TempDir()
		}
		cfg.CacheDir = filepath.Join(base, "scrutineer")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Cache{
		cfg:     cfg,
		relPath: "identifiers/country-" + strings.ToLower(cfg.CountryCode) + ".csv",
	}, nil
}

// Load returns the identifier catalogue, keyed by identifier with the
// display name as value. The first call performs the load; later calls
// return the memoized result.
func (c *Cache) Load(ctx context.Context) (map[string]string, error) {
	c.once.Do(func() {
		c.ids, c.err = c.load(ctx)
	})
	return c.ids, c.err
}

// Refresh downloads the catalogue regardless of cache freshness and
// returns the cache path. It does not touch the memoized Load result.
func (c *Cache) Refresh(ctx context.Context) (string, error) {
	if c.cfg.LocalFile != "" {
		return "", fmt.Errorf("catalogue is pinned to local file %s", c.cfg.LocalFile)
	}
	cachePath := filepath.Join(c.cfg.CacheDir, filepath.Base(c.relPath))
	if err := c.refresh(ctx, cachePath); err != nil {
		return "", err
	}
	return cachePath, nil
}

func (c *Cache) load(ctx context.Context) (map[string]string, error) {
	if c.cfg.LocalFile != "" {
		return readCatalogue(c.cfg.LocalFile)
	}

	cachePath := filepath.Join(c.cfg.CacheDir, filepath.Base(c.relPath))
	if fresh, err := c.cacheIsFresh(ctx, cachePath); err == nil && fresh {
		c.cfg.Logger.Debug("ocd cache is fresh", "path", cachePath)
		return readCatalogue(cachePath)
	}

	if err := c.refresh(ctx, cachePath); err != nil {
		// A stale cache beats no data when the remote is unreachable.
		if _, statErr := os.Stat(cachePath); statErr == nil {
			c.cfg.Logger.Warn("ocd refresh failed, using stale cache",
				"path", cachePath, "error", err)
			return readCatalogue(cachePath)
		}
		return nil, err
	}
	return readCatalogue(cachePath)
}

// cacheIsFresh reports whether the cached file is at least as new as
// the remote catalogue's latest commit.
func (c *Cache) cacheIsFresh(ctx context.Context, cachePath string) (bool, error) {
	info, err := os.Stat(cachePath)
	if err != nil {
		return false, err
	}
	remote, err := c.cfg.Source.LatestCommitTime(ctx, c.relPath)
	if err != nil {
		return false, err
	}
	return !info.ModTime().Before(remote), nil
}

// refresh downloads the catalogue into a temp file, verifies it, and
// atomically moves it into place. A failed verification leaves any
// existing cache untouched.
func (c *Cache) refresh(ctx context.Context, cachePath string) error {
	if err := os.MkdirAll(c.cfg.CacheDir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmpPath := cachePath + ".tmp"
	tmp, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpPath)

	if err := c.cfg.Source.Download(ctx, c.relPath, tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to download catalogue: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := verifyCatalogue(tmpPath); err != nil {
		return fmt.Errorf("downloaded catalogue failed verification: %w", err)
	}

	if err := os.Rename(tmpPath, cachePath); err != nil {
		return fmt.Errorf("failed to install catalogue: %w", err)
	}
	c.cfg.Logger.Info("ocd catalogue refreshed", "path", cachePath)
	return nil
}

// verifyCatalogue checks that a downloaded file is a non-empty CSV with
// an id column.
func verifyCatalogue(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("empty or unreadable catalogue: %w", err)
	}
	if idColumn(header) < 0 {
		return fmt.Errorf("catalogue has no id column")
	}
	if _, err := r.Read(); err != nil {
		return fmt.Errorf("catalogue has no rows: %w", err)
	}
	return nil
}

// readCatalogue parses the catalogue CSV into an id -> name map.
func readCatalogue(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalogue: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue header: %w", err)
	}
	idCol := idColumn(header)
	if idCol < 0 {
		return nil, fmt.Errorf("catalogue has no id column")
	}
	nameCol := -1
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), "name") {
			nameCol = i
		}
	}

	ids := make(map[string]string)
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalogue row: %w", err)
		}
		if idCol >= len(record) {
			continue
		}
		id := strings.TrimSpace(record[idCol])
		if id == "" {
			continue
		}
		name := ""
		if nameCol >= 0 && nameCol < len(record) {
			name = strings.TrimSpace(record[nameCol])
		}
		ids[id] = name
	}
	return ids, nil
}

func idColumn(header []string) int {
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), "id") {
			return i
		}
	}
	return -1
}

// NormalizeID coerces a raw identifier value to the string form used
// for catalogue lookups. Strings pass through, byte slices are decoded
// as UTF-8, anything else never matches.
func NormalizeID(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case []byte:
		return string(value)
	default:
		return ""
	}
}
