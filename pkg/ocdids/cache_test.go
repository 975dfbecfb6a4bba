package ocdids

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleCatalogue = `id,name
ocd-division/country:us,United States
ocd-division/country:us/state:va,Virginia
`

// fakeSource serves canned catalogue content and commit times.
type fakeSource struct {
	commitTime time.Time
	commitErr  error
	content    string
	downloads  int
}

func (s *fakeSource) LatestCommitTime(ctx context.Context, relPath string) (time.Time, error) {
	return s.commitTime, s.commitErr
}

func (s *fakeSource) Download(ctx context.Context, relPath string, dst io.Writer) error {
	s.downloads++
	_, err := io.WriteString(dst, s.content)
	return err
}

func TestCacheLoadDownloads(t *testing.T) {
	src := &fakeSource{commitTime: time.Now(), content: sampleCatalogue}
	cache, err := New(Config{
		CountryCode: "us",
		CacheDir:    t.TempDir(),
		Source:      src,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ids, err := cache.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("got %d ids, want 2", len(ids))
	}
	if got := ids["ocd-division/country:us/state:va"]; got != "Virginia" {
		t.Fatalf("name = %q, want Virginia", got)
	}
}

func TestCacheLoadIsMemoized(t *testing.T) {
	src := &fakeSource{commitTime: time.Now(), content: sampleCatalogue}
	cache, err := New(Config{CountryCode: "us", CacheDir: t.TempDir(), Source: src})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	if _, err := cache.Load(ctx); err != nil {
		t.Fatalf("first Load: %v", err)
	}
	if _, err := cache.Load(ctx); err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if src.downloads != 1 {
		t.Fatalf("downloads = %d, want 1", src.downloads)
	}
}

func TestCacheFreshCopySkipsDownload(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "country-us.csv")
	if err := os.WriteFile(cachePath, []byte(sampleCatalogue), 0o644); err != nil {
		t.Fatal(err)
	}

	// Remote last changed an hour before the cache file was written.
	src := &fakeSource{commitTime: time.Now().Add(-time.Hour), content: "id\nreplaced\n"}
	cache, err := New(Config{CountryCode: "us", CacheDir: dir, Source: src})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ids, err := cache.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if src.downloads != 0 {
		t.Fatalf("downloads = %d, want 0", src.downloads)
	}
	if len(ids) != 2 {
		t.Fatalf("got %d ids, want 2", len(ids))
	}
}

func TestCacheFailedVerificationLeavesCacheUntouched(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "country-us.csv")
	if err := os.WriteFile(cachePath, []byte(sampleCatalogue), 0o644); err != nil {
		t.Fatal(err)
	}
	stale := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(cachePath, stale, stale); err != nil {
		t.Fatal(err)
	}

	src := &fakeSource{commitTime: time.Now(), content: "not,a\ncatalogue"}
	cache, err := New(Config{CountryCode: "us", CacheDir: dir, Source: src})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// The bad download is rejected and the stale cache is served.
	ids, err := cache.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("got %d ids, want 2", len(ids))
	}

	after, err := os.ReadFile(cachePath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(after, []byte(sampleCatalogue)) {
		t.Fatal("cache file was modified by a failed refresh")
	}
	if _, err := os.Stat(cachePath + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("temp file left behind")
	}
}

func TestCacheLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.csv")
	if err := os.WriteFile(path, []byte(sampleCatalogue), 0o644); err != nil {
		t.Fatal(err)
	}

	cache, err := New(Config{LocalFile: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ids, err := cache.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("got %d ids, want 2", len(ids))
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("New accepted an empty config")
	}
	if _, err := New(Config{CountryCode: "us"}); err == nil {
		t.Fatal("New accepted a config without a source")
	}
}

func TestGitHubSource(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/opencivicdata/ocd-division-ids/commits", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("path"); got != "identifiers/country-us.csv" {
			t.Errorf("commits path = %q", got)
		}
		fmt.Fprint(w, `[{"commit":{"committer":{"date":"2026-05-01T10:00:00Z"}}}]`)
	})
	mux.HandleFunc("/opencivicdata/ocd-division-ids/master/identifiers/country-us.csv",
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, sampleCatalogue)
		})
	mux.HandleFunc("/repos/opencivicdata/ocd-division-ids/contents/identifiers",
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `[{"name":"country-us.csv","sha":"abc123"},{"name":"country-ca.csv","sha":"def456"}]`)
		})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	src := &GitHubSource{APIBase: srv.URL, RawBase: srv.URL, Client: srv.Client()}
	ctx := context.Background()

	when, err := src.LatestCommitTime(ctx, "identifiers/country-us.csv")
	if err != nil {
		t.Fatalf("LatestCommitTime: %v", err)
	}
	want := time.Date(2026, time.May, 1, 10, 0, 0, 0, time.UTC)
	if !when.Equal(want) {
		t.Fatalf("commit time = %v, want %v", when, want)
	}

	var buf bytes.Buffer
	if err := src.Download(ctx, "identifiers/country-us.csv", &buf); err != nil {
		t.Fatalf("Download: %v", err)
	}
	if buf.String() != sampleCatalogue {
		t.Fatalf("downloaded %q", buf.String())
	}

	sha, err := src.BlobSHA(ctx, "identifiers", "country-us.csv")
	if err != nil {
		t.Fatalf("BlobSHA: %v", err)
	}
	if sha != "abc123" {
		t.Fatalf("sha = %q, want abc123", sha)
	}
	sha, err = src.BlobSHA(ctx, "identifiers", "country-xx.csv")
	if err != nil {
		t.Fatalf("BlobSHA missing: %v", err)
	}
	if sha != "" {
		t.Fatalf("missing file sha = %q, want empty", sha)
	}
}

func TestGitHubSourceErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	defer srv.Close()

	src := &GitHubSource{APIBase: srv.URL, RawBase: srv.URL, Client: srv.Client()}
	if _, err := src.LatestCommitTime(context.Background(), "identifiers/country-us.csv"); err == nil {
		t.Fatal("LatestCommitTime accepted a 403")
	}
	if err := src.Download(context.Background(), "identifiers/country-us.csv", io.Discard); err == nil {
		t.Fatal("Download accepted a 403")
	}
}

func TestVerifyCatalogue(t *testing.T) {
	tests := []struct {
		name    string
		content string
		valid   bool
	}{
		{"valid", sampleCatalogue, true},
		{"empty", "", false},
		{"no id column", "name,code\nfoo,bar\n", false},
		{"header only", "id,name\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "catalogue.csv")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			err := verifyCatalogue(path)
			if tt.valid && err != nil {
				t.Fatalf("rejected: %v", err)
			}
			if !tt.valid && err == nil {
				t.Fatal("not rejected")
			}
		})
	}
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"ocd-division/country:us", "ocd-division/country:us"},
		{[]byte("ocd-division/country:us"), "ocd-division/country:us"},
		{42, ""},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := NormalizeID(tt.in); got != tt.want {
			t.Errorf("NormalizeID(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
