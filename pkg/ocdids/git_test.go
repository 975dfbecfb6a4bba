package ocdids

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const catalogueCSV = "id,name\nocd-division/country:us,United States\n"

// initRepo builds a repository with the catalogue committed first and
// an unrelated file committed later, so the head is newer than the
// catalogue's own last change.
func initRepo(t *testing.T) (string, *gogit.Repository, time.Time) {
	t.Helper()
	dir := t.TempDir()

	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit() error = %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree() error = %v", err)
	}

	if err := os.MkdirAll(filepath.Join(dir, "identifiers"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "identifiers", "country-us.csv"), []byte(catalogueCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := wt.Add("identifiers/country-us.csv"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	first := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	if _, err := wt.Commit("add catalogue", &gogit.CommitOptions{
		Author: &object.Signature{Name: "ci", Email: "ci@example.com", When: first},
	}); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("identifiers\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := wt.Add("README.md"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	head := first.Add(48 * time.Hour)
	if _, err := wt.Commit("add readme", &gogit.CommitOptions{
		Author: &object.Signature{Name: "ci", Email: "ci@example.com", When: head},
	}); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	return dir, repo, head
}

func TestGitSourceLatestCommitTimeIsHeadTime(t *testing.T) {
	dir, repo, head := initRepo(t)

	s := &GitSource{URL: dir, LocalPath: dir}
	s.repo = repo

	// Head time bounds every path, including files the head commit
	// did not touch.
	got, err := s.LatestCommitTime(context.Background(), "identifiers/country-us.csv")
	if err != nil {
		t.Fatalf("LatestCommitTime() error = %v", err)
	}
	if !got.Equal(head) {
		t.Errorf("LatestCommitTime() = %v, want %v", got, head)
	}
}

func TestGitSourceDownload(t *testing.T) {
	dir, repo, _ := initRepo(t)

	s := &GitSource{URL: dir, LocalPath: dir}
	s.repo = repo

	var buf bytes.Buffer
	if err := s.Download(context.Background(), "identifiers/country-us.csv", &buf); err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if buf.String() != catalogueCSV {
		t.Errorf("Download() = %q, want %q", buf.String(), catalogueCSV)
	}
}
