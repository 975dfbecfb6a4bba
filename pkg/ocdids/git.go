package ocdids

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// GitSource keeps a shallow clone of the identifier repository and
// serves catalogue data from its worktree.
type GitSource struct {
	// URL is the clone URL of the identifier repository.
	URL string

	// LocalPath is where the clone lives; defaults to a directory under
	// the temp dir.
	LocalPath string

	// Branch defaults to master, the identifier repository's default.
	Branch string

	// Timeout bounds clone and fetch operations.
	Timeout time.Duration

	mu   sync.Mutex
	repo *gogit.Repository
}

func (s *GitSource) localPath() string {
	if s.LocalPath == "" {
		return filepath.Join(os.TempDir(), "scrutineer-ocdids")
	}
	return s.LocalPath
}

func (s *GitSource) branch() string {
	if s.Branch == "" {
		return "master"
	}
	return s.Branch
}

func (s *GitSource) timeout() time.Duration {
	if s.Timeout <= 0 {
		return 2 * time.Minute
	}
	return s.Timeout
}

// open clones the repository on first use, or opens and updates an
// existing clone.
func (s *GitSource) open(ctx context.Context) (*gogit.Repository, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repo != nil {
		return s.repo, nil
	}
	if s.URL == "" {
		return nil, fmt.Errorf("repository URL cannot be empty")
	}

	opCtx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	path := s.localPath()
	if _, err := os.Stat(filepath.Join(path, ".git")); err == nil {
		repo, err := gogit.PlainOpen(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open existing clone: %w", err)
		}
		worktree, err := repo.Worktree()
		if err != nil {
			return nil, fmt.Errorf("failed to get worktree: %w", err)
		}
		err = worktree.PullContext(opCtx, &gogit.PullOptions{RemoteName: "origin"})
		if err != nil && err != gogit.NoErrAlreadyUpToDate {
			return nil, fmt.Errorf("failed to pull: %w", err)
		}
		s.repo = repo
		return repo, nil
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create clone directory: %w", err)
	}
	repo, err := gogit.PlainCloneContext(opCtx, path, false, &gogit.CloneOptions{
		URL:           s.URL,
		ReferenceName: plumbing.NewBranchReferenceName(s.branch()),
		SingleBranch:  true,
		Depth:         1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clone repository: %w", err)
	}
	s.repo = repo
	return repo, nil
}

// LatestCommitTime returns the committer timestamp of the branch head.
// The clone is shallow, so per-path history is not available; the head
// time is an upper bound on any file's last change and at worst causes
// a refresh the file did not need.
func (s *GitSource) LatestCommitTime(ctx context.Context, relPath string) (time.Time, error) {
	repo, err := s.open(ctx)
	if err != nil {
		return time.Time{}, err
	}

	head, err := repo.Head()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to resolve head: %w", err)
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read head commit: %w", err)
	}
	return commit.Committer.When, nil
}

// Download copies the catalogue file out of the clone's worktree.
func (s *GitSource) Download(ctx context.Context, relPath string, dst io.Writer) error {
	if _, err := s.open(ctx); err != nil {
		return err
	}

	f, err := os.Open(filepath.Join(s.localPath(), filepath.FromSlash(relPath)))
	if err != nil {
		return fmt.Errorf("failed to open %s in clone: %w", relPath, err)
	}
	defer f.Close()

	if _, err := io.Copy(dst, f); err != nil {
		return fmt.Errorf("failed to copy %s: %w", relPath, err)
	}
	return nil
}
