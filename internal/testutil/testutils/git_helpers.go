package testutils

import (
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// SetupTestGitRepo initializes a temporary git repository holding files and
// commits them. It returns the repository root and the commit hash.
func SetupTestGitRepo(t *testing.T, files map[string]string) (string, plumbing.Hash) {
	t.Helper()

	dir := Project(t, files)
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	require.NoError(t, wt.AddWithOptions(&git.AddOptions{All: true}))
	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "t@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir, hash
}
