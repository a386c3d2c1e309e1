// Package version reports the assetbuilder build and the revision of the
// project being built.
package version

import (
	"errors"

	"github.com/go-git/go-git/v5"
)

// Version contains the application version information.
// This should be set via build-time ldflags in production:
// go build -ldflags "-X git.home.luguber.info/inful/assetbuilder/internal/version.Version=v1.0.0".
var Version = "unknown"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// ErrNoRepository is returned by Revision outside a git work tree.
var ErrNoRepository = errors.New("not a git repository")

const shortHash = 12

// Revision returns the abbreviated HEAD commit of the repository containing
// dir, suffixed with "+dirty" when the work tree has uncommitted changes.
func Revision(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return "", ErrNoRepository
		}
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", err
	}
	rev := head.Hash().String()[:shortHash]

	wt, err := repo.Worktree()
	if err != nil {
		return rev, nil
	}
	status, err := wt.Status()
	if err == nil && !status.IsClean() {
		rev += "+dirty"
	}
	return rev, nil
}
