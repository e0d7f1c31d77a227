// Package gitver obtains the repository metadata that names and traces a
// bundle: the repo root, the HEAD commit, and any tag pointing at HEAD.
package gitver

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ErrNotARepo indicates the directory is not inside a git repository.
var ErrNotARepo = errors.New("not a git repository")

// ShortHashLen is the number of hash characters embedded in bundle names.
const ShortHashLen = 8

// Info describes the commit a pipeline run builds from.
type Info struct {
	Root   string `json:"root"`
	Commit string `json:"commit"`
	Short  string `json:"short"`
	Tag    string `json:"tag,omitempty"`

	// Dirty means the worktree has uncommitted changes, so the build
	// content may not correspond to the commit the bundle is named after.
	Dirty bool `json:"dirty,omitempty"`
}

// Resolve opens the repository containing dir and reads HEAD. Detection
// walks upward and follows .git gitfiles, so linked worktrees and
// submodules resolve too. A repository with no tag at HEAD is fine (manual
// runs); a repository with no commits is not.
func Resolve(dir string) (Info, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return Info{}, fmt.Errorf("%w: %s", ErrNotARepo, dir)
		}
		return Info{}, fmt.Errorf("open repository at %q: %w", dir, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return Info{}, fmt.Errorf("resolve worktree: %w", err)
	}
	root := wt.Filesystem.Root()

	head, err := repo.Head()
	if err != nil {
		return Info{}, fmt.Errorf("resolve HEAD in %q: %w", root, err)
	}

	hash := head.Hash().String()
	tag, err := tagAt(repo, head.Hash())
	if err != nil {
		return Info{}, err
	}

	status, err := wt.Status()
	if err != nil {
		return Info{}, fmt.Errorf("worktree status in %q: %w", root, err)
	}

	return Info{
		Root:   root,
		Commit: hash,
		Short:  hash[:ShortHashLen],
		Tag:    tag,
		Dirty:  !status.IsClean(),
	}, nil
}

// tagAt returns a tag name pointing at the given commit, or "" when none
// does. Annotated tags are followed to their target. With several matching
// tags the lexicographically first is chosen for determinism.
func tagAt(repo *git.Repository, commit plumbing.Hash) (string, error) {
	iter, err := repo.Tags()
	if err != nil {
		return "", fmt.Errorf("list tags: %w", err)
	}

	var matches []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		target := ref.Hash()
		if obj, tagErr := repo.TagObject(ref.Hash()); tagErr == nil {
			target = obj.Target
		}
		if target == commit {
			matches = append(matches, ref.Name().Short())
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("walk tags: %w", err)
	}

	if len(matches) == 0 {
		return "", nil
	}
	sort.Strings(matches)
	return matches[0], nil
}
