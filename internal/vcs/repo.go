// Package vcs reads revision information from the enclosing git checkout
// without shelling out to git.
package vcs

import (
	"errors"
	"fmt"

	git "github.com/go-git/go-git/v5"
)

// ShortLen is the length of an abbreviated revision, as printed by
// `git rev-parse --short`.
const ShortLen = 7

var errRepoNotFound = errors.New("git repo not found")

// Repo points at a directory inside a git work tree.
type Repo struct {
	dir string
}

// Open returns a Repo rooted at dir; parent directories are searched for the
// .git directory on every query.
func Open(dir string) *Repo {
	if dir == "" {
		dir = "."
	}
	return &Repo{dir: dir}
}

// ShortRevision returns the abbreviated hash of HEAD.
func (r *Repo) ShortRevision() (string, error) {
	repo, err := git.PlainOpenWithOptions(r.dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return "", errRepoNotFound
		}
		return "", fmt.Errorf("open repo: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	h := head.Hash().String()
	if len(h) > ShortLen {
		h = h[:ShortLen]
	}
	return h, nil
}
