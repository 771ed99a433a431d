package content

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNoHistory is returned when a file has no recorded changes.
var ErrNoHistory = errors.New("no history")

// A LastUpdater finds out when a source file was last changed, and by whom.
// Names are paths in the site file system.
type LastUpdater interface {
	LastUpdate(name string) (LastUpdate, error)
}

// ModTimeUpdater uses file modification times. It never knows the author.
type ModTimeUpdater struct {
	FS fs.FS
}

// LastUpdate implements LastUpdater.
func (m ModTimeUpdater) LastUpdate(name string) (LastUpdate, error) {
	fi, err := fs.Stat(m.FS, name)
	if err != nil {
		return LastUpdate{}, fmt.Errorf("LastUpdate: %w", err)
	}
	return LastUpdate{Date: fi.ModTime()}, nil
}

// GitUpdater reads the newest commit touching a file from the git repository
// containing the site. Results are cached because walking history is slow.
type GitUpdater struct {
	repo   *git.Repository
	prefix string // Site root relative to the repository root, slash separated

	mu    sync.Mutex
	cache map[string]LastUpdate
}

// OpenGit opens the repository containing dir, which is the site root on disk.
func OpenGit(dir string) (*GitUpdater, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("OpenGit: %w", err)
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("OpenGit: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("OpenGit: %w", err)
	}
	rel, err := filepath.Rel(wt.Filesystem.Root(), abs)
	if err != nil {
		return nil, fmt.Errorf("OpenGit: %w", err)
	}
	prefix := filepath.ToSlash(rel)
	if prefix == "." {
		prefix = ""
	}
	return &GitUpdater{repo: repo, prefix: prefix, cache: make(map[string]LastUpdate)}, nil
}

// LastUpdate implements LastUpdater.
func (g *GitUpdater) LastUpdate(name string) (LastUpdate, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if lu, ok := g.cache[name]; ok {
		return lu, nil
	}
	fileName := name
	if g.prefix != "" {
		fileName = g.prefix + "/" + name
	}
	iter, err := g.repo.Log(&git.LogOptions{FileName: &fileName, Order: git.LogOrderCommitterTime})
	if err != nil {
		return LastUpdate{}, fmt.Errorf("LastUpdate: %w", err)
	}
	defer iter.Close()
	var c *object.Commit
	c, err = iter.Next()
	if err != nil {
		return LastUpdate{}, fmt.Errorf("LastUpdate %s: %w", name, ErrNoHistory)
	}
	lu := LastUpdate{Author: c.Author.Name, Date: c.Author.When}
	g.cache[name] = lu
	return lu, nil
}

// Chain tries each LastUpdater in turn and returns the first answer.
type Chain []LastUpdater

// LastUpdate implements LastUpdater.
func (c Chain) LastUpdate(name string) (LastUpdate, error) {
	var errs []error
	for _, u := range c {
		lu, err := u.LastUpdate(name)
		if err == nil {
			return lu, nil
		}
		errs = append(errs, err)
	}
	return LastUpdate{}, errors.Join(errs...)
}
