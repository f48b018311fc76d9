package openapi

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// sourceExts are the file types scanned for annotations.
var sourceExts = map[string]bool{
	".go":  true,
	".js":  true,
	".cjs": true,
	".mjs": true,
	".ts":  true,
}

// dirsForRel returns "." plus every ancestor directory of rel.
func dirsForRel(rel string) []string {
	dir := filepath.Dir(rel)
	dirs := []string{"."}
	if dir == "." {
		return dirs
	}
	cur := ""
	for _, part := range strings.Split(filepath.ToSlash(dir), "/") {
		cur = filepath.Join(cur, part)
		dirs = append(dirs, cur)
	}
	return dirs
}

type ignoreSet struct {
	root  string
	cache map[string][]gitignore.Pattern
}

func newIgnoreSet(root string) *ignoreSet {
	return &ignoreSet{root: root, cache: map[string][]gitignore.Pattern{}}
}

func (s *ignoreSet) patternsIn(dir string) []gitignore.Pattern {
	if p, ok := s.cache[dir]; ok {
		return p
	}
	var patterns []gitignore.Pattern
	b, err := os.ReadFile(filepath.Join(s.root, dir, ".gitignore"))
	if err == nil {
		var base []string
		if dir != "." {
			base = strings.Split(filepath.ToSlash(dir), "/")
		}
		for _, line := range strings.Split(string(b), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			patterns = append(patterns, gitignore.ParsePattern(line, base))
		}
	}
	s.cache[dir] = patterns
	return patterns
}

func (s *ignoreSet) ignored(rel string, isDir bool) bool {
	var patterns []gitignore.Pattern
	for _, d := range dirsForRel(rel) {
		patterns = append(patterns, s.patternsIn(d)...)
	}
	if len(patterns) == 0 {
		return false
	}
	return gitignore.NewMatcher(patterns).Match(strings.Split(filepath.ToSlash(rel), "/"), isDir)
}

// Discover returns the sorted root-relative paths of scannable files under
// each source. A source may name a directory or a single file. Paths
// matched by .gitignore files under root are skipped. Sources may be
// absolute as long as they sit under root.
func Discover(root string, sources []string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	ign := newIgnoreSet(absRoot)
	seen := map[string]struct{}{}

	for _, src := range sources {
		start := filepath.FromSlash(src)
		if !filepath.IsAbs(start) {
			start = filepath.Join(absRoot, start)
		}
		info, err := os.Stat(start)
		if err != nil {
			return nil, fmt.Errorf("openapi source %s: %w", src, err)
		}
		if rel, err := filepath.Rel(absRoot, start); err != nil || strings.HasPrefix(rel, "..") {
			return nil, fmt.Errorf("openapi source %s: outside %s", src, absRoot)
		}
		if !info.IsDir() {
			rel, _ := filepath.Rel(absRoot, start)
			seen[filepath.ToSlash(rel)] = struct{}{}
			continue
		}
		err = filepath.WalkDir(start, func(p string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			rel, err := filepath.Rel(absRoot, p)
			if err != nil {
				return err
			}
			if rel == "." {
				return nil
			}
			if d.IsDir() {
				if d.Name() == "node_modules" || d.Name() == ".git" || ign.ignored(rel, true) {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() || !sourceExts[filepath.Ext(p)] {
				return nil
			}
			if strings.HasSuffix(p, "_test.go") || ign.ignored(rel, false) {
				return nil
			}
			seen[filepath.ToSlash(rel)] = struct{}{}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("openapi source %s: %w", src, err)
		}
	}

	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

// Scan discovers source files and parses their annotations in path order.
func Scan(root string, sources []string) ([]Fragment, error) {
	files, err := Discover(root, sources)
	if err != nil {
		return nil, err
	}
	var out []Fragment
	for _, rel := range files {
		b, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return nil, err
		}
		frags, err := ParseAnnotations(rel, string(b))
		if err != nil {
			return nil, err
		}
		out = append(out, frags...)
	}
	return out, nil
}
