// Package matcher resolves include patterns into concrete paths and answers
// subtree inclusion queries during filesystem traversal.
package matcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrEmptyIncludeSet reports an explicitly empty include pattern set. A nil
// pattern slice means "no restriction"; an empty one is a configuration error.
var ErrEmptyIncludeSet = errors.New("include patterns must not be empty when provided")

// IncludeSet holds the resolved absolute paths that gate traversal. An
// unrestricted set includes every path; a restricted set includes only its
// members and their descendants, so a restricted set with no members
// includes nothing at all.
type IncludeSet struct {
	paths      map[string]struct{}
	restricted bool
}

// Restricted reports whether patterns were supplied at all.
func (includeSet IncludeSet) Restricted() bool { return includeSet.restricted }

// Len returns the number of resolved member paths.
func (includeSet IncludeSet) Len() int { return len(includeSet.paths) }

// Expand resolves glob patterns relative to rootPath into an IncludeSet.
// Patterns support recursive "**" wildcards. Patterns that match nothing are
// legal and simply contribute no paths, leaving the set restricted to
// whatever the other patterns matched.
func Expand(rootPath string, patterns []string) (IncludeSet, error) {
	if patterns == nil {
		return IncludeSet{}, nil
	}
	if len(patterns) == 0 {
		return IncludeSet{}, ErrEmptyIncludeSet
	}
	includeSet := IncludeSet{paths: make(map[string]struct{}), restricted: true}
	rootFilesystem := os.DirFS(rootPath)
	for _, pattern := range patterns {
		matches, globError := doublestar.Glob(rootFilesystem, filepath.ToSlash(pattern))
		if globError != nil {
			return IncludeSet{}, fmt.Errorf("expanding include pattern %q: %w", pattern, globError)
		}
		for _, match := range matches {
			includeSet.paths[filepath.Join(rootPath, filepath.FromSlash(match))] = struct{}{}
		}
	}
	return includeSet, nil
}

// Contains reports whether path falls inside the include set: either the set
// is unrestricted, the path itself is a member, or one of its ancestors up to
// rootPath is. Membership of a directory therefore implicitly includes
// everything beneath it. Comparison is by whole cleaned paths, so a member
// never matches an entry that merely shares a name prefix.
func (includeSet IncludeSet) Contains(path string, rootPath string) bool {
	if !includeSet.restricted {
		return true
	}
	if len(includeSet.paths) == 0 {
		return false
	}
	currentPath := filepath.Clean(path)
	cleanRoot := filepath.Clean(rootPath)
	for {
		if _, member := includeSet.paths[currentPath]; member {
			return true
		}
		if currentPath == cleanRoot {
			return false
		}
		parentPath := filepath.Dir(currentPath)
		if parentPath == currentPath {
			return false
		}
		currentPath = parentPath
	}
}
