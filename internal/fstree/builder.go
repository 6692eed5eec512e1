package fstree

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"sdutil/internal/matcher"
)

// ErrNotADirectory reports a root path that is missing or not a directory.
var ErrNotADirectory = errors.New("root path must be a directory")

const warningReadDirectoryFormat = "Warning: skipping directory %s due to error: %v\n"

// Tree is the immutable result of one filesystem walk. Once Build returns,
// the tree is safe for unsynchronized concurrent reads.
type Tree struct {
	Root       *DirectoryNode
	RootPath   string
	includeSet matcher.IncludeSet
}

// Build walks the filesystem under rootPath once and returns the aggregated
// tree. The root is tilde-expanded and resolved to absolute form before
// validation; includePatterns follow matcher.Expand semantics, with a nil
// slice meaning unrestricted. The walk is read-only and best-effort: entries
// that vanish between listing and stat count as zero bytes, and unreadable
// subdirectories are skipped with a warning instead of failing the build.
func Build(rootPath string, includePatterns []string) (*Tree, error) {
	canonicalRoot, canonicalError := canonicalizeRoot(rootPath)
	if canonicalError != nil {
		return nil, canonicalError
	}
	includeSet, expandError := matcher.Expand(canonicalRoot, includePatterns)
	if expandError != nil {
		return nil, expandError
	}
	rootNode := &DirectoryNode{nodeInfo: nodeInfo{path: canonicalRoot, depth: 0}}
	populateDirectory(rootNode, canonicalRoot, includeSet)
	memoizeTotals(rootNode)
	return &Tree{Root: rootNode, RootPath: canonicalRoot, includeSet: includeSet}, nil
}

// canonicalizeRoot expands a leading tilde, resolves the path to absolute
// form, and verifies that it names an existing directory.
func canonicalizeRoot(rootPath string) (string, error) {
	expandedPath := rootPath
	if expandedPath == "~" || strings.HasPrefix(expandedPath, "~"+string(os.PathSeparator)) {
		homeDirectory, homeError := os.UserHomeDir()
		if homeError != nil {
			return "", fmt.Errorf("expanding %q: %w", rootPath, homeError)
		}
		expandedPath = filepath.Join(homeDirectory, strings.TrimPrefix(expandedPath, "~"))
	}
	absolutePath, absoluteError := filepath.Abs(expandedPath)
	if absoluteError != nil {
		return "", fmt.Errorf("resolving %q: %w", rootPath, absoluteError)
	}
	rootInfo, statError := os.Stat(absolutePath)
	if statError != nil || !rootInfo.IsDir() {
		return "", fmt.Errorf("%w: %q", ErrNotADirectory, rootPath)
	}
	return filepath.Clean(absolutePath), nil
}

// populateDirectory lists one directory and attaches the included children,
// descending only into included subdirectories.
func populateDirectory(directoryNode *DirectoryNode, rootPath string, includeSet matcher.IncludeSet) {
	directoryEntries, readError := os.ReadDir(directoryNode.Path())
	if readError != nil {
		fmt.Fprintf(os.Stderr, warningReadDirectoryFormat, directoryNode.Path(), readError)
		return
	}
	childDepth := directoryNode.Depth() + 1
	for _, directoryEntry := range directoryEntries {
		childPath := filepath.Join(directoryNode.Path(), directoryEntry.Name())
		if !includeSet.Contains(childPath, rootPath) {
			continue
		}
		if directoryEntry.IsDir() {
			childDirectory := &DirectoryNode{nodeInfo: nodeInfo{path: childPath, depth: childDepth}}
			directoryNode.Subdirectories = append(directoryNode.Subdirectories, childDirectory)
			populateDirectory(childDirectory, rootPath, includeSet)
			continue
		}
		childFile := &FileNode{
			nodeInfo:  nodeInfo{path: childPath, depth: childDepth},
			sizeBytes: entrySize(directoryEntry),
		}
		directoryNode.Files = append(directoryNode.Files, childFile)
	}
}

// entrySize returns the byte length of a directory entry. Symlinks occupy no
// space of their own and entries that vanished between listing and stat
// contribute zero bytes rather than an error.
func entrySize(directoryEntry fs.DirEntry) int64 {
	if directoryEntry.Type()&fs.ModeSymlink != 0 {
		return 0
	}
	entryInfo, infoError := directoryEntry.Info()
	if infoError != nil {
		return 0
	}
	return entryInfo.Size()
}

// memoizeTotals fixes every directory's aggregate size in one bottom-up pass.
func memoizeTotals(directoryNode *DirectoryNode) int64 {
	var total int64
	for _, subdirectory := range directoryNode.Subdirectories {
		total += memoizeTotals(subdirectory)
	}
	for _, file := range directoryNode.Files {
		total += file.Size()
	}
	directoryNode.totalBytes = total
	directoryNode.totaled = true
	return total
}
