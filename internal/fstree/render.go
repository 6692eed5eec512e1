package fstree

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"sdutil/internal/sizespec"
)

// SizeColumnWidth is the fixed width the formatted size is right-aligned to.
const SizeColumnWidth = 6

// Line is one row of a rendered tree listing.
type Line struct {
	Path     string
	Name     string
	Depth    int
	SizeText string
	Severity sizespec.Severity
}

// Text composes the plain listing row: the right-aligned size followed by the
// entry name indented by depth.
func (line Line) Text() string {
	return fmt.Sprintf("%*s  %s%s", SizeColumnWidth, line.SizeText, strings.Repeat("  ", line.Depth), line.Name)
}

// Render walks the already-built tree and returns one line per node that
// passes both filters: depth at most maxDepth (zero or negative means
// unlimited) and size at least minSizeBytes. A node failing either filter is
// skipped together with its whole subtree. Siblings are ordered by size
// descending, with equal sizes keeping their walk order. The root is shown by
// full path, every other node by base name. No filesystem I/O happens here,
// so re-rendering with different filters is cheap.
func (tree *Tree) Render(maxDepth int, minSizeBytes int64) []Line {
	var lines []Line
	appendVisibleNodes(&lines, tree.Root, maxDepth, minSizeBytes)
	return lines
}

func appendVisibleNodes(lines *[]Line, node Node, maxDepth int, minSizeBytes int64) {
	if maxDepth > 0 && node.Depth() > maxDepth {
		return
	}
	if node.Size() < minSizeBytes {
		return
	}
	displayName := node.Path()
	if node.Depth() > 0 {
		displayName = filepath.Base(node.Path())
	}
	*lines = append(*lines, Line{
		Path:     node.Path(),
		Name:     displayName,
		Depth:    node.Depth(),
		SizeText: sizespec.Format(node.Size(), false),
		Severity: sizespec.SeverityFor(node.Size()),
	})
	directoryNode, isDirectory := node.(*DirectoryNode)
	if !isDirectory {
		return
	}
	for _, child := range sortedChildren(directoryNode) {
		appendVisibleNodes(lines, child, maxDepth, minSizeBytes)
	}
}

// sortedChildren merges subdirectories and files in walk order and
// stable-sorts the result by size descending.
func sortedChildren(directoryNode *DirectoryNode) []Node {
	children := make([]Node, 0, len(directoryNode.Subdirectories)+len(directoryNode.Files))
	for _, subdirectory := range directoryNode.Subdirectories {
		children = append(children, subdirectory)
	}
	for _, file := range directoryNode.Files {
		children = append(children, file)
	}
	sort.SliceStable(children, func(firstIndex, secondIndex int) bool {
		return children[firstIndex].Size() > children[secondIndex].Size()
	})
	return children
}
