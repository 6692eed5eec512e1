// Package fstree builds an in-memory tree of a directory subtree with
// bottom-up aggregated sizes and renders depth- and size-filtered views of it.
package fstree

// Node is one filesystem entry captured during a walk.
type Node interface {
	// Path returns the absolute path of the entry.
	Path() string
	// Depth returns the distance from the tree root, which sits at depth 0.
	Depth() int
	// Size returns the total bytes attributed to the entry. It is never
	// negative: entries that could not be read count as zero.
	Size() int64
}

type nodeInfo struct {
	path  string
	depth int
}

func (info nodeInfo) Path() string { return info.path }
func (info nodeInfo) Depth() int   { return info.depth }

// FileNode is a single file; its size is the byte length read during the walk.
type FileNode struct {
	nodeInfo
	sizeBytes int64
}

func (fileNode *FileNode) Size() int64 { return fileNode.sizeBytes }

// DirectoryNode owns its child directories and files exclusively; the walk
// never follows symlinks, so the structure is acyclic.
type DirectoryNode struct {
	nodeInfo
	Subdirectories []*DirectoryNode
	Files          []*FileNode

	totalBytes int64
	totaled    bool
}

// Size returns the recursive sum of all descendant sizes. The builder
// memoizes the total in a single bottom-up pass once the walk completes;
// before that pass the sum is computed on the fly.
func (directoryNode *DirectoryNode) Size() int64 {
	if directoryNode.totaled {
		return directoryNode.totalBytes
	}
	var total int64
	for _, subdirectory := range directoryNode.Subdirectories {
		total += subdirectory.Size()
	}
	for _, file := range directoryNode.Files {
		total += file.Size()
	}
	return total
}
