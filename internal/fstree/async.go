package fstree

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// AsyncBuild runs one tree build on a background worker so the caller can do
// unrelated foreground work while the walk runs. The first call to Tree joins
// the worker; later calls return the same completed result without waiting
// again. A started walk always runs to completion; there is no cancellation.
type AsyncBuild struct {
	group    errgroup.Group
	joinOnce sync.Once
	tree     *Tree
	buildErr error
}

// StartBuild launches the walk immediately and returns its handle.
func StartBuild(rootPath string, includePatterns []string) *AsyncBuild {
	asyncBuild := &AsyncBuild{}
	asyncBuild.group.Go(func() error {
		builtTree, buildError := Build(rootPath, includePatterns)
		asyncBuild.tree = builtTree
		return buildError
	})
	return asyncBuild
}

// Tree blocks until the background walk finishes and returns its result. The
// join happens exactly once; the completed tree is then safe for
// unsynchronized reads from any number of callers.
func (asyncBuild *AsyncBuild) Tree() (*Tree, error) {
	asyncBuild.joinOnce.Do(func() {
		asyncBuild.buildErr = asyncBuild.group.Wait()
	})
	return asyncBuild.tree, asyncBuild.buildErr
}
