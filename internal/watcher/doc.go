// Package watcher reports changes in the parts of a workspace an
// environment check inspects, so the check can be re-run.
//
// Only the top of the tree is watched: the root and directories up to
// Options.MaxDepth levels below it (the root, packages/, packages/<pkg>).
// The contents of node_modules and .git are never watched; their creation
// or removal still shows up as an event in the parent directory.
//
// fsnotify is the primary mechanism. When it cannot be initialised
// (inotify limits, some network mounts) the watcher falls back to
// polling the same directories.
//
// Usage:
//
//	w, err := watcher.New(watcher.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	go func() { _ = w.Start(ctx, root) }()
//	defer w.Stop()
//
//	for batch := range w.Events() {
//	    if watcher.ConfigChanged(batch) {
//	        // reload configuration
//	    }
//	    // re-run the check
//	}
package watcher
