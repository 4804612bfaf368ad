// Package observability provides hooks for instrumenting editor activity.
//
// The package uses a simple hooks pattern: a hook interface with a no-op
// default, replaceable at startup. Libraries call the accessor to emit
// events; main registers a real implementation when metrics or tracing are
// wanted. This keeps the core free of observability-framework dependencies
// and avoids import cycles, since registration happens in main rather than
// in library packages.
package observability

import (
	"sync"
	"time"
)

// EditorHooks receives events from graph mutation, layout, and snapping.
type EditorHooks interface {
	// OnConnect fires after a connection attempt; problems lists the
	// validation messages when the attempt was rejected.
	OnConnect(sourceID, loadID string, problems []string, err error)

	// OnDisconnect fires after an edge is severed.
	OnDisconnect(sourceID, loadID string)

	// OnLayout fires after a layout pass over nodeCount nodes.
	OnLayout(strategy string, nodeCount int, duration time.Duration)

	// OnSnap fires on each drag tick that produced at least one snap line.
	OnSnap(draggedID string, lineCount int)
}

// NoopEditorHooks is an EditorHooks that does nothing.
type NoopEditorHooks struct{}

func (NoopEditorHooks) OnConnect(string, string, []string, error) {}
func (NoopEditorHooks) OnDisconnect(string, string)               {}
func (NoopEditorHooks) OnLayout(string, int, time.Duration)       {}
func (NoopEditorHooks) OnSnap(string, int)                        {}

var (
	mu          sync.RWMutex
	editorHooks EditorHooks = NoopEditorHooks{}
)

// SetEditorHooks registers the hook implementation. Call once at startup,
// before the editor starts processing events.
func SetEditorHooks(h EditorHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		editorHooks = NoopEditorHooks{}
		return
	}
	editorHooks = h
}

// Editor returns the registered hooks, never nil.
func Editor() EditorHooks {
	mu.RLock()
	defer mu.RUnlock()
	return editorHooks
}
