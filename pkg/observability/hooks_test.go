package observability

import (
	"testing"
	"time"
)

type recordingHooks struct {
	connects int
	layouts  int
	snaps    int
}

func (r *recordingHooks) OnConnect(string, string, []string, error) { r.connects++ }
func (r *recordingHooks) OnDisconnect(string, string)               {}
func (r *recordingHooks) OnLayout(string, int, time.Duration)       { r.layouts++ }
func (r *recordingHooks) OnSnap(string, int)                        { r.snaps++ }

func TestSetEditorHooks(t *testing.T) {
	defer SetEditorHooks(nil)

	rec := &recordingHooks{}
	SetEditorHooks(rec)

	Editor().OnConnect("a", "b", nil, nil)
	Editor().OnLayout("layered", 5, time.Millisecond)

	if rec.connects != 1 || rec.layouts != 1 {
		t.Errorf("hooks not routed: connects=%d layouts=%d", rec.connects, rec.layouts)
	}
}

func TestSetEditorHooks_NilResetsToNoop(t *testing.T) {
	SetEditorHooks(nil)
	if _, ok := Editor().(NoopEditorHooks); !ok {
		t.Errorf("Editor() = %T, want NoopEditorHooks", Editor())
	}
	// Noop hooks must be safe to call.
	Editor().OnSnap("x", 2)
}
