package editor

import (
	"strings"
	"testing"
	"time"

	"github.com/gridsmith/oneline/pkg/equipment"
	"github.com/gridsmith/oneline/pkg/errors"
	"github.com/gridsmith/oneline/pkg/observability"
	"github.com/gridsmith/oneline/pkg/snap"
)

func TestConnect_Commits(t *testing.T) {
	ed := New()
	mustAdd(t, ed, equipment.NewGenerator("g1", "Gen 1", 13.8))
	mustAdd(t, ed, equipment.NewMeter("m1", "Meter 1"))

	problems, err := ed.Connect("g1", "m1")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if len(problems) != 0 {
		t.Fatalf("Connect problems = %v, want none", problems)
	}
	if got := ed.Graph().EdgeCount(); got != 1 {
		t.Errorf("EdgeCount = %d, want 1", got)
	}
}

func TestConnect_VoltageMismatchBlocksCommit(t *testing.T) {
	ed := New()
	mustAdd(t, ed, equipment.NewGenerator("g1", "Gen 1", 13.8))
	mustAdd(t, ed, equipment.NewTransformer("t1", "Tx 1", 4.16, 0.48))

	problems, err := ed.Connect("g1", "t1")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if len(problems) != 1 {
		t.Fatalf("Connect problems = %v, want exactly 1", problems)
	}
	if !strings.Contains(problems[0], "voltage mismatch") {
		t.Errorf("problem = %q, want a voltage mismatch message", problems[0])
	}
	if got := ed.Graph().EdgeCount(); got != 0 {
		t.Errorf("EdgeCount = %d after rejected connection, want 0", got)
	}
}

func TestConnect_CapacityBlocksCommit(t *testing.T) {
	ed := New()
	mustAdd(t, ed, equipment.NewGenerator("g1", "Gen 1", 13.8))
	mustAdd(t, ed, equipment.NewMeter("m1", "Meter 1"))
	mustAdd(t, ed, equipment.NewMeter("m2", "Meter 2"))

	if _, err := ed.Connect("g1", "m1"); err != nil {
		t.Fatalf("first Connect: %v", err)
	}
	problems, err := ed.Connect("g1", "m2")
	if err != nil {
		t.Fatalf("second Connect: %v", err)
	}
	if len(problems) != 1 || !strings.Contains(problems[0], "allowed loads") {
		t.Fatalf("problems = %v, want a single load-capacity message", problems)
	}
	if got := ed.Graph().EdgeCount(); got != 1 {
		t.Errorf("EdgeCount = %d, want 1", got)
	}
}

func TestConnect_StructuralErrors(t *testing.T) {
	ed := New()
	mustAdd(t, ed, equipment.NewGenerator("g1", "Gen 1", 13.8))

	if _, err := ed.Connect("g1", "ghost"); !errors.Is(err, errors.ErrCodeUnknownEquipment) {
		t.Errorf("unknown load: err = %v, want UNKNOWN_EQUIPMENT", err)
	}
	if _, err := ed.Connect("g1", "g1"); !errors.Is(err, errors.ErrCodeSelfLoop) {
		t.Errorf("self loop: err = %v, want SELF_LOOP", err)
	}
}

func TestLayout_AssignsUnsetAndKeepsPinned(t *testing.T) {
	ed := New()
	gen := equipment.NewGenerator("g1", "Gen 1", 13.8)
	mustAdd(t, ed, gen)
	mustAdd(t, ed, equipment.NewMeter("m1", "Meter 1"))
	if _, err := ed.Connect("g1", "m1"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := ed.Move("g1", equipment.Position{X: 10, Y: 10}); err != nil {
		t.Fatalf("Move: %v", err)
	}

	ed.Layout()

	if gen.Position != (equipment.Position{X: 10, Y: 10}) {
		t.Errorf("pinned node moved to %+v", gen.Position)
	}
	meter, _ := ed.Graph().Node("m1")
	if meter.Position.IsZero() {
		t.Errorf("unplaced node was not assigned a position")
	}
}

func TestLayout_CachedUntilMutation(t *testing.T) {
	rec := &countingHooks{}
	observability.SetEditorHooks(rec)
	defer observability.SetEditorHooks(nil)

	ed := New()
	mustAdd(t, ed, equipment.NewGenerator("g1", "Gen 1", 13.8))

	ed.Layout()
	ed.Layout()
	if rec.layouts != 1 {
		t.Fatalf("layout passes = %d after repeated reads, want 1", rec.layouts)
	}

	mustAdd(t, ed, equipment.NewMeter("m1", "Meter 1"))
	ed.Layout()
	if rec.layouts != 2 {
		t.Errorf("layout passes = %d after mutation, want 2", rec.layouts)
	}
}

func TestDrag_SnapAndCommit(t *testing.T) {
	ed := New()
	mustAdd(t, ed, equipment.NewGenerator("g1", "Gen 1", 13.8)) // 80x80
	mustAdd(t, ed, equipment.NewMeter("m1", "Meter 1"))         // 60x60
	if _, err := ed.Connect("g1", "m1"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := ed.Move("g1", equipment.Position{X: 100, Y: 100}); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if err := ed.Move("m1", equipment.Position{X: 200, Y: 300}); err != nil {
		t.Fatalf("Move: %v", err)
	}

	if err := ed.BeginDrag("g1"); err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}

	// Meter's top handle center sits at x=230. The generator's bottom handle
	// at tentative x=195 sits at 235, 5 units off, inside the threshold.
	res, err := ed.DragTick(equipment.Position{X: 195, Y: 120})
	if err != nil {
		t.Fatalf("DragTick: %v", err)
	}
	if res.Position.X != 190 {
		t.Errorf("snapped X = %v, want 190", res.Position.X)
	}
	if res.Position.Y != 120 {
		t.Errorf("Y = %v, want 120 (outside vertical threshold)", res.Position.Y)
	}
	if len(res.Lines) != 1 || res.Lines[0].Axis != snap.AxisVertical || res.Lines[0].Value != 230 {
		t.Errorf("snap lines = %+v, want one vertical guide at 230", res.Lines)
	}
	if got := ed.SnapLines(); len(got) != 1 {
		t.Errorf("SnapLines = %+v, want the active guide", got)
	}

	committed, err := ed.EndDrag(equipment.Position{X: 195, Y: 120})
	if err != nil {
		t.Fatalf("EndDrag: %v", err)
	}
	if committed != (equipment.Position{X: 190, Y: 120}) {
		t.Errorf("committed = %+v, want {190 120}", committed)
	}
	gen, _ := ed.Graph().Node("g1")
	if gen.Position != committed {
		t.Errorf("node position = %+v, want committed %+v", gen.Position, committed)
	}
	if ed.SnapLines() != nil {
		t.Errorf("SnapLines after EndDrag = %+v, want nil", ed.SnapLines())
	}
}

func TestDrag_Cancel(t *testing.T) {
	ed := New()
	mustAdd(t, ed, equipment.NewGenerator("g1", "Gen 1", 13.8))
	if err := ed.Move("g1", equipment.Position{X: 50, Y: 60}); err != nil {
		t.Fatalf("Move: %v", err)
	}

	if err := ed.BeginDrag("g1"); err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	if _, err := ed.DragTick(equipment.Position{X: 400, Y: 400}); err != nil {
		t.Fatalf("DragTick: %v", err)
	}
	ed.CancelDrag()

	gen, _ := ed.Graph().Node("g1")
	if gen.Position != (equipment.Position{X: 50, Y: 60}) {
		t.Errorf("position after cancel = %+v, want unchanged {50 60}", gen.Position)
	}
	if _, err := ed.DragTick(equipment.Position{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("DragTick after cancel: err = %v, want INVALID_INPUT", err)
	}
}

func TestDrag_Guards(t *testing.T) {
	ed := New()
	mustAdd(t, ed, equipment.NewGenerator("g1", "Gen 1", 13.8))

	if err := ed.BeginDrag("ghost"); !errors.Is(err, errors.ErrCodeUnknownEquipment) {
		t.Errorf("BeginDrag unknown: err = %v, want UNKNOWN_EQUIPMENT", err)
	}
	if err := ed.BeginDrag("g1"); err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	if err := ed.BeginDrag("g1"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("second BeginDrag: err = %v, want INVALID_INPUT", err)
	}

	// Removing the dragged node cancels the drag.
	if err := ed.RemoveEquipment("g1"); err != nil {
		t.Fatalf("RemoveEquipment: %v", err)
	}
	if _, err := ed.EndDrag(equipment.Position{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("EndDrag after removal: err = %v, want INVALID_INPUT", err)
	}
}

func mustAdd(t *testing.T, ed *Editor, n *equipment.Node) {
	t.Helper()
	if err := ed.AddEquipment(n); err != nil {
		t.Fatalf("AddEquipment(%s): %v", n.ID, err)
	}
}

type countingHooks struct {
	layouts int
}

func (h *countingHooks) OnConnect(string, string, []string, error) {}
func (h *countingHooks) OnDisconnect(string, string)               {}
func (h *countingHooks) OnLayout(string, int, time.Duration)       { h.layouts++ }
func (h *countingHooks) OnSnap(string, int)                        {}
