package equipment

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func percents(hs []Handle) []float64 {
	out := make([]float64, len(hs))
	for i, h := range hs {
		out[i] = h.PositionPercent
	}
	return out
}

func TestAddHandle_Redistribution(t *testing.T) {
	tests := []struct {
		name  string
		count int
		want  []float64
	}{
		{name: "Single", count: 1, want: []float64{50}},
		{name: "Two", count: 2, want: []float64{100.0 / 3, 200.0 / 3}},
		{name: "Three", count: 3, want: []float64{25, 50, 75}},
		{name: "Four", count: 4, want: []float64{20, 40, 60, 80}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewBus("b1", "", 13.8, 240)
			for i := 0; i < tt.count; i++ {
				n.AddHandle(Handle{ID: newHandleID(), Side: SideTop, IsSource: true})
			}
			got := percents(n.HandlesOn(SideTop))
			if len(got) != len(tt.want) {
				t.Fatalf("handles on top = %d, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if math.Abs(got[i]-tt.want[i]) > tolerance {
					t.Errorf("handle %d at %v%%, want %v%%", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestAddHandle_SidesIndependent(t *testing.T) {
	n := NewBus("b1", "", 13.8, 240)
	n.AddHandle(Handle{ID: "up1", Side: SideTop, IsSource: true})
	n.AddHandle(Handle{ID: "up2", Side: SideTop, IsSource: true})
	n.AddHandle(Handle{ID: "down1", Side: SideBottom})

	bottom := n.HandlesOn(SideBottom)
	if len(bottom) != 1 || bottom[0].PositionPercent != 50 {
		t.Errorf("bottom = %+v, want single handle at 50%%", percents(bottom))
	}
	top := percents(n.HandlesOn(SideTop))
	if math.Abs(top[0]-100.0/3) > tolerance || math.Abs(top[1]-200.0/3) > tolerance {
		t.Errorf("top = %v, want [33.3 66.7]", top)
	}
}

func TestAddHandle_UpsertByID(t *testing.T) {
	n := NewMeter("m1", "")
	n.AddHandle(Handle{ID: "h1", Side: SideTop, ConnectedTo: "a"})
	n.AddHandle(Handle{ID: "h1", Side: SideTop, ConnectedTo: "b"})

	hs := n.Handles()
	if len(hs) != 1 {
		t.Fatalf("handles = %d, want 1 after upsert", len(hs))
	}
	if hs[0].ConnectedTo != "b" {
		t.Errorf("ConnectedTo = %q, want b", hs[0].ConnectedTo)
	}
}

// Removal leaves the survivors where they were; spacing is only restored by
// the next addition.
func TestRemoveHandle_NoEagerRedistribution(t *testing.T) {
	n := NewBus("b1", "", 13.8, 240)
	n.AddHandle(Handle{ID: "h1", Side: SideTop, IsSource: true})
	n.AddHandle(Handle{ID: "h2", Side: SideTop, IsSource: true})
	n.AddHandle(Handle{ID: "h3", Side: SideTop, IsSource: true})

	if !n.RemoveHandle("h2") {
		t.Fatal("RemoveHandle() = false, want true")
	}
	got := percents(n.HandlesOn(SideTop))
	want := []float64{25, 75} // positions from the three-handle layout
	for i := range want {
		if math.Abs(got[i]-want[i]) > tolerance {
			t.Errorf("after removal handle %d at %v%%, want %v%%", i, got[i], want[i])
		}
	}

	n.AddHandle(Handle{ID: "h4", Side: SideTop, IsSource: true})
	got = percents(n.HandlesOn(SideTop))
	want = []float64{25, 50, 75}
	for i := range want {
		if math.Abs(got[i]-want[i]) > tolerance {
			t.Errorf("after re-add handle %d at %v%%, want %v%%", i, got[i], want[i])
		}
	}
}

func TestRemoveHandle_Missing(t *testing.T) {
	n := NewMeter("m1", "")
	if n.RemoveHandle("ghost") {
		t.Error("RemoveHandle() = true for unknown id, want false")
	}
}
