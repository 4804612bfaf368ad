package equipment

import (
	"strings"
	"testing"
)

func TestCheck_VoltageMismatch(t *testing.T) {
	gen := NewGenerator("g1", "Gen 1", 4.16)
	xfmr := NewTransformer("t1", "TX 1", 13.8, 0.48)

	problems := Check(gen, xfmr)
	if len(problems) != 1 {
		t.Fatalf("Check() = %d problems, want exactly 1: %v", len(problems), problems)
	}
	if !strings.Contains(problems[0], "voltage mismatch") {
		t.Errorf("problem = %q, want a voltage mismatch message", problems[0])
	}
}

func TestCheck_Compatible(t *testing.T) {
	tests := []struct {
		name   string
		source *Node
		load   *Node
	}{
		{
			name:   "MatchingVoltages",
			source: NewGenerator("g1", "", 13.8),
			load:   NewBus("b1", "", 13.8, 240),
		},
		{
			name:   "TransformerSecondaryToBus",
			source: NewTransformer("t1", "", 13.8, 4.16),
			load:   NewBus("b1", "", 4.16, 240),
		},
		{
			name:   "TransparentLoad",
			source: NewGenerator("g1", "", 13.8),
			load:   NewMeter("m1", ""),
		},
		{
			name:   "TransparentSource",
			source: NewMeter("m1", ""),
			load:   NewBus("b1", "", 13.8, 240),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if problems := Check(tt.source, tt.load); len(problems) != 0 {
				t.Errorf("Check() = %v, want no problems", problems)
			}
		})
	}
}

func TestCheck_CollectsAllProblems(t *testing.T) {
	g := New()
	gen := NewGenerator("g1", "", 4.16) // AllowedLoads 1
	bus := NewBus("b1", "", 13.8, 240)
	bus.AllowedSources = 0
	g.Add(gen)
	g.Add(bus)
	g.Add(NewMeter("m1", ""))
	g.Connect("g1", "m1")

	problems := Check(gen, bus)
	if len(problems) != 3 {
		t.Fatalf("Check() = %d problems, want 3 (both capacities + voltage): %v", len(problems), problems)
	}
}

func TestCheck_DoesNotMutate(t *testing.T) {
	gen := NewGenerator("g1", "", 4.16)
	bus := NewBus("b1", "", 13.8, 240)
	Check(gen, bus)

	if gen.LoadCount() != 0 || bus.SourceCount() != 0 {
		t.Error("Check() must not mutate either endpoint")
	}
	if len(gen.Handles()) != 0 || len(bus.Handles()) != 0 {
		t.Error("Check() must not allocate handles")
	}
}

func TestVoltage_Faces(t *testing.T) {
	xfmr := NewTransformer("t1", "", 13.8, 4.16)
	if v, _ := xfmr.Voltage(SourceFacing); v != 13.8 {
		t.Errorf("primary voltage = %v, want 13.8", v)
	}
	if v, _ := xfmr.Voltage(LoadFacing); v != 4.16 {
		t.Errorf("secondary voltage = %v, want 4.16", v)
	}

	bus := NewBus("b1", "", 13.8, 240)
	up, _ := bus.Voltage(SourceFacing)
	down, _ := bus.Voltage(LoadFacing)
	if up != down || up != 13.8 {
		t.Errorf("bus voltages = %v/%v, want 13.8 on both faces", up, down)
	}

	if _, ok := NewMeter("m1", "").Voltage(SourceFacing); ok {
		t.Error("meter should be electrically transparent")
	}
}
