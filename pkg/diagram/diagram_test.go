package diagram

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gridsmith/oneline/pkg/equipment"
	"github.com/gridsmith/oneline/pkg/errors"
)

func buildFeeder(t *testing.T) *equipment.Graph {
	t.Helper()
	g := equipment.New()
	g.Add(equipment.NewGenerator("g1", "Gen 1", 13.8))
	g.Add(equipment.NewGenerator("g2", "Gen 2", 13.8))
	bus := equipment.NewBus("b1", "Main Bus", 13.8, 240)
	bus.AllowedSources = 4
	g.Add(bus)
	g.Add(equipment.NewTransformer("t1", "TX 1", 13.8, 4.16))
	for _, e := range [][2]string{{"g1", "b1"}, {"g2", "b1"}, {"b1", "t1"}} {
		if err := g.Connect(e[0], e[1]); err != nil {
			t.Fatalf("Connect(%s→%s) error = %v", e[0], e[1], err)
		}
	}
	return g
}

func TestRoundTrip(t *testing.T) {
	g := buildFeeder(t)
	bus, _ := g.Node("b1")
	bus.Position = equipment.Position{X: 480, Y: 160}

	data, err := Marshal(g)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	restored, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if restored.NodeCount() != g.NodeCount() {
		t.Errorf("NodeCount() = %d, want %d", restored.NodeCount(), g.NodeCount())
	}
	if restored.EdgeCount() != g.EdgeCount() {
		t.Errorf("EdgeCount() = %d, want %d", restored.EdgeCount(), g.EdgeCount())
	}

	rb, ok := restored.Node("b1")
	if !ok {
		t.Fatal("bus missing after round trip")
	}
	if rb.Position != bus.Position {
		t.Errorf("bus position = %+v, want %+v", rb.Position, bus.Position)
	}
	if rb.AllowedSources != 4 {
		t.Errorf("bus AllowedSources = %d, want 4", rb.AllowedSources)
	}
	wantSources := bus.Sources()
	gotSources := rb.Sources()
	if len(gotSources) != len(wantSources) {
		t.Fatalf("bus sources = %v, want %v", gotSources, wantSources)
	}
	for i := range wantSources {
		if gotSources[i] != wantSources[i] {
			t.Errorf("bus sources[%d] = %q, want %q (order must survive)", i, gotSources[i], wantSources[i])
		}
	}

	gotHandles := rb.Handles()
	wantHandles := bus.Handles()
	if len(gotHandles) != len(wantHandles) {
		t.Fatalf("bus handles = %d, want %d", len(gotHandles), len(wantHandles))
	}
	for i := range wantHandles {
		if gotHandles[i] != wantHandles[i] {
			t.Errorf("bus handle %d = %+v, want verbatim %+v", i, gotHandles[i], wantHandles[i])
		}
	}
}

func TestRoundTrip_Voltages(t *testing.T) {
	g := buildFeeder(t)
	data, _ := Marshal(g)
	restored, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	xfmr, _ := restored.Node("t1")
	if v, _ := xfmr.Voltage(equipment.SourceFacing); v != 13.8 {
		t.Errorf("restored primary voltage = %v, want 13.8", v)
	}
	if v, _ := xfmr.Voltage(equipment.LoadFacing); v != 4.16 {
		t.Errorf("restored secondary voltage = %v, want 4.16", v)
	}
	bus, _ := restored.Node("b1")
	if bus.Size().Width != 240 {
		t.Errorf("restored bus width = %v, want 240", bus.Size().Width)
	}
}

// Edges must rebuild even when a load is listed before the node it points at
// exists.
func TestToGraph_ForwardReferences(t *testing.T) {
	d := Diagram{Equipment: []Equipment{
		{ID: "g1", Type: "generator", LoadIDs: []string{"b1"}},
		{ID: "b1", Type: "bus"},
	}}

	g, err := ToGraph(d)
	if err != nil {
		t.Fatalf("ToGraph() error = %v", err)
	}
	if !g.IsConnected("g1", "b1") {
		t.Error("forward-referenced edge not rebuilt")
	}
	bus, _ := g.Node("b1")
	if !bus.HasSource("g1") {
		t.Error("bidirectional source view not rebuilt from loadIds")
	}
}

func TestToGraph_AllocatesMissingHandles(t *testing.T) {
	d := Diagram{Equipment: []Equipment{
		{ID: "g1", Type: "generator", LoadIDs: []string{"b1"}},
		{ID: "b1", Type: "bus"},
	}}

	g, _ := ToGraph(d)
	gen, _ := g.Node("g1")
	hs := gen.HandlesOn(equipment.SideBottom)
	if len(hs) != 1 || hs[0].PositionPercent != 50 {
		t.Errorf("derived handles = %+v, want one centered bottom handle", hs)
	}
}

func TestToGraph_Errors(t *testing.T) {
	tests := []struct {
		name     string
		d        Diagram
		wantCode errors.Code
	}{
		{
			name: "DuplicateID",
			d: Diagram{Equipment: []Equipment{
				{ID: "a", Type: "meter"},
				{ID: "a", Type: "meter"},
			}},
			wantCode: errors.ErrCodeDuplicateEquipment,
		},
		{
			name: "DanglingLoad",
			d: Diagram{Equipment: []Equipment{
				{ID: "a", Type: "meter", LoadIDs: []string{"ghost"}},
			}},
			wantCode: errors.ErrCodeUnknownEquipment,
		},
		{
			name: "UnknownType",
			d: Diagram{Equipment: []Equipment{
				{ID: "a", Type: "flux-capacitor"},
			}},
			wantCode: errors.ErrCodeInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToGraph(tt.d)
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("ToGraph() error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestRead_Malformed(t *testing.T) {
	_, err := Read(strings.NewReader("{not json"))
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Read() error = %v, want INVALID_FORMAT", err)
	}
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ReadFile() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestWriteFile_ReadFile(t *testing.T) {
	g := buildFeeder(t)
	path := filepath.Join(t.TempDir(), "feeder.json")

	if err := WriteFile(g, path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	restored, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if restored.EdgeCount() != 3 {
		t.Errorf("EdgeCount() = %d, want 3", restored.EdgeCount())
	}

	raw, _ := os.ReadFile(path)
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
}
