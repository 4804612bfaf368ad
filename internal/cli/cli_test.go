package cli

import (
	"io"
	"strings"
	"testing"

	"github.com/gridsmith/oneline/pkg/equipment"
	"github.com/gridsmith/oneline/pkg/pipeline"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "dot", []string{"dot"}},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}},
		{"positions", "positions", []string{"positions"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if len(got) != len(tt.want) {
				t.Errorf("parseFormats(%q) length = %d, want %d", tt.input, len(got), len(tt.want))
				return
			}
			for i, v := range got {
				if v != tt.want[i] {
					t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
				}
			}
		})
	}
}

func TestExtensionFor(t *testing.T) {
	if got := extensionFor(pipeline.FormatPositions); got != "layout.json" {
		t.Errorf("extensionFor(positions) = %q, want layout.json", got)
	}
	if got := extensionFor(pipeline.FormatSVG); got != "svg" {
		t.Errorf("extensionFor(svg) = %q, want svg", got)
	}
}

func TestAuditGraph_Clean(t *testing.T) {
	g := equipment.New()
	mustAddAll(t, g,
		equipment.NewGenerator("g1", "Gen 1", 13.8),
		equipment.NewMeter("m1", "Meter 1"),
	)
	if err := g.Connect("g1", "m1"); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if problems := auditGraph(g); len(problems) != 0 {
		t.Errorf("auditGraph = %v, want none", problems)
	}
}

func TestAuditGraph_VoltageMismatch(t *testing.T) {
	g := equipment.New()
	mustAddAll(t, g,
		equipment.NewGenerator("g1", "Gen 1", 13.8),
		equipment.NewTransformer("t1", "Tx 1", 4.16, 0.48),
	)
	// Link bypasses validation, as deserialization does.
	if err := g.Link("g1", "t1"); err != nil {
		t.Fatalf("Link: %v", err)
	}

	problems := auditGraph(g)
	if len(problems) != 1 || !strings.Contains(problems[0], "voltage mismatch") {
		t.Errorf("auditGraph = %v, want one voltage mismatch", problems)
	}
}

func TestAuditGraph_CapacityOverrun(t *testing.T) {
	g := equipment.New()
	mustAddAll(t, g,
		equipment.NewGenerator("g1", "Gen 1", 13.8),
		equipment.NewMeter("m1", "Meter 1"),
		equipment.NewMeter("m2", "Meter 2"),
	)
	// Generators allow a single load; a persisted diagram can exceed that.
	if err := g.Link("g1", "m1"); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if err := g.Link("g1", "m2"); err != nil {
		t.Fatalf("Link: %v", err)
	}

	problems := auditGraph(g)
	if len(problems) != 1 || !strings.Contains(problems[0], "allows 1") {
		t.Errorf("auditGraph = %v, want one capacity overrun", problems)
	}
}

func TestAuditGraph_WithinCapacityNotFlagged(t *testing.T) {
	g := equipment.New()
	mustAddAll(t, g,
		equipment.NewGenerator("g1", "Gen 1", 13.8),
		equipment.NewMeter("m1", "Meter 1"),
	)
	if err := g.Link("g1", "m1"); err != nil {
		t.Fatalf("Link: %v", err)
	}

	// Exactly at the limit is fine; only exceeding it is an overrun.
	if problems := auditGraph(g); len(problems) != 0 {
		t.Errorf("auditGraph = %v, want none at capacity limit", problems)
	}
}

func TestNew_LoadsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	c := New(io.Discard, LogInfo)
	if c.Config == nil {
		t.Fatal("Config not loaded")
	}
	if c.Config.Layout.ContainerWidth == 0 {
		t.Errorf("config defaults not applied")
	}
}

func mustAddAll(t *testing.T, g *equipment.Graph, nodes ...*equipment.Node) {
	t.Helper()
	for _, n := range nodes {
		if err := g.Add(n); err != nil {
			t.Fatalf("Add(%s): %v", n.ID, err)
		}
	}
}
