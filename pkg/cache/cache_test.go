package cache

import (
	"context"
	"testing"
	"time"
)

func TestFileCache_RoundTrip(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "k", []byte("payload"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	data, hit, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !hit || string(data) != "payload" {
		t.Errorf("Get = %q, hit=%v; want payload, true", data, hit)
	}

	if _, hit, _ := c.Get(ctx, "missing"); hit {
		t.Errorf("Get(missing) reported a hit")
	}
}

func TestFileCache_Expiration(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "k", []byte("stale"), -time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Errorf("expired entry reported as hit")
	}
}

func TestFileCache_Delete(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "k", []byte("x"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Errorf("deleted entry reported as hit")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete(missing): %v", err)
	}
}

func TestNullCache_NeverHits(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("x"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Errorf("NullCache reported a hit")
	}
}

func TestKeyer_OptionsChangeKeys(t *testing.T) {
	k := NewDefaultKeyer()

	base := LayoutKeyOpts{Strategy: "layered", ContainerWidth: 1200}
	wider := base
	wider.ContainerWidth = 1600

	if k.LayoutKey("hash", base) == k.LayoutKey("hash", wider) {
		t.Errorf("layout keys collide across geometries")
	}
	if k.LayoutKey("hash", base) != k.LayoutKey("hash", base) {
		t.Errorf("layout keys are not deterministic")
	}

	if k.ArtifactKey("h", ArtifactKeyOpts{Format: "svg"}) == k.ArtifactKey("h", ArtifactKeyOpts{Format: "dot"}) {
		t.Errorf("artifact keys collide across formats")
	}
}
