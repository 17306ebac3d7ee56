package modules

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestIsModuleFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"mathx.ruchy", true},
		{"sub/dir/mod.ruchy", true},
		{"legacy.rchy", true},
		{"notes.txt", false},
		{"ruchy", false},
		{"config.yaml", false},
	}
	for _, tt := range tests {
		if got := isModuleFile(tt.path); got != tt.want {
			t.Errorf("isModuleFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestWatcherInvalidatesOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeModule(t, dir, "live.ruchy", `fun f() { 1 }`)

	loader := NewLoader(dir)
	first, err := loader.LoadModule("live")
	if err != nil {
		t.Fatalf("first load: %v", err)
	}

	w, err := NewWatcher(loader)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := os.WriteFile(path, []byte(`fun f() { 2 }`), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		second, err := loader.LoadModule("live")
		if err != nil {
			t.Fatalf("reload: %v", err)
		}
		if second != first {
			return // cache was dropped and the file reparsed
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("watcher never invalidated the cached module")
}
