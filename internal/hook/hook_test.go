package hook

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/noelvortex/internal/interaction"
)

// writeHook creates dir/name with a manifest and a shell script body.
func writeHook(t *testing.T, dir string, m Manifest, script string) string {
	t.Helper()
	path := filepath.Join(dir, m.Name)
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("failed to create hook dir: %v", err)
	}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(path, ManifestFile), data, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	if script != "" {
		if err := os.WriteFile(filepath.Join(path, m.Executable), []byte(script), 0755); err != nil {
			t.Fatalf("failed to write script: %v", err)
		}
	}
	return path
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping shell hook test on Windows")
	}
}

func TestHook_Subscribes(t *testing.T) {
	all := &Hook{Manifest: Manifest{Name: "all"}}
	if !all.Subscribes(interaction.EventSelect) || !all.Subscribes(interaction.EventMode) {
		t.Error("expected empty events list to match select and mode")
	}
	if all.Subscribes(interaction.EventClick) {
		t.Error("expected empty events list to skip clicks")
	}

	only := &Hook{Manifest: Manifest{Name: "only", Events: []string{"click"}}}
	if !only.Subscribes(interaction.EventClick) || only.Subscribes(interaction.EventMode) {
		t.Error("expected explicit events list to be honored")
	}
}

func TestManager_Discover(t *testing.T) {
	dir := t.TempDir()
	writeHook(t, dir, Manifest{Name: "chime", Version: "1.0.0", Executable: "run.sh", Events: []string{"select"}}, "")
	writeHook(t, dir, Manifest{Name: "lights", Executable: "run.sh"}, "")

	// Invalid manifest.
	bad := filepath.Join(dir, "broken")
	os.MkdirAll(bad, 0755)
	os.WriteFile(filepath.Join(bad, ManifestFile), []byte("{nope"), 0644)

	// Missing executable.
	writeHook(t, dir, Manifest{Name: "noexec"}, "")

	// Stray file and a directory without a manifest.
	os.WriteFile(filepath.Join(dir, "README"), []byte("x"), 0644)
	os.MkdirAll(filepath.Join(dir, "empty"), 0755)

	m := NewManager(dir)
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	hooks := m.List()
	if len(hooks) != 2 {
		t.Fatalf("expected 2 hooks, got %d", len(hooks))
	}
	if hooks[0].Manifest.Name != "chime" || hooks[1].Manifest.Name != "lights" {
		t.Errorf("expected hooks sorted by name, got %s, %s", hooks[0].Manifest.Name, hooks[1].Manifest.Name)
	}
	if want := filepath.Join(dir, "chime", "run.sh"); hooks[0].Executable != want {
		t.Errorf("expected executable %q, got %q", want, hooks[0].Executable)
	}

	subs := m.Subscribers(interaction.EventMode)
	if len(subs) != 1 || subs[0].Manifest.Name != "lights" {
		t.Errorf("expected only lights to receive mode events, got %d hooks", len(subs))
	}

	if _, err := m.Get("chime"); err != nil {
		t.Errorf("Get(chime) error = %v", err)
	}
	if _, err := m.Get("broken"); !errors.Is(err, ErrHookNotFound) {
		t.Errorf("expected ErrHookNotFound, got %v", err)
	}
}

func TestManager_Discover_MissingDir(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "absent"))
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(m.List()) != 0 {
		t.Error("expected no hooks")
	}
}

func TestManager_Discover_Rescan(t *testing.T) {
	dir := t.TempDir()
	path := writeHook(t, dir, Manifest{Name: "chime", Executable: "run.sh"}, "")

	m := NewManager(dir)
	m.Discover()
	if len(m.List()) != 1 {
		t.Fatal("expected 1 hook")
	}

	os.RemoveAll(path)
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(m.List()) != 0 {
		t.Error("expected removed hook to disappear on rescan")
	}
}

func TestExecutor_Execute(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	ev := interaction.Event{Kind: interaction.EventSelect, Source: interaction.SourceGesture, TargetID: "photo-2", PhotoURL: "/photos/b.jpg"}

	t.Run("reads request and replies", func(t *testing.T) {
		script := `#!/bin/sh
cat > request.json
echo '{"success":true}'
`
		path := writeHook(t, dir, Manifest{Name: "echo", Executable: "run.sh"}, script)
		m := NewManager(dir)
		m.Discover()
		h, _ := m.Get("echo")

		resp, err := NewExecutor(5*time.Second).Execute(context.Background(), h, &Request{SessionID: "s1", Event: ev})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if !resp.Success {
			t.Error("expected success")
		}

		data, err := os.ReadFile(filepath.Join(path, "request.json"))
		if err != nil {
			t.Fatalf("hook did not run in its directory: %v", err)
		}
		var got Request
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("failed to parse request: %v", err)
		}
		if got.SessionID != "s1" || got.Event.TargetID != "photo-2" || got.Event.Kind != interaction.EventSelect {
			t.Errorf("unexpected request %+v", got)
		}
	})

	t.Run("empty stdout is success", func(t *testing.T) {
		path := writeHook(t, dir, Manifest{Name: "quiet", Executable: "run.sh"}, "#!/bin/sh\nexit 0\n")
		h := &Hook{Manifest: Manifest{Name: "quiet"}, Path: path, Executable: filepath.Join(path, "run.sh")}
		resp, err := NewExecutor(0).Execute(context.Background(), h, &Request{Event: ev})
		if err != nil || !resp.Success {
			t.Errorf("expected success, got %+v, %v", resp, err)
		}
	})

	t.Run("failure response", func(t *testing.T) {
		path := writeHook(t, dir, Manifest{Name: "fail", Executable: "run.sh"}, "#!/bin/sh\necho '{\"success\":false,\"error\":\"no speaker\"}'\n")
		h := &Hook{Manifest: Manifest{Name: "fail"}, Path: path, Executable: filepath.Join(path, "run.sh")}
		resp, err := NewExecutor(0).Execute(context.Background(), h, &Request{Event: ev})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if resp.Success || resp.Error != "no speaker" {
			t.Errorf("unexpected response %+v", resp)
		}
	})

	t.Run("non-zero exit includes stderr", func(t *testing.T) {
		path := writeHook(t, dir, Manifest{Name: "crash", Executable: "run.sh"}, "#!/bin/sh\necho boom >&2\nexit 3\n")
		h := &Hook{Manifest: Manifest{Name: "crash"}, Path: path, Executable: filepath.Join(path, "run.sh")}
		_, err := NewExecutor(0).Execute(context.Background(), h, &Request{Event: ev})
		if err == nil || !strings.Contains(err.Error(), "boom") {
			t.Errorf("expected error with stderr, got %v", err)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		path := writeHook(t, dir, Manifest{Name: "garbage", Executable: "run.sh"}, "#!/bin/sh\necho not-json\n")
		h := &Hook{Manifest: Manifest{Name: "garbage"}, Path: path, Executable: filepath.Join(path, "run.sh")}
		if _, err := NewExecutor(0).Execute(context.Background(), h, &Request{Event: ev}); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("timeout", func(t *testing.T) {
		path := writeHook(t, dir, Manifest{Name: "slow", Executable: "run.sh"}, "#!/bin/sh\nexec sleep 5\n")
		h := &Hook{Manifest: Manifest{Name: "slow"}, Path: path, Executable: filepath.Join(path, "run.sh")}
		start := time.Now()
		_, err := NewExecutor(100*time.Millisecond).Execute(context.Background(), h, &Request{Event: ev})
		if err == nil || !strings.Contains(err.Error(), "timed out") {
			t.Errorf("expected timeout error, got %v", err)
		}
		if time.Since(start) > 3*time.Second {
			t.Error("timeout did not stop the hook")
		}
	})

	t.Run("missing executable", func(t *testing.T) {
		h := &Hook{Manifest: Manifest{Name: "ghost"}, Path: dir, Executable: filepath.Join(dir, "ghost")}
		if _, err := NewExecutor(0).Execute(context.Background(), h, &Request{Event: ev}); err == nil {
			t.Error("expected error for missing executable")
		}
	})
}

func TestDispatcher(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	script := `#!/bin/sh
cat >> events.log
echo >> events.log
`
	path := writeHook(t, dir, Manifest{Name: "log", Executable: "run.sh", Events: []string{"mode", "select"}}, script)

	m := NewManager(dir)
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	d := NewDispatcher(m, NewExecutor(5*time.Second), 0)
	handle := d.Handler("session-1")

	handle(interaction.Event{Kind: interaction.EventMode, Mode: interaction.ModeFormed, Source: interaction.SourceManual})
	handle(interaction.Event{Kind: interaction.EventClick, TargetID: "photo-0"})
	handle(interaction.Event{Kind: interaction.EventSelect, TargetID: "photo-0", PhotoURL: "/photos/a.jpg"})
	d.Drain()

	// Events after close are ignored.
	handle(interaction.Event{Kind: interaction.EventMode, Mode: interaction.ModeChaos})
	d.Close()

	data, err := os.ReadFile(filepath.Join(path, "events.log"))
	if err != nil {
		t.Fatalf("hook never ran: %v", err)
	}
	var kinds []interaction.EventKind
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		var req Request
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			t.Fatalf("bad line %q: %v", line, err)
		}
		if req.SessionID != "session-1" {
			t.Errorf("expected session-1, got %q", req.SessionID)
		}
		kinds = append(kinds, req.Event.Kind)
	}
	if len(kinds) != 2 || kinds[0] != interaction.EventMode || kinds[1] != interaction.EventSelect {
		t.Errorf("expected [mode select], got %v", kinds)
	}
}

func TestDispatcher_NoHooks(t *testing.T) {
	d := NewDispatcher(NewManager(t.TempDir()), NewExecutor(0), 1)
	d.Handle("s", interaction.Event{Kind: interaction.EventMode})
	d.Close()
	d.Close()
	d.Drain()
}
