package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/stackvm/vm"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[vm]
max-steps = 500
trace = true

[log]
verbosity = 2
file = "svm.log"

[output]
show-stack = false
show-globals = true
`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if c.VM.MaxSteps != 500 {
		t.Errorf("max-steps = %d, want 500", c.VM.MaxSteps)
	}
	if !c.VM.Trace {
		t.Error("trace = false, want true")
	}
	if c.Log.Verbosity != 2 {
		t.Errorf("verbosity = %d, want 2", c.Log.Verbosity)
	}
	if c.Output.ShowStack {
		t.Error("show-stack = true, want false")
	}
	if !c.Output.ShowGlobals {
		t.Error("show-globals = false, want true")
	}
	if p := c.LogPath(); p == nil || *p != filepath.Join(dir, "svm.log") {
		t.Errorf("LogPath = %v, want %s", p, filepath.Join(dir, "svm.log"))
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[vm]
max-steps = 0
`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if c.VM.MaxSteps != vm.DefaultMaxSteps {
		t.Errorf("max-steps = %d, want default %d", c.VM.MaxSteps, vm.DefaultMaxSteps)
	}
	if !c.Output.ShowStack || !c.Output.ShowGlobals {
		t.Errorf("output defaults = %+v, want both true", c.Output)
	}
	if c.LogPath() != nil {
		t.Errorf("LogPath = %v, want nil", *c.LogPath())
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[vm]
max-stepz = 10
`)

	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), "vm.max-stepz") {
		t.Errorf("error = %v, want unknown key vm.max-stepz", err)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("Load of empty dir should fail")
	}
}

func TestLoadConfigParseError(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "[vm\nmax-steps = ")

	_, err := Load(dir)
	if err == nil || !strings.HasPrefix(err.Error(), "config: parse error") {
		t.Errorf("error = %v, want parse error", err)
	}
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[vm]\nmax-steps = 42\n")

	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}

	c, err := FindAndLoad(sub)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if c == nil {
		t.Fatal("FindAndLoad returned nil")
	}
	if c.VM.MaxSteps != 42 {
		t.Errorf("max-steps = %d, want 42", c.VM.MaxSteps)
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	c, err := FindAndLoad(t.TempDir())
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	// A stackvm.toml above the temp dir would be picked up; only check
	// that nothing was found when none exists on the way up.
	if c != nil && !strings.HasSuffix(c.Path, FileName) {
		t.Errorf("unexpected config %+v", c)
	}
}

func TestVMOptions(t *testing.T) {
	c := Default()
	c.VM.MaxSteps = 99
	c.VM.Trace = true

	var out bytes.Buffer
	opts := c.VMOptions(&out)
	if opts.MaxSteps != 99 || !opts.Trace || opts.Output != &out {
		t.Errorf("VMOptions = %+v", opts)
	}
}
