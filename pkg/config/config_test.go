package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[vm]
classpath = ["build/classes", "/opt/lib/app.jar"]
max_frames = 64

[log]
level = "debug"
development = true
`)

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "build/classes"), "/opt/lib/app.jar"}
	if len(c.VM.ClassPath) != 2 || c.VM.ClassPath[0] != want[0] || c.VM.ClassPath[1] != want[1] {
		t.Errorf("classpath: got %v, want %v", c.VM.ClassPath, want)
	}
	if c.VM.MaxFrames != 64 {
		t.Errorf("max_frames: got %d", c.VM.MaxFrames)
	}
	// omitted keys keep their defaults
	if c.VM.ArchiveCache != 256 {
		t.Errorf("archive_cache: got %d, want default 256", c.VM.ArchiveCache)
	}
	if c.Log.Level != "debug" || !c.Log.Development {
		t.Errorf("log: got %+v", c.Log)
	}
	if c.Path != path {
		t.Errorf("Path: got %q, want %q", c.Path, path)
	}
	if got := c.ClassPathList(); got != strings.Join(want, string(os.PathListSeparator)) {
		t.Errorf("ClassPathList: got %q", got)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"syntax", "[vm\n", "parse error"},
		{"unknown key", "[vm]\nheap = 1\n", "unknown key vm.heap"},
		{"bad level", "[log]\nlevel = \"loud\"\n", "log.level"},
		{"zero frames", "[vm]\nmax_frames = 0\n", "vm.max_frames"},
		{"wrong type", "[vm]\nmax_frames = \"many\"\n", "parse error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got %v, want error containing %q", err, tt.wantErr)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[vm]\nmax_frames = 10\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	c, err := FindAndLoad(nested)
	if err != nil {
		t.Fatal(err)
	}
	if c.VM.MaxFrames != 10 {
		t.Errorf("max_frames: got %d, want 10", c.VM.MaxFrames)
	}
	if c.Path != filepath.Join(root, FileName) {
		t.Errorf("Path: got %q", c.Path)
	}
}

func TestDefault(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	if c.Path != "" || c.ClassPathList() != "." {
		t.Errorf("defaults: %+v", c)
	}
}
