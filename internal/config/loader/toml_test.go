package loader

import (
	"errors"
	"strings"
	"testing"
)

func TestTOMLLoader_Load(t *testing.T) {
	fsys := MapFS{"/scribe.toml": `
[history]
limit = 50

[markdown]
fallback = "html"
`}

	config, err := NewTOMLLoaderWithFS(fsys, "/scribe.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if val, ok := getByPath(config, "history.limit"); !ok || val != int64(50) {
		t.Errorf("history.limit = %v (%T), want 50", val, val)
	}
	if val, ok := getByPath(config, "markdown.fallback"); !ok || val != "html" {
		t.Errorf("markdown.fallback = %v, want html", val)
	}
}

func TestTOMLLoader_MissingFile(t *testing.T) {
	config, err := NewTOMLLoaderWithFS(MapFS{}, "/absent.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config != nil {
		t.Errorf("config = %v, want nil", config)
	}
}

func TestTOMLLoader_ParseError(t *testing.T) {
	fsys := MapFS{"/bad.toml": "[history\nlimit = 1\n"}

	_, err := NewTOMLLoaderWithFS(fsys, "/bad.toml").Load()
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if perr.Path != "/bad.toml" {
		t.Errorf("Path = %q, want /bad.toml", perr.Path)
	}
	if perr.Line < 1 {
		t.Errorf("Line = %d, want a position", perr.Line)
	}
	if !strings.Contains(perr.Error(), "/bad.toml") {
		t.Errorf("Error() = %q, want the path", perr.Error())
	}
}

func TestTOMLLoader_LoadFromReader(t *testing.T) {
	config, err := NewTOMLLoader("").LoadFromReader(strings.NewReader("[logging]\nlevel = \"warn\"\n"))
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}
	if val, _ := getByPath(config, "logging.level"); val != "warn" {
		t.Errorf("logging.level = %v, want warn", val)
	}
}

func TestTOMLLoader_Includes(t *testing.T) {
	fsys := MapFS{
		"/etc/scribe.toml": `
"@include" = ["base.toml", "/shared/limits.toml"]

[history]
limit = 10
`,
		"/etc/base.toml": `
[history]
limit = 99

[logging]
level = "debug"
`,
		"/shared/limits.toml": `
[document]
maxLength = 500
`,
	}

	config, err := NewTOMLLoaderWithFS(fsys, "/etc/scribe.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		path string
		want any
	}{
		{"history.limit", int64(10)},
		{"logging.level", "debug"},
		{"document.maxLength", int64(500)},
	}
	for _, tt := range tests {
		if got, _ := getByPath(config, tt.path); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.path, got, tt.want)
		}
	}
	if _, ok := config["@include"]; ok {
		t.Error("@include key should be removed")
	}
}

func TestTOMLLoader_IncludeCycle(t *testing.T) {
	fsys := MapFS{
		"/a.toml": `"@include" = "b.toml"`,
		"/b.toml": `"@include" = "a.toml"`,
	}

	_, err := NewTOMLLoaderWithFS(fsys, "/a.toml").Load()
	if !errors.Is(err, ErrIncludeDepthExceeded) {
		t.Errorf("err = %v, want ErrIncludeDepthExceeded", err)
	}
}

func TestTOMLLoader_BadInclude(t *testing.T) {
	fsys := MapFS{"/a.toml": `"@include" = 3`}

	if _, err := NewTOMLLoaderWithFS(fsys, "/a.toml").Load(); err == nil {
		t.Error("expected error for non-string @include")
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"history": map[string]any{"limit": int64(100)},
		"logging": map[string]any{"level": "info"},
	}
	src := map[string]any{
		"history":  map[string]any{"limit": int64(5)},
		"document": map[string]any{"maxLength": int64(7)},
	}

	got := DeepMerge(dst, src)

	if val, _ := getByPath(got, "history.limit"); val != int64(5) {
		t.Errorf("history.limit = %v, want 5", val)
	}
	if val, _ := getByPath(got, "logging.level"); val != "info" {
		t.Errorf("logging.level = %v, want info", val)
	}
	if val, _ := getByPath(got, "document.maxLength"); val != int64(7) {
		t.Errorf("document.maxLength = %v, want 7", val)
	}
}

func TestClone(t *testing.T) {
	src := map[string]any{
		"history": map[string]any{"limit": int64(1)},
		"list":    []any{map[string]any{"a": "b"}},
	}

	dst := Clone(src)
	dst["history"].(map[string]any)["limit"] = int64(2)
	dst["list"].([]any)[0].(map[string]any)["a"] = "c"

	if val, _ := getByPath(src, "history.limit"); val != int64(1) {
		t.Errorf("source modified: history.limit = %v", val)
	}
	if src["list"].([]any)[0].(map[string]any)["a"] != "b" {
		t.Error("source slice modified")
	}
	if Clone(nil) != nil {
		t.Error("Clone(nil) should be nil")
	}
}
