package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"
)

type result struct {
	code   int
	stdout string
	stderr string
}

// invoke runs the CLI with an empty config file prepended.
func invoke(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfg, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append([]string{"-config", cfg}, args...), strings.NewReader(stdin), &stdout, &stderr)
	return result{code, stdout.String(), stderr.String()}
}

func TestVersion(t *testing.T) {
	r := invoke(t, "", "-version")
	if r.code != 0 || !strings.HasPrefix(r.stdout, "scribe ") {
		t.Errorf("code = %d, stdout = %q", r.code, r.stdout)
	}
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"frobnicate"}},
		{"bad flag", []string{"-nope"}},
		{"bad log level", []string{"-log-level", "loud", "stats"}},
		{"run without script", []string{"run"}},
		{"two inputs", []string{"convert", "a.md", "b.md"}},
		{"watch stdin", []string{"convert", "-watch"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if r := invoke(t, "", tt.args...); r.code != 2 {
				t.Errorf("code = %d, want 2; stderr = %q", r.code, r.stderr)
			}
		})
	}
}

func TestMissingConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-config", "/does/not/exist.toml", "stats"}, strings.NewReader(""), &stdout, &stderr)
	if code != 1 {
		t.Errorf("code = %d, want 1", code)
	}
}

func TestConvertStdin(t *testing.T) {
	r := invoke(t, "# Title\n\nHello **bold**\n", "convert", "-from", "md", "-to", "html")
	if r.code != 0 {
		t.Fatalf("code = %d, stderr = %q", r.code, r.stderr)
	}
	for _, want := range []string{"<h1>Title</h1>", "<strong>bold</strong>"} {
		if !strings.Contains(r.stdout, want) {
			t.Errorf("output %q missing %s", r.stdout, want)
		}
	}
}

func TestConvertFiles(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "notes.md")
	out := filepath.Join(dir, "notes.json")
	if err := os.WriteFile(in, []byte("Hello *world*\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := invoke(t, "", "convert", "-o", out, in)
	if r.code != 0 {
		t.Fatalf("code = %d, stderr = %q", r.code, r.stderr)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if got := gjson.GetBytes(data, "text").String(); got != "Hello world" {
		t.Errorf("text = %q, want %q", got, "Hello world")
	}
	if got := gjson.GetBytes(data, "formatRuns.0.format").String(); got != "italic" {
		t.Errorf("first run = %q, want italic", got)
	}
}

func TestConvertRejectsBadInput(t *testing.T) {
	r := invoke(t, "{not json", "convert", "-from", "json", "-to", "text")
	if r.code != 1 || !strings.Contains(r.stderr, "Error") {
		t.Errorf("code = %d, stderr = %q", r.code, r.stderr)
	}
}

func TestStats(t *testing.T) {
	r := invoke(t, "Hello World\nSecond line", "stats")
	if r.code != 0 {
		t.Fatalf("code = %d, stderr = %q", r.code, r.stderr)
	}
	got := make(map[string]string)
	for _, line := range strings.Split(strings.TrimSpace(r.stdout), "\n") {
		fields := strings.Fields(line)
		got[strings.TrimSuffix(fields[0], ":")] = fields[1]
	}
	for key, want := range map[string]string{"characters": "23", "words": "4", "lines": "2", "blocks": "2"} {
		if got[key] != want {
			t.Errorf("%s = %q, want %s", key, got[key], want)
		}
	}
}

func TestStatsJSON(t *testing.T) {
	r := invoke(t, "one two three", "stats", "-json", "-pretty")
	if r.code != 0 {
		t.Fatalf("code = %d, stderr = %q", r.code, r.stderr)
	}
	if !gjson.Valid(r.stdout) {
		t.Fatalf("invalid JSON: %q", r.stdout)
	}
	if n := gjson.Get(r.stdout, "words").Int(); n != 3 {
		t.Errorf("words = %d, want 3", n)
	}
	if n := gjson.Get(r.stdout, "characters").Int(); n != 13 {
		t.Errorf("characters = %d, want 13", n)
	}
}

func TestRunInline(t *testing.T) {
	r := invoke(t, "Hello", "run", "-e", `doc.format(0, 5, "bold")`, "-to", "html")
	if r.code != 0 {
		t.Fatalf("code = %d, stderr = %q", r.code, r.stderr)
	}
	if r.stdout != "<p><strong>Hello</strong></p>\n" {
		t.Errorf("stdout = %q", r.stdout)
	}
}

func TestRunScriptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shout.lua")
	code := `
local n = doc.replace_all("hello", "HELLO", {case_sensitive = false})
print("replaced", n)
`
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		t.Fatal(err)
	}

	r := invoke(t, "hello there, Hello", "run", "-script", path)
	if r.code != 0 {
		t.Fatalf("code = %d, stderr = %q", r.code, r.stderr)
	}
	if r.stdout != "HELLO there, HELLO" {
		t.Errorf("stdout = %q", r.stdout)
	}
	if !strings.Contains(r.stderr, "replaced\t2") {
		t.Errorf("stderr = %q, want print output", r.stderr)
	}
}

func TestRunPrintOnly(t *testing.T) {
	r := invoke(t, "a b c", "run", "-print", "-e", `print(doc.words())`)
	if r.code != 0 {
		t.Fatalf("code = %d, stderr = %q", r.code, r.stderr)
	}
	if r.stdout != "3\n" {
		t.Errorf("stdout = %q, want %q", r.stdout, "3\n")
	}
}

func TestRunScriptError(t *testing.T) {
	r := invoke(t, "Hello", "run", "-e", `doc.delete(4, 1)`)
	if r.code != 1 {
		t.Errorf("code = %d, want 1", r.code)
	}
	if !strings.Contains(r.stderr, "invalid") && !strings.Contains(r.stderr, "range") {
		t.Errorf("stderr = %q, want range error", r.stderr)
	}
}

func TestConvertWatch(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "doc.md")
	out := filepath.Join(dir, "doc.html")
	cfg := filepath.Join(dir, "config.toml")
	for path, data := range map[string]string{in: "# One\n", cfg: ""} {
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan int, 1)
	go func() {
		var stdout, stderr bytes.Buffer
		done <- run(ctx, []string{"-config", cfg, "convert", "-watch", "-o", out, in}, strings.NewReader(""), &stdout, &stderr)
	}()

	outputHas := func(want string) bool {
		data, err := os.ReadFile(out)
		return err == nil && strings.Contains(string(data), want)
	}

	deadline := time.Now().Add(10 * time.Second)
	for !outputHas("<h1>One</h1>") {
		if time.Now().After(deadline) {
			t.Fatal("initial build not written")
		}
		time.Sleep(20 * time.Millisecond)
	}

	// Rewrite until the rebuild lands; the watch may start after the
	// initial output appears.
	for !outputHas("<h1>Two</h1>") {
		if time.Now().After(deadline) {
			t.Fatal("rebuild not written")
		}
		if err := os.WriteFile(in, []byte("# Two\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(250 * time.Millisecond)
	}

	cancel()
	select {
	case code := <-done:
		if code != 0 {
			t.Errorf("code = %d, want 0", code)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]docFormat{
		"json": formatJSON, "HTML": formatHTML, "htm": formatHTML,
		"md": formatMarkdown, "markdown": formatMarkdown, "txt": formatText,
	}
	for in, want := range tests {
		if got, err := parseFormat(in); err != nil || got != want {
			t.Errorf("parseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := parseFormat("rtf"); err == nil {
		t.Error("expected error for rtf")
	}
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		explicit, path string
		want           docFormat
	}{
		{"", "a.md", formatMarkdown},
		{"", "a.JSON", formatJSON},
		{"", "a.unknown", formatText},
		{"", "", formatText},
		{"html", "a.md", formatHTML},
	}
	for _, tt := range tests {
		if got, err := formatFor(tt.explicit, tt.path); err != nil || got != tt.want {
			t.Errorf("formatFor(%q, %q) = %q, %v; want %q", tt.explicit, tt.path, got, err, tt.want)
		}
	}
}
