package script

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	glua "github.com/yuin/gopher-lua"

	"github.com/dshills/scribe/internal/engine"
)

func newState(t *testing.T, text string, opts ...Option) (*State, *engine.Document) {
	t.Helper()
	d, err := engine.FromText(text)
	if err != nil {
		t.Fatalf("FromText: %v", err)
	}
	s := NewState(opts...)
	s.Bind(d)
	t.Cleanup(func() {
		s.Close()
		d.Destroy()
	})
	return s, d
}

func TestNewState(t *testing.T) {
	s := NewState()
	defer s.Close()

	if s.IsClosed() {
		t.Error("NewState() returned closed state")
	}
	if s.L == nil {
		t.Error("NewState() L is nil")
	}
}

func TestSandboxRemovesUnsafeGlobals(t *testing.T) {
	s := NewState()
	defer s.Close()

	for _, name := range []string{"os", "io", "debug", "package", "require", "dofile", "loadfile", "load", "loadstring"} {
		if v := s.L.GetGlobal(name); v != glua.LNil {
			t.Errorf("global %s = %v, want nil", name, v)
		}
	}
	for _, name := range []string{"string", "table", "math", "pairs", "pcall", "print", "doc"} {
		if v := s.L.GetGlobal(name); v == glua.LNil {
			t.Errorf("global %s missing", name)
		}
	}
}

func TestEvalResults(t *testing.T) {
	s := NewState()
	defer s.Close()

	got, err := s.Eval(context.Background(), "results", `return 1, 2.5, "a", {10, 20}, {x = true}, nil`)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	want := []any{int64(1), 2.5, "a", []any{int64(10), int64(20)}, map[string]any{"x": true}, nil}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Eval = %#v, want %#v", got, want)
	}
}

func TestSyntaxError(t *testing.T) {
	s := NewState()
	defer s.Close()

	err := s.Run(context.Background(), "broken", `invalid lua code !!!`)
	var serr *Error
	if !errors.As(err, &serr) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if serr.Script != "broken" {
		t.Errorf("Script = %q, want broken", serr.Script)
	}
	if serr.Err != nil {
		t.Errorf("Err = %v, want nil for a syntax error", serr.Err)
	}
}

func TestRuntimeError(t *testing.T) {
	s := NewState()
	defer s.Close()

	err := s.Run(context.Background(), "boom", `error("boom")`)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("err = %v, want message containing boom", err)
	}
}

func TestPrintCapture(t *testing.T) {
	var buf bytes.Buffer
	s := NewState(WithOutput(&buf))
	defer s.Close()

	if err := s.Run(context.Background(), "print", `print("a", 1, true)`); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := buf.String(); got != "a\t1\ttrue\n" {
		t.Errorf("output = %q, want %q", got, "a\t1\ttrue\n")
	}
}

func TestTimeout(t *testing.T) {
	s := NewState(WithTimeout(50 * time.Millisecond))
	defer s.Close()

	err := s.Run(context.Background(), "spin", `while true do end`)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
}

func TestContextCancel(t *testing.T) {
	s := NewState(WithTimeout(0))
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Run(ctx, "spin", `while true do end`)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestCallLimit(t *testing.T) {
	s, _ := newState(t, "abc", WithMaxCalls(10))

	err := s.Run(context.Background(), "loop", `for i = 1, 100 do doc.len() end`)
	if !errors.Is(err, ErrCallLimit) {
		t.Fatalf("err = %v, want ErrCallLimit", err)
	}

	// Catching the error does not hide it.
	err = s.Run(context.Background(), "caught", `for i = 1, 100 do pcall(doc.len) end`)
	if !errors.Is(err, ErrCallLimit) {
		t.Errorf("err = %v, want ErrCallLimit", err)
	}

	// The budget resets per run.
	if err := s.Run(context.Background(), "small", `doc.len()`); err != nil {
		t.Errorf("Run under budget failed: %v", err)
	}
}

func TestNoDocument(t *testing.T) {
	s := NewState()
	defer s.Close()

	err := s.Run(context.Background(), "unbound", `doc.len()`)
	if !errors.Is(err, ErrNoDocument) {
		t.Errorf("err = %v, want ErrNoDocument", err)
	}
}

func TestClosedState(t *testing.T) {
	s := NewState()
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
	if err := s.Run(context.Background(), "x", `x = 1`); !errors.Is(err, ErrStateClosed) {
		t.Errorf("Run after Close = %v, want ErrStateClosed", err)
	}
}

func TestBridgeRoundTrip(t *testing.T) {
	s := NewState()
	defer s.Close()
	b := NewBridge(s.L)

	in := map[string]any{
		"n":    int64(3),
		"f":    1.5,
		"s":    "x",
		"list": []any{"a", "b"},
	}
	if got := b.ToGoValue(b.ToLuaValue(in)); !reflect.DeepEqual(got, in) {
		t.Errorf("round trip = %#v, want %#v", got, in)
	}

	strs := b.ToGoValue(b.ToLuaValue([]string{"p", "q"}))
	if !reflect.DeepEqual(strs, []any{"p", "q"}) {
		t.Errorf("[]string = %#v", strs)
	}
}

func TestBridgeCycle(t *testing.T) {
	s := NewState()
	defer s.Close()

	got, err := s.Eval(context.Background(), "cycle", `local t = {name = "t"}; t.self = t; return t`)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	m, ok := got[0].(map[string]any)
	if !ok {
		t.Fatalf("result = %#v, want map", got[0])
	}
	if m["name"] != "t" || m["self"] != nil {
		t.Errorf("result = %#v, want name=t and self=nil", m)
	}
}

func TestCallFunc(t *testing.T) {
	s := NewState()
	defer s.Close()

	if err := s.Run(context.Background(), "def", `function add(a, b) return a + b end`); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	fn, ok := s.L.GetGlobal("add").(*glua.LFunction)
	if !ok {
		t.Fatal("add is not a function")
	}
	got, err := NewBridge(s.L).CallFunc(fn, 2, 3)
	if err != nil {
		t.Fatalf("CallFunc failed: %v", err)
	}
	if !reflect.DeepEqual(got, []any{int64(5)}) {
		t.Errorf("CallFunc = %#v, want [5]", got)
	}
}
