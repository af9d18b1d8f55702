package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/scribe/internal/engine"
	"github.com/dshills/scribe/internal/logging"
)

// Default limits for a run.
const (
	DefaultTimeout  = 5 * time.Second
	DefaultMaxCalls = 1_000_000
)

// hostErrorType names the metatable of userdata carrying Go errors.
const hostErrorType = "scribe.error"

// State wraps a sandboxed gopher-lua state.
//
// gopher-lua's LState is not goroutine-safe. State serializes Run and
// Eval with a mutex.
type State struct {
	L *lua.LState

	mu sync.Mutex

	timeout  time.Duration
	maxCalls int64
	output   io.Writer
	log      *logging.Logger

	doc       *engine.Document
	calls     int64
	exhausted bool
	closed    bool
}

// Option configures a State.
type Option func(*State)

// WithTimeout sets the wall-clock limit per run. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(s *State) {
		s.timeout = d
	}
}

// WithMaxCalls sets the doc call budget per run. Zero disables it.
func WithMaxCalls(n int64) Option {
	return func(s *State) {
		s.maxCalls = n
	}
}

// WithOutput sets where print writes. Output is discarded by default.
func WithOutput(w io.Writer) Option {
	return func(s *State) {
		if w != nil {
			s.output = w
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *State) {
		if l != nil {
			s.log = l.WithComponent("script")
		}
	}
}

// NewState creates a sandboxed Lua state.
func NewState(opts ...Option) *State {
	s := &State{
		timeout:  DefaultTimeout,
		maxCalls: DefaultMaxCalls,
		output:   io.Discard,
		log:      logging.NullLogger,
	}
	for _, opt := range opts {
		opt(s)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	s.L = L
	openSafeLibraries(L)
	s.install()
	return s
}

// openSafeLibraries opens only safe Lua standard libraries.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// install removes escape hatches from the base library and adds the
// print, error and doc globals.
func (s *State) install() {
	for _, name := range []string{
		"dofile", "loadfile", "load", "loadstring",
		"require", "module", "collectgarbage", "_printregs",
	} {
		s.L.SetGlobal(name, lua.LNil)
	}

	s.L.SetGlobal("print", s.L.NewFunction(s.print))

	mt := s.L.NewTypeMetatable(hostErrorType)
	s.L.SetField(mt, "__tostring", s.L.NewFunction(func(L *lua.LState) int {
		ud := L.CheckUserData(1)
		if err, ok := ud.Value.(error); ok {
			L.Push(lua.LString(err.Error()))
		} else {
			L.Push(lua.LString("error"))
		}
		return 1
	}))

	s.L.SetGlobal("doc", s.docModule())
}

func (s *State) print(L *lua.LState) int {
	top := L.GetTop()
	parts := make([]string, top)
	for i := 1; i <= top; i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	fmt.Fprintln(s.output, strings.Join(parts, "\t"))
	return 0
}

// Bind exposes d to scripts as the doc global. Passing nil unbinds.
func (s *State) Bind(d *engine.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = d
}

// Run executes code. name identifies the chunk in error messages.
func (s *State) Run(ctx context.Context, name, code string) error {
	_, err := s.Eval(ctx, name, code)
	return err
}

// Eval executes code and returns its results converted to Go values.
func (s *State) Eval(ctx context.Context, name, code string) ([]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStateClosed
	}

	fn, err := s.L.Load(strings.NewReader(code), name)
	if err != nil {
		return nil, &Error{Script: name, Message: err.Error()}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	s.calls = 0
	s.exhausted = false
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	start := time.Now()
	top := s.L.GetTop()
	s.L.Push(fn)
	err = s.doWithRecovery(func() error {
		return s.L.PCall(0, lua.MultRet, nil)
	})
	elapsed := time.Since(start)

	if err != nil {
		s.L.SetTop(top)
		serr := s.classify(ctx, name, err)
		s.log.Debug("%s failed after %s: %v", name, elapsed, serr)
		return nil, serr
	}

	n := s.L.GetTop() - top
	results := make([]any, n)
	b := NewBridge(s.L)
	for i := 0; i < n; i++ {
		results[i] = b.ToGoValue(s.L.Get(top + i + 1))
	}
	s.L.SetTop(top)

	if s.exhausted {
		return nil, &Error{Script: name, Message: ErrCallLimit.Error(), Err: ErrCallLimit}
	}
	s.log.Debug("%s finished in %s with %d calls", name, elapsed, s.calls)
	return results, nil
}

// doWithRecovery executes a function with panic recovery.
func (s *State) doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// classify maps a failed run to an *Error carrying the Go cause.
func (s *State) classify(ctx context.Context, name string, err error) error {
	out := &Error{Script: name, Message: err.Error()}

	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) {
		if ud, ok := apiErr.Object.(*lua.LUserData); ok {
			if herr, ok := ud.Value.(error); ok {
				out.Message = herr.Error()
				out.Err = herr
				return out
			}
		}
		if apiErr.Object != nil {
			out.Message = apiErr.Object.String()
		}
	}

	switch {
	case s.exhausted:
		out.Err = ErrCallLimit
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		out.Err = ErrTimeout
	case ctx.Err() != nil:
		out.Err = ctx.Err()
	}
	return out
}

// raise aborts the running Lua function with err. Scripts see a value
// whose tostring is err's message.
func (s *State) raise(L *lua.LState, err error) int {
	ud := L.NewUserData()
	ud.Value = err
	L.SetMetatable(ud, L.GetTypeMetatable(hostErrorType))
	L.Error(ud, 1)
	return 0
}

// charge counts one doc call against the budget and returns the bound
// document.
func (s *State) charge(L *lua.LState) *engine.Document {
	s.calls++
	if s.maxCalls > 0 && s.calls > s.maxCalls {
		s.exhausted = true
		s.raise(L, fmt.Errorf("%w: %d calls", ErrCallLimit, s.maxCalls))
	}
	if s.doc == nil {
		s.raise(L, ErrNoDocument)
	}
	return s.doc
}

// Close releases the Lua state. Later runs return ErrStateClosed.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}

// IsClosed returns true if the state has been closed.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
