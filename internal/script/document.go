package script

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/scribe/internal/engine"
)

// docModule builds the doc global table.
func (s *State) docModule() *lua.LTable {
	return s.L.SetFuncs(s.L.NewTable(), map[string]lua.LGFunction{
		"text":          s.docText,
		"len":           s.docLen,
		"slice":         s.docSlice,
		"insert":        s.docInsert,
		"delete":        s.docDelete,
		"replace":       s.docReplace,
		"format":        s.docFormat,
		"unformat":      s.docUnformat,
		"toggle":        s.docToggle,
		"clear":         s.docClear,
		"block":         s.docBlock,
		"formats_at":    s.docFormatsAt,
		"block_at":      s.docBlockAt,
		"select":        s.docSelect,
		"select_all":    s.docSelectAll,
		"selection":     s.docSelection,
		"selected_text": s.docSelectedText,
		"move":          s.docMove,
		"undo":          s.docUndo,
		"redo":          s.docRedo,
		"find":          s.docFind,
		"replace_all":   s.docReplaceAll,
		"words":         s.docWords,
		"lines":         s.docLines,
		"export":        s.docExport,
		"export_range":  s.docExportRange,
		"batch":         s.docBatch,
	})
}

// done raises err if non-nil and otherwise returns n results.
func (s *State) done(L *lua.LState, err error, n int) int {
	if err != nil {
		return s.raise(L, err)
	}
	return n
}

func (s *State) docText(L *lua.LState) int {
	L.Push(lua.LString(s.charge(L).Text()))
	return 1
}

func (s *State) docLen(L *lua.LState) int {
	L.Push(lua.LNumber(s.charge(L).Len()))
	return 1
}

func (s *State) docSlice(L *lua.LState) int {
	d := s.charge(L)
	text, err := d.Slice(L.CheckInt(1), L.CheckInt(2))
	L.Push(lua.LString(text))
	return s.done(L, err, 1)
}

func (s *State) docInsert(L *lua.LState) int {
	d := s.charge(L)
	return s.done(L, d.InsertText(L.CheckInt(1), L.CheckString(2)), 0)
}

func (s *State) docDelete(L *lua.LState) int {
	d := s.charge(L)
	return s.done(L, d.DeleteRange(L.CheckInt(1), L.CheckInt(2)), 0)
}

func (s *State) docReplace(L *lua.LState) int {
	d := s.charge(L)
	return s.done(L, d.ReplaceRange(L.CheckInt(1), L.CheckInt(2), L.CheckString(3)), 0)
}

// docFormat is doc.format(start, end, name [, value]).
func (s *State) docFormat(L *lua.LState) int {
	d := s.charge(L)
	f, err := engine.ParseFormat(L.CheckString(3), L.OptString(4, ""))
	if err != nil {
		return s.raise(L, err)
	}
	return s.done(L, d.ApplyFormat(f, L.CheckInt(1), L.CheckInt(2)), 0)
}

func (s *State) docUnformat(L *lua.LState) int {
	d := s.charge(L)
	kind, err := engine.ParseFormatKind(L.CheckString(3))
	if err != nil {
		return s.raise(L, err)
	}
	return s.done(L, d.RemoveFormat(kind, L.CheckInt(1), L.CheckInt(2)), 0)
}

func (s *State) docToggle(L *lua.LState) int {
	d := s.charge(L)
	f, err := engine.ParseFormat(L.CheckString(3), L.OptString(4, ""))
	if err != nil {
		return s.raise(L, err)
	}
	return s.done(L, d.ToggleFormat(f, L.CheckInt(1), L.CheckInt(2)), 0)
}

func (s *State) docClear(L *lua.LState) int {
	d := s.charge(L)
	return s.done(L, d.ClearFormats(L.CheckInt(1), L.CheckInt(2)), 0)
}

func (s *State) docBlock(L *lua.LState) int {
	d := s.charge(L)
	t, err := engine.ParseBlockType(L.CheckString(3))
	if err != nil {
		return s.raise(L, err)
	}
	return s.done(L, d.SetBlockType(t, L.CheckInt(1), L.CheckInt(2)), 0)
}

// docFormatsAt returns a table keyed by format name. Tag-only formats map
// to true, valued formats to their value.
func (s *State) docFormatsAt(L *lua.LState) int {
	d := s.charge(L)
	set, err := d.FormatsAt(L.CheckInt(1))
	if err != nil {
		return s.raise(L, err)
	}
	t := L.NewTable()
	for _, f := range set.Formats() {
		if f.Value == "" {
			t.RawSetString(f.Kind.String(), lua.LTrue)
		} else {
			t.RawSetString(f.Kind.String(), lua.LString(f.Value))
		}
	}
	L.Push(t)
	return 1
}

func (s *State) docBlockAt(L *lua.LState) int {
	d := s.charge(L)
	t, err := d.BlockTypeAt(L.CheckInt(1))
	L.Push(lua.LString(t.String()))
	return s.done(L, err, 1)
}

func (s *State) docSelect(L *lua.LState) int {
	d := s.charge(L)
	anchor := L.CheckInt(1)
	focus := L.OptInt(2, anchor)
	return s.done(L, d.SetSelection(anchor, focus), 0)
}

func (s *State) docSelectAll(L *lua.LState) int {
	return s.done(L, s.charge(L).SelectAll(), 0)
}

func (s *State) docSelection(L *lua.LState) int {
	sel := s.charge(L).Selection()
	L.Push(lua.LNumber(sel.Anchor))
	L.Push(lua.LNumber(sel.Focus))
	return 2
}

func (s *State) docSelectedText(L *lua.LState) int {
	L.Push(lua.LString(s.charge(L).SelectedText()))
	return 1
}

// docMove is doc.move(motion [, extend]). Motions are "left", "right",
// "up", "down", "line_start", "line_end", "doc_start", "doc_end",
// "word_forward" and "word_backward".
func (s *State) docMove(L *lua.LState) int {
	d := s.charge(L)
	extend := L.OptBool(2, false)
	var err error
	switch motion := L.CheckString(1); motion {
	case "left":
		err = d.MoveCursorLeft(extend)
	case "right":
		err = d.MoveCursorRight(extend)
	case "up":
		err = d.MoveCursorUp(extend)
	case "down":
		err = d.MoveCursorDown(extend)
	case "line_start":
		err = d.MoveToLineStart(extend)
	case "line_end":
		err = d.MoveToLineEnd(extend)
	case "doc_start":
		err = d.MoveToDocumentStart(extend)
	case "doc_end":
		err = d.MoveToDocumentEnd(extend)
	case "word_forward":
		err = d.MoveByWord(true, extend)
	case "word_backward":
		err = d.MoveByWord(false, extend)
	default:
		L.ArgError(1, fmt.Sprintf("unknown motion %q", motion))
		return 0
	}
	return s.done(L, err, 0)
}

func (s *State) docUndo(L *lua.LState) int {
	return s.done(L, s.charge(L).Undo(), 0)
}

func (s *State) docRedo(L *lua.LState) int {
	return s.done(L, s.charge(L).Redo(), 0)
}

// searchOptions reads {case_sensitive=, regexp=, whole_word=} from
// argument n. Search is case-sensitive unless told otherwise.
func (s *State) searchOptions(L *lua.LState, n int) engine.SearchOptions {
	opts := engine.SearchOptions{CaseSensitive: true}
	t := L.OptTable(n, nil)
	if t == nil {
		return opts
	}
	b := NewBridge(L)
	if v, ok := b.GetTableBool(t, "case_sensitive"); ok {
		opts.CaseSensitive = v
	}
	if v, ok := b.GetTableBool(t, "regexp"); ok {
		opts.Regexp = v
	}
	if v, ok := b.GetTableBool(t, "whole_word"); ok {
		opts.WholeWord = v
	}
	return opts
}

// docFind returns an array of {start=, end=, text=} tables.
func (s *State) docFind(L *lua.LState) int {
	d := s.charge(L)
	matches, err := d.Find(L.CheckString(1), s.searchOptions(L, 2))
	if err != nil {
		return s.raise(L, err)
	}
	out := make([]any, len(matches))
	for i, m := range matches {
		out[i] = map[string]any{"start": m.Start, "end": m.End, "text": m.Text}
	}
	L.Push(NewBridge(L).ToLuaValue(out))
	return 1
}

func (s *State) docReplaceAll(L *lua.LState) int {
	d := s.charge(L)
	n, err := d.FindAndReplace(L.CheckString(1), L.CheckString(2), s.searchOptions(L, 3))
	L.Push(lua.LNumber(n))
	return s.done(L, err, 1)
}

func (s *State) docWords(L *lua.LState) int {
	L.Push(lua.LNumber(s.charge(L).WordCount()))
	return 1
}

func (s *State) docLines(L *lua.LState) int {
	L.Push(lua.LNumber(s.charge(L).LineCount()))
	return 1
}

// docExport is doc.export(format) for "json", "html", "markdown" or "text".
func (s *State) docExport(L *lua.LState) int {
	d := s.charge(L)
	var (
		out string
		err error
	)
	switch name := L.CheckString(1); name {
	case "json":
		var data []byte
		data, err = d.ToJSON()
		out = string(data)
	case "html":
		out, err = d.ToHTML()
	case "markdown", "md":
		out, err = d.ToMarkdown()
	case "text":
		out, err = d.ToPlainText()
	default:
		L.ArgError(1, fmt.Sprintf("unknown export format %q", name))
		return 0
	}
	L.Push(lua.LString(out))
	return s.done(L, err, 1)
}

// docExportRange is doc.export_range(start, end): the HTML of the lines
// the range touches.
func (s *State) docExportRange(L *lua.LState) int {
	d := s.charge(L)
	out, err := d.ToHTMLRange(L.CheckInt(1), L.CheckInt(2))
	L.Push(lua.LString(out))
	return s.done(L, err, 1)
}

// docBatch is doc.batch(name, fn). An error raised by fn reverts its
// edits and propagates.
func (s *State) docBatch(L *lua.LState) int {
	d := s.charge(L)
	name := L.CheckString(1)
	fn := L.CheckFunction(2)

	err := d.Batch(name, func() error {
		_, err := NewBridge(L).CallFunc(fn)
		return err
	})
	if err == nil {
		return 0
	}
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) && apiErr.Object != nil {
		L.Error(apiErr.Object, 0)
		return 0
	}
	return s.raise(L, err)
}
