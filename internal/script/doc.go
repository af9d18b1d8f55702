// Package script runs sandboxed Lua scripts against a document.
//
// Scripts run in a gopher-lua state with only the base, table, string and
// math libraries. File, OS, module loading and chunk loading functions are
// removed. A bound document is exposed as the global table doc:
//
//	doc.insert(doc.len(), "\nDone")
//	doc.format(0, 5, "bold")
//	doc.format(6, 11, "link", "https://example.com")
//	doc.block(0, 5, "heading1")
//	for _, m in ipairs(doc.find("todo", {whole_word = true})) do
//	    doc.format(m.start, m["end"], "textColor", "#cc0000")
//	end
//	doc.batch("tidy", function()
//	    doc.replace_all("  ", " ")
//	    doc.clear(0, doc.len())
//	end)
//
// Offsets are zero-based character offsets, as in the engine package.
//
// # Limits
//
// A run stops with ErrTimeout once its wall-clock timeout passes and with
// ErrCallLimit once it makes more doc calls than allowed. Engine errors
// raised inside a script keep their identity: errors.Is(err,
// engine.ErrInvalidRange) holds for a script that passed a bad range.
// Scripts may catch them with pcall.
package script
