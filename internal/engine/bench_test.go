package engine

import (
	"strings"
	"testing"

	"github.com/dshills/scribe/internal/engine/content"
	"github.com/dshills/scribe/internal/engine/format"
)

// ============================================================================
// Setup Helpers
// ============================================================================

func setupLargeDocument(b *testing.B, lines int) *Document {
	b.Helper()
	var sb strings.Builder
	line := strings.Repeat("x", 80) + "\n"
	for i := 0; i < lines; i++ {
		sb.WriteString(line)
	}
	d, err := New(WithContent(content.Plain(sb.String())))
	if err != nil {
		b.Fatalf("New: %v", err)
	}
	for i := 0; i < lines; i += 10 {
		start := i * 81
		if err := d.ApplyFormat(format.FormatBold, start, start+40); err != nil {
			b.Fatalf("ApplyFormat: %v", err)
		}
	}
	d.ClearHistory()
	return d
}

// ============================================================================
// Read Operation Benchmarks
// ============================================================================

func BenchmarkDocumentText(b *testing.B) {
	d := setupLargeDocument(b, 10000)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = d.Text()
	}
}

func BenchmarkDocumentFormatsAt(b *testing.B) {
	d := setupLargeDocument(b, 10000)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _ = d.FormatsAt((i * 97) % d.Len())
	}
}

func BenchmarkDocumentWordCount(b *testing.B) {
	d := setupLargeDocument(b, 1000)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = d.WordCount()
	}
}

// ============================================================================
// Write Operation Benchmarks
// ============================================================================

func BenchmarkDocumentInsertMiddle(b *testing.B) {
	d := setupLargeDocument(b, 10000)
	mid := d.Len() / 2
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = d.InsertText(mid, "y")
	}
}

func BenchmarkDocumentInsertDeleteUndo(b *testing.B) {
	d := setupLargeDocument(b, 10000)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = d.InsertText(1000, "hello")
		_ = d.DeleteRange(1000, 1005)
		_ = d.Undo()
		_ = d.Undo()
	}
}

func BenchmarkDocumentApplyFormat(b *testing.B) {
	d := setupLargeDocument(b, 10000)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		start := (i * 131) % (d.Len() - 50)
		_ = d.ApplyFormat(format.FormatItalic, start, start+50)
	}
}

// ============================================================================
// Serialization Benchmarks
// ============================================================================

func BenchmarkDocumentToJSON(b *testing.B) {
	d := setupLargeDocument(b, 1000)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _ = d.ToJSON()
	}
}

func BenchmarkDocumentToHTML(b *testing.B) {
	d := setupLargeDocument(b, 1000)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _ = d.ToHTML()
	}
}
