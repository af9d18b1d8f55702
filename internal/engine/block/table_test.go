package block

import (
	"errors"
	"math/rand"
	"slices"
	"testing"
)

func mustTable(t *testing.T, length int, blocks ...Block) *Table {
	t.Helper()
	tbl, err := FromBlocks(blocks, length)
	if err != nil {
		t.Fatalf("FromBlocks: %v", err)
	}
	return tbl
}

func TestNewTable(t *testing.T) {
	tbl := NewTable(0)
	if tbl.Count() != 1 {
		t.Fatalf("expected 1 block, got %d", tbl.Count())
	}
	if got := tbl.Block(0); got != (Block{0, 0, Paragraph}) {
		t.Errorf("block = %v, want empty paragraph", got)
	}
	if err := tbl.Validate(0); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestFromBlocksRejectsGaps(t *testing.T) {
	_, err := FromBlocks([]Block{{0, 3, Paragraph}, {4, 6, Heading1}}, 6)
	if !errors.Is(err, ErrInvalidPartition) {
		t.Errorf("expected ErrInvalidPartition, got %v", err)
	}
	_, err = FromBlocks([]Block{{0, 3, Paragraph}}, 5)
	if !errors.Is(err, ErrInvalidPartition) {
		t.Errorf("expected ErrInvalidPartition for short coverage, got %v", err)
	}
}

func TestTypeAt(t *testing.T) {
	tbl := mustTable(t, 10, Block{0, 4, Heading1}, Block{4, 10, Paragraph})
	tests := []struct {
		pos  int
		want Type
	}{
		{0, Heading1},
		{3, Heading1},
		{4, Paragraph},
		{10, Paragraph},
	}
	for _, tt := range tests {
		if got := tbl.TypeAt(tt.pos); got != tt.want {
			t.Errorf("TypeAt(%d) = %v, want %v", tt.pos, got, tt.want)
		}
	}
}

func TestInsertText(t *testing.T) {
	tests := []struct {
		name string
		pos  int
		want []Block
	}{
		{"inside first", 2, []Block{{0, 7, Heading1}, {7, 13, Paragraph}}},
		{"at boundary", 4, []Block{{0, 4, Heading1}, {4, 13, Paragraph}}},
		{"at end", 10, []Block{{0, 4, Heading1}, {4, 13, Paragraph}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := mustTable(t, 10, Block{0, 4, Heading1}, Block{4, 10, Paragraph})
			tbl.InsertText(tt.pos, 3)
			if got := tbl.Blocks(); !slices.Equal(got, tt.want) {
				t.Errorf("blocks = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInsertIntoEmpty(t *testing.T) {
	tbl := NewTable(0)
	tbl.InsertText(0, 1)
	if got := tbl.Blocks(); !slices.Equal(got, []Block{{0, 1, Paragraph}}) {
		t.Errorf("blocks = %v", got)
	}
}

func TestDeleteText(t *testing.T) {
	// "ab\n" heading1, "cd\n" paragraph, "ef" blockQuote
	base := []Block{{0, 3, Heading1}, {3, 6, Paragraph}, {6, 8, BlockQuote}}
	tests := []struct {
		name       string
		start, end int
		want       []Block
	}{
		{"inside block", 3, 4, []Block{{0, 3, Heading1}, {3, 5, Paragraph}, {5, 7, BlockQuote}}},
		{"whole middle block", 3, 6, []Block{{0, 3, Heading1}, {3, 5, BlockQuote}}},
		{"block tail", 2, 3, []Block{{0, 2, Heading1}, {2, 5, Paragraph}, {5, 7, BlockQuote}}},
		{"across two boundaries", 1, 7, []Block{{0, 1, Heading1}, {1, 2, BlockQuote}}},
		{"block tail and next start", 2, 4, []Block{{0, 2, Heading1}, {2, 4, Paragraph}, {4, 6, BlockQuote}}},
		{"from block start", 3, 7, []Block{{0, 3, Heading1}, {3, 4, BlockQuote}}},
		{"everything", 0, 8, []Block{{0, 0, Paragraph}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := mustTable(t, 8, base...)
			tbl.DeleteText(tt.start, tt.end)
			if got := tbl.Blocks(); !slices.Equal(got, tt.want) {
				t.Errorf("blocks = %v, want %v", got, tt.want)
			}
			if err := tbl.Validate(8 - (tt.end - tt.start)); err != nil {
				t.Errorf("Validate() = %v", err)
			}
		})
	}
}

func TestSetType(t *testing.T) {
	base := []Block{{0, 3, Paragraph}, {3, 6, Heading1}, {6, 9, Paragraph}}
	tests := []struct {
		name       string
		typ        Type
		start, end int
		want       []Block
	}{
		{"collapsed", BlockQuote, 4, 4, []Block{{0, 3, Paragraph}, {3, 6, BlockQuote}, {6, 9, Paragraph}}},
		{"collapsed merges", Paragraph, 4, 4, []Block{{0, 9, Paragraph}}},
		{"split middle", CodeBlock, 1, 2, []Block{{0, 1, Paragraph}, {1, 2, CodeBlock}, {2, 3, Paragraph}, {3, 6, Heading1}, {6, 9, Paragraph}}},
		{"spanning", Heading2, 2, 7, []Block{{0, 2, Paragraph}, {2, 7, Heading2}, {7, 9, Paragraph}}},
		{"merge into neighbour", Heading1, 0, 3, []Block{{0, 6, Heading1}, {6, 9, Paragraph}}},
		{"no change", Heading1, 3, 6, base},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := mustTable(t, 9, base...)
			tbl.SetType(tt.typ, tt.start, tt.end)
			if got := tbl.Blocks(); !slices.Equal(got, tt.want) {
				t.Errorf("blocks = %v, want %v", got, tt.want)
			}
			if err := tbl.Validate(9); err != nil {
				t.Errorf("Validate() = %v", err)
			}
		})
	}
}

func TestSetTypeOnEmptyDocument(t *testing.T) {
	tbl := NewTable(0)
	p := tbl.SetType(Heading1, 0, 0)
	if p.IsEmpty() {
		t.Fatal("expected a patch")
	}
	if got := tbl.Blocks(); !slices.Equal(got, []Block{{0, 0, Heading1}}) {
		t.Errorf("blocks = %v", got)
	}
}

func TestPatchRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tbl := NewTable(0)
	length := 0

	for i := 0; i < 500; i++ {
		before := tbl.Clone()
		var p Patch
		newLength := length
		switch op := rng.Intn(3); {
		case op == 0 || length == 0:
			pos := rng.Intn(length + 1)
			n := 1 + rng.Intn(5)
			p = tbl.InsertText(pos, n)
			newLength = length + n
		case op == 1:
			s := rng.Intn(length)
			e := s + 1 + rng.Intn(length-s)
			p = tbl.DeleteText(s, e)
			newLength = length - (e - s)
		default:
			s := rng.Intn(length + 1)
			e := s + rng.Intn(length-s+1)
			p = tbl.SetType(Type(rng.Intn(int(typeCount))), s, e)
		}
		if err := tbl.Validate(newLength); err != nil {
			t.Fatalf("step %d: %v (blocks %v)", i, err, tbl.Blocks())
		}
		after := tbl.Clone()

		if err := tbl.ApplyPatch(p.Invert()); err != nil {
			t.Fatalf("step %d: undo: %v", i, err)
		}
		if !tbl.Equal(before) {
			t.Fatalf("step %d: undo mismatch: %v vs %v", i, tbl.Blocks(), before.Blocks())
		}
		if err := tbl.ApplyPatch(p); err != nil {
			t.Fatalf("step %d: redo: %v", i, err)
		}
		if !tbl.Equal(after) {
			t.Fatalf("step %d: redo mismatch", i)
		}
		length = newLength
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want Type
		ok   bool
	}{
		{"paragraph", Paragraph, true},
		{"heading3", Heading3, true},
		{"h6", Heading6, true},
		{"blockquote", BlockQuote, true},
		{"ol", NumberedList, true},
		{"codeBlock", CodeBlock, true},
		{"table", Paragraph, false},
	}
	for _, tt := range tests {
		got, err := ParseType(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseType(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestPatchSpan(t *testing.T) {
	base := []Block{{0, 3, Paragraph}, {3, 6, Heading1}, {6, 9, Paragraph}}
	tests := []struct {
		name               string
		op                 func(tbl *Table) Patch
		wantStart, wantEnd int
		wantOK             bool
	}{
		{"split middle", func(tbl *Table) Patch { return tbl.SetType(CodeBlock, 1, 2) }, 0, 3, true},
		{"retype one block", func(tbl *Table) Patch { return tbl.SetType(Heading2, 3, 6) }, 3, 6, true},
		{"no change", func(tbl *Table) Patch { return tbl.SetType(Heading1, 3, 6) }, 0, 0, false},
		{"insert text", func(tbl *Table) Patch { return tbl.InsertText(4, 2) }, 0, 0, false},
		{"delete text", func(tbl *Table) Patch { return tbl.DeleteText(1, 2) }, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := mustTable(t, 9, base...)
			start, end, ok := tt.op(tbl).Span()
			if ok != tt.wantOK || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("Span() = %d, %d, %v, want %d, %d, %v", start, end, ok, tt.wantStart, tt.wantEnd, tt.wantOK)
			}
		})
	}
}
