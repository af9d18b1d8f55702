package engine

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/dshills/scribe/internal/engine/text"
)

// SearchOptions controls Find and FindAndReplace.
type SearchOptions struct {
	CaseSensitive bool
	// Regexp treats the query as an RE2 pattern. Replacements may then
	// refer to submatches as $1 or ${name}.
	Regexp bool
	// WholeWord rejects matches adjacent to letters, digits or '_'.
	WholeWord bool
}

// Match is one search hit in character offsets.
type Match struct {
	Start int
	End   int
	Text  string
}

// hit is a match in byte offsets of the searched string.
type hit struct {
	start, end int
	sub        []int
}

type matcher struct {
	query string
	opts  SearchOptions
	re    *regexp.Regexp
}

func newMatcher(query string, opts SearchOptions) (*matcher, error) {
	if query == "" {
		return nil, fmt.Errorf("empty query: %w", ErrInvalidQuery)
	}
	m := &matcher{query: query, opts: opts}
	if opts.Regexp {
		pattern := query
		if !opts.CaseSensitive {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
		}
		m.re = re
	}
	return m, nil
}

// find returns the non-overlapping hits in s in order.
func (m *matcher) find(s string) []hit {
	var hits []hit
	switch {
	case m.re != nil:
		for _, idx := range m.re.FindAllStringSubmatchIndex(s, -1) {
			if idx[0] < idx[1] {
				hits = append(hits, hit{start: idx[0], end: idx[1], sub: idx})
			}
		}
	case m.opts.CaseSensitive:
		for off := 0; ; {
			i := strings.Index(s[off:], m.query)
			if i < 0 {
				break
			}
			hits = append(hits, hit{start: off + i, end: off + i + len(m.query)})
			off += i + len(m.query)
		}
	default:
		hits = foldedIndex(s, m.query)
	}

	if m.opts.WholeWord {
		kept := hits[:0]
		for _, h := range hits {
			if isWordBoundary(s, h.start, h.end) {
				kept = append(kept, h)
			}
		}
		hits = kept
	}
	return hits
}

func (m *matcher) replacement(s, template string, h hit) string {
	if m.re == nil {
		return template
	}
	return string(m.re.ExpandString(nil, template, s, h.sub))
}

// foldedIndex finds case-insensitive occurrences of query in s. Both are
// case folded; a hit counts only when it starts and ends on characters of
// the original text.
func foldedIndex(s, query string) []hit {
	fold := cases.Fold()
	q := fold.String(query)

	var sb strings.Builder
	folded := make([]int, 0, len(s)+1)
	original := make([]int, 0, len(s)+1)
	for i, r := range s {
		folded = append(folded, sb.Len())
		original = append(original, i)
		if r < utf8.RuneSelf {
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteString(fold.String(string(r)))
		}
	}
	folded = append(folded, sb.Len())
	original = append(original, len(s))
	fs := sb.String()

	at := func(off int) (int, bool) {
		i := sort.SearchInts(folded, off)
		if i < len(folded) && folded[i] == off {
			return original[i], true
		}
		return 0, false
	}

	var hits []hit
	for off := 0; off < len(fs); {
		i := strings.Index(fs[off:], q)
		if i < 0 {
			break
		}
		start, okStart := at(off + i)
		end, okEnd := at(off + i + len(q))
		if okStart && okEnd {
			hits = append(hits, hit{start: start, end: end})
			off += i + len(q)
			continue
		}
		_, size := utf8.DecodeRuneInString(fs[off+i:])
		off += i + size
	}
	return hits
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isWordBoundary(s string, start, end int) bool {
	if r, _ := utf8.DecodeLastRuneInString(s[:start]); start > 0 && isWordRune(r) {
		return false
	}
	if r, _ := utf8.DecodeRuneInString(s[end:]); end < len(s) && isWordRune(r) {
		return false
	}
	return true
}

// toMatches converts ordered byte hits to character offsets.
func toMatches(s string, hits []hit) []Match {
	out := make([]Match, 0, len(hits))
	pos, byteOff := 0, 0
	for _, h := range hits {
		pos += utf8.RuneCountInString(s[byteOff:h.start])
		n := utf8.RuneCountInString(s[h.start:h.end])
		out = append(out, Match{Start: pos, End: pos + n, Text: s[h.start:h.end]})
		pos += n
		byteOff = h.end
	}
	return out
}

// Find returns every non-overlapping occurrence of query.
func (d *Document) Find(query string, opts SearchOptions) ([]Match, error) {
	m, err := newMatcher(query, opts)
	if err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.destroyed {
		return nil, ErrDestroyed
	}
	s := d.m.text.String()
	return toMatches(s, m.find(s)), nil
}

// FindAndReplace replaces every occurrence of query as one undoable edit
// and returns the number of replacements. Replaced text takes the formats
// of the run it continues, as typed text does.
func (d *Document) FindAndReplace(query, replacement string, opts SearchOptions) (int, error) {
	m, err := newMatcher(query, opts)
	if err != nil {
		return 0, err
	}
	count := 0
	err = d.mutate("replace all", func(e *edit) error {
		s := e.m.text.String()
		hits := m.find(s)
		matches := toMatches(s, hits)
		for i := len(matches) - 1; i >= 0; i-- {
			repl := m.replacement(s, replacement, hits[i])
			if err := text.Validate(repl); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidText, err)
			}
			if err := e.delete(matches[i].Start, matches[i].End); err != nil {
				return err
			}
			if err := e.insert(matches[i].Start, repl); err != nil {
				return err
			}
		}
		count = len(matches)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
