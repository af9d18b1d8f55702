package selection

// AdjustForInsertion maps an offset across n characters inserted at pos.
// Offsets at the insertion point move past the new text.
func AdjustForInsertion(offset, pos, n int) int {
	if offset < pos {
		return offset
	}
	return offset + n
}

// AdjustForDeletion maps an offset across the removal of [start, end).
// Offsets inside the range collapse to start.
func AdjustForDeletion(offset, start, end int) int {
	switch {
	case offset <= start:
		return offset
	case offset < end:
		return start
	default:
		return offset - (end - start)
	}
}

// AdjustForReplace maps an offset across [start, end) being replaced by n
// characters. Offsets inside the replaced range move to the end of the new
// text.
func AdjustForReplace(offset, start, end, n int) int {
	switch {
	case offset < start:
		return offset
	case offset >= end && offset > start:
		return offset - (end - start) + n
	case start == end:
		return offset + n
	default:
		return start + n
	}
}

// TransformInsert maps a selection across an insertion.
func TransformInsert(s Selection, pos, n int) Selection {
	return Selection{
		Anchor: AdjustForInsertion(s.Anchor, pos, n),
		Focus:  AdjustForInsertion(s.Focus, pos, n),
	}
}

// TransformDelete maps a selection across a deletion.
func TransformDelete(s Selection, start, end int) Selection {
	return Selection{
		Anchor: AdjustForDeletion(s.Anchor, start, end),
		Focus:  AdjustForDeletion(s.Focus, start, end),
	}
}

// TransformReplace maps a selection across a replacement.
func TransformReplace(s Selection, start, end, n int) Selection {
	return Selection{
		Anchor: AdjustForReplace(s.Anchor, start, end, n),
		Focus:  AdjustForReplace(s.Focus, start, end, n),
	}
}
