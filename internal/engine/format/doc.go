// Package format implements inline formatting for a document.
//
// A Format is a closed variant: a Kind plus, for link and color kinds, a
// validated value. The Table keeps one ordered list of runs per Kind. Runs
// of the same Kind never overlap and adjacent runs with equal values are
// always merged, so every Kind partitions the formatted parts of the text
// into maximal spans. Different Kinds are independent and may overlap.
//
// Every mutating Table method returns a Patch describing exactly what it
// changed. Patch.Invert produces the patch that restores the prior state,
// which is what the history engine replays on undo.
package format
