// Package moves provides undoable structural mutations of a plan.
//
// Each move rewrites the chains of the lines it touches, calls
// core.Propagate on every job whose predecessor or line changed, and returns
// a Move that restores the previous chains and timing on Undo. Moves refuse
// to relocate pinned jobs; jobs around a pinned job may still shift in time.
//
// Choosing which move to try, and whether to keep it, is up to the caller.
package moves
