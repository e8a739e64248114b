// Package prioritize orders tasks by urgency.
//
// The order is always the deterministic heuristic implemented by Rank: tasks
// with a due date come first, earliest due date first, then higher priority
// first. A completion model is asked for a short explanation that accompanies
// the order; it never changes it.
package prioritize
